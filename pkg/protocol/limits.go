package protocol

import "errors"

// Decoding limits. Every length prefix read from the wire is checked
// against these before anything is allocated.
const (
	// MaxStringLen bounds a single decoded string (tag, text, attribute
	// name or value).
	MaxStringLen = 4 << 20

	// MaxFramePayload bounds the payload of one frame.
	MaxFramePayload = 16 << 20

	// MaxCollectionCount bounds patches per frame, attributes per node and
	// children per node.
	MaxCollectionCount = 100_000

	// MaxNodeDepth limits the nesting depth of decoded virtual nodes.
	MaxNodeDepth = 256

	// MaxRouteLen limits the length of a decoded patch route. A route has
	// one component per tree level, so it shares the node depth bound.
	MaxRouteLen = MaxNodeDepth + 1
)

var (
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrInvalidBool        = errors.New("protocol: invalid boolean value")
	ErrStringTooLong      = errors.New("protocol: string exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
	ErrMaxDepthExceeded   = errors.New("protocol: maximum depth exceeded")
)

func checkDepth(current, max int) error {
	if current > max {
		return ErrMaxDepthExceeded
	}
	return nil
}
