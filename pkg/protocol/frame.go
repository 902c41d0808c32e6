package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// FrameHeaderSize is the size of the frame header in bytes.
const FrameHeaderSize = 5

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FramePatches FrameType = 0x02 // Patch batch from one pass
	FrameError   FrameType = 0x05 // Diagnostic text from an incomplete pass
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FramePatches:
		return "Patches"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is a typed payload sent to remote mirrors.
//
// Wire format (5 bytes header + variable payload):
//
//	┌─────────────┬───────────────────────────────┐
//	│ Frame Type  │ Payload Length                │
//	│ (1 byte)    │ (4 bytes, big-endian)         │
//	└─────────────┴───────────────────────────────┘
//	│  Payload (variable length)                  │
//	└─────────────────────────────────────────────┘
type Frame struct {
	Type    FrameType
	Payload []byte
}

// NewFrame returns a frame of type ft carrying payload.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// NewPatchesFrame encodes pf into a FramePatches frame.
func NewPatchesFrame(pf *PatchesFrame) *Frame {
	return NewFrame(FramePatches, EncodePatches(pf))
}

// Encode returns the header followed by the payload.
func (f *Frame) Encode() []byte {
	e := NewEncoder()
	e.WriteByte(byte(f.Type))
	e.WriteUint32(uint32(len(f.Payload)))
	e.WriteBytes(f.Payload)
	return e.Bytes()
}

// DecodeFrame decodes data holding exactly one frame, as received in a
// single websocket message.
func DecodeFrame(data []byte) (*Frame, error) {
	r := bytes.NewReader(data)
	f, err := ReadFrame(r)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return f, nil
}

// ReadFrame reads the next frame from a stream of frames.
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	ft := FrameType(header[0])
	if err := validFrameType(ft); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header[1:])
	if length > MaxFramePayload {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return &Frame{Type: ft, Payload: payload}, nil
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxFramePayload {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}

func validFrameType(ft FrameType) error {
	switch ft {
	case FramePatches, FrameError:
		return nil
	default:
		return ErrInvalidFrameType
	}
}
