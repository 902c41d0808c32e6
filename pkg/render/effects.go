package render

import (
	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// EffectOp is the kind of deferred side effect.
type EffectOp uint8

const (
	EffectDelegate   EffectOp = iota + 1 // Register a handler for an element's event
	EffectUndelegate                     // Drop the handler for an element's event
)

// String returns the string representation of the EffectOp.
func (op EffectOp) String() string {
	switch op {
	case EffectDelegate:
		return "Delegate"
	case EffectUndelegate:
		return "Undelegate"
	default:
		return "Unknown"
	}
}

// Effect is a deferred event-delegation request.
type Effect struct {
	Op      EffectOp
	Element *dom.Node
	Event   string        // Event name without the "on" prefix, lower-cased
	Handler *vdom.Handler // Nil for EffectUndelegate
}

// Effects is an ordered queue of deferred effects. The zero value is ready
// to use. It is not safe for concurrent use.
type Effects struct {
	items []Effect
}

// Push appends an effect.
func (q *Effects) Push(e Effect) {
	q.items = append(q.items, e)
}

// Len returns the number of queued effects.
func (q *Effects) Len() int { return len(q.items) }

// Items returns the queued effects without clearing them.
func (q *Effects) Items() []Effect {
	out := make([]Effect, len(q.items))
	copy(out, q.items)
	return out
}

// Drain returns the queued effects in order and clears the queue.
func (q *Effects) Drain() []Effect {
	out := q.items
	q.items = nil
	return out
}
