package vdom

import (
	"fmt"
	"sync/atomic"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindTag     Kind = iota // <div>, <li>, etc.
	KindText                // Plain text node
	KindComment             // <!-- comment -->
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindTag:
		return "Tag"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	default:
		return "Unknown"
	}
}

// KeyAttr is the reserved attribute name holding a node's reconciliation key.
const KeyAttr = "key"

// EmptyText is the comment text of the placeholder produced by Empty.
const EmptyText = "vdom:empty"

// VNode is the virtual tree node.
//
// Nodes are immutable by convention once handed to Diff; the only field
// written during a diff pass is Route.
type VNode struct {
	Kind     Kind     // Node type
	ID       string   // Identity assigned at construction
	Tag      string   // Element name, KindTag only
	Void     bool     // Node may not own children
	Attrs    Attrs    // Attributes, KindTag only
	Text     string   // KindText and KindComment only
	Children []*VNode // Child nodes, empty for text, comments and void tags
	Route    Route    // Child-index path, reassigned on every diff pass
}

// IsTag reports whether node is a tag node. A nil node is not a tag.
func IsTag(node *VNode) bool {
	return node != nil && node.Kind == KindTag
}

// IsEmptyNode reports whether node is the placeholder produced by Empty.
func IsEmptyNode(node *VNode) bool {
	return node != nil && node.Kind == KindComment && node.Text == EmptyText
}

// String returns a short description of the node for logs.
func (v *VNode) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case KindTag:
		if key := Key(v); key != "" {
			return fmt.Sprintf("<%s key=%q>", v.Tag, key)
		}
		return "<" + v.Tag + ">"
	case KindText:
		return fmt.Sprintf("%q", v.Text)
	case KindComment:
		return "<!--" + v.Text + "-->"
	default:
		return "<unknown>"
	}
}

// IDGenerator hands out node identities ("v1", "v2", ...).
// It is safe for concurrent use.
type IDGenerator struct {
	counter atomic.Uint64
}

// NewIDGenerator creates a new IDGenerator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns the next identity.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("v%d", g.counter.Add(1))
}

// Reset resets the counter to 0.
func (g *IDGenerator) Reset() {
	g.counter.Store(0)
}

// Current returns the current counter value without incrementing.
func (g *IDGenerator) Current() uint64 {
	return g.counter.Load()
}

// ids is used by all constructors in this package.
var ids = NewIDGenerator()
