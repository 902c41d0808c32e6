// Package dom implements the live display tree that virtual trees are
// mounted into and patched against.
//
// The tree mirrors the subset of a browser document that reconciliation
// touches: element, text and comment nodes, ordered attributes, and the live
// state of form controls. It serializes to and parses from HTML through
// golang.org/x/net/html.
package dom

import (
	"errors"
	"strings"
)

// NodeType identifies the kind of a live node.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	default:
		return "Unknown"
	}
}

// ErrNotChild is returned when a node passed as an existing child is not a
// child of the receiver.
var ErrNotChild = errors.New("dom: node is not a child of this node")

// ErrNotElement is returned when children are attached to a text or comment.
var ErrNotElement = errors.New("dom: only elements can own children")

// Attribute is a single live attribute.
type Attribute struct {
	Name  string
	Value string
}

// Node is a live display node.
type Node struct {
	Type NodeType
	Tag  string // Lower-case element name, ElementNode only
	Data string // Text or comment content

	attrs    []Attribute
	parent   *Node
	children []*Node

	// Live state of form controls, independent of the attributes.
	value      string
	valueSet   bool
	checked    bool
	checkedSet bool
}

// NewElement creates a detached element.
func NewElement(tag string) *Node {
	return &Node{Type: ElementNode, Tag: strings.ToLower(tag)}
}

// NewText creates a detached text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// NewComment creates a detached comment node.
func NewComment(data string) *Node {
	return &Node{Type: CommentNode, Data: data}
}

// IsElement reports whether n is an element. A nil node is not.
func (n *Node) IsElement() bool {
	return n != nil && n.Type == ElementNode
}

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// ChildNodes returns a copy of the children list.
func (n *Node) ChildNodes() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child, or nil if i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.Child(0) }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.Child(len(n.children) - 1) }

// IndexOf returns the position of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// AppendChild appends child, detaching it from any previous parent first.
func (n *Node) AppendChild(child *Node) error {
	if n.Type != ElementNode {
		return ErrNotElement
	}
	child.Remove()
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) error {
	i := n.IndexOf(child)
	if i < 0 {
		return ErrNotChild
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
	return nil
}

// ReplaceChild puts next at old's position and detaches old.
func (n *Node) ReplaceChild(next, old *Node) error {
	i := n.IndexOf(old)
	if i < 0 {
		return ErrNotChild
	}
	if next == old {
		return nil
	}
	next.Remove()
	// Removing next may have shifted old.
	i = n.IndexOf(old)
	n.children[i] = next
	next.parent = n
	old.parent = nil
	return nil
}

// ReplaceWith puts next at n's position in its parent.
func (n *Node) ReplaceWith(next *Node) error {
	if n.parent == nil {
		return ErrNotChild
	}
	return n.parent.ReplaceChild(next, n)
}

// Remove detaches n from its parent. Detached nodes are left alone.
func (n *Node) Remove() {
	if n.parent != nil {
		_ = n.parent.RemoveChild(n)
	}
}

// GetAttribute returns the named attribute's value and whether it is present.
func (n *Node) GetAttribute(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the named attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// SetAttribute sets the named attribute, keeping its position if present.
// It is a no-op on non-elements.
func (n *Node) SetAttribute(name, value string) {
	if n.Type != ElementNode {
		return
	}
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attribute{Name: name, Value: value})
}

// RemoveAttribute deletes the named attribute if present.
func (n *Node) RemoveAttribute(name string) {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// Attributes returns a copy of the attributes in insertion order.
func (n *Node) Attributes() []Attribute {
	out := make([]Attribute, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// Value returns the control's live value. Until SetValue is called it
// reflects the value attribute.
func (n *Node) Value() string {
	if n.valueSet {
		return n.value
	}
	v, _ := n.GetAttribute("value")
	return v
}

// SetValue sets the control's live value without touching the attribute.
func (n *Node) SetValue(v string) {
	n.value = v
	n.valueSet = true
}

// Checked returns the control's live checked state. Until SetChecked is
// called it reflects the presence of the checked attribute.
func (n *Node) Checked() bool {
	if n.checkedSet {
		return n.checked
	}
	return n.HasAttribute("checked")
}

// SetChecked sets the control's live checked state.
func (n *Node) SetChecked(c bool) {
	n.checked = c
	n.checkedSet = true
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}

// Walk calls fn for n and every descendant in document order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// TextContent returns the concatenated text of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Data
	}
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Type == TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// String returns a short description for logs.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Type {
	case ElementNode:
		return "<" + n.Tag + ">"
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	default:
		return "#unknown"
	}
}
