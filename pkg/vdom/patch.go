package vdom

import (
	"fmt"
	"sort"
	"strings"
)

// Action is the type of patch operation.
type Action uint8

const (
	AddNode          Action = 0x01 // Append a new subtree under the parent route
	RemoveNode       Action = 0x02 // Detach the node at the route
	ReplaceNode      Action = 0x03 // Replace the node at the route, keeping its position
	AddAttribute     Action = 0x04 // Set attributes absent from the previous node
	RemoveAttribute  Action = 0x05 // Remove attributes absent from the next node
	ReplaceAttribute Action = 0x06 // Update attributes whose value changed
)

// String returns the string representation of the Action.
func (a Action) String() string {
	switch a {
	case AddNode:
		return "AddNode"
	case RemoveNode:
		return "RemoveNode"
	case ReplaceNode:
		return "ReplaceNode"
	case AddAttribute:
		return "AddAttribute"
	case RemoveAttribute:
		return "RemoveAttribute"
	case ReplaceAttribute:
		return "ReplaceAttribute"
	default:
		return "Unknown"
	}
}

// IsNodeAction reports whether the action changes tree structure.
func (a Action) IsNodeAction() bool {
	return a == AddNode || a == RemoveNode || a == ReplaceNode
}

// Patch represents a single live-tree mutation.
//
// For node actions Old and Next are the previous and next nodes at the route
// (Old is nil for AddNode, Next is nil for RemoveNode). For attribute actions
// Old and Next are the owning tag nodes and Attrs is the changed sub-mapping:
// old values for RemoveAttribute, next values otherwise.
type Patch struct {
	Action Action
	Route  Route
	Old    *VNode
	Next   *VNode
	Attrs  Attrs
}

// Names returns the patch's attribute names in sorted order.
func (p Patch) Names() []string {
	names := make([]string, 0, len(p.Attrs))
	for name := range p.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a one-line description, e.g. "AddNode 0.1 <li key="2">".
func (p Patch) String() string {
	var b strings.Builder
	b.WriteString(p.Action.String())
	b.WriteByte(' ')
	b.WriteString(p.Route.String())

	switch p.Action {
	case AddNode:
		fmt.Fprintf(&b, " %s", p.Next)
	case RemoveNode:
		fmt.Fprintf(&b, " %s", p.Old)
	case ReplaceNode:
		fmt.Fprintf(&b, " %s -> %s", p.Old, p.Next)
	default:
		for _, name := range p.Names() {
			v := p.Attrs[name]
			if v.IsHandler() {
				fmt.Fprintf(&b, " %s=<handler>", name)
				continue
			}
			fmt.Fprintf(&b, " %s=%q", name, v.String())
		}
	}
	return b.String()
}
