package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// Route is the child-index path from the tree root to a node. The root
// itself is at Route{0}; child i of route r is at r.Child(i).
type Route []int

// RootRoute is the route of a tree's root node.
func RootRoute() Route { return Route{0} }

// Child returns the route of the i-th child. The receiver is not modified.
func (r Route) Child(i int) Route {
	out := make(Route, len(r)+1)
	copy(out, r)
	out[len(r)] = i
	return out
}

// Parent returns the route without its last component.
func (r Route) Parent() Route {
	if len(r) == 0 {
		return nil
	}
	return r[:len(r)-1:len(r)-1]
}

// Last returns the last component, or -1 for an empty route.
func (r Route) Last() int {
	if len(r) == 0 {
		return -1
	}
	return r[len(r)-1]
}

// IsRoot reports whether the route addresses the tree root.
func (r Route) IsRoot() bool {
	return len(r) == 1
}

// Equal reports whether both routes have the same components.
func (r Route) Equal(o Route) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i] != o[i] {
			return false
		}
	}
	return true
}

// String returns the dotted form, e.g. "0.1.3".
func (r Route) String() string {
	parts := make([]string, len(r))
	for i, idx := range r {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// ParseRoute parses the dotted form produced by Route.String. Every
// component must be a non-negative integer and the first must be 0.
func ParseRoute(s string) (Route, error) {
	if s == "" {
		return nil, fmt.Errorf("vdom: empty route")
	}
	parts := strings.Split(s, ".")
	r := make(Route, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("vdom: invalid route component %q in %q", part, s)
		}
		r[i] = n
	}
	if r[0] != 0 {
		return nil, fmt.Errorf("vdom: route %q does not start at the root", s)
	}
	return r, nil
}

// AssignRoutes stamps every node of the tree with its route, starting at
// RootRoute. Routes from earlier passes are overwritten.
func AssignRoutes(root *VNode) {
	if root == nil {
		return
	}
	assignRoutes(root, RootRoute())
}

func assignRoutes(node *VNode, route Route) {
	node.Route = route
	for i, child := range node.Children {
		if child != nil {
			assignRoutes(child, route.Child(i))
		}
	}
}
