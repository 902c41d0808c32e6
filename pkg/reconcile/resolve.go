package reconcile

import (
	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// ResolveByRoute walks route from root child index by child index. The first
// route component addresses root itself.
func ResolveByRoute(root *dom.Node, route vdom.Route) (*dom.Node, error) {
	if root == nil || len(route) == 0 {
		return nil, errors.Errorf("E201", "route %s has no live root", route)
	}

	node := root
	for depth := 1; depth < len(route); depth++ {
		next := node.Child(route[depth])
		if next == nil {
			return nil, errors.Errorf("E201", "route %s: %s has no child %d", route, node, route[depth])
		}
		node = next
	}
	return node, nil
}

// ResolveForPatch finds the live node a patch operates on, accounting for
// earlier patches of the same batch.
//
// A root route addresses root, except when the previous root node was not a
// tag: such roots are always mounted inside a wrapper element, so the
// wrapper's first child is returned. Below the root, RemoveNode falls back
// to the last child when an index has been shifted out of range by an
// earlier removal, and AddNode resolves the parent only since new nodes are
// always appended.
func ResolveForPatch(root *dom.Node, p vdom.Patch) (*dom.Node, error) {
	if root == nil || len(p.Route) == 0 {
		return nil, errors.Errorf("E201", "%s %s has no live root", p.Action, p.Route)
	}

	if p.Route.IsRoot() {
		if vdom.IsTag(p.Old) {
			return root, nil
		}
		child := root.FirstChild()
		if child == nil {
			return nil, errors.Errorf("E201", "%s %s: wrapper %s is empty", p.Action, p.Route, root)
		}
		return child, nil
	}

	node := root
	last := len(p.Route) - 1
	for depth := 1; depth <= last; depth++ {
		if p.Action == vdom.AddNode && depth == last {
			break
		}
		idx := p.Route[depth]
		next := node.Child(idx)
		if next == nil && p.Action == vdom.RemoveNode {
			next = node.LastChild()
		}
		if next == nil {
			return nil, errors.Errorf("E201", "%s %s: %s has no child %d", p.Action, p.Route, node, idx)
		}
		node = next
	}
	return node, nil
}

// RouteOf returns the route of target within the tree rooted at root, with
// root at route [0]. It reports false when target is not in the tree.
func RouteOf(root, target *dom.Node) (vdom.Route, bool) {
	if root == nil || target == nil || !root.Contains(target) {
		return nil, false
	}

	var reversed []int
	for n := target; n != root; n = n.Parent() {
		reversed = append(reversed, n.Parent().IndexOf(n))
	}

	route := make(vdom.Route, 0, len(reversed)+1)
	route = append(route, 0)
	for i := len(reversed) - 1; i >= 0; i-- {
		route = append(route, reversed[i])
	}
	return route, true
}
