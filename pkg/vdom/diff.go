package vdom

// Diff compares two trees and returns the patches needed to transform prev
// into next. Either tree may be nil. The patches are ordered so that they can
// be applied strictly in sequence against a live tree shaped like prev.
func Diff(prev, next *VNode) []Patch {
	patches, _ := DiffRebinds(prev, next)
	return patches
}

// Rebind is a named handler that is a different *Handler in next than in
// prev. Named handlers need no patch, but the live binding must move to
// Handler.
type Rebind struct {
	Route   Route
	Attr    string
	Handler *Handler
}

// DiffRebinds is Diff that also returns the named handlers to rebind, node
// by node in tree order. Rebind routes address nodes that no patch moves, so
// they hold against the live tree after the patches are applied.
func DiffRebinds(prev, next *VNode) ([]Patch, []Rebind) {
	AssignRoutes(prev)
	AssignRoutes(next)

	d := &differ{
		prevSeen: make(map[string]struct{}),
		nextSeen: make(map[string]struct{}),
	}
	d.diff(prev, next, RootRoute())
	return d.patches, d.rebinds
}

// differ holds the state of one diff pass.
type differ struct {
	patches []Patch
	rebinds []Rebind

	// prevSeen and nextSeen record subtrees already classified wholesale
	// (replaced, added or removed), per side. Keys combine the node ID with
	// its route so a node value reused at two positions is tracked twice.
	prevSeen map[string]struct{}
	nextSeen map[string]struct{}
}

// diff recursively compares nodes at route and appends patches.
func (d *differ) diff(prev, next *VNode, route Route) {
	// Both nil - nothing to do
	if prev == nil && next == nil {
		return
	}

	// Node added
	if prev == nil {
		d.emit(Patch{Action: AddNode, Route: route, Next: next})
		d.mark(d.nextSeen, next, route)
		return
	}

	// Node removed
	if next == nil {
		d.emit(Patch{Action: RemoveNode, Route: route, Old: prev})
		d.mark(d.prevSeen, prev, route)
		return
	}

	if d.processed(prev, next, route) {
		return
	}

	if mustReplace(prev, next) {
		d.emit(Patch{Action: ReplaceNode, Route: route, Old: prev, Next: next})
		d.mark(d.prevSeen, prev, route)
		d.mark(d.nextSeen, next, route)
		return
	}

	// Same text or comment - nothing below it
	if prev.Kind != KindTag {
		return
	}

	d.diffAttrs(prev, next, route)
	d.diffChildren(prev, next, route)
}

// mustReplace reports whether next cannot be reached from prev by attribute
// and child patches: the kind, tag or text differs, or both nodes declare
// different keys.
func mustReplace(prev, next *VNode) bool {
	if prev.Kind != next.Kind {
		return true
	}
	if prev.Kind != KindTag {
		return prev.Text != next.Text
	}
	if prev.Tag != next.Tag {
		return true
	}
	prevKey, nextKey := Key(prev), Key(next)
	return prevKey != "" && nextKey != "" && prevKey != nextKey
}

// diffAttrs partitions attribute names into removed, added and changed sets
// and emits one batched patch per non-empty set.
func (d *differ) diffAttrs(prev, next *VNode, route Route) {
	var removed, added, changed Attrs

	for name, prevVal := range prev.Attrs {
		if name == KeyAttr {
			continue // Key is not a real attribute
		}
		nextVal, exists := next.Attrs[name]
		if !exists {
			if removed == nil {
				removed = make(Attrs)
			}
			removed[name] = prevVal
		} else if !prevVal.Equal(nextVal) {
			if prevVal.sameHandlerName(nextVal) {
				d.rebinds = append(d.rebinds, Rebind{Route: route, Attr: name, Handler: nextVal.Handler()})
				continue
			}
			if changed == nil {
				changed = make(Attrs)
			}
			changed[name] = nextVal
		}
	}

	for name, nextVal := range next.Attrs {
		if name == KeyAttr {
			continue
		}
		if _, exists := prev.Attrs[name]; !exists {
			if added == nil {
				added = make(Attrs)
			}
			added[name] = nextVal
		}
	}

	if len(removed) > 0 {
		d.emit(Patch{Action: RemoveAttribute, Route: route, Old: prev, Next: next, Attrs: removed})
	}
	if len(added) > 0 {
		d.emit(Patch{Action: AddAttribute, Route: route, Old: prev, Next: next, Attrs: added})
	}
	if len(changed) > 0 {
		d.emit(Patch{Action: ReplaceAttribute, Route: route, Old: prev, Next: next, Attrs: changed})
	}
}

// diffChildren compares children by position. Paired children are diffed in
// ascending order, then surplus next children are added in ascending order,
// then surplus previous children are removed in descending order so that no
// removal shifts the index of one still to come.
func (d *differ) diffChildren(prev, next *VNode, route Route) {
	prevChildren := prev.Children
	nextChildren := next.Children

	paired := len(prevChildren)
	if len(nextChildren) < paired {
		paired = len(nextChildren)
	}

	for i := 0; i < paired; i++ {
		d.diff(prevChildren[i], nextChildren[i], route.Child(i))
	}

	for i := paired; i < len(nextChildren); i++ {
		if nextChildren[i] == nil {
			continue
		}
		d.diff(nil, nextChildren[i], route.Child(i))
	}

	for i := len(prevChildren) - 1; i >= paired; i-- {
		if prevChildren[i] == nil {
			continue
		}
		d.diff(prevChildren[i], nil, route.Child(i))
	}
}

func (d *differ) emit(p Patch) {
	d.patches = append(d.patches, p)
}

// processed reports whether either node belongs to a subtree already
// classified wholesale in this pass. Children are paired by position and a
// wholesale subtree is never descended into, so with the current traversal
// this never reports true. It guards traversals that reach a node twice.
func (d *differ) processed(prev, next *VNode, route Route) bool {
	if _, ok := d.prevSeen[visitKey(prev, route)]; ok {
		return true
	}
	_, ok := d.nextSeen[visitKey(next, route)]
	return ok
}

// mark records node and its whole subtree in seen.
func (d *differ) mark(seen map[string]struct{}, node *VNode, route Route) {
	if node == nil {
		return
	}
	seen[visitKey(node, route)] = struct{}{}
	for i, child := range node.Children {
		d.mark(seen, child, route.Child(i))
	}
}

func visitKey(node *VNode, route Route) string {
	return node.ID + "@" + route.String()
}
