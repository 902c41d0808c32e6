package render

import (
	"sort"

	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Mounter builds live subtrees from virtual nodes.
type Mounter struct {
	effects *Effects
}

// NewMounter creates a Mounter that queues delegation effects on effects.
// A nil queue discards them.
func NewMounter(effects *Effects) *Mounter {
	return &Mounter{effects: effects}
}

// Mount builds the live subtree for node and, when parent is non-nil,
// appends it as parent's last child. The subtree is complete before it is
// attached. A nil node mounts nothing and returns nil.
func (m *Mounter) Mount(node *vdom.VNode, parent *dom.Node) *dom.Node {
	if node == nil {
		return nil
	}
	live := m.build(node)
	if parent != nil && live != nil {
		_ = parent.AppendChild(live)
	}
	return live
}

// MountAll mounts each node in order under parent and returns the created
// live nodes. Nil entries are skipped.
func (m *Mounter) MountAll(nodes []*vdom.VNode, parent *dom.Node) []*dom.Node {
	out := make([]*dom.Node, 0, len(nodes))
	for _, node := range nodes {
		if live := m.Mount(node, parent); live != nil {
			out = append(out, live)
		}
	}
	return out
}

func (m *Mounter) build(node *vdom.VNode) *dom.Node {
	switch node.Kind {
	case vdom.KindText:
		return dom.NewText(node.Text)
	case vdom.KindComment:
		return dom.NewComment(node.Text)
	case vdom.KindTag:
		el := dom.NewElement(node.Tag)
		m.setAttributes(el, node.Attrs)
		for _, child := range node.Children {
			if child == nil {
				continue
			}
			if live := m.build(child); live != nil {
				_ = el.AppendChild(live)
			}
		}
		return el
	default:
		return nil
	}
}

// setAttributes writes attrs onto el in name order. Handler values are
// queued for delegation instead.
func (m *Mounter) setAttributes(el *dom.Node, attrs vdom.Attrs) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == vdom.KeyAttr {
			continue
		}
		SetAttribute(el, name, attrs[name], m.effects)
	}
}

// SetAttribute writes value onto el the way Mount does: literals are set,
// boolean false removes the attribute, and handlers queue a delegation
// effect on effects.
func SetAttribute(el *dom.Node, name string, value vdom.Value, effects *Effects) {
	if value.IsHandler() {
		if effects != nil {
			effects.Push(Effect{Op: EffectDelegate, Element: el, Event: vdom.EventName(name), Handler: value.Handler()})
		}
		return
	}
	if text, ok := value.Literal(); ok {
		el.SetAttribute(name, text)
		return
	}
	el.RemoveAttribute(name)
}
