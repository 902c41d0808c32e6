package reconcile

import (
	"log/slog"
	"strings"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/render"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// DefaultWrapperTag is the element a text or comment root is mounted in.
const DefaultWrapperTag = "div"

// Live is the live side of an application: the container element it is
// mounted into and its live root. Root is the root element, or the wrapper
// element around a text or comment root, or nil when nothing is mounted.
type Live struct {
	Container *dom.Node
	Root      *dom.Node
}

// Applier applies patch lists to a live tree.
type Applier struct {
	mounter    *render.Mounter
	effects    *render.Effects
	logger     *slog.Logger
	wrapperTag string
}

// NewApplier creates an Applier that queues delegation effects on effects
// and logs skipped patches to logger. An empty wrapperTag selects
// DefaultWrapperTag.
func NewApplier(effects *render.Effects, logger *slog.Logger, wrapperTag string) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	if wrapperTag == "" {
		wrapperTag = DefaultWrapperTag
	}
	return &Applier{
		mounter:    render.NewMounter(effects),
		effects:    effects,
		logger:     logger,
		wrapperTag: wrapperTag,
	}
}

// Apply applies patches to live strictly in order. A patch that cannot be
// applied is skipped and the rest of the batch still runs; the returned
// slice holds one diagnostic per skipped patch.
func (a *Applier) Apply(patches []vdom.Patch, live *Live) []error {
	var diagnostics []error
	for _, p := range patches {
		if err := a.apply(p, live); err != nil {
			a.logger.Warn("patch skipped",
				"action", p.Action.String(),
				"route", p.Route.String(),
				"error", err)
			diagnostics = append(diagnostics, err)
		}
	}
	return diagnostics
}

func (a *Applier) apply(p vdom.Patch, live *Live) error {
	if !p.Action.IsNodeAction() && len(p.Attrs) == 0 {
		return nil
	}
	if p.Route.IsRoot() && p.Action.IsNodeAction() {
		return a.applyRoot(p, live)
	}

	target, err := ResolveForPatch(live.Root, p)
	if err != nil {
		return err
	}

	switch p.Action {
	case vdom.AddNode:
		if !target.IsElement() {
			return errors.Errorf("E202", "%s %s: parent is %s", p.Action, p.Route, target)
		}
		a.mounter.Mount(p.Next, target)

	case vdom.RemoveNode:
		if target.Parent() == nil {
			return errors.Errorf("E201", "%s %s: %s is detached", p.Action, p.Route, target)
		}
		target.Remove()

	case vdom.ReplaceNode:
		next := a.mounter.Mount(p.Next, nil)
		if err := target.ReplaceWith(next); err != nil {
			return errors.Errorf("E201", "%s %s", p.Action, p.Route).Wrap(err)
		}

	case vdom.AddAttribute, vdom.ReplaceAttribute:
		if !target.IsElement() {
			return errors.Errorf("E202", "%s %s: target is %s", p.Action, p.Route, target)
		}
		a.setAttributes(target, p)

	case vdom.RemoveAttribute:
		if !target.IsElement() {
			return errors.Errorf("E202", "%s %s: target is %s", p.Action, p.Route, target)
		}
		for _, name := range p.Names() {
			if p.Attrs[name].IsHandler() {
				a.undelegate(target, name)
				continue
			}
			target.RemoveAttribute(name)
		}

	default:
		return errors.Errorf("E201", "unknown action %d", p.Action)
	}
	return nil
}

// setAttributes applies an AddAttribute or ReplaceAttribute patch.
func (a *Applier) setAttributes(el *dom.Node, p vdom.Patch) {
	for _, name := range p.Names() {
		value := p.Attrs[name]

		if p.Action == vdom.ReplaceAttribute {
			var prev vdom.Value
			if p.Old != nil {
				prev = p.Old.Attrs[name]
			}
			switch {
			case prev.IsHandler() && !value.IsHandler():
				a.undelegate(el, name)
			case !prev.IsHandler() && value.IsHandler():
				el.RemoveAttribute(name)
			}
		}

		render.SetAttribute(el, name, value, a.effects)

		if p.Action == vdom.ReplaceAttribute {
			pushControlState(el, name, value)
		}
	}
}

func (a *Applier) undelegate(el *dom.Node, name string) {
	if a.effects != nil {
		a.effects.Push(render.Effect{Op: render.EffectUndelegate, Element: el, Event: vdom.EventName(name)})
	}
}

// pushControlState updates the live state of an input whose value or
// checked attribute was replaced. Setting the attribute alone does not
// change a control that is already rendered.
func pushControlState(el *dom.Node, name string, value vdom.Value) {
	if el.Tag != "input" || value.IsHandler() {
		return
	}
	inputType, _ := el.GetAttribute("type")
	inputType = strings.ToLower(inputType)
	if inputType == "" {
		inputType = "text"
	}

	switch {
	case inputType == "text" && name == "value":
		el.SetValue(value.String())
	case inputType == "checkbox" && name == "checked":
		el.SetChecked(value.Truthy())
	}
}

// applyRoot applies a node patch addressing the tree root.
func (a *Applier) applyRoot(p vdom.Patch, live *Live) error {
	switch p.Action {
	case vdom.AddNode:
		if live.Root != nil {
			live.Root.Remove()
		}
		live.Root = a.mountRoot(p.Next)
		if live.Container != nil && live.Root != nil {
			if err := live.Container.AppendChild(live.Root); err != nil {
				return errors.Errorf("E202", "%s %s: container is %s", p.Action, p.Route, live.Container).Wrap(err)
			}
		}

	case vdom.RemoveNode:
		if live.Root == nil {
			return errors.Errorf("E201", "%s %s: nothing is mounted", p.Action, p.Route)
		}
		live.Root.Remove()
		live.Root = nil

	case vdom.ReplaceNode:
		target, err := ResolveForPatch(live.Root, p)
		if err != nil {
			return err
		}
		if target != live.Root && !vdom.IsTag(p.Next) {
			// Text or comment root stays inside its wrapper.
			if err := target.ReplaceWith(a.mounter.Mount(p.Next, nil)); err != nil {
				return errors.Errorf("E201", "%s %s", p.Action, p.Route).Wrap(err)
			}
			return nil
		}
		next := a.mountRoot(p.Next)
		if live.Root.Parent() != nil {
			if err := live.Root.ReplaceWith(next); err != nil {
				return errors.Errorf("E201", "%s %s", p.Action, p.Route).Wrap(err)
			}
		}
		live.Root = next
	}
	return nil
}

// mountRoot mounts a root node, wrapping a text or comment root in a
// wrapper element.
func (a *Applier) mountRoot(node *vdom.VNode) *dom.Node {
	if node == nil {
		return nil
	}
	if vdom.IsTag(node) {
		return a.mounter.Mount(node, nil)
	}
	wrapper := dom.NewElement(a.wrapperTag)
	a.mounter.Mount(node, wrapper)
	return wrapper
}
