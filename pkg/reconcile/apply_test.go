package reconcile

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/render"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newApplier() (*Applier, *render.Effects) {
	effects := &render.Effects{}
	return NewApplier(effects, quietLogger(), ""), effects
}

// mounted mounts tree into a fresh container through the first-render path.
func mounted(t *testing.T, a *Applier, tree *vdom.VNode) *Live {
	t.Helper()
	live := &Live{Container: dom.NewElement("body")}
	if errs := a.Apply(vdom.Diff(nil, tree), live); len(errs) > 0 {
		t.Fatalf("mount diagnostics: %v", errs)
	}
	return live
}

func TestApplyRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		prev, next func() *vdom.VNode
	}{
		{
			name: "child text and growth",
			prev: func() *vdom.VNode { return vdom.Div(vdom.P("a")) },
			next: func() *vdom.VNode { return vdom.Div(vdom.P("b"), vdom.Span("c")) },
		},
		{
			name: "shrink",
			prev: func() *vdom.VNode { return vdom.Ul(vdom.Li("a"), vdom.Li("b"), vdom.Li("c")) },
			next: func() *vdom.VNode { return vdom.Ul(vdom.Li("a")) },
		},
		{
			name: "attributes",
			prev: func() *vdom.VNode { return vdom.Div(vdom.Class("x"), vdom.ID("y")) },
			next: func() *vdom.VNode { return vdom.Div(vdom.Class("z"), vdom.TitleAttr("t")) },
		},
		{
			name: "text root",
			prev: func() *vdom.VNode { return vdom.Text("a") },
			next: func() *vdom.VNode { return vdom.Text("b") },
		},
		{
			name: "text root to tag",
			prev: func() *vdom.VNode { return vdom.Text("a") },
			next: func() *vdom.VNode { return vdom.Section(vdom.Class("c"), "x") },
		},
		{
			name: "tag root to comment",
			prev: func() *vdom.VNode { return vdom.Div("x") },
			next: func() *vdom.VNode { return vdom.Comment("gone") },
		},
		{
			name: "root key change",
			prev: func() *vdom.VNode { return vdom.Div(vdom.KeyOf(1), "a") },
			next: func() *vdom.VNode { return vdom.Div(vdom.KeyOf(2), "b") },
		},
		{
			name: "keyed children",
			prev: func() *vdom.VNode {
				return vdom.Ul(vdom.Li(vdom.KeyOf(1), "a"), vdom.Li(vdom.KeyOf(2), "b"), vdom.Li(vdom.KeyOf(3), "c"))
			},
			next: func() *vdom.VNode { return vdom.Ul(vdom.Li(vdom.KeyOf(2), "b")) },
		},
		{
			name: "boolean attribute off",
			prev: func() *vdom.VNode { return vdom.Input(vdom.Type("checkbox"), vdom.Checked(true)) },
			next: func() *vdom.VNode { return vdom.Input(vdom.Type("checkbox"), vdom.Checked(false)) },
		},
		{
			name: "nested",
			prev: func() *vdom.VNode {
				return vdom.Div(vdom.Ul(vdom.Li("a"), vdom.Li("b")), vdom.P("x"))
			},
			next: func() *vdom.VNode {
				return vdom.Div(vdom.Ul(vdom.Li("a")), vdom.P(vdom.Class("k"), "y"), vdom.Hr())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newApplier()
			prev, next := tt.prev(), tt.next()
			live := mounted(t, a, prev)

			if errs := a.Apply(vdom.Diff(prev, next), live); len(errs) > 0 {
				t.Fatalf("Apply() diagnostics: %v", errs)
			}

			want := dom.OuterHTML(a.mountRoot(tt.next()))
			if got := dom.OuterHTML(live.Root); got != want {
				t.Errorf("live = %s, want %s", got, want)
			}
			if live.Container.ChildCount() != 1 || live.Container.FirstChild() != live.Root {
				t.Errorf("container holds %d children, want only the root", live.Container.ChildCount())
			}
		})
	}
}

func TestApplyEndToEndList(t *testing.T) {
	a, _ := newApplier()
	prev := vdom.Ul(vdom.Li("a"))
	live := mounted(t, a, prev)
	ul := live.Root

	next := vdom.Ul(vdom.Li("a"), vdom.Li("b"))
	a.Apply(vdom.Diff(prev, next), live)

	if got, want := dom.OuterHTML(live.Root), "<ul><li>a</li><li>b</li></ul>"; got != want {
		t.Errorf("live = %s, want %s", got, want)
	}
	if live.Root != ul {
		t.Error("root element should be patched in place")
	}
}

func TestApplyRemoveNodeFallback(t *testing.T) {
	a, _ := newApplier()
	live := &Live{Root: list()}

	errs := a.Apply([]vdom.Patch{
		{Action: vdom.RemoveNode, Route: vdom.Route{0, 4}},
		{Action: vdom.RemoveNode, Route: vdom.Route{0, 4}},
	}, live)
	if len(errs) != 0 {
		t.Fatalf("Apply() diagnostics: %v", errs)
	}
	if live.Root.ChildCount() != 0 {
		t.Errorf("ChildCount() = %d, want 0", live.Root.ChildCount())
	}
}

func TestApplySkipsUnresolvable(t *testing.T) {
	a, _ := newApplier()
	live := &Live{Root: dom.NewElement("ul")}

	errs := a.Apply([]vdom.Patch{
		{Action: vdom.AddAttribute, Route: vdom.Route{0, 2}, Attrs: vdom.Attrs{"class": vdom.String("x")}},
		{Action: vdom.AddAttribute, Route: vdom.Route{0}, Old: vdom.Ul(), Attrs: vdom.Attrs{"id": vdom.String("list")}},
	}, live)

	if len(errs) != 1 {
		t.Fatalf("len(diagnostics) = %d, want 1", len(errs))
	}
	if code := errors.CodeOf(errs[0]); code != "E201" {
		t.Errorf("code = %q, want E201", code)
	}
	if id, _ := live.Root.GetAttribute("id"); id != "list" {
		t.Errorf("later patch should still apply, id = %q", id)
	}
}

func TestApplyAttributeOnTextNode(t *testing.T) {
	a, _ := newApplier()
	root := dom.NewElement("p")
	root.AppendChild(dom.NewText("x"))
	live := &Live{Root: root}

	errs := a.Apply([]vdom.Patch{
		{Action: vdom.ReplaceAttribute, Route: vdom.Route{0, 0}, Attrs: vdom.Attrs{"class": vdom.String("x")}},
	}, live)
	if len(errs) != 1 || errors.CodeOf(errs[0]) != "E202" {
		t.Errorf("diagnostics = %v, want one E202", errs)
	}
}

func TestApplyEmptyAttributePatchIsNoop(t *testing.T) {
	a, _ := newApplier()
	live := &Live{}
	errs := a.Apply([]vdom.Patch{{Action: vdom.ReplaceAttribute, Route: vdom.Route{0, 9}}}, live)
	if len(errs) != 0 {
		t.Errorf("Apply() diagnostics = %v, want none", errs)
	}
}

func TestApplyPushesControlState(t *testing.T) {
	tests := []struct {
		name  string
		prev  *vdom.VNode
		next  *vdom.VNode
		check func(t *testing.T, el *dom.Node)
	}{
		{
			name: "text value",
			prev: vdom.Input(vdom.Type("text"), vdom.ValueAttr("a")),
			next: vdom.Input(vdom.Type("text"), vdom.ValueAttr("b")),
			check: func(t *testing.T, el *dom.Node) {
				if el.Value() != "b" {
					t.Errorf("Value() = %q, want b", el.Value())
				}
			},
		},
		{
			name: "untyped input defaults to text",
			prev: vdom.Input(vdom.ValueAttr("a")),
			next: vdom.Input(vdom.ValueAttr("c")),
			check: func(t *testing.T, el *dom.Node) {
				if el.Value() != "c" {
					t.Errorf("Value() = %q, want c", el.Value())
				}
			},
		},
		{
			name: "checkbox",
			prev: vdom.Input(vdom.Type("checkbox"), vdom.Checked(true)),
			next: vdom.Input(vdom.Type("checkbox"), vdom.Checked(false)),
			check: func(t *testing.T, el *dom.Node) {
				if el.Checked() {
					t.Error("Checked() = true, want false")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newApplier()
			live := mounted(t, a, tt.prev)

			// User edits diverge from the attribute.
			live.Root.SetValue("typed")
			live.Root.SetChecked(true)

			a.Apply(vdom.Diff(tt.prev, tt.next), live)
			tt.check(t, live.Root)
		})
	}
}

func TestApplyHandlerEffects(t *testing.T) {
	a, effects := newApplier()
	first := vdom.Button(vdom.Prop("onclick", "legacy()"))
	live := mounted(t, a, first)
	if effects.Len() != 0 {
		t.Fatalf("literal attribute queued %d effects", effects.Len())
	}

	second := vdom.Button(vdom.OnClick(func(*vdom.Event) {}))
	a.Apply(vdom.Diff(first, second), live)

	if live.Root.HasAttribute("onclick") {
		t.Error("literal onclick should be removed when a handler replaces it")
	}
	items := effects.Drain()
	if len(items) != 1 || items[0].Op != render.EffectDelegate || items[0].Event != "click" {
		t.Fatalf("effects = %v, want one click delegation", items)
	}

	third := vdom.Button(vdom.Prop("onclick", "legacy()"))
	a.Apply(vdom.Diff(second, third), live)

	items = effects.Drain()
	if len(items) != 1 || items[0].Op != render.EffectUndelegate {
		t.Fatalf("effects = %v, want one undelegation", items)
	}
	if v, _ := live.Root.GetAttribute("onclick"); v != "legacy()" {
		t.Errorf("onclick = %q, want legacy()", v)
	}

	fourth := vdom.Button()
	a.Apply(vdom.Diff(third, fourth), live)
	if live.Root.HasAttribute("onclick") {
		t.Error("onclick should be removed")
	}
}

func TestApplyRootRemoval(t *testing.T) {
	a, _ := newApplier()
	prev := vdom.Div("x")
	live := mounted(t, a, prev)

	a.Apply(vdom.Diff(prev, nil), live)
	if live.Root != nil {
		t.Error("Root should be nil after removal")
	}
	if live.Container.ChildCount() != 0 {
		t.Errorf("container has %d children, want 0", live.Container.ChildCount())
	}

	errs := a.Apply([]vdom.Patch{{Action: vdom.RemoveNode, Route: vdom.Route{0}}}, live)
	if len(errs) != 1 {
		t.Errorf("removing an unmounted root: diagnostics = %v, want one", errs)
	}
}

func TestApplyTextRootUsesWrapper(t *testing.T) {
	effects := &render.Effects{}
	a := NewApplier(effects, quietLogger(), "span")
	live := mounted(t, a, vdom.Text("hi"))

	if got, want := dom.OuterHTML(live.Root), "<span>hi</span>"; got != want {
		t.Errorf("live = %s, want %s", got, want)
	}
}
