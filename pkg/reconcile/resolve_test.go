package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// list builds <ul><li>a</li><li>b</li></ul>.
func list() *dom.Node {
	ul := dom.NewElement("ul")
	for _, text := range []string{"a", "b"} {
		li := dom.NewElement("li")
		li.AppendChild(dom.NewText(text))
		ul.AppendChild(li)
	}
	return ul
}

func TestResolveByRoute(t *testing.T) {
	root := list()

	tests := []struct {
		route vdom.Route
		want  string
	}{
		{vdom.Route{0}, "<ul><li>a</li><li>b</li></ul>"},
		{vdom.Route{0, 1}, "<li>b</li>"},
		{vdom.Route{0, 0, 0}, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.route.String(), func(t *testing.T) {
			got, err := ResolveByRoute(root, tt.route)
			if err != nil {
				t.Fatalf("ResolveByRoute() error = %v", err)
			}
			if html := dom.OuterHTML(got); html != tt.want {
				t.Errorf("ResolveByRoute() = %s, want %s", html, tt.want)
			}
		})
	}
}

func TestResolveByRouteMissing(t *testing.T) {
	root := list()
	for _, route := range []vdom.Route{{0, 2}, {0, 0, 0, 0}, {}} {
		if _, err := ResolveByRoute(root, route); errors.CodeOf(err) != "E201" {
			t.Errorf("ResolveByRoute(%s) code = %q, want E201", route, errors.CodeOf(err))
		}
	}
	if _, err := ResolveByRoute(nil, vdom.Route{0}); err == nil {
		t.Error("ResolveByRoute(nil) should fail")
	}
}

func TestResolveForPatchRoot(t *testing.T) {
	wrapper := dom.NewElement("div")
	text := dom.NewText("hello")
	wrapper.AppendChild(text)

	got, err := ResolveForPatch(wrapper, vdom.Patch{Action: vdom.ReplaceNode, Route: vdom.Route{0}, Old: vdom.Text("hello")})
	if err != nil {
		t.Fatalf("ResolveForPatch() error = %v", err)
	}
	if got != text {
		t.Errorf("text root resolved to %s, want the wrapped text", got)
	}

	got, err = ResolveForPatch(wrapper, vdom.Patch{Action: vdom.ReplaceAttribute, Route: vdom.Route{0}, Old: vdom.Div()})
	if err != nil {
		t.Fatalf("ResolveForPatch() error = %v", err)
	}
	if got != wrapper {
		t.Errorf("tag root resolved to %s, want the root", got)
	}

	if _, err := ResolveForPatch(dom.NewElement("div"), vdom.Patch{Action: vdom.ReplaceNode, Route: vdom.Route{0}, Old: vdom.Text("x")}); err == nil {
		t.Error("empty wrapper should not resolve")
	}
}

func TestResolveForPatchRemoveFallsBackToLastChild(t *testing.T) {
	root := list()
	got, err := ResolveForPatch(root, vdom.Patch{Action: vdom.RemoveNode, Route: vdom.Route{0, 5}})
	if err != nil {
		t.Fatalf("ResolveForPatch() error = %v", err)
	}
	if got != root.LastChild() {
		t.Errorf("RemoveNode resolved to %s, want the last child", got)
	}

	// Other actions do not fall back.
	if _, err := ResolveForPatch(root, vdom.Patch{Action: vdom.ReplaceNode, Route: vdom.Route{0, 5}}); err == nil {
		t.Error("ReplaceNode at a missing index should fail")
	}
}

func TestResolveForPatchAddNodeResolvesParent(t *testing.T) {
	root := list()
	got, err := ResolveForPatch(root, vdom.Patch{Action: vdom.AddNode, Route: vdom.Route{0, 7}})
	if err != nil {
		t.Fatalf("ResolveForPatch() error = %v", err)
	}
	if got != root {
		t.Errorf("AddNode resolved to %s, want the parent", got)
	}

	got, err = ResolveForPatch(root, vdom.Patch{Action: vdom.AddNode, Route: vdom.Route{0, 1, 3}})
	if err != nil {
		t.Fatalf("ResolveForPatch() error = %v", err)
	}
	if got != root.Child(1) {
		t.Errorf("AddNode resolved to %s, want the second li", got)
	}
}

func TestRouteOf(t *testing.T) {
	root := list()
	text := root.Child(1).FirstChild()

	got, ok := RouteOf(root, text)
	if !ok {
		t.Fatal("RouteOf() should find the text node")
	}
	if diff := cmp.Diff(vdom.Route{0, 1, 0}, got); diff != "" {
		t.Errorf("RouteOf() mismatch (-want +got):\n%s", diff)
	}

	if got, _ := RouteOf(root, root); !got.IsRoot() {
		t.Errorf("RouteOf(root) = %s, want 0", got)
	}
	if _, ok := RouteOf(root, dom.NewElement("p")); ok {
		t.Error("RouteOf() should not find a detached node")
	}

	// RouteOf and ResolveByRoute are inverses.
	back, err := ResolveByRoute(root, got)
	if err != nil || back != root {
		t.Errorf("ResolveByRoute(RouteOf(root)) = %v, %v", back, err)
	}
}
