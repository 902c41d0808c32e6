package events

import (
	"sync"
	"testing"

	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// tree builds <div><ul><li></li></ul></div> and returns div, ul, li.
func tree() (*dom.Node, *dom.Node, *dom.Node) {
	div := dom.NewElement("div")
	ul := dom.NewElement("ul")
	li := dom.NewElement("li")
	div.AppendChild(ul)
	ul.AppendChild(li)
	return div, ul, li
}

func TestDispatchBubbles(t *testing.T) {
	r := NewRegistry()
	root, ul, li := tree()

	var order []string
	r.Delegate("app", root, li, "click", vdom.NewHandler(func(*vdom.Event) { order = append(order, "li") }))
	r.Delegate("app", root, root, "click", vdom.NewHandler(func(*vdom.Event) { order = append(order, "root") }))
	r.Delegate("app", root, ul, "input", vdom.NewHandler(func(*vdom.Event) { order = append(order, "ul-input") }))

	if !r.Dispatch("app", li, &vdom.Event{Type: "click"}) {
		t.Fatal("Dispatch should report handled")
	}
	if len(order) != 2 || order[0] != "li" || order[1] != "root" {
		t.Errorf("order = %v, want [li root]", order)
	}
}

func TestDispatchStopsAtRoot(t *testing.T) {
	r := NewRegistry()
	container := dom.NewElement("body")
	root, _, li := tree()
	container.AppendChild(root)

	called := false
	r.Delegate("app", root, li, "click", vdom.NewHandler(nil))
	r.Delegate("other", nil, container, "click", vdom.NewHandler(func(*vdom.Event) { called = true }))
	r.Delegate("app", root, container, "click", vdom.NewHandler(func(*vdom.Event) { called = true }))

	r.Dispatch("app", li, &vdom.Event{Type: "click"})
	if called {
		t.Error("handler above the app root should not run")
	}
}

func TestDispatchUnknown(t *testing.T) {
	r := NewRegistry()
	_, _, li := tree()
	if r.Dispatch("missing", li, &vdom.Event{Type: "click"}) {
		t.Error("unknown app should not be handled")
	}
}

func TestDelegateReplacesAndUndelegate(t *testing.T) {
	r := NewRegistry()
	root, _, li := tree()

	first, second := vdom.NewHandler(nil), vdom.NewHandler(nil)
	r.Delegate("app", root, li, "click", first)
	r.Delegate("app", root, li, "click", second)

	if h, ok := r.Handler("app", li, "click"); !ok || h != second {
		t.Errorf("Handler() = %v, %v; want second", h, ok)
	}
	if r.Len("app") != 1 {
		t.Errorf("Len() = %d, want 1", r.Len("app"))
	}

	r.Undelegate("app", li, "click")
	if _, ok := r.Handler("app", li, "click"); ok {
		t.Error("handler should be gone")
	}
	if r.Len("app") != 0 {
		t.Errorf("Len() = %d, want 0", r.Len("app"))
	}
	r.Undelegate("missing", li, "click") // must not panic
}

func TestPrune(t *testing.T) {
	r := NewRegistry()
	root, ul, li := tree()
	detached := dom.NewElement("p")

	r.Delegate("app", root, li, "click", vdom.NewHandler(nil))
	r.Delegate("app", root, detached, "click", vdom.NewHandler(nil))
	ul.RemoveChild(li)

	if got := r.Prune("app", root); got != 2 {
		t.Errorf("Prune() = %d, want 2", got)
	}
	if r.Len("app") != 0 {
		t.Errorf("Len() = %d, want 0", r.Len("app"))
	}
}

func TestForget(t *testing.T) {
	r := NewRegistry()
	root, _, li := tree()
	r.Delegate("app", root, li, "click", vdom.NewHandler(nil))
	r.Forget("app")
	if r.Len("app") != 0 {
		t.Error("Forget should drop everything")
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	root, _, li := tree()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Delegate("app", root, li, "click", vdom.NewHandler(nil))
		}()
		go func() {
			defer wg.Done()
			r.Dispatch("app", li, &vdom.Event{Type: "click"})
		}()
	}
	wg.Wait()
}
