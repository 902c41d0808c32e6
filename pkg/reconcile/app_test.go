package reconcile

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/events"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func newApp(opts ...Option) *App {
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewApp(dom.NewElement("body"), opts...)
}

func TestAppRenderEndToEnd(t *testing.T) {
	app := newApp()
	ctx := context.Background()

	result, err := app.Render(ctx, vdom.Ul(vdom.Li("a")))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(result.Patches) != 1 || result.Patches[0].Action != vdom.AddNode {
		t.Errorf("first render patches = %v, want one AddNode", result.Patches)
	}

	next := vdom.Ul(vdom.Li("a"), vdom.Li("b"))
	result, err = app.Render(ctx, next)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(result.Patches) != 1 || result.Patches[0].String() != "AddNode 0.1 <li>" {
		t.Errorf("patches = %v, want [AddNode 0.1 <li>]", result.Patches)
	}
	if got, want := dom.InnerHTML(app.Container()), "<ul><li>a</li><li>b</li></ul>"; got != want {
		t.Errorf("container = %s, want %s", got, want)
	}
	if app.Tree() != next {
		t.Error("Tree() should be the last rendered tree")
	}
}

func TestAppRenderNilUnmounts(t *testing.T) {
	app := newApp()
	ctx := context.Background()
	app.Render(ctx, vdom.Div("x"))

	if _, err := app.Render(ctx, nil); err != nil {
		t.Fatalf("Render(nil) error = %v", err)
	}
	if app.Root() != nil || app.Container().ChildCount() != 0 {
		t.Error("Render(nil) should unmount")
	}

	// Rendering again mounts from scratch.
	app.Render(ctx, vdom.P("back"))
	if got := dom.InnerHTML(app.Container()); got != "<p>back</p>" {
		t.Errorf("container = %s, want <p>back</p>", got)
	}
}

func TestAppID(t *testing.T) {
	a, b := newApp(), newApp()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("IDs = %q, %q; want distinct non-empty", a.ID(), b.ID())
	}
	if got := newApp(WithID("fixed")).ID(); got != "fixed" {
		t.Errorf("ID() = %q, want fixed", got)
	}
}

func TestAppDispatch(t *testing.T) {
	app := newApp()
	ctx := context.Background()

	var clicks []string
	first := vdom.Div(vdom.Button(vdom.OnClick(func(*vdom.Event) { clicks = append(clicks, "first") })))
	result, _ := app.Render(ctx, first)
	if result.Effects != 1 {
		t.Errorf("Effects = %d, want 1", result.Effects)
	}

	button := app.Root().FirstChild()
	if !app.Dispatch(button, &vdom.Event{Type: "click"}) {
		t.Fatal("Dispatch() should find the handler")
	}

	second := vdom.Div(vdom.Button(vdom.OnClick(func(*vdom.Event) { clicks = append(clicks, "second") })))
	app.Render(ctx, second)
	app.Dispatch(button, &vdom.Event{Type: "click"})

	if len(clicks) != 2 || clicks[0] != "first" || clicks[1] != "second" {
		t.Errorf("clicks = %v, want [first second]", clicks)
	}

	app.Render(ctx, vdom.Div(vdom.Button()))
	if app.Dispatch(button, &vdom.Event{Type: "click"}) {
		t.Error("handler should be undelegated")
	}
}

func TestAppRebindsNamedHandlers(t *testing.T) {
	app := newApp()
	ctx := context.Background()

	var got []string
	counter := func(label string) *vdom.VNode {
		return vdom.Div(vdom.Button(vdom.OnNamed("click", "inc", func(*vdom.Event) { got = append(got, label) })))
	}
	app.Render(ctx, counter("old"))

	result, err := app.Render(ctx, counter("new"))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(result.Patches) != 0 {
		t.Errorf("patches = %v, want none for a handler that kept its name", result.Patches)
	}
	if result.Effects != 1 {
		t.Errorf("Effects = %d, want 1 rebind", result.Effects)
	}

	if !app.Dispatch(app.Root().FirstChild(), &vdom.Event{Type: "click"}) {
		t.Fatal("Dispatch() should find the handler")
	}
	if len(got) != 1 || got[0] != "new" {
		t.Errorf("handler calls = %v, want [new]", got)
	}
}

func TestAppPrunesRemovedElements(t *testing.T) {
	reg := events.NewRegistry()
	app := newApp(WithDelegator(reg))
	ctx := context.Background()

	app.Render(ctx, vdom.Ul(
		vdom.Li(vdom.OnClick(func(*vdom.Event) {}), "a"),
		vdom.Li(vdom.OnClick(func(*vdom.Event) {}), "b"),
	))
	if reg.Len(app.ID()) != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len(app.ID()))
	}

	app.Render(ctx, vdom.Ul())
	if reg.Len(app.ID()) != 0 {
		t.Errorf("Len() = %d after removal, want 0", reg.Len(app.ID()))
	}
}

// recordingDelegator records delegation calls without dispatch support.
type recordingDelegator struct {
	calls []string
}

func (r *recordingDelegator) Delegate(appID string, root, el *dom.Node, event string, h *vdom.Handler) {
	r.calls = append(r.calls, "delegate "+el.Tag+" "+event)
}

func (r *recordingDelegator) Undelegate(appID string, el *dom.Node, event string) {
	r.calls = append(r.calls, "undelegate "+el.Tag+" "+event)
}

func TestAppCustomDelegator(t *testing.T) {
	rec := &recordingDelegator{}
	app := newApp(WithDelegator(rec))
	ctx := context.Background()

	prev := vdom.Form(vdom.OnSubmit(nil), vdom.Input(vdom.OnInput(nil)))
	app.Render(ctx, prev)
	app.Render(ctx, vdom.Form(vdom.Input(vdom.OnInput(nil))))

	want := []string{
		"delegate form submit",
		"delegate input input",
		"undelegate form submit",
		"delegate input input",
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, rec.calls[i], want[i])
		}
	}
	if app.Dispatch(app.Root(), &vdom.Event{Type: "submit"}) {
		t.Error("Dispatch() should report false without dispatch support")
	}
}

func TestAppRenderDiagnostics(t *testing.T) {
	app := newApp()
	ctx := context.Background()
	app.Render(ctx, vdom.Ul(vdom.Li("a")))

	// Someone else removed the item behind the app's back.
	app.Root().RemoveChild(app.Root().FirstChild())

	result, err := app.Render(ctx, vdom.Ul(vdom.Li(vdom.Class("x"), "a")))
	if err == nil {
		t.Fatal("Render() should report the skipped patch")
	}
	if result.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", result.Skipped())
	}
	if code := errors.CodeOf(err); code != "E201" {
		t.Errorf("CodeOf() = %q, want E201", code)
	}
}

func TestAppRoute(t *testing.T) {
	app := newApp()
	app.Render(context.Background(), vdom.Div(vdom.P(), vdom.P(vdom.Span())))

	span := app.Root().Child(1).FirstChild()
	route, ok := app.Route(span)
	if !ok || route.String() != "0.1.0" {
		t.Errorf("Route() = %s, %v; want 0.1.0", route, ok)
	}
}

func TestAppMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, WithNamespace("test"))
	app := newApp(WithMetrics(m))
	ctx := context.Background()

	prev := vdom.Ul(vdom.Li("a"))
	app.Render(ctx, prev)
	app.Render(ctx, vdom.Ul(vdom.Li("a"), vdom.Li("b")))

	var metric dto.Metric
	if err := m.passesTotal.Write(&metric); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Errorf("passes_total = %v, want 2", got)
	}

	metric.Reset()
	if err := m.patchesTotal.WithLabelValues("AddNode").Write(&metric); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Errorf("patches_total{action=AddNode} = %v, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, name := range []string{"test_passes_total", "test_patches_total", "test_patches_skipped_total", "test_pass_duration_seconds"} {
		if !names[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.observe([]vdom.Patch{{Action: vdom.AddNode}}, 1, 0) // must not panic
}
