package reconcile

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/events"
	"github.com/vango-dev/vtree/pkg/render"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Default tracer name for reconciliation spans.
const defaultTracerName = "vtree"

// Delegator receives the event registrations discovered while mounting and
// patching. Calls are made after all mutations of a pass are complete.
type Delegator interface {
	Delegate(appID string, root, el *dom.Node, event string, h *vdom.Handler)
	Undelegate(appID string, el *dom.Node, event string)
}

// pruner is implemented by delegators that can drop registrations for
// elements no longer in the live tree.
type pruner interface {
	Prune(appID string, root *dom.Node) int
}

// dispatcher is implemented by delegators that can deliver events.
type dispatcher interface {
	Dispatch(appID string, target *dom.Node, ev *vdom.Event) bool
}

// Result describes one reconciliation pass.
type Result struct {
	// Patches is the patch list computed and applied by the pass.
	Patches []vdom.Patch

	// Diagnostics holds one error per patch that could not be applied.
	Diagnostics []error

	// Effects is the number of delegation effects flushed.
	Effects int
}

// Skipped returns the number of patches that were not applied.
func (r *Result) Skipped() int { return len(r.Diagnostics) }

// App is one mounted application: a container, the live tree inside it, the
// stored virtual tree it represents, and its pending effects.
//
// An App is not safe for concurrent use. Callers must not start a pass
// before the previous one returned.
type App struct {
	id        string
	live      Live
	tree      *vdom.VNode
	effects   render.Effects
	applier   *Applier
	delegator Delegator
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer

	wrapperTag string
}

// Option configures an App.
type Option func(*App)

// WithID sets the application ID. The default is a random UUID.
func WithID(id string) Option {
	return func(a *App) {
		a.id = id
	}
}

// WithLogger sets the logger for skipped patches and pass summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithMetrics records passes on m.
func WithMetrics(m *Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithTracer sets the tracer. The default is the global provider's
// "vtree" tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(a *App) {
		a.tracer = tracer
	}
}

// WithDelegator sets the event delegation collaborator. The default is a
// private events.Registry.
func WithDelegator(d Delegator) Option {
	return func(a *App) {
		a.delegator = d
	}
}

// WithWrapperTag sets the element text and comment roots are mounted in.
func WithWrapperTag(tag string) Option {
	return func(a *App) {
		a.wrapperTag = tag
	}
}

// NewApp creates an application mounted into container. Nothing is
// rendered until the first call to Render.
func NewApp(container *dom.Node, opts ...Option) *App {
	a := &App{
		id:   uuid.NewString(),
		live: Live{Container: container},
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer(defaultTracerName)
	}
	if a.delegator == nil {
		a.delegator = events.NewRegistry()
	}
	a.logger = a.logger.With("app", a.id)
	a.applier = NewApplier(&a.effects, a.logger, a.wrapperTag)
	return a
}

// ID returns the application ID.
func (a *App) ID() string { return a.id }

// Container returns the element the application is mounted into.
func (a *App) Container() *dom.Node { return a.live.Container }

// Root returns the live root, or nil when nothing is mounted.
func (a *App) Root() *dom.Node { return a.live.Root }

// Tree returns the stored tree, the next tree of the last pass.
func (a *App) Tree() *vdom.VNode { return a.tree }

// Delegator returns the event delegation collaborator.
func (a *App) Delegator() Delegator { return a.delegator }

// Render runs one reconciliation pass from the stored tree to next: diff,
// apply, store next, then flush the queued delegation effects. A nil next
// unmounts the application.
//
// Patches that cannot be applied do not stop the pass. They are reported in
// Result.Diagnostics and joined into the returned error.
func (a *App) Render(ctx context.Context, next *vdom.VNode) (*Result, error) {
	start := time.Now()

	_, span := a.tracer.Start(ctx, "vtree.reconcile",
		trace.WithAttributes(attribute.String("vtree.app_id", a.id)))
	defer span.End()

	patches, rebinds := vdom.DiffRebinds(a.tree, next)
	diagnostics := a.applier.Apply(patches, &a.live)
	a.rebind(rebinds)

	a.tree = next
	flushed := a.flush()

	elapsed := time.Since(start)
	a.metrics.observe(patches, len(diagnostics), elapsed)

	span.SetAttributes(
		attribute.Int("vtree.patches", len(patches)),
		attribute.Int("vtree.skipped", len(diagnostics)),
		attribute.Int("vtree.effects", flushed),
	)

	result := &Result{Patches: patches, Diagnostics: diagnostics, Effects: flushed}
	err := stderrors.Join(diagnostics...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "patches skipped")
		a.logger.Warn("reconcile pass incomplete",
			"patches", len(patches),
			"skipped", len(diagnostics),
			"duration", elapsed)
	} else {
		span.SetStatus(codes.Ok, "")
		a.logger.Debug("reconcile pass",
			"patches", len(patches),
			"effects", flushed,
			"duration", elapsed)
	}
	return result, err
}

// rebind queues a delegation for every named handler that kept its name but
// changed value, so the delegator dispatches to the current function.
func (a *App) rebind(rebinds []vdom.Rebind) {
	for _, rb := range rebinds {
		el, err := ResolveByRoute(a.live.Root, rb.Route)
		if err != nil {
			a.logger.Debug("handler rebind skipped", "route", rb.Route.String(), "error", err)
			continue
		}
		render.SetAttribute(el, rb.Attr, vdom.HandlerValue(rb.Handler), &a.effects)
	}
}

// flush hands queued effects to the delegator in order and clears the
// queue. It returns the number of effects flushed.
func (a *App) flush() int {
	items := a.effects.Drain()
	for _, e := range items {
		switch e.Op {
		case render.EffectDelegate:
			a.delegator.Delegate(a.id, a.live.Root, e.Element, e.Event, e.Handler)
		case render.EffectUndelegate:
			a.delegator.Undelegate(a.id, e.Element, e.Event)
		}
	}
	if p, ok := a.delegator.(pruner); ok {
		if dropped := p.Prune(a.id, a.live.Root); dropped > 0 {
			a.logger.Debug("pruned handlers", "elements", dropped)
		}
	}
	return len(items)
}

// Dispatch delivers ev to the handlers registered on target and its
// ancestors. It reports false when no handler ran or the delegator cannot
// dispatch.
func (a *App) Dispatch(target *dom.Node, ev *vdom.Event) bool {
	d, ok := a.delegator.(dispatcher)
	if !ok {
		return false
	}
	return d.Dispatch(a.id, target, ev)
}

// Route returns the route of a live node, for diagnostics.
func (a *App) Route(node *dom.Node) (vdom.Route, bool) {
	return RouteOf(a.live.Root, node)
}
