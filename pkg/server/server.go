package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/internal/fixture"
	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/middleware"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/render"
	"github.com/vango-dev/vtree/pkg/snapshot"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Server previews one reconciled application over HTTP. Tree documents
// posted to /render are reconciled into a live tree, and every pass is
// broadcast as a binary patches frame to websocket mirrors on /ws.
type Server struct {
	config *Config

	// mu serializes passes, dispatches and mirror registration so that
	// every mirror sees frames in sequence order.
	mu  sync.Mutex
	app *reconcile.App
	seq uint64

	store        snapshot.Store
	resolve      fixture.HandlerResolver
	hub          *Hub
	registry     *prometheus.Registry
	renderConfig render.RendererConfig
	upgrader     websocket.Upgrader
	tracer       trace.TracerProvider
	logger       *slog.Logger
	router       chi.Router

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithStore persists the stored tree after every pass and restores it on
// Restore.
func WithStore(store snapshot.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry sets the registry that collectors are registered on and
// /metrics serves.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithHandlers binds handler names in posted documents to functions.
// Handlers run with the server lock held and must not call Render.
func WithHandlers(resolve fixture.HandlerResolver) Option {
	return func(s *Server) {
		s.resolve = resolve
	}
}

// WithTracerProvider sets the provider of request and reconcile spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracer = tp
	}
}

// New creates a server around a fresh application named appID. An empty
// appID generates one.
func New(config *Config, appID string, opts ...Option) *Server {
	s := &Server{config: config.withDefaults()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "server")
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if s.resolve == nil {
		s.resolve = s.logHandler
	}

	container := dom.NewElement("div")
	container.SetAttribute("id", render.ContainerID)

	appOpts := []reconcile.Option{
		reconcile.WithLogger(s.logger),
		reconcile.WithWrapperTag(s.config.WrapperTag),
		reconcile.WithMetrics(reconcile.NewMetrics(s.registry, reconcile.WithNamespace(s.config.Namespace))),
	}
	if appID != "" {
		appOpts = append(appOpts, reconcile.WithID(appID))
	}
	if s.tracer != nil {
		appOpts = append(appOpts, reconcile.WithTracer(s.tracer.Tracer("vtree")))
	}
	s.app = reconcile.NewApp(container, appOpts...)

	s.hub = newHub(s.registry, s.config.Namespace, s.config.SendBuffer, s.config.WriteTimeout, s.logger)
	s.renderConfig = render.RendererConfig{Pretty: s.config.Pretty, WrapperTag: s.config.WrapperTag}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  s.config.ReadBufferSize,
		WriteBufferSize: s.config.WriteBufferSize,
		CheckOrigin:     s.config.CheckOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	otelOpts := []middleware.OTelOption{
		middleware.WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }),
	}
	if s.tracer != nil {
		otelOpts = append(otelOpts, middleware.WithTracerProvider(s.tracer))
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.OpenTelemetry(otelOpts...))
	r.Use(middleware.Prometheus(
		middleware.WithRegistry(s.registry),
		middleware.WithNamespace(s.config.Namespace),
	))

	r.Get("/", s.handlePage)
	r.Get("/tree", s.handleTree)
	r.Post("/render", s.handleRender)
	r.Post("/dispatch", s.handleDispatch)
	r.Get("/ws", s.handleWebSocket)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// App returns the reconciled application. Callers must not render through
// it directly, or mirrors fall out of sequence.
func (s *Server) App() *reconcile.App { return s.app }

// Hub returns the websocket fan-out.
func (s *Server) Hub() *Hub { return s.hub }

// Seq returns the sequence number of the last pass.
func (s *Server) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Pass is the outcome of one Render call.
type Pass struct {
	Seq    uint64
	Result *reconcile.Result
}

// Render reconciles next into the live tree, broadcasts the pass to every
// mirror and saves the snapshot. Patches that could not be applied are
// reported in Pass.Result.Diagnostics and also broadcast as an error frame.
// The returned error is only set when the snapshot could not be saved.
func (s *Server) Render(ctx context.Context, next *vdom.VNode) (*Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, diag := s.app.Render(ctx, next)
	s.seq++
	pass := &Pass{Seq: s.seq, Result: result}

	s.hub.Broadcast(protocol.NewPatchesFrame(&protocol.PatchesFrame{Seq: s.seq, Patches: result.Patches}).Encode())
	if diag != nil {
		s.hub.Broadcast(protocol.NewFrame(protocol.FrameError, []byte(diag.Error())).Encode())
	}

	if s.store == nil {
		return pass, nil
	}
	err := s.store.Save(ctx, &snapshot.Snapshot{
		AppID:   s.app.ID(),
		SavedAt: time.Now().UTC(),
		Tree:    next,
	})
	if err != nil {
		s.logger.Error("snapshot save failed", "error", err)
		return pass, err
	}
	return pass, nil
}

// Restore mounts the stored snapshot of the application, if the store has
// one. It reports whether a snapshot was restored.
func (s *Server) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	snap, err := s.store.Load(ctx, s.app.ID())
	if stderrors.Is(err, snapshot.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, diag := s.app.Render(ctx, snap.Tree); diag != nil {
		s.logger.Warn("restored snapshot did not apply cleanly", "error", diag)
	}
	s.seq++
	s.logger.Info("snapshot restored", "app", s.app.ID(), "saved_at", snap.SavedAt)
	return true, nil
}

// Dispatch delivers ev to the handlers on the live node at route and its
// ancestors. It reports whether any handler ran.
func (s *Server) Dispatch(route vdom.Route, ev *vdom.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := reconcile.ResolveByRoute(s.app.Root(), route)
	if err != nil {
		return false, err
	}
	return s.app.Dispatch(target, ev), nil
}

// logHandler is the default handler resolver: every named handler logs the
// event it receives.
func (s *Server) logHandler(name string) func(*vdom.Event) {
	return func(ev *vdom.Event) {
		s.logger.Info("handler", "name", name, "event", ev.Type, "value", ev.Value)
	}
}

// Run listens on the configured address until SIGINT or SIGTERM, then shuts
// down gracefully.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address, "app", s.app.ID())
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.New("E141").Wrap(err)
		}
		return nil
	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown disconnects every mirror and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.hub.Close()
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return errors.New("E141").Wrap(err)
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
