package pagekit

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	clientdist "github.com/pagekit-dev/pagekit/client/dist"
	"github.com/pagekit-dev/pagekit/internal/config"
	"github.com/pagekit-dev/pagekit/pkg/growl"
	"github.com/pagekit-dev/pagekit/pkg/live"
	"github.com/pagekit-dev/pagekit/pkg/middleware"
	"github.com/pagekit-dev/pagekit/pkg/scrolltop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// App Type
// =============================================================================

// App serves the demo page, the thin client and live sessions, and wires the
// page components onto every connected page.
//
//	cfg, _ := config.LoadOrDefault("pagekit.json")
//	app := pagekit.NewApp(cfg)
//	app.Run(ctx)
type App struct {
	config *config.Config
	logger *slog.Logger

	hub     *live.Hub
	metrics *middleware.Metrics

	registry       *prometheus.Registry
	tracerProvider trace.TracerProvider

	index  *template.Template
	router chi.Router
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRegistry sets the Prometheus registry metrics are registered with and
// served from.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(a *App) {
		if registry != nil {
			a.registry = registry
		}
	}
}

// WithTracerProvider sets the tracer provider used for banner spans.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *App) {
		a.tracerProvider = tp
	}
}

// NewApp creates an App from cfg. A nil cfg uses config defaults.
func NewApp(cfg *config.Config, opts ...Option) *App {
	if cfg == nil {
		cfg = config.New()
	}

	a := &App{
		config:   cfg,
		logger:   slog.Default(),
		hub:      live.NewHub(),
		registry: prometheus.NewRegistry(),
		index:    template.Must(template.New("index").Parse(clientdist.IndexHTML)),
	}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.MetricsEnabled() {
		a.metrics = middleware.NewMetrics(
			middleware.WithRegistry(a.registry),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)
	}

	a.router = a.routes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Hub returns the registry of connected pages.
func (a *App) Hub() *live.Hub {
	return a.hub
}

func (a *App) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/", a.handleIndex)
	r.Get("/pagekit.js", a.handleClient)
	r.Get("/healthz", a.handleHealth)
	r.Handle(a.config.Live.Path, a.liveHandler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/notify", a.handleNotify)
		r.Post("/nl2br", a.handleNL2BR)
		r.Post("/br2nl", a.handleBR2NL)
	})

	if a.metrics != nil {
		r.Handle(a.config.Metrics.Path, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// =============================================================================
// Live Sessions
// =============================================================================

func (a *App) liveHandler() http.Handler {
	lc := live.Config{
		ReadTimeout:       a.config.ReadTimeout(),
		WriteTimeout:      a.config.WriteTimeout(),
		HeartbeatInterval: a.config.Heartbeat(),
		MaxMessageSize:    a.config.Live.MaxMessageSize,
		Logger:            a.logger,
	}

	var opts []live.HandlerOption
	if origins := a.config.Live.AllowedOrigins; len(origins) > 0 {
		allowed := make(map[string]bool, len(origins))
		for _, o := range origins {
			allowed[o] = true
		}
		opts = append(opts, live.WithCheckOrigin(func(r *http.Request) bool {
			return allowed[r.Header.Get("Origin")]
		}))
	}

	return live.NewHandler(a.hub, lc, a.setupSession, opts...)
}

// setupSession attaches the scroll-to-top control to a newly connected page.
func (a *App) setupSession(s *live.Session) func() {
	var (
		ctlOpts = []scrolltop.Option{scrolltop.WithLogger(a.logger)}
		events  scrolltop.Events = s
	)
	if a.metrics != nil {
		a.metrics.SessionStarted()
		ctlOpts = append(ctlOpts, scrolltop.WithOnChange(a.metrics.ObserveScroll))
		events = a.metrics.Events(s)
	}

	detach := scrolltop.New(s, ctlOpts...).Attach(events)

	return func() {
		detach()
		if a.metrics != nil {
			a.metrics.SessionEnded()
		}
	}
}

// Notifier returns a Notifier that renders banners on the page behind s.
func (a *App) Notifier(s *live.Session) *growl.Notifier {
	var sink growl.Sink = growl.EmitSink(s)

	sink = middleware.Trace(sink,
		middleware.WithTracerName(a.config.Tracing.TracerName),
		middleware.WithTracerProvider(a.tracerProvider),
		middleware.WithIncludeMessage(a.config.Tracing.IncludeMessage),
		middleware.WithAttributeExtractor(sessionAttributes(s)),
	)
	if a.metrics != nil {
		sink = a.metrics.Sink(sink)
	}

	return growl.New(sink, growl.WithLogger(a.logger.With("session_id", s.ID)))
}

// Broadcast shows a banner on every connected page and returns how many
// pages it reached.
func (a *App) Broadcast(ctx context.Context, message string, severity growl.Severity) int {
	delivered := 0
	a.hub.Each(func(s *live.Session) {
		if err := a.Notifier(s).NotifyContext(ctx, message, severity); err != nil {
			a.logger.Warn("broadcast failed",
				"session_id", s.ID,
				"error", err)
			return
		}
		delivered++
	})
	return delivered
}

// =============================================================================
// Server Lifecycle
// =============================================================================

// Run serves the App on the configured address until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.Address(),
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", "sessions", a.hub.Len())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
