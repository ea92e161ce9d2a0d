// Package server exposes the storefront chat assistant over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NelaStaffing/hardware-store-bot/agent"
	"github.com/NelaStaffing/hardware-store-bot/core"
	"github.com/NelaStaffing/hardware-store-bot/monitor"
	"github.com/NelaStaffing/hardware-store-bot/server/store"
	"github.com/NelaStaffing/hardware-store-bot/tools"
)

// Responder runs one chat turn.
type Responder interface {
	Respond(ctx context.Context, history []core.Message, message string) (*agent.Turn, error)
}

// Config configures a new Server instance.
type Config struct {
	Agent    Responder
	Resolver tools.Resolver
	Registry *tools.Registry
	Sessions store.SessionStore
	Traces   store.TraceStore
	Preview  store.PreviewStore // Optional: defaults to an in-memory store
	Totals   *monitor.Totals    // Optional

	Model           string
	RateLimitPerMin int
	RateLimitBurst  int
	TurnTimeout     time.Duration // Zero disables the per-turn deadline
	TrustProxy      bool          // Take the client address from X-Forwarded-For
}

// Server is the HTTP front end of the assistant.
type Server struct {
	agent       Responder
	resolver    tools.Resolver
	registry    *tools.Registry
	sessions    store.SessionStore
	traces      store.TraceStore
	preview     store.PreviewStore
	totals      *monitor.Totals
	limiter     *ipLimiter
	model       string
	turnTimeout time.Duration
	trustProxy  bool

	stop context.CancelFunc
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Agent == nil || cfg.Resolver == nil || cfg.Registry == nil {
		return nil, fmt.Errorf("%w: server needs an agent, a resolver and a tool registry", core.ErrInvalidConfig)
	}
	if cfg.Sessions == nil || cfg.Traces == nil {
		return nil, fmt.Errorf("%w: server needs session and trace stores", core.ErrInvalidConfig)
	}

	preview := cfg.Preview
	if preview == nil {
		preview = store.NewMemoryPreviewStore()
	}
	totals := cfg.Totals
	if totals == nil {
		totals = monitor.NewTotals()
	}
	model := cfg.Model
	if model == "" {
		model = core.DefaultModel
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		agent:       cfg.Agent,
		resolver:    cfg.Resolver,
		registry:    cfg.Registry,
		sessions:    cfg.Sessions,
		traces:      cfg.Traces,
		preview:     preview,
		totals:      totals,
		limiter:     newIPLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst),
		model:       model,
		turnTimeout: cfg.TurnTimeout,
		trustProxy:  cfg.TrustProxy,
		stop:        cancel,
	}
	go s.limiter.run(ctx)
	return s, nil
}

// Close stops background work and releases the preview store.
func (s *Server) Close() error {
	s.stop()
	if err := s.preview.Close(); err != nil {
		return fmt.Errorf("close preview store: %w", err)
	}
	return nil
}

// Handler returns an http.Handler for the API routes.
// All routes are prefixed with /api/.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/tools", s.handleTools)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/sessions/{id}/messages", s.handleSessionMessages)

	mux.HandleFunc("POST /api/setPreviewSku", s.handleSetPreviewSku)
	mux.HandleFunc("GET /api/getPreviewSku", s.handleGetPreviewSku)
	mux.HandleFunc("GET /api/product/{sku}", s.handleProduct)
	mux.HandleFunc("POST /api/openProductDetail", s.handleOpenProductDetail)

	mux.HandleFunc("GET /api/traces", s.handleTraceList)
	mux.HandleFunc("GET /api/traces/{id}", s.handleTraceGet)
	mux.HandleFunc("DELETE /api/traces/{id}", s.handleTraceDelete)
	mux.HandleFunc("GET /api/metrics/summary", s.handleMetricsSummary)

	return corsMiddleware(mux)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to grace.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
