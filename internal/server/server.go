// ABOUTME: Server orchestrator that wires store, auth, API, admin pages and metrics onto one HTTP server
// ABOUTME: Manages listener setup, health endpoints and graceful shutdown

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/2389/nubarmory/internal/api"
	"github.com/2389/nubarmory/internal/assets"
	"github.com/2389/nubarmory/internal/auth"
	"github.com/2389/nubarmory/internal/config"
	"github.com/2389/nubarmory/internal/edge"
	"github.com/2389/nubarmory/internal/metrics"
	"github.com/2389/nubarmory/internal/ratelimit"
	"github.com/2389/nubarmory/internal/store"
	"github.com/2389/nubarmory/internal/webadmin"
)

// readyTimeout bounds the store ping behind /ready.
const readyTimeout = 2 * time.Second

// Server orchestrates the nubarmory server components.
type Server struct {
	config     *config.Config
	store      store.Store
	httpServer *http.Server
	redis      *ratelimit.Client
	metrics    *metrics.Manager
	logger     *slog.Logger
}

// New creates a new Server with the given configuration. The secret is read
// from cfg once and injected into the codecs.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s, err := store.OpenSQLiteStoreWithLogger(cfg.Database.Driver, cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	srv, err := newWithStore(cfg, s, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return srv, nil
}

func newWithStore(cfg *config.Config, s store.Store, logger *slog.Logger) (*Server, error) {
	srv := &Server{
		config: cfg,
		store:  s,
		logger: logger.With("component", "server"),
	}

	issuer, verifier, err := buildCodecs(cfg, logger)
	if err != nil {
		return nil, err
	}

	apiCfg := api.Config{
		Authenticator: auth.NewAuthenticator(s, logger),
		Issuer:        issuer,
		Verifier:      verifier,
		Store:         s,
		Cookie: auth.CookieOptions{
			Secure: cfg.Auth.CookieSecure(),
			MaxAge: cfg.Auth.TokenTTL,
		},
		Logger: logger,
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		srv.metrics = metrics.NewManager("nubarmory", "server", reg)
		apiCfg.Observer = srv.metrics
	}

	if cfg.RateLimit.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := ratelimit.Dial(ctx, cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, cfg.RateLimit.RedisDB)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("connecting rate limiter: %w", err)
		}
		srv.redis = client
		apiCfg.Limiter = client.Limiter(cfg.RateLimit.LoginPerMinute, logger)
		srv.logger.Info("login rate limiting enabled", "per_minute", cfg.RateLimit.LoginPerMinute)
	}

	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("GET /health", srv.handleHealth)
	mux.HandleFunc("GET /ready", srv.handleReady)
	if srv.metrics != nil {
		mux.Handle("GET "+cfg.Metrics.Path, srv.metrics.Handler())
	}

	mux.Handle("GET "+assets.Prefix, http.StripPrefix(assets.Prefix, assets.FileServer()))

	api.New(apiCfg).RegisterRoutes(mux)

	webadmin.New(webadmin.Config{
		Verifier: verifier,
		Store:    s,
		Logger:   logger,
	}).RegisterRoutes(mux)

	handler := edge.Middleware(logger)(mux)
	if srv.metrics != nil {
		handler = metrics.RequestMetrics(srv.metrics)(handler)
	}

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// buildCodecs returns the issuer used by login and the verifier used by the
// route guards. Login always issues with the full codec; the verifier follows
// auth.verifier.
func buildCodecs(cfg *config.Config, logger *slog.Logger) (auth.Issuer, auth.Verifier, error) {
	secret := []byte(cfg.Auth.JWTSecret)
	opts := []auth.Option{auth.WithTTL(cfg.Auth.TokenTTL), auth.WithLogger(logger)}

	full, err := auth.NewJWTCodec(secret, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating token codec: %w", err)
	}

	switch cfg.Auth.Verifier {
	case config.VerifierEdge:
		edgeCodec, err := auth.NewEdgeCodec(secret, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("creating edge token codec: %w", err)
		}
		return full, edgeCodec, nil
	default:
		return full, full, nil
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// startServer starts the HTTP server in a goroutine, returning error channel.
func (s *Server) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
}

// Run listens on server.http_addr and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		_ = s.closeResources()
		return fmt.Errorf("listening on HTTP address: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on an existing listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "http_addr", ln.Addr().String(), "verifier", s.config.Auth.Verifier)

	errCh := s.startServer(ln)
	serverErr := s.waitForShutdownSignal(ctx, errCh)

	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() since the original context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server and releases the store and redis connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))
	if err := s.closeResources(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (s *Server) closeResources() error {
	var errs []error
	if s.redis != nil {
		errs = appendCloseError(errs, "redis close", s.redis.Close())
	}
	errs = appendCloseError(errs, "store close", s.store.Close())
	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK if the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
