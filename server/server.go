package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/adrianliechti/t101/config"
	"github.com/adrianliechti/t101/pkg/otel"
	"github.com/adrianliechti/t101/server/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	*config.Config
	http.Handler

	logger *slog.Logger
}

func New(cfg *config.Config) (*Server, error) {
	handler, err := api.New(cfg)

	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	s := &Server{
		Config:  cfg,
		Handler: r,

		logger: slog.Default().With("component", "server"),
	}

	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			"X-Cache",
			"Retry-After",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: !slices.Contains(cfg.CORSOrigins, "*"),
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		handler.Attach(r)
	})

	if otel.EnableTelemetry {
		s.Handler = otelhttp.NewHandler(r, "t101",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}

	return s, nil
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	jobs, err := s.schedule()

	if err != nil {
		return err
	}

	jobs.Start()
	defer jobs.Stop()

	srv := &http.Server{
		Addr:    s.Address(),
		Handler: s,

		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)

	go func() {
		s.logger.Info("server listening", "address", srv.Addr, "env", s.Env)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err

	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// schedule registers maintenance jobs: error log pruning and sweeps of
// expired rate-limit entries and sessions.
func (s *Server) schedule() (*cron.Cron, error) {
	logger := s.logger

	if logger == nil {
		logger = slog.Default()
	}

	// a panicking job is logged and the scheduler keeps running
	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))),
	))

	if s.ErrorLog != nil {
		if _, err := c.AddFunc("@daily", s.pruneErrorLogs); err != nil {
			return nil, err
		}
	}

	if _, err := c.AddFunc("@every 1m", s.sweep); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Server) pruneErrorLogs() {
	removed, err := s.ErrorLog.Prune(s.LogRetention())

	if err != nil {
		s.logger.Error("failed to prune error logs", "error", err)
	}

	if removed > 0 {
		s.logger.Info("pruned error logs", "removed", removed)
	}
}

func (s *Server) sweep() {
	var removed int

	for _, w := range s.Windows() {
		if w != nil {
			removed += w.Sweep()
		}
	}

	if s.Sessions != nil {
		removed += s.Sessions.Sweep()
	}

	if removed > 0 {
		s.logger.Debug("swept expired entries", "removed", removed)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				s.logger.Error("panic while handling request", "path", r.URL.Path, "panic", rec)

				if s.ErrorLog != nil {
					s.ErrorLog.Logger().Error("panic while handling request", "method", r.Method, "path", r.URL.Path, "panic", rec)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"success":false,"error":{"message":"internal server error","code":"INTERNAL_ERROR","status":500}}`))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
