// Package server wires the module handlers into one chi router and owns
// the HTTP lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/config"
	"github.com/quantdesk/terminal/pkg/logger"
)

// requestTimeout bounds handler execution, SSE excepted.
const requestTimeout = 60 * time.Second

// Mounter registers a module's routes on a sub-router.
type Mounter interface {
	Routes(r chi.Router)
}

// Modules are the route groups mounted under /api.
type Modules struct {
	Orders    Mounter
	Backtests Mounter
	Options   Mounter
	Portfolio Mounter
	Social    Mounter
	Ticker    Mounter
}

// Server is the terminal HTTP server.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        zerolog.Logger
}

// New creates the server and mounts all routes.
func New(cfg *config.Config, modules Modules, system *SystemHandler, stream *StreamHandler, log zerolog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    logger.ForComponent(log, "server"),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/api", func(r chi.Router) {
		// The event stream stays open, so the timeout wraps only the rest.
		r.Get("/events/stream", stream.HandleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/system/status", system.HandleStatus)
			r.Route("/orders", modules.Orders.Routes)
			r.Route("/backtests", modules.Backtests.Routes)
			r.Route("/options", modules.Options.Routes)
			r.Route("/portfolio", modules.Portfolio.Routes)
			r.Route("/social", modules.Social.Routes)
			r.Route("/ticker", modules.Ticker.Routes)
		})
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// allowedOrigins is permissive in dev mode where the UI dev server runs on
// its own port.
func allowedOrigins(cfg *config.Config) []string {
	if cfg.DevMode {
		return []string{"*"}
	}
	return []string{
		fmt.Sprintf("http://localhost:%d", cfg.Port),
		fmt.Sprintf("http://127.0.0.1:%d", cfg.Port),
	}
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
