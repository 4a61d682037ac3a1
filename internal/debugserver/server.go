// Package debugserver exposes metrics and the latest streaming status over
// HTTP while the engine runs.
package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"voxstream/internal/debugmap"
	"voxstream/internal/scene"
	"voxstream/internal/streaming"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second
)

// Status is the engine state published once per tick.
type Status struct {
	Tick     uint64         `json:"tick"`
	Position [3]float32     `json:"position"`
	Chunks   streaming.Stats `json:"chunks"`
	Props    streaming.Stats `json:"props"`
	World    scene.Stats    `json:"world"`
	Workers  map[string]int `json:"workers_alive"`
	TopN     string         `json:"profile,omitempty"`

	ChunkMap streaming.Snapshot[streaming.Key] `json:"-"`
}

// Server wraps the chi router and the last published status.
type Server struct {
	router *chi.Mux
	logger *slog.Logger
	addr   string

	mu     sync.RWMutex
	status Status
	have   bool

	http *http.Server
}

func New(addr string, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		addr:   addr,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metricsMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", metricsHandler())
	s.router.Route("/debug", func(r chi.Router) {
		r.Get("/streaming", s.handleStatus)
		r.Get("/map.png", s.handleMap)
	})
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Publish replaces the status served by the debug endpoints. Safe to call
// from the tick goroutine while requests are in flight.
func (s *Server) Publish(st Status) {
	s.mu.Lock()
	s.status = st
	s.have = true
	s.mu.Unlock()
}

func (s *Server) current() (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.have
}

// Start listens on the configured address and serves in the background. It
// returns once the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("debugserver: listen %s: %w", s.addr, err)
	}
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	s.logger.Info("debug server listening", "addr", ln.Addr().String())
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debug server stopped", "error", err)
		}
	}()
	return nil
}

// Shutdown stops the server if it was started.
func (s *Server) Shutdown() error {
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("debugserver: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st, ok := s.current()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no tick yet"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	st, ok := s.current()
	if !ok {
		http.Error(w, "no tick yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := debugmap.WritePNG(w, st.ChunkMap, debugmap.Options{Title: "chunks"}); err != nil {
		s.logger.Warn("map encode failed", "error", err)
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
