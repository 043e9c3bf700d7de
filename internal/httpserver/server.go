// Package httpserver exposes the message dispatcher over local HTTP so a
// browser extension can reach it.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nikbrunner/sbm/internal/config"
	"github.com/nikbrunner/sbm/internal/httpserver/mw"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/messaging"
)

// maxMessageBytes bounds a message body; getMetadata may carry a full page.
const maxMessageBytes = 8 << 20

// Dispatcher handles one decoded message.
type Dispatcher interface {
	Handle(ctx context.Context, req messaging.Request) messaging.Response
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http            *http.Server
	logger          logger.Logger
	shutdownTimeout time.Duration
}

// New builds the router and server.
func New(cfg config.ServerConfig, d Dispatcher, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &http.Server{
		Addr:              cfg.Listen,
		Handler:           Router(cfg, d, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return &Server{http: s, logger: log, shutdownTimeout: cfg.ShutdownTimeout}
}

// Router returns the bridge's handler tree.
func Router(cfg config.ServerConfig, d Dispatcher, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mw.Log(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", health)
	r.Group(func(r chi.Router) {
		if bucket := mw.NewBucket(cfg.RateLimit, cfg.Burst); bucket != nil {
			r.Use(mw.RateLimit(bucket))
		}
		r.Post("/api/message", message(d))
	})
	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func message(d Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messaging.Request
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes))
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, messaging.Response{
				Status: messaging.StatusError,
				Error:  "invalid message: " + err.Error(),
			})
			return
		}
		// Action failures are part of the reply, not the transport.
		writeJSON(w, http.StatusOK, d.Handle(r.Context(), req))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("HTTP bridge listening on %s", l.Addr())
		errCh <- s.http.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("HTTP bridge shutting down")
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}
