// Package devserver is a small reference backend for the todo REST contract:
//
//	GET    /todos        list tasks, newest first
//	POST   /todos        create a task from {"text": "..."}
//	DELETE /todos/{id}   delete a task
//
// It backs "retrotodo serve" and serves as a real backend in tests.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// Server serves the todo routes from a Store.
type Server struct {
	store  Store
	logger *log.Logger
	router *mux.Router
}

// New builds a server over store. A nil logger discards output.
func New(store Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{store: store, logger: logger, router: mux.NewRouter().UseEncodedPath()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/todos", s.listTodos).Methods(http.MethodGet)
	s.router.HandleFunc("/todos", s.createTodo).Methods(http.MethodPost)
	s.router.HandleFunc("/todos/{id}", s.deleteTodo).Methods(http.MethodDelete)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("serving todos", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list todos", "err", err)
		s.respondError(w, "failed to list todos", http.StatusInternalServerError)
		return
	}
	s.respondJSON(w, tasks, http.StatusOK)
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		s.respondError(w, "text is required", http.StatusBadRequest)
		return
	}

	t, err := s.store.Create(r.Context(), text)
	if err != nil {
		s.logger.Error("create todo", "err", err)
		s.respondError(w, "failed to create todo", http.StatusInternalServerError)
		return
	}
	s.respondJSON(w, t, http.StatusCreated)
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	// Routes match the encoded path, so an id may carry an escaped "/".
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, "invalid todo id", http.StatusBadRequest)
		return
	}
	err = s.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		s.respondError(w, "todo not found", http.StatusNotFound)
	case err != nil:
		s.logger.Error("delete todo", "id", id, "err", err)
		s.respondError(w, "failed to delete todo", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, msg string, status int) {
	s.respondJSON(w, map[string]string{"error": msg}, status)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
