package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rangekv/pkg/cluster"
	"rangekv/pkg/kverrors"
	"rangekv/pkg/workpool"
)

const (
	contentTypeJSON        = "application/json"
	defaultHTTPPort        = "8080"
	defaultShutdownTimeout = time.Second * 5
)

// iRouter is the routing surface the server needs.
type iRouter interface {
	Route(ctx context.Context, key []byte, op cluster.Operation) (string, error)
	Serve(ctx context.Context, req cluster.RouteRequest) (string, error)
}

// iPool runs inbound hops; one task per forwarded request.
type iPool interface {
	Submit(task workpool.Task) (<-chan workpool.Result, error)
}

// Server is the node's HTTP face: a small client API for string keys, and
// the internal hop endpoint peers forward routing requests to.
type Server struct {
	router     iRouter
	pool       iPool
	httpServer *http.Server
	URL        string
	addr       string
}

// NewServer creates a new server instance.
func NewServer(router iRouter, pool iPool, port string) *Server {
	if port == "" {
		port = defaultHTTPPort
	}
	return &Server{
		router: router,
		pool:   pool,
		URL:    "http://localhost:" + port,
		addr:   ":" + port,
	}
}

// Start starts the server.
func (s *Server) Start() error {
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop stops the server.
func (s *Server) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}
	return nil
}

// createRouter builds chi router
func (s *Server) createRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Put("/api/string", s.handlePut)
	r.Get("/api/string", s.handleGet)
	r.Delete("/api", s.handleDelete)

	r.Post("/api/internal/route", s.handleRoute)

	return r
}

func (s *Server) startHTTPServer() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.createRouter(),
		ReadHeaderTimeout: time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("HTTP server started", "addr", s.URL)
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Error encoding response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewOKResponse())
}

// handleRoute serves one forwarded hop: decode the request, run it through
// this node's router on the worker pool, reply with the classified result.
// The submitting peer blocks on this response, so every outcome, including
// pool saturation, must come back as a classified error rather than a hang.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req cluster.RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeRouteErr(w, fmt.Errorf("decode route request: %w: %v", kverrors.ErrInvalidArgument, err))
		return
	}

	ctx := r.Context()
	res, err := s.pool.Submit(func() (string, error) {
		return s.router.Serve(ctx, req)
	})
	if err != nil {
		s.writeRouteErr(w, err)
		return
	}

	select {
	case out := <-res:
		if out.Err != nil {
			s.writeRouteErr(w, out.Err)
			return
		}
		s.writeJSON(w, http.StatusOK, cluster.RouteResponse{
			Status: "success",
			Value:  out.Value,
		})
	case <-ctx.Done():
		// client gave up; the worker still finishes into its buffered chan
		s.writeRouteErr(w, fmt.Errorf("hop abandoned: %w", kverrors.ErrDispatchTimeout))
	}
}

func (s *Server) writeRouteErr(w http.ResponseWriter, err error) {
	kind := cluster.KindOf(err)
	s.writeJSON(w, statusFor(kind), cluster.RouteResponse{
		Status: "error",
		Error:  err.Error(),
		Kind:   kind,
	})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Failed to parse form"))
		return
	}

	key := r.FormValue("key")
	value := r.FormValue("value")

	if key == "" || value == "" {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Missing key or value"))
		return
	}

	op := cluster.Operation{Name: cluster.OpPut, Args: []string{value}}
	if _, err := s.router.Route(r.Context(), []byte(key), op); err != nil {
		s.writeJSON(w, statusFor(cluster.KindOf(err)), NewErrorResponse(err.Error()))
		return
	}

	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Missing key"))
		return
	}

	op := cluster.Operation{Name: cluster.OpGet}
	value, err := s.router.Route(r.Context(), []byte(key), op)
	if err != nil {
		if errors.Is(err, kverrors.ErrNotFound) {
			s.writeJSON(w, http.StatusNotFound, NewErrorResponse("Key not found"))
			return
		}
		s.writeJSON(w, statusFor(cluster.KindOf(err)), NewErrorResponse(err.Error()))
		return
	}

	s.writeJSON(w, http.StatusOK, NewValueResponse(value))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Missing key"))
		return
	}

	op := cluster.Operation{Name: cluster.OpDelete}
	if _, err := s.router.Route(r.Context(), []byte(key), op); err != nil {
		s.writeJSON(w, statusFor(cluster.KindOf(err)), NewErrorResponse(err.Error()))
		return
	}

	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}
