package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/dependents"
	"github.com/aretw0/dependents/internal/sanitize"
	"github.com/aretw0/dependents/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a dependency graph over HTTP.
type Server struct {
	Graph    *domain.Graph
	Engine   *dependents.Engine
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
}

// Option configures the server.
type Option func(*Server)

// WithEngine sets the engine used to evaluate requests.
func WithEngine(e *dependents.Engine) Option {
	return func(s *Server) {
		if e != nil {
			s.Engine = e
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.Logger = l
		}
	}
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// SolveRequest is the body of POST /solve.
type SolveRequest struct {
	// Targets are the node keys to solve, in order.
	Targets []string `json:"targets"`
	// Values seed the cache. Seeded keys are never invoked.
	Values map[string]any `json:"values,omitempty"`
	// Context maps a node key to the key of the node substituting it.
	Context map[string]string `json:"context,omitempty"`
}

// SolveResponse is the body returned by POST /solve.
type SolveResponse struct {
	Values map[string]any `json:"values"`
}

// NodesResponse lists node keys.
type NodesResponse struct {
	Nodes []string `json:"nodes"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates a new HTTP handler for graph.
func NewHandler(graph *domain.Graph, opts ...Option) http.Handler {
	s := &Server{
		Graph:  graph,
		Engine: dependents.New(),
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/nodes", s.ListNodes)
	r.Post("/solve", s.Solve)
	r.Route("/nodes/{name}", func(r chi.Router) {
		r.Get("/expand", s.Expand)
		r.Get("/dig", s.Dig)
		r.Get("/draw", s.Draw)
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "dependents-http",
		"version": strings.TrimSpace(dependents.Version),
		"nodes":   s.Graph.Len(),
	})
}

// ListNodes handles the GET /nodes request.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NodesResponse{Nodes: s.Graph.Keys()})
}

// Solve handles the POST /solve request.
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	var body SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := sanitize.Values(body.Values); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid values: %w", err))
		return
	}
	if len(body.Targets) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("no targets"))
		return
	}

	targets, err := s.Graph.Lookup(body.Targets...)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	cctx, err := s.Graph.Substitutions(body.Context)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	cache := domain.NewCache()
	for k, v := range body.Values {
		cache[k] = v
	}

	seq, err := s.Engine.SolveAll(r.Context(), targets, dependents.WithContext(cctx), dependents.WithCache(cache))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	resp := SolveResponse{Values: make(map[string]any, len(targets))}
	i := 0
	for v, err := range seq {
		if err != nil {
			s.Logger.Warn("Solve failed", "target", body.Targets[i], "error", err)
			s.writeError(w, statusFor(err), err)
			return
		}
		resp.Values[body.Targets[i]] = v
		i++
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// Expand handles the GET /nodes/{name}/expand request.
func (s *Server) Expand(w http.ResponseWriter, r *http.Request) {
	s.traverse(w, r, s.Engine.Expand)
}

// Dig handles the GET /nodes/{name}/dig request.
func (s *Server) Dig(w http.ResponseWriter, r *http.Request) {
	s.traverse(w, r, s.Engine.Dig)
}

// Draw handles the GET /nodes/{name}/draw request.
func (s *Server) Draw(w http.ResponseWriter, r *http.Request) {
	node, opts, ok := s.target(w, r)
	if !ok {
		return
	}
	out, err := s.Engine.Draw(node, opts...)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

type traversal func([]domain.Dependent, ...dependents.CallOption) (iter.Seq[domain.Dependent], error)

func (s *Server) traverse(w http.ResponseWriter, r *http.Request, fn traversal) {
	node, opts, ok := s.target(w, r)
	if !ok {
		return
	}
	seq, err := fn([]domain.Dependent{node}, opts...)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	resp := NodesResponse{Nodes: []string{}}
	for d := range seq {
		resp.Nodes = append(resp.Nodes, d.Key())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// target resolves the {name} parameter and the query options shared by the
// traversal endpoints: seen=k1,k2 and context=key:substitute,...
func (s *Server) target(w http.ResponseWriter, r *http.Request) (domain.Dependent, []dependents.CallOption, bool) {
	name := chi.URLParam(r, "name")
	node, ok := s.Graph.Get(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", domain.ErrUnknownNode, name))
		return nil, nil, false
	}

	mapping := map[string]string{}
	for _, pair := range splitList(r.URL.Query().Get("context")) {
		key, sub, found := strings.Cut(pair, ":")
		if !found {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid context entry %q, want key:substitute", pair))
			return nil, nil, false
		}
		mapping[strings.TrimSpace(key)] = strings.TrimSpace(sub)
	}
	cctx, err := s.Graph.Substitutions(mapping)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return nil, nil, false
	}

	opts := []dependents.CallOption{
		dependents.WithContext(cctx),
		dependents.WithSeen(domain.NewSeen(splitList(r.URL.Query().Get("seen"))...)),
	}
	return node, opts, true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, domain.ErrDependencyLoop),
		errors.Is(err, domain.ErrInvalidNode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
