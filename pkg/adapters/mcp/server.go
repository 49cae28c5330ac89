package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/dependents"
	"github.com/aretw0/dependents/internal/sanitize"
	"github.com/aretw0/dependents/pkg/domain"
	"github.com/aretw0/dependents/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI names the resource exposing the graph definition.
const GraphURI = "dependents://graph"

// ToolArgs are the arguments shared by the graph tools.
// List and mapping arguments are strings so any MCP client can fill them.
type ToolArgs struct {
	// Nodes is a comma separated list of node names.
	Nodes string `json:"nodes"`
	// Context is a JSON object mapping keys to substitute node names.
	Context string `json:"context,omitempty"`
	// Values is a JSON object of known values seeding the cache.
	Values string `json:"values,omitempty"`
	// Seen is a comma separated list of keys treated as already visited.
	Seen string `json:"seen,omitempty"`
}

// SolveResult is the output of the solve tool.
type SolveResult struct {
	Values map[string]any `json:"values" jsonschema_description:"Solved value per node"`
}

// NodesResult is the output of the expand and dig tools.
type NodesResult struct {
	Nodes []string `json:"nodes" jsonschema_description:"Node keys in traversal order"`
}

// DrawResult is the output of the draw tool.
type DrawResult struct {
	Tree string `json:"tree" jsonschema_description:"Indented dependency tree"`
}

// Server exposes a graph as an MCP server.
type Server struct {
	engine    *dependents.Engine
	graph     *domain.Graph
	def       *schema.Definition
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server for graph. def is served as the graph
// resource and may be nil.
func NewServer(engine *dependents.Engine, graph *domain.Graph, def *schema.Definition) *Server {
	if engine == nil {
		engine = dependents.New()
	}
	s := &Server{
		engine:    engine,
		graph:     graph,
		def:       def,
		mcpServer: server.NewMCPServer("dependents-mcp", strings.TrimSpace(dependents.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	nodes := mcp.WithString("nodes", mcp.Required(), mcp.Description("Comma separated node names"))
	substitutes := mcp.WithString("context", mcp.Description(`JSON object mapping keys to substitute node names, e.g. {"d": "d2"}`))
	seen := mcp.WithString("seen", mcp.Description("Comma separated keys treated as already visited"))

	s.mcpServer.AddTool(mcp.NewTool("solve",
		mcp.WithDescription("Compute the value of one or more nodes against one shared cache."),
		nodes, substitutes,
		mcp.WithString("values", mcp.Description("JSON object of known values, e.g. datasource inputs")),
		mcp.WithOutputSchema[SolveResult](),
	), mcp.NewStructuredToolHandler(s.handleSolve))

	s.mcpServer.AddTool(mcp.NewTool("expand",
		mcp.WithDescription("List every node reachable from the given nodes, each once, in depth-first order."),
		nodes, substitutes, seen,
		mcp.WithOutputSchema[NodesResult](),
	), mcp.NewStructuredToolHandler(s.handleExpand))

	s.mcpServer.AddTool(mcp.NewTool("dig",
		mcp.WithDescription("List the leaves the given nodes ultimately depend on."),
		nodes, substitutes, seen,
		mcp.WithOutputSchema[NodesResult](),
	), mcp.NewStructuredToolHandler(s.handleDig))

	s.mcpServer.AddTool(mcp.NewTool("draw",
		mcp.WithDescription("Render the dependency tree of one node."),
		nodes, substitutes, seen,
		mcp.WithOutputSchema[DrawResult](),
	), mcp.NewStructuredToolHandler(s.handleDraw))
}

func (s *Server) handleSolve(ctx context.Context, _ mcp.CallToolRequest, args ToolArgs) (SolveResult, error) {
	names, targets, opts, err := s.resolve(args)
	if err != nil {
		return SolveResult{}, err
	}

	cache := domain.NewCache()
	if args.Values != "" {
		var values map[string]any
		if err := json.Unmarshal([]byte(args.Values), &values); err != nil {
			return SolveResult{}, fmt.Errorf("invalid values: %w", err)
		}
		if err := sanitize.Values(values); err != nil {
			return SolveResult{}, fmt.Errorf("invalid values: %w", err)
		}
		for k, v := range values {
			cache[k] = v
		}
	}
	opts = append(opts, dependents.WithCache(cache))

	seq, err := s.engine.SolveAll(ctx, targets, opts...)
	if err != nil {
		return SolveResult{}, err
	}

	result := SolveResult{Values: make(map[string]any, len(names))}
	i := 0
	for v, err := range seq {
		if err != nil {
			return SolveResult{}, fmt.Errorf("solve %s failed: %w", names[i], err)
		}
		result.Values[names[i]] = v
		i++
	}
	return result, nil
}

func (s *Server) handleExpand(ctx context.Context, _ mcp.CallToolRequest, args ToolArgs) (NodesResult, error) {
	return s.traverse(args, s.engine.Expand)
}

func (s *Server) handleDig(ctx context.Context, _ mcp.CallToolRequest, args ToolArgs) (NodesResult, error) {
	return s.traverse(args, s.engine.Dig)
}

func (s *Server) handleDraw(ctx context.Context, _ mcp.CallToolRequest, args ToolArgs) (DrawResult, error) {
	_, targets, opts, err := s.resolve(args)
	if err != nil {
		return DrawResult{}, err
	}
	if len(targets) != 1 {
		return DrawResult{}, fmt.Errorf("draw takes exactly one node, got %d", len(targets))
	}
	tree, err := s.engine.Draw(targets[0], opts...)
	if err != nil {
		return DrawResult{}, err
	}
	return DrawResult{Tree: tree}, nil
}

type traversal func([]domain.Dependent, ...dependents.CallOption) (iter.Seq[domain.Dependent], error)

func (s *Server) traverse(args ToolArgs, fn traversal) (NodesResult, error) {
	_, targets, opts, err := s.resolve(args)
	if err != nil {
		return NodesResult{}, err
	}
	seq, err := fn(targets, opts...)
	if err != nil {
		return NodesResult{}, err
	}
	result := NodesResult{Nodes: []string{}}
	for d := range seq {
		result.Nodes = append(result.Nodes, d.Key())
	}
	return result, nil
}

// resolve looks up the requested nodes and builds the context and seen options.
func (s *Server) resolve(args ToolArgs) ([]string, []domain.Dependent, []dependents.CallOption, error) {
	names := splitList(args.Nodes)
	if len(names) == 0 {
		return nil, nil, nil, fmt.Errorf("no nodes given")
	}
	targets, err := s.graph.Lookup(names...)
	if err != nil {
		return nil, nil, nil, err
	}

	mapping := map[string]string{}
	if args.Context != "" {
		if err := json.Unmarshal([]byte(args.Context), &mapping); err != nil {
			return nil, nil, nil, fmt.Errorf("invalid context: %w", err)
		}
	}
	cctx, err := s.graph.Substitutions(mapping)
	if err != nil {
		return nil, nil, nil, err
	}
	opts := []dependents.CallOption{dependents.WithContext(cctx)}
	if args.Seen != "" {
		opts = append(opts, dependents.WithSeen(domain.NewSeen(splitList(args.Seen)...)))
	}
	return names, targets, opts, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Graph Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.graphJSON()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}

// graphJSON returns the definition, or the bare node keys when the graph
// was not loaded from a definition.
func (s *Server) graphJSON() (string, error) {
	var v any = s.def
	if s.def == nil {
		v = map[string][]string{"nodes": s.graph.Keys()}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode graph: %w", err)
	}
	return string(b), nil
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
