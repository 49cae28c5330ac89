package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/dependents"
	"github.com/aretw0/dependents/pkg/adapters/loam"
	"github.com/aretw0/dependents/pkg/adapters/memory"
	"github.com/aretw0/dependents/pkg/adapters/process"
	"github.com/aretw0/dependents/pkg/adapters/redis"
	"github.com/aretw0/dependents/pkg/domain"
	"github.com/aretw0/dependents/pkg/observability"
	"github.com/aretw0/dependents/pkg/persistence/middleware"
	"github.com/aretw0/dependents/pkg/ports"
	"github.com/aretw0/dependents/pkg/registry"
	"github.com/aretw0/dependents/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
)

// Options holds the persistent flags shared by every command.
type Options struct {
	File      string
	Debug     bool
	LogFormat string
	Redis     string
	// RedisTTL expires values stored in Redis; zero keeps them.
	RedisTTL time.Duration
	// Tools names the allow-list of commands for exec nodes.
	// A missing file registers no command.
	Tools string
	// EncryptionKey encrypts every stored value when set (base64 or 32 raw bytes).
	EncryptionKey string
	// Redact lists key patterns whose values are masked before storage.
	Redact []string
	// Source overrides the value source; tests use it to avoid Redis.
	Source ports.ValueSource
}

// Project is a loaded graph file with everything needed to evaluate it.
type Project struct {
	Path     string
	Def      *schema.Definition
	Graph    *domain.Graph
	Engine   *dependents.Engine
	Source   ports.ValueSource
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
}

// LoadProject loads the graph file named by opts and builds an engine
// reporting into a fresh metrics registry.
func LoadProject(opts Options) (*Project, error) {
	logger := createLogger(opts.Debug, opts.LogFormat)

	source, err := openSource(opts, logger)
	if err != nil {
		return nil, err
	}

	reg := registry.NewDefault()
	reg.SetSource(source)

	if opts.Tools != "" {
		tools, err := process.LoadTools(opts.Tools)
		if err != nil {
			return nil, err
		}
		runner := process.NewRunner(
			process.WithRegistry(tools),
			process.WithBaseDir(filepath.Dir(opts.File)),
		)
		reg.Register("exec", runner.Factory())
		logger.Debug("Process tools loaded", "file", opts.Tools, "count", len(tools))
	}

	def, graph, err := loadGraph(opts.File, reg)
	if err != nil {
		return nil, fmt.Errorf("error loading graph: %w", err)
	}
	logger.Debug("Graph loaded", "file", opts.File, "nodes", graph.Len())

	metrics := observability.NewMetrics("dependents")
	promReg := prometheus.NewRegistry()
	if err := metrics.Register(promReg); err != nil {
		return nil, fmt.Errorf("error registering metrics: %w", err)
	}

	hooks := metrics.Hooks()
	if opts.Debug {
		hooks = hooks.Merge(observability.LogHooks(logger))
	}

	engine := dependents.New(
		dependents.WithLogger(logger),
		dependents.WithLifecycleHooks(hooks),
	)

	return &Project{
		Path:     opts.File,
		Def:      def,
		Graph:    graph,
		Engine:   engine,
		Source:   source,
		Logger:   logger,
		Metrics:  metrics,
		Registry: promReg,
	}, nil
}

// OpenSource returns the value source selected by opts, wrapped with the
// requested redaction and encryption.
func OpenSource(opts Options) (ports.ValueSource, error) {
	return openSource(opts, createLogger(opts.Debug, opts.LogFormat))
}

func openSource(opts Options, logger *slog.Logger) (ports.ValueSource, error) {
	source := opts.Source
	switch {
	case source != nil:
	case opts.Redis != "":
		var ropts []redis.Option
		if opts.RedisTTL > 0 {
			ropts = append(ropts, redis.WithTTL(opts.RedisTTL))
		}
		source = redis.New(opts.Redis, "", 0, ropts...)
		logger.Debug("Using redis value source", "addr", opts.Redis, "ttl", opts.RedisTTL)
	default:
		source = memory.NewSource(nil)
	}
	return secureSource(source, opts)
}

// secureSource wraps source with the redaction and encryption middlewares
// requested by opts. Redaction runs before encryption.
func secureSource(source ports.ValueSource, opts Options) (ports.ValueSource, error) {
	var mws []middleware.Middleware
	if len(opts.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(opts.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if opts.EncryptionKey != "" {
		key, err := middleware.ParseKey(opts.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return middleware.Chain(source, mws...), nil
}

// loadGraph reads a single definition file, or a directory of node
// documents through Loam.
func loadGraph(path string, reg *registry.Registry) (*schema.Definition, *domain.Graph, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return schema.LoadGraph(path, reg)
	}

	loader, err := loam.Open(path)
	if err != nil {
		return nil, nil, err
	}
	def, err := loader.Definition(context.Background())
	if err != nil {
		return nil, nil, err
	}
	graph, err := schema.Compile(def, reg)
	if err != nil {
		return nil, nil, err
	}
	return def, graph, nil
}

// targets resolves node names, defaulting to every node of the graph.
func (p *Project) targets(names []string) ([]domain.Dependent, error) {
	if len(names) == 0 {
		return p.Graph.Nodes(), nil
	}
	return p.Graph.Lookup(names...)
}

// context resolves key=substitute entries into a context.
func (p *Project) context(entries []string) (domain.Context, error) {
	mapping, err := parseMapping(entries)
	if err != nil {
		return nil, err
	}
	return p.Graph.Substitutions(mapping)
}
