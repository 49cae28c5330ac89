package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aretw0/dependents/pkg/domain"
	"github.com/aretw0/dependents/pkg/registry"
)

// ErrNotRegistered is returned when a node names a command missing from the allow-list.
var ErrNotRegistered = errors.New("process tool not registered")

// EnvPrefix prefixes the environment variables carrying dependency values.
const EnvPrefix = "DEPENDENTS_ARG_"

// Runner executes allow-listed local processes.
// Only commands registered by name can run; graph files never carry command lines.
type Runner struct {
	registry map[string]RegisteredProcess
	baseDir  string
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string
	Env     map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(tools map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			r.registry[name] = RegisteredProcess{
				Command: tool.Command,
				Args:    tool.Args,
				Env:     tool.Environment,
			}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = RegisteredProcess{
		Command: command,
		Args:    args,
	}
}

// Has reports whether name is allow-listed.
func (r *Runner) Has(name string) bool {
	_, ok := r.registry[name]
	return ok
}

// Run executes the named command with the given dependency values.
//
// Values are passed as DEPENDENTS_ARG_<i> environment variables and as a JSON
// array on stdin, never as command flags. Stdout that parses as a JSON object
// or array is decoded; anything else is returned as a trimmed string.
func (r *Runner) Run(ctx context.Context, name string, inputs []any) (any, error) {
	proc, ok := r.registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}

	stdin, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inputs for %s: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Stdin = bytes.NewReader(stdin)

	env := cmd.Environ()
	for k, v := range proc.Env {
		env = append(env, k+"="+v)
	}
	for i, v := range inputs {
		env = append(env, fmt.Sprintf("%s%d=%s", EnvPrefix, i, envValue(v)))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("execution of %s failed: %w. Stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	trimmed := strings.TrimSpace(stdout.String())
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var result any
		if jsonErr := json.Unmarshal([]byte(trimmed), &result); jsonErr == nil {
			return result, nil
		}
	}
	return trimmed, nil
}

func envValue(v any) string {
	switch v.(type) {
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}

type execArgs struct {
	Tool string `mapstructure:"tool"`
}

// Factory returns the "exec" operator. The tool argument names an
// allow-listed command and defaults to the node name.
func (r *Runner) Factory() registry.Factory {
	return func(call registry.Call) (domain.InvokeFunc, error) {
		var a execArgs
		if err := call.Decode(&a); err != nil {
			return nil, err
		}
		if a.Tool == "" {
			a.Tool = call.Node
		}
		if !r.Has(a.Tool) {
			return nil, fmt.Errorf("%w: %s", ErrNotRegistered, a.Tool)
		}
		tool := a.Tool
		return func(ctx context.Context, args []any) (any, error) {
			return r.Run(ctx, tool, args)
		}, nil
	}
}
