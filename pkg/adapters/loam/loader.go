// Package loam loads graph definitions from a directory of node documents.
//
// Each Markdown, YAML or JSON file describes one node. The front matter carries
// the node fields (name, op, deps, args) and a Markdown body becomes the node
// description. A document without a name takes its file name.
package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/dependents/pkg/schema"
	"github.com/aretw0/loam"
)

// Loader reads node documents from a Loam repository.
type Loader struct {
	Repo *loam.TypedRepository[NodeMetadata]
}

// New creates a loader over an existing typed repository.
func New(repo *loam.TypedRepository[NodeMetadata]) *Loader {
	return &Loader{Repo: repo}
}

// Open initializes a read-only Loam repository rooted at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode returns json.Number for every number so integers stay integers.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo)), nil
}

// Definition lists every document and returns them as a graph definition,
// sorted by node name.
func (l *Loader) Definition(ctx context.Context) (*schema.Definition, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	def := &schema.Definition{}
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}

		if existingPath, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: node '%s' is defined in both '%s' and '%s'", name, existingPath, doc.ID)
		}
		seen[name] = doc.ID

		description := doc.Data.Description
		if description == "" {
			description = strings.TrimSpace(doc.Content)
		}

		def.Nodes = append(def.Nodes, schema.NodeDef{
			Name:        name,
			Op:          doc.Data.Op,
			Deps:        doc.Data.Deps,
			Args:        normalizeMap(doc.Data.Args),
			Description: description,
		})
	}

	slices.SortFunc(def.Nodes, func(a, b schema.NodeDef) int {
		return strings.Compare(a.Name, b.Name)
	})
	return def, nil
}

func trimExtension(id string) string {
	if ext := filepath.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	return filepath.ToSlash(id)
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

// normalize turns json.Number into int64 or float64, recursively.
func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		return normalizeMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	}
	return v
}
