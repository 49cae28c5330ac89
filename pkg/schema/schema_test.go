package schema_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/dependents"
	"github.com/aretw0/dependents/pkg/domain"
	"github.com/aretw0/dependents/pkg/registry"
	"github.com/aretw0/dependents/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const diamondYAML = `
nodes:
  - name: a
    op: sum
    deps: [b, c]
  - name: b
    op: mul
    deps: [d]
    args: {factor: 2}
  - name: c
    op: mul
    deps: [d]
    args: {factor: 3}
  - name: d
    op: const
    args: {value: 5}
  - name: text
    description: supplied by the caller
`

const diamondJSON = `{
  "nodes": [
    {"name": "a", "op": "sum", "deps": ["b", "c"]},
    {"name": "b", "op": "mul", "deps": ["d"], "args": {"factor": 2}},
    {"name": "c", "op": "mul", "deps": ["d"], "args": {"factor": 3}},
    {"name": "d", "op": "const", "args": {"value": 5}},
    {"name": "text", "description": "supplied by the caller"}
  ]
}`

const diamondTOML = `
[[nodes]]
name = "a"
op = "sum"
deps = ["b", "c"]

[[nodes]]
name = "b"
op = "mul"
deps = ["d"]
args = { factor = 2 }

[[nodes]]
name = "c"
op = "mul"
deps = ["d"]
args = { factor = 3 }

[[nodes]]
name = "d"
op = "const"
args = { value = 5 }

[[nodes]]
name = "text"
description = "supplied by the caller"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGraph_Formats(t *testing.T) {
	files := map[string]string{
		"graph.yaml": diamondYAML,
		"graph.yml":  diamondYAML,
		"graph.json": diamondJSON,
		"graph.toml": diamondTOML,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, content)

			def, graph, err := schema.LoadGraph(path, registry.NewDefault())
			require.NoError(t, err)
			assert.Len(t, def.Nodes, 5)
			assert.Equal(t, []string{"a", "b", "c", "d", "text"}, graph.Keys())

			a, _ := graph.Get("a")
			v, err := dependents.Solve(context.Background(), a)
			require.NoError(t, err)
			// JSON numbers decode as float64.
			assert.EqualValues(t, 25, v)

			text, _ := graph.Get("text")
			assert.IsType(t, &domain.Datasource{}, text)

			n, ok := def.Lookup("text")
			require.True(t, ok)
			assert.Equal(t, "supplied by the caller", n.Description)
		})
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "graph.xml", "<nodes/>")
	_, err := schema.Load(path)
	assert.ErrorIs(t, err, schema.ErrUnsupportedFormat)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := schema.Parse([]byte("nodes:\n  - name: a\n    bogus: 1\n"), schema.FormatYAML)
	assert.Error(t, err)

	_, err = schema.Parse([]byte(`{"nodes":[{"name":"a","bogus":1}]}`), schema.FormatJSON)
	assert.Error(t, err)

	_, err = schema.Parse([]byte("[[nodes]]\nname = \"a\"\nbogus = 1\n"), schema.FormatTOML)
	assert.Error(t, err)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	def := &schema.Definition{Nodes: []schema.NodeDef{
		{Name: "a", Op: "sum", Deps: []string{"missing"}},
		{Name: "a", Op: "const"},
		{Name: "b", Op: "nope"},
		{Name: "c", Deps: []string{"a"}},
		{Op: "const"},
	}}

	err := schema.Validate(def, registry.NewDefault())
	require.Error(t, err)

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 5)
	assert.Contains(t, err.Error(), `node "a": unknown dependency "missing"`)
	assert.Contains(t, err.Error(), `node "a": duplicate node`)
	assert.Contains(t, err.Error(), `node "b": unknown op "nope"`)
	assert.Contains(t, err.Error(), `node "c": op is required`)
	assert.Contains(t, err.Error(), "node name is required")

	var verr *schema.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidate_Empty(t *testing.T) {
	def, err := schema.Parse(nil, schema.FormatYAML)
	require.NoError(t, err)

	err = schema.Validate(def, registry.NewDefault())
	assert.EqualError(t, err, "graph has no nodes")
}

func TestCompile_BadArgs(t *testing.T) {
	def := &schema.Definition{Nodes: []schema.NodeDef{
		{Name: "d", Op: "const", Args: map[string]any{"value": 1, "extra": true}},
	}}
	_, err := schema.Compile(def, registry.NewDefault())
	assert.ErrorContains(t, err, "failed to build node d")
}

func TestCompile_CycleSurfacesAtSolve(t *testing.T) {
	def := &schema.Definition{Nodes: []schema.NodeDef{
		{Name: "a", Op: "sum", Deps: []string{"b"}},
		{Name: "b", Op: "sum", Deps: []string{"a"}},
	}}
	graph, err := schema.Compile(def, registry.NewDefault())
	require.NoError(t, err)

	a, _ := graph.Get("a")
	_, err = dependents.Solve(context.Background(), a)
	assert.ErrorIs(t, err, domain.ErrDependencyLoop)
}
