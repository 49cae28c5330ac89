package schema

// Definition is the file representation of a dependency graph.
type Definition struct {
	Nodes []NodeDef `yaml:"nodes" json:"nodes" toml:"nodes"`
}

// NodeDef declares one node of the graph.
//
// Op names a registry operator. An empty Op on a node without dependencies
// declares a datasource.
type NodeDef struct {
	Name        string         `yaml:"name" json:"name" toml:"name"`
	Op          string         `yaml:"op" json:"op" toml:"op"`
	Deps        []string       `yaml:"deps" json:"deps" toml:"deps"`
	Args        map[string]any `yaml:"args" json:"args" toml:"args"`
	Description string         `yaml:"description" json:"description" toml:"description"`
}

// Operator returns the effective operator name of the node.
func (n NodeDef) Operator() string {
	if n.Op == "" && len(n.Deps) == 0 {
		return "datasource"
	}
	return n.Op
}

// Lookup returns the node named name.
func (d *Definition) Lookup(name string) (NodeDef, bool) {
	for _, n := range d.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeDef{}, false
}
