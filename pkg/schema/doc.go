// Package schema loads dependency graphs from definition files.
//
// A definition lists nodes by name. Each node names an operator from a
// registry, the nodes it depends on (in argument order) and the operator
// arguments:
//
//	nodes:
//	  - name: d
//	    op: const
//	    args: {value: 5}
//	  - name: b
//	    op: mul
//	    deps: [d]
//	    args: {factor: 2}
//	  - name: revision.text
//	    description: raw revision text supplied by the caller
//
// YAML, JSON and TOML files are supported; the format is chosen by file
// extension. Unknown fields are rejected.
//
// Basic usage:
//
//	def, graph, err := schema.LoadGraph("graph.yaml", registry.NewDefault())
//	if err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        fmt.Println(e)
//	    }
//	}
//
// Validation collects every problem found in a definition before failing,
// so a single run reports all broken nodes.
package schema
