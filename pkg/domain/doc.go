/*
Package domain contains the core types of the dependents engine.

It defines the node contract shared by every traversal, the caller-owned
state threaded through them (Cache, Seen, Context), the error taxonomy and
the lifecycle events. The package is kept free of I/O.

# Key Entities

  - Dependent: a node with a stable key and an ordered list of dependencies.
  - Invoker: the capability to compute a value from resolved dependencies.
  - Func, Constant, Datasource: the concrete node variants.
  - Cache: memo table from key to value, reusable across calls.
  - Context: per-call substitution of dependents by key.
*/
package domain
