/*
Package dependents is a lazy, memoizing evaluation engine for graphs of pure
computation nodes ("dependents").

Each dependent has a stable key, an ordered list of dependencies and,
usually, a function that turns the resolved values of those dependencies
into its own value. The engine offers four traversals over such graphs:

  - Solve computes values, caching every intermediate result by key so that
    shared upstream dependents run once, and detects dependency loops.
  - Expand lists every reachable dependent once, depth-first pre-order.
  - Dig lists the leaves: dependents with no dependencies of their own.
  - Draw renders the dependency tree as indented text for debugging.

# Context and Cache

A Context redirects keys to substitute dependents for one call, which is how
values are injected (for tests, or for datasources supplied by a caller).
A Cache is a plain map owned by the caller; passing the same cache to
several calls reuses everything already computed.

# Usage

	text := domain.NewDatasource("revision.text")
	chars := domain.NewFunc("revision.chars", func(_ context.Context, args []any) (any, error) {
		return len(args[0].(string)), nil
	}, text)

	cache := domain.Cache{"revision.text": "Hello"}
	v, err := dependents.Solve(ctx, chars, dependents.WithCache(cache))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(v) // 5

	out, _ := dependents.Draw(chars)
	fmt.Print(out)
*/
package dependents
