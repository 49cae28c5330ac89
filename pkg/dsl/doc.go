/*
Package dsl provides a fluent builder for dependency graphs.

Nodes are declared by name and wired by name, which makes it convenient to
build graphs from configuration files or in tests without holding on to
every intermediate dependent.

Example usage:

	b := dsl.New()

	b.Add("revision.text").Datasource()

	b.Add("revision.words").
		DependsOn("revision.text").
		Func(func(_ context.Context, args []any) (any, error) {
			return strings.Fields(args[0].(string)), nil
		})

	b.Add("revision.word_count").
		DependsOn("revision.words").
		Func(func(_ context.Context, args []any) (any, error) {
			return len(args[0].([]string)), nil
		})

	graph, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	count, _ := graph.Get("revision.word_count")
	v, err := dependents.Solve(ctx, count, dependents.WithCache(domain.Cache{"revision.text": "a b c"}))
*/
package dsl
