/*
Package dsl provides a Go DSL for building espalier node graphs.

Graphs are built once, before anything ticks. Plain combinators are created
through the Builder or chained on an Expr; time-variant nodes (integrators,
latches, delay lines) are recorded as tickers so the engine can schedule them.
Feedback cycles are closed with deferred slots: declare the slot with its
range, build the rest of the graph against it, then Rebind it.

Example usage:

	b := dsl.New(dsl.WithStep(10 * time.Millisecond))

	x := b.Deferred("x", -10, 10)
	x.Rebind(b.Integrate(1, b.Const(-10), b.Const(10), x.Expr().ScaleBy(-1)))
	b.Expose("x", x)

	graph, err := b.Build()
	if err != nil {
		return err
	}
	// ... pass graph to espalier.New(graph)
*/
package dsl
