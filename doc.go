/*
Package espalier is a small reactive dataflow engine for simulating
continuous-time, feedback-controlled processes.

A graph of signal nodes is built once with package dsl. The Engine then ticks
every time-variant node (integrators, delay lines, change latches) on its own
goroutine at a fixed cadence, while any number of samplers pull values from
the labelled outputs. Pure combinators are recomputed on every sample, so a
reader always sees the latest state of the nodes below it.

# Concept

Nodes split into two capabilities. Every node can be sampled and declares a
value range. Time-variant nodes can also be ticked; ticking and sampling are
independent and may run concurrently. Feedback cycles are closed through
deferred slots, which are declared with a fixed range, used while building
the rest of the graph and rebound to their final definition afterwards.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"
		"time"

		"github.com/aretw0/espalier"
		"github.com/aretw0/espalier/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		// x' = -x, starting at 1
		x := b.Deferred("x", -10, 10)
		if err := x.Rebind(b.Integrate(1, b.Const(-10), b.Const(10), x.Expr().ScaleBy(-1))); err != nil {
			log.Fatal(err)
		}
		b.Expose("x", x)

		graph, err := b.Build()
		if err != nil {
			log.Fatal(err)
		}

		eng, err := espalier.New(graph)
		if err != nil {
			log.Fatal(err)
		}
		if err := eng.Start(context.Background()); err != nil {
			log.Fatal(err)
		}
		defer eng.Stop()

		time.Sleep(time.Second)
		v, _ := eng.Sample("x")
		fmt.Printf("x after 1s: %.2f\n", v)
	}

For a terminal monitor, history recording and signal handling, wrap the
engine in a runner.Runner. The HTTP and MCP adapters expose the same engine
to remote clients.
*/
package espalier
