package espalier_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/dsl"
)

// ExampleNew builds a feedback loop x' = -x and reads it before and after
// ticking it by hand.
func ExampleNew() {
	b := dsl.New()

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

	before, _ := eng.Sample("x")
	for _, t := range graph.Tickers() {
		for i := 0; i < 100; i++ {
			t.Ticker.Tick()
		}
	}
	after, _ := eng.Sample("x")

	fmt.Printf("%s: %.3f -> %.3f\n", graph.Tickers()[0].Name, before, after)
	// Output: x: 1.000 -> 0.366
}

// ExampleEngine_Start runs the scheduler for a moment.
func ExampleEngine_Start() {
	b := dsl.New()
	b.Expose("one", b.Const(1))
	graph, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	eng, err := espalier.New(graph, espalier.WithName("constant"))
	if err != nil {
		log.Fatal(err)
	}
	if err := eng.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	defer eng.Stop()

	frame := eng.Snapshot()
	fmt.Println(frame.Labels, frame.Values)
	// Output: [one] [1]
}
