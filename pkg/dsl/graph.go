package dsl

import (
	"fmt"
	"time"

	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/node"
)

// Graph is a validated, immutable node graph with its labelled outputs and
// the time-variant nodes that must be ticked.
type Graph struct {
	outputs []domain.Output
	index   map[string]int
	tickers []NamedTicker
	slots   []*node.Slot
	step    time.Duration
	hook    *rebindHook
}

// Outputs returns the labelled outputs in insertion order.
func (g *Graph) Outputs() []domain.Output {
	return append([]domain.Output(nil), g.outputs...)
}

// Labels returns the output labels in insertion order.
func (g *Graph) Labels() []string {
	labels := make([]string, len(g.outputs))
	for i, out := range g.outputs {
		labels[i] = out.Label
	}
	return labels
}

// Tickers returns every time-variant node created through the builder.
func (g *Graph) Tickers() []NamedTicker {
	return append([]NamedTicker(nil), g.tickers...)
}

// Slots returns the deferred slots.
func (g *Graph) Slots() []*node.Slot {
	return append([]*node.Slot(nil), g.slots...)
}

// Step returns the integration step the graph was built with.
func (g *Graph) Step() time.Duration { return g.step }

// Lookup returns the node exposed under label.
func (g *Graph) Lookup(label string) (domain.Node, error) {
	i, ok := g.index[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownLabel, label)
	}
	return g.outputs[i].Node, nil
}

// OnRebind installs fn as the callback for every later slot rebind,
// replacing any previous one. A nil fn removes it.
func (g *Graph) OnRebind(fn func(slot string, n domain.Node)) {
	if fn == nil {
		g.hook.fn.Store(nil)
		return
	}
	g.hook.fn.Store(&fn)
}

// Inspect describes every node reachable from the outputs, in breadth first
// order. IDs are stable for a given graph.
func (g *Graph) Inspect() []domain.NodeInfo {
	roots := make([]domain.Node, len(g.outputs))
	labels := make(map[domain.Node]string, len(g.outputs))
	for i, out := range g.outputs {
		roots[i] = out.Node
		if _, ok := labels[out.Node]; !ok {
			labels[out.Node] = out.Label
		}
	}

	ticking := make(map[domain.Node]bool, len(g.tickers))
	for _, t := range g.tickers {
		if n, ok := t.Ticker.(domain.Node); ok {
			ticking[n] = true
		}
	}

	nodes := validator.Walk(roots...)
	ids := make(map[domain.Node]string, len(nodes))
	counts := make(map[string]int)
	for _, n := range nodes {
		kind := kindOf(n)
		counts[kind]++
		ids[n] = fmt.Sprintf("%s_%d", kind, counts[kind])
	}

	infos := make([]domain.NodeInfo, 0, len(nodes))
	for _, n := range nodes {
		info := domain.NodeInfo{
			ID:      ids[n],
			Kind:    kindOf(n),
			Label:   labels[n],
			Bounds:  n.Bounds(),
			Ticking: ticking[n],
		}
		if s, ok := n.(*node.Slot); ok && s.Name() != "" && info.Label == "" {
			info.Label = s.Name()
		}
		if d, ok := n.(domain.Describer); ok {
			for _, c := range d.Children() {
				if id, ok := ids[c]; ok {
					info.Children = append(info.Children, id)
				}
			}
		}
		infos = append(infos, info)
	}
	return infos
}

func kindOf(n domain.Node) string {
	if d, ok := n.(domain.Describer); ok {
		return d.Kind()
	}
	return "external"
}
