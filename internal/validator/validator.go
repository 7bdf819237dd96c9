package validator

import (
	"errors"
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// binder is implemented by deferred slots.
type binder interface {
	Bound() bool
	Name() string
}

// Walk returns every node reachable from roots, breadth first, each node
// once. Feedback cycles are safe. Nodes that do not implement
// domain.Describer are leaves.
//
// Nodes are compared by identity, so they must be comparable (every node in
// pkg/node is a pointer).
func Walk(roots ...domain.Node) []domain.Node {
	visited := make(map[domain.Node]bool)
	var order []domain.Node

	queue := append([]domain.Node(nil), roots...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == nil || visited[current] {
			continue
		}
		visited[current] = true
		order = append(order, current)

		d, ok := current.(domain.Describer)
		if !ok {
			continue
		}
		for _, child := range d.Children() {
			if child != nil && !visited[child] {
				queue = append(queue, child)
			}
		}
	}
	return order
}

// ValidateGraph checks the outputs of a graph for duplicate labels and for
// deferred slots that were never rebound. extra lists nodes that must be
// checked even when no output reaches them.
//
// All problems are reported together; the result matches domain.ErrUnboundSlot
// and domain.ErrDuplicateLabel with errors.Is.
func ValidateGraph(outputs []domain.Output, extra ...domain.Node) error {
	var errs []error

	seen := make(map[string]bool, len(outputs))
	roots := make([]domain.Node, 0, len(outputs)+len(extra))
	for _, out := range outputs {
		if seen[out.Label] {
			errs = append(errs, fmt.Errorf("output %q: %w", out.Label, domain.ErrDuplicateLabel))
		}
		seen[out.Label] = true
		roots = append(roots, out.Node)
	}
	roots = append(roots, extra...)

	for _, n := range Walk(roots...) {
		b, ok := n.(binder)
		if !ok || b.Bound() {
			continue
		}
		name := b.Name()
		if name == "" {
			name = "unnamed"
		}
		errs = append(errs, fmt.Errorf("slot %q: %w", name, domain.ErrUnboundSlot))
	}

	if len(errs) > 0 {
		return fmt.Errorf("found %d errors: %w", len(errs), errors.Join(errs...))
	}
	return nil
}
