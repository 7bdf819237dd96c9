package ports

import "github.com/aretw0/espalier/pkg/domain"

// Sampler is the read side of a running engine, used by the adapters
// (runner, HTTP, MCP) that present outputs to users.
type Sampler interface {
	// Outputs returns the labelled outputs in insertion order.
	Outputs() []domain.Output

	// Sample pulls the current value of one output.
	// Returns domain.ErrUnknownLabel if no output has that label.
	Sample(label string) (float64, error)

	// Snapshot samples every output once.
	Snapshot() domain.Frame

	// Inspect describes the node graph for introspection.
	Inspect() []domain.NodeInfo
}
