package domain

import "fmt"

// Kind constants name the fixed set of node variants.
const (
	KindConstant    = "constant"
	KindSum         = "sum"
	KindScale       = "scale"
	KindClamp       = "clamp"
	KindConditional = "conditional"
	KindDerived     = "derived"
	KindInput       = "input"
	KindRandom      = "random"
	KindDelay       = "delay"
	KindIntegrator  = "integrator"
	KindLatch       = "latch"
	KindSlot        = "slot"
)

// Range is the declared value range of a node.
// It is advisory metadata (plot scaling, rebind contracts); only Clamp and
// Integrator enforce it on the actual value.
type Range struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Lower, r.Upper)
}

// Contains reports whether v lies inside the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Lower && v <= r.Upper
}

// Node is a value-producing unit in the dataflow graph.
//
// Sample must be safe to call concurrently with any tick activity in the
// graph and must never block.
type Node interface {
	Sample() float64
	Bounds() Range
}

// Ticker is the stateful half of a time-variant node.
// Tick advances private state and is invoked periodically by a scheduler,
// independently of Sample calls.
type Ticker interface {
	Tick()
}

// Describer is implemented by nodes that can be introspected.
type Describer interface {
	Kind() string
	Children() []Node
}

// NodeInfo is a flat, serializable description of one node, used by graph
// export and the adapters.
type NodeInfo struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Label    string   `json:"label,omitempty"`
	Bounds   Range    `json:"bounds"`
	Children []string `json:"children,omitempty"`
	Ticking  bool     `json:"ticking,omitempty"`
}

// Output is a labelled node exposed to samplers.
type Output struct {
	Label string `json:"label"`
	Node  Node   `json:"-"`
}
