/*
Package node implements the node algebra of the espalier engine.

Pure combinators (Constant, Sum, Scale, Clamp, Conditional, Derived and the
input/random leaves) recompute from their children on every Sample and keep
no state. Time-variant nodes (DelayLine, Integrator, ChangeLatch) own private
state that only their Tick mutates; they implement domain.Ticker and must be
registered with a scheduler to evolve. Slot wraps a node that can be replaced
after construction, which is how feedback cycles are closed.

Every type implements domain.Node and domain.Describer. Time-variant nodes
guard their state with a mutex and sample their children outside of it, so a
cycle that reaches back into the same node never deadlocks.
*/
package node
