package domain

import (
	"errors"
	"fmt"
)

// ErrBoundsMismatch is returned when a slot is rebound to a node whose
// declared range differs from the slot's.
var ErrBoundsMismatch = errors.New("bounds mismatch")

// ErrUnboundSlot is returned when a deferred slot was never rebound before the graph was built.
var ErrUnboundSlot = errors.New("deferred slot never rebound")

// ErrInsufficientPeers is returned when a peer average is requested over fewer than two peers.
var ErrInsufficientPeers = errors.New("peer average needs at least two peers")

// ErrUnknownLabel is returned when no output is registered under a label.
var ErrUnknownLabel = errors.New("unknown output label")

// ErrDuplicateLabel is returned when two outputs share the same label.
var ErrDuplicateLabel = errors.New("duplicate output label")

// ErrUnknownControl is returned when no slider or switch is registered under a name.
var ErrUnknownControl = errors.New("unknown control")

// ErrAlreadyRunning is returned when a component that can only run once is started twice.
var ErrAlreadyRunning = errors.New("already running")

// BoundsError carries the ranges involved in a failed rebind.
type BoundsError struct {
	Slot     string
	Declared Range
	Got      Range
}

func (e *BoundsError) Error() string {
	name := e.Slot
	if name == "" {
		name = "slot"
	}
	return fmt.Sprintf("%s: %v: declared %v, got %v", name, ErrBoundsMismatch, e.Declared, e.Got)
}

// Unwrap allows errors.Is(err, ErrBoundsMismatch).
func (e *BoundsError) Unwrap() error {
	return ErrBoundsMismatch
}
