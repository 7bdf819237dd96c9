package node

import "time"

// Clock supplies wall-clock time to nodes that timestamp their samples.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns the process wall clock.
func SystemClock() Clock {
	return ClockFunc(time.Now)
}

func clamp(v, lower, upper float64) float64 {
	return max(lower, min(v, upper))
}
