package domain

import "time"

// DefaultTick is the reference tick period of time-variant nodes.
const DefaultTick = 10 * time.Millisecond

// DefaultSampleInterval is the reference cadence of the external sampler.
const DefaultSampleInterval = 100 * time.Millisecond

// DefaultWindow is the rolling history window kept by recorders.
const DefaultWindow = 10 * time.Second
