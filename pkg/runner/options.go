package runner

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/espalier/pkg/control"
	"github.com/aretw0/espalier/pkg/ports"
)

// DefaultLockTTL is the lease of the recorder lock, renewed by nothing:
// runs longer than this should pick a larger TTL.
const DefaultLockTTL = time.Hour

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithRecorder configures where sampled history is kept.
func WithRecorder(rec ports.Recorder) Option {
	return func(r *Runner) {
		r.Recorder = rec
	}
}

// WithLocker takes a distributed lock on key for the duration of the run,
// so that a single runner writes to a shared recorder namespace.
func WithLocker(locker ports.Locker, key string, ttl time.Duration) Option {
	return func(r *Runner) {
		r.Locker = locker
		r.LockKey = key
		r.LockTTL = ttl
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithOutputHandler configures how frames are presented.
func WithOutputHandler(handler OutputHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithInterval sets the sampling period (default: 100ms).
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.Interval = d
		}
	}
}

// WithDuration stops the run after d. Zero runs until cancelled.
func WithDuration(d time.Duration) Option {
	return func(r *Runner) {
		r.Duration = d
	}
}

// WithConsole reads control commands from in while running.
func WithConsole(in io.Reader, controls *control.Registry) Option {
	return func(r *Runner) {
		r.Console = NewConsole(in, controls)
	}
}
