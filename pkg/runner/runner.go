package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Engine is what the runner drives: a sampler with a ticking lifecycle.
// *espalier.Engine satisfies it.
type Engine interface {
	ports.Sampler
	Start(ctx context.Context) error
	Stop()
}

// Runner handles the sampling loop of a running engine.
// It plays the role of the external sampler: every Interval it takes one
// snapshot of every output, records it and hands it to the Handler.
type Runner struct {
	// Handler presents frames. If nil, a TextHandler on stdout is used.
	Handler OutputHandler

	// Recorder keeps the rolling history. If nil, nothing is recorded.
	Recorder ports.Recorder

	// Locker, when set, guards the recorder namespace for the whole run.
	Locker  ports.Locker
	LockKey string
	LockTTL time.Duration

	// Console, when set, applies control commands while running.
	Console *Console

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	Interval time.Duration
	Duration time.Duration
}

// NewRunner creates a new Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Interval: domain.DefaultSampleInterval,
		LockTTL:  DefaultLockTTL,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdout)
	}
	return r
}

// Run starts eng, samples it until ctx is done, an interrupt arrives or the
// configured duration elapses, then stops it. A clean stop returns nil.
func (r *Runner) Run(ctx context.Context, eng Engine) error {
	signals := NewSignalManager(ctx)
	defer signals.Stop()
	runCtx := signals.Context()

	if r.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, r.Duration)
		defer cancel()
	}

	if r.Locker != nil {
		unlock, err := r.Locker.Lock(runCtx, r.LockKey, r.LockTTL)
		if err != nil {
			return fmt.Errorf("recorder lock: %w", err)
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				r.Logger.Warn("failed to release recorder lock", "key", r.LockKey, "error", err)
			}
		}()
	}

	if err := eng.Start(runCtx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer eng.Stop()

	consoleErr := make(chan error, 1)
	if r.Console != nil {
		go func() {
			consoleErr <- r.Console.Serve(runCtx, r.Handler)
		}()
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	var seq int64
	for {
		seq++
		if err := r.sample(runCtx, eng, seq); err != nil {
			return err
		}

		select {
		case <-runCtx.Done():
			if signals.Interrupted() {
				r.Logger.Debug("run interrupted")
				_ = r.Handler.SystemOutput(context.Background(), "interrupted")
			}
			return nil
		case err := <-consoleErr:
			if err != nil {
				return err
			}
			// Input closed; keep sampling.
			consoleErr = nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) sample(ctx context.Context, eng Engine, seq int64) error {
	frame := eng.Snapshot()
	frame.Seq = seq

	if r.Recorder != nil {
		for i, label := range frame.Labels {
			p := domain.Point{Time: frame.Time, Value: frame.Values[i]}
			if err := r.Recorder.Append(ctx, label, p); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("record %q: %w", label, err)
			}
		}
	}

	if err := r.Handler.Output(ctx, frame); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	r.Logger.Debug("frame sampled", "seq", seq, "outputs", len(frame.Labels))
	return nil
}
