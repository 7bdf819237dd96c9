package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/observability"
)

// DefaultInterval is the reference tick period.
const DefaultInterval = domain.DefaultTick

type entry struct {
	name   string
	ticker domain.Ticker
}

// Scheduler runs one periodic goroutine per registered ticker.
type Scheduler struct {
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu      sync.Mutex
	entries []entry
	run     *run
}

// run is one Start..Stop cycle. Each cycle owns its WaitGroup so a Start
// racing a Stop never reuses a group that is still being waited on.
type run struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (r *run) active() bool { return r != nil && r.ctx.Err() == nil }

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithInterval sets the tick period (default: 10ms).
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics enables Prometheus instrumentation of ticks.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// New creates a stopped scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: DefaultInterval,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Register adds a ticker. If the scheduler is already running, the ticker
// starts immediately.
func (s *Scheduler) Register(name string, t domain.Ticker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{name: name, ticker: t}
	s.entries = append(s.entries, e)
	if s.run.active() {
		s.launch(s.run, e)
	}
}

// Len returns the number of registered tickers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Running reports whether the tickers are live: Start was called and
// neither Stop nor the cancellation of the Start context has ended the run.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run.active()
}

// Start launches one goroutine per registered ticker. The goroutines stop
// when ctx is cancelled or Stop is called. A scheduler whose context was
// cancelled can be started again.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run.active() {
		return fmt.Errorf("scheduler: %w", domain.ErrAlreadyRunning)
	}
	if prev := s.run; prev != nil {
		// Cancelled from outside; its loops never take s.mu, so joining here is safe.
		prev.cancel()
		prev.wg.Wait()
	}

	r := &run{}
	r.ctx, r.cancel = context.WithCancel(ctx)
	s.run = r
	for _, e := range s.entries {
		s.launch(r, e)
	}
	s.logger.Debug("scheduler started", "tickers", len(s.entries), "interval", s.interval)
	return nil
}

// Stop cancels every ticking goroutine and waits for them to return.
// It is safe to call Stop more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	r := s.run
	s.run = nil
	s.mu.Unlock()
	if r == nil {
		return
	}

	r.cancel()
	r.wg.Wait()
	s.logger.Debug("scheduler stopped")
}

// Wait blocks until every goroutine of the current run has returned.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	r := s.run
	s.mu.Unlock()
	if r != nil {
		r.wg.Wait()
	}
}

// launch must be called with s.mu held.
func (s *Scheduler) launch(r *run, e entry) {
	r.wg.Add(1)
	go s.loop(r, e)
}

func (s *Scheduler) loop(r *run, e entry) {
	defer r.wg.Done()
	ctx := r.ctx

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		s.tick(e)
		timer.Reset(s.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (s *Scheduler) tick(e entry) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.metrics.ObservePanic(e.name)
			s.logger.Error("tick panicked", "node", e.name, "panic", r)
			return
		}
		s.metrics.ObserveTick(e.name, time.Since(start).Seconds())
	}()
	e.ticker.Tick()
}
