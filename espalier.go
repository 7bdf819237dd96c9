package espalier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/dsl"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/aretw0/espalier/pkg/scheduler"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is the release of the espalier engine.
const Version = "0.3.0"

// Engine is the high-level entry point for the espalier library.
// It owns the scheduler that ticks the time-variant nodes of a graph and
// serves pull-based samples of its labelled outputs.
type Engine struct {
	graph      *dsl.Graph
	scheduler  *scheduler.Scheduler
	metrics    *observability.Metrics
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	registerer prometheus.Registerer
	Name       string

	mu sync.Mutex
	// running is true between Start and Stop; ticking itself may have
	// ended earlier through the Start context.
	running bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegisterer registers the engine metrics with reg.
// Without it the engine is not instrumented.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registerer = reg
	}
}

// WithName labels the engine in logs and lifecycle events.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes an engine over a built graph. Nothing ticks until Start.
func New(graph *dsl.Graph, opts ...Option) (*Engine, error) {
	if graph == nil {
		return nil, fmt.Errorf("graph is required")
	}
	eng := &Engine{graph: graph}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("graph", eng.Name)
	}
	if eng.registerer != nil {
		eng.metrics = observability.NewMetrics(eng.registerer)
	}

	eng.scheduler = scheduler.New(
		scheduler.WithInterval(graph.Step()),
		scheduler.WithLogger(eng.logger),
		scheduler.WithMetrics(eng.metrics),
	)
	for _, t := range graph.Tickers() {
		eng.scheduler.Register(t.Name, t.Ticker)
	}

	graph.OnRebind(func(slot string, n domain.Node) {
		eng.metrics.ObserveRebind(slot)
		eng.logger.Debug("slot rebound", "slot", slot, "bounds", n.Bounds())
	})

	return eng, nil
}

// Start launches the periodic ticking of every time-variant node.
// The engine runs until Stop is called or ctx is cancelled; after a
// cancellation it can be started again.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.scheduler.Running() {
		e.mu.Unlock()
		return fmt.Errorf("engine: %w", domain.ErrAlreadyRunning)
	}
	if err := e.scheduler.Start(ctx); err != nil {
		e.mu.Unlock()
		return err
	}
	e.running = true
	e.mu.Unlock()

	e.logger.Info("engine started", "tickers", e.scheduler.Len(), "interval", e.scheduler.Interval())
	if e.hooks.OnStart != nil {
		e.hooks.OnStart(ctx, e.engineEvent(domain.EventEngineStart))
	}
	return nil
}

// Stop halts every ticking goroutine and waits for them to exit.
// Stopping an engine that is not running is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.scheduler.Stop()
	e.running = false
	e.mu.Unlock()

	e.logger.Info("engine stopped")
	if e.hooks.OnStop != nil {
		e.hooks.OnStop(context.Background(), e.engineEvent(domain.EventEngineStop))
	}
}

// Running reports whether the engine is ticking.
func (e *Engine) Running() bool {
	return e.scheduler.Running()
}

// Sample pulls the current value of the output registered under label.
func (e *Engine) Sample(label string) (float64, error) {
	n, err := e.graph.Lookup(label)
	if err != nil {
		return 0, err
	}
	v := n.Sample()
	e.observeSample(label, v)
	return v, nil
}

// Snapshot samples every output once, in insertion order.
func (e *Engine) Snapshot() domain.Frame {
	outputs := e.graph.Outputs()
	frame := domain.Frame{
		Time:   time.Now(),
		Labels: make([]string, len(outputs)),
		Values: make([]float64, len(outputs)),
	}
	for i, out := range outputs {
		v := out.Node.Sample()
		frame.Labels[i] = out.Label
		frame.Values[i] = v
		e.observeSample(out.Label, v)
	}
	return frame
}

// Outputs returns the labelled outputs in insertion order.
func (e *Engine) Outputs() []domain.Output {
	return e.graph.Outputs()
}

// Inspect describes the node graph for visualization or introspection tools.
func (e *Engine) Inspect() []domain.NodeInfo {
	return e.graph.Inspect()
}

// Graph returns the underlying graph.
func (e *Engine) Graph() *dsl.Graph {
	return e.graph
}

func (e *Engine) observeSample(label string, v float64) {
	e.metrics.ObserveSample(label)
	if e.hooks.OnSample != nil {
		e.hooks.OnSample(context.Background(), &domain.SampleEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSample},
			Label:     label,
			Value:     v,
		})
	}
}

func (e *Engine) engineEvent(t domain.EventType) *domain.EngineEvent {
	return &domain.EngineEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: t},
		Graph:     e.Name,
		Tickers:   e.scheduler.Len(),
	}
}
