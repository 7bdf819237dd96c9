package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/dsl"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/scenario"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is the traction scenario wired to an engine, a recorder and, for
// shared Redis namespaces, a locker.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Traction *scenario.Traction
	Graph    *dsl.Graph
	Engine   *espalier.Engine
	Recorder ports.Recorder
	Metrics  *prometheus.Registry

	// Locker is set when the Redis recorder asks for a run lock.
	Locker  ports.Locker
	LockKey string

	closers []func() error
}

// NewApp builds every collaborator described by cfg. With debug set the
// engine lifecycle is logged too.
func NewApp(cfg config.Config, logger *slog.Logger, debug bool) (*App, error) {
	params, err := scenario.DecodeParams(cfg.Scenario)
	if err != nil {
		return nil, err
	}

	traction, graph, err := scenario.NewTraction(params, dsl.WithStep(cfg.Tick))
	if err != nil {
		return nil, fmt.Errorf("build scenario: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engineOpts := []espalier.Option{
		espalier.WithName("traction"),
		espalier.WithLogger(logger),
		espalier.WithRegisterer(reg),
	}
	if debug {
		engineOpts = append(engineOpts, espalier.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}
	eng, err := espalier.New(graph, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Traction: traction,
		Graph:    graph,
		Engine:   eng,
		Metrics:  reg,
	}

	switch cfg.Recorder.Backend {
	case config.BackendRedis:
		rc := cfg.Recorder.Redis
		rec := redis.New(rc.Addr, rc.Password, rc.DB,
			redis.WithWindow(cfg.Recorder.Window),
			redis.WithTTL(rc.TTL),
			redis.WithPrefix(rc.Prefix),
		)
		app.Recorder = rec
		app.closers = append(app.closers, rec.Close)
		if rc.Lock {
			app.Locker = redis.NewLocker(rec.Client(), rec.Prefix())
			app.LockKey = "run"
		}
		logger.Debug("using redis recorder", "addr", rc.Addr, "prefix", rc.Prefix)
	default:
		app.Recorder = memory.NewRecorder(cfg.Recorder.Window)
	}

	return app, nil
}

// Close stops the engine and releases the recorder.
func (a *App) Close() error {
	a.Engine.Stop()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
