package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/espalier/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log engine events at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart: func(ctx context.Context, e *domain.EngineEvent) {
			logger.Debug("Engine Started", "graph", e.Graph, "tickers", e.Tickers)
		},
		OnStop: func(ctx context.Context, e *domain.EngineEvent) {
			logger.Debug("Engine Stopped", "graph", e.Graph)
		},
		OnSample: func(ctx context.Context, e *domain.SampleEvent) {
			logger.Debug("Sample", "label", e.Label, "value", e.Value)
		},
	}
}

// MergeHooks calls every non-nil callback of each hook set in order.
func MergeHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart: func(ctx context.Context, e *domain.EngineEvent) {
			for _, h := range sets {
				if h.OnStart != nil {
					h.OnStart(ctx, e)
				}
			}
		},
		OnStop: func(ctx context.Context, e *domain.EngineEvent) {
			for _, h := range sets {
				if h.OnStop != nil {
					h.OnStop(ctx, e)
				}
			}
		},
		OnSample: func(ctx context.Context, e *domain.SampleEvent) {
			for _, h := range sets {
				if h.OnSample != nil {
					h.OnSample(ctx, e)
				}
			}
		},
	}
}
