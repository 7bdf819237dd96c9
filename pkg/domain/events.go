package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventEngineStart EventType = "engine_start"
	EventEngineStop  EventType = "engine_stop"
	EventSample      EventType = "sample"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// EngineEvent represents a start or stop of the engine.
type EngineEvent struct {
	EventBase
	Graph   string `json:"graph,omitempty"`
	Tickers int    `json:"tickers"`
}

// SampleEvent represents one pull-based read of a labelled output.
type SampleEvent struct {
	EventBase
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStart  func(context.Context, *EngineEvent)
	OnStop   func(context.Context, *EngineEvent)
	OnSample func(context.Context, *SampleEvent)
}
