package runner

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// OutputHandler defines the strategy for presenting sampled outputs.
// This allows switching between Text (terminal monitor) and JSON (NDJSON stream) modes.
type OutputHandler interface {
	// Output presents one sampling pass over every output.
	Output(ctx context.Context, frame domain.Frame) error

	// SystemOutput presents a meta-message to the user (e.g. command feedback, status updates).
	// This is distinct from frame rendering.
	SystemOutput(ctx context.Context, msg string) error
}
