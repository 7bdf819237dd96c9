package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// Recorder keeps a bounded rolling history of output samples, for plots and
// reports. The engine itself keeps no history.
type Recorder interface {
	// Append records a point for label and forgets every point of that label
	// older than the recorder window, measured from p.Time.
	Append(ctx context.Context, label string, p domain.Point) error

	// Window returns the retained points of label, oldest first.
	// An unknown label yields an empty slice and no error.
	Window(ctx context.Context, label string) ([]domain.Point, error)

	// Labels returns every label with at least one recorded point, sorted.
	Labels(ctx context.Context) ([]string, error)
}
