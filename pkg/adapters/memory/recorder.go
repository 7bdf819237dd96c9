package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Recorder implements ports.Recorder in memory.
// Safe for concurrent use.
type Recorder struct {
	window time.Duration

	mu     sync.RWMutex
	series map[string][]domain.Point
}

var _ ports.Recorder = (*Recorder)(nil)

// NewRecorder creates a new in-memory recorder keeping window of history
// per label. A non-positive window selects domain.DefaultWindow.
func NewRecorder(window time.Duration) *Recorder {
	if window <= 0 {
		window = domain.DefaultWindow
	}
	return &Recorder{
		window: window,
		series: make(map[string][]domain.Point),
	}
}

// Append stores the point in time order and drops points older than the window.
func (r *Recorder) Append(_ context.Context, label string, p domain.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := r.series[label]
	i := sort.Search(len(points), func(i int) bool { return points[i].Time.After(p.Time) })
	points = slices.Insert(points, i, p)

	cutoff := p.Time.Add(-r.window)
	drop := sort.Search(len(points), func(i int) bool { return !points[i].Time.Before(cutoff) })
	if drop > 0 {
		points = slices.Delete(points, 0, drop)
	}
	r.series[label] = points
	return nil
}

// Window returns a copy of the retained points, oldest first.
func (r *Recorder) Window(_ context.Context, label string) ([]domain.Point, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.Point{}, r.series[label]...), nil
}

// Labels returns every recorded label, sorted.
func (r *Recorder) Labels(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := make([]string, 0, len(r.series))
	for label := range r.series {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels, nil
}
