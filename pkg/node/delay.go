package node

import (
	"sync"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
)

type timedValue struct {
	at    time.Time
	value float64
}

// DelayLine approximates a pure delay of its source.
//
// Each tick records the current source value and then drops every record
// older than the delay. Sample returns the oldest surviving record, which
// once warmed up is the one taken roughly delay ago. Before the first tick
// it samples 0.
type DelayLine struct {
	source domain.Node
	delay  time.Duration
	clock  Clock

	mu      sync.Mutex
	history []timedValue
}

// NewDelayLine delays source by the given number of seconds.
func NewDelayLine(source domain.Node, seconds float64, clock Clock) *DelayLine {
	if clock == nil {
		clock = SystemClock()
	}
	return &DelayLine{
		source: source,
		delay:  time.Duration(seconds * float64(time.Second)),
		clock:  clock,
	}
}

// Tick records one source sample and forgets records older than the delay.
func (d *DelayLine) Tick() {
	v := d.source.Sample()
	now := d.clock.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = append(d.history, timedValue{at: now, value: v})
	kept := d.history[:0]
	for _, tv := range d.history {
		if now.Sub(tv.at) <= d.delay {
			kept = append(kept, tv)
		}
	}
	clear(d.history[len(kept):])
	d.history = kept
}

func (d *DelayLine) Sample() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.history) == 0 {
		return 0
	}
	return d.history[0].value
}

// Len returns the number of retained records.
func (d *DelayLine) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history)
}

func (d *DelayLine) Bounds() domain.Range { return d.source.Bounds() }

func (d *DelayLine) Kind() string { return domain.KindDelay }

func (d *DelayLine) Children() []domain.Node { return []domain.Node{d.source} }
