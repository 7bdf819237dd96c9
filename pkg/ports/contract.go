package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRecorderContract runs a suite of tests to verify that a Recorder implementation
// adheres to the defined interface contract. newRecorder must return an empty
// recorder keeping the given window.
func RunRecorderContract(t *testing.T, newRecorder func(window time.Duration) Recorder) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Append and Window", func(t *testing.T) {
		rec := newRecorder(time.Minute)

		for i := 0; i < 3; i++ {
			p := domain.Point{Time: base.Add(time.Duration(i) * time.Second), Value: float64(i)}
			require.NoError(t, rec.Append(ctx, "speed", p), "Append should not return error")
		}

		points, err := rec.Window(ctx, "speed")
		require.NoError(t, err)
		require.Len(t, points, 3)
		for i, p := range points {
			assert.Equal(t, float64(i), p.Value)
			assert.True(t, p.Time.Equal(base.Add(time.Duration(i)*time.Second)), "point %d time", i)
		}
	})

	t.Run("Window trims old points", func(t *testing.T) {
		rec := newRecorder(10 * time.Second)

		require.NoError(t, rec.Append(ctx, "speed", domain.Point{Time: base, Value: 1}))
		require.NoError(t, rec.Append(ctx, "speed", domain.Point{Time: base.Add(5 * time.Second), Value: 2}))
		require.NoError(t, rec.Append(ctx, "speed", domain.Point{Time: base.Add(20 * time.Second), Value: 3}))

		points, err := rec.Window(ctx, "speed")
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, 3.0, points[0].Value)
	})

	t.Run("Unknown label", func(t *testing.T) {
		rec := newRecorder(time.Minute)

		points, err := rec.Window(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("Labels", func(t *testing.T) {
		rec := newRecorder(time.Minute)

		require.NoError(t, rec.Append(ctx, "wheel_2.speed", domain.Point{Time: base, Value: 1}))
		require.NoError(t, rec.Append(ctx, "throttle", domain.Point{Time: base, Value: 0.5}))
		require.NoError(t, rec.Append(ctx, "wheel_1.speed", domain.Point{Time: base, Value: 2}))

		labels, err := rec.Labels(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"throttle", "wheel_1.speed", "wheel_2.speed"}, labels)
	})

	t.Run("Concurrent appends", func(t *testing.T) {
		rec := newRecorder(time.Hour)

		var wg sync.WaitGroup
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 25; i++ {
					p := domain.Point{Time: base.Add(time.Duration(w*25+i) * time.Millisecond), Value: float64(w*25 + i)}
					assert.NoError(t, rec.Append(ctx, fmt.Sprintf("w%d", w%2), p))
				}
			}(w)
		}
		wg.Wait()

		a, err := rec.Window(ctx, "w0")
		require.NoError(t, err)
		b, err := rec.Window(ctx, "w1")
		require.NoError(t, err)
		assert.Equal(t, 100, len(a)+len(b))
	})
}
