package control

import (
	"sync"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlider_ClampsToBounds(t *testing.T) {
	s := NewSlider(5, 0, 1)
	assert.Equal(t, 1.0, s.CurrentValue())

	assert.Equal(t, 0.0, s.Set(-3))
	assert.Equal(t, 0.25, s.Set(0.25))
	assert.Equal(t, domain.Range{Lower: 0, Upper: 1}, s.Bounds())
}

func TestSlider_DrivesInputNode(t *testing.T) {
	s := NewSlider(0, 0, 1)
	in := node.NewInput(s)

	s.Set(0.7)
	assert.Equal(t, 0.7, in.Sample())
	assert.Equal(t, s.Bounds(), in.Bounds())
}

func TestSwitch_Flip(t *testing.T) {
	sw := NewSwitch(false)
	active := node.Active(sw)

	assert.False(t, active())
	assert.True(t, sw.Flip())
	assert.True(t, active())
	assert.False(t, sw.Flip())
}

func TestSwitch_ConcurrentFlips(t *testing.T) {
	sw := NewSwitch(false)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sw.Flip()
		}()
	}
	wg.Wait()
	assert.False(t, sw.IsActive(), "an even number of flips restores the position")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.AddSlider("throttle", NewSlider(0, 0, 1))
	r.AddSwitch("tcs", NewSwitch(true))

	v, err := r.SetSlider("throttle", 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	require.NoError(t, r.SetSwitch("tcs", false))

	_, err = r.SetSlider("tcs", 1)
	assert.ErrorIs(t, err, domain.ErrUnknownControl)
	err = r.SetSwitch("throttle", true)
	assert.ErrorIs(t, err, domain.ErrUnknownControl)

	assert.Equal(t, []Info{
		{Name: "tcs", Kind: KindSwitch, Value: 0, Bounds: domain.Range{Lower: 0, Upper: 1}},
		{Name: "throttle", Kind: KindSlider, Value: 1, Bounds: domain.Range{Lower: 0, Upper: 1}},
	}, r.List())
}

func TestRegistry_Overwrite(t *testing.T) {
	r := NewRegistry()
	r.AddSlider("x", NewSlider(0, 0, 1))
	r.AddSwitch("x", NewSwitch(true))

	_, err := r.Slider("x")
	assert.ErrorIs(t, err, domain.ErrUnknownControl)
	sw, err := r.Switch("x")
	require.NoError(t, err)
	assert.True(t, sw.IsActive())
}
