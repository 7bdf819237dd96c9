package runner_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/control"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newControls() (*control.Registry, *control.Slider, *control.Switch) {
	reg := control.NewRegistry()
	throttle := control.NewSlider(0, 0, 1)
	tcs := control.NewSwitch(false)
	reg.AddSlider("throttle", throttle)
	reg.AddSwitch("traction_control", tcs)
	return reg, throttle, tcs
}

func TestConsole_Execute(t *testing.T) {
	reg, throttle, tcs := newControls()
	c := runner.NewConsole(strings.NewReader(""), reg)

	tests := []struct {
		line    string
		want    string
		wantErr string
	}{
		{line: "", want: ""},
		{line: "   ", want: ""},
		{line: "set throttle 0.25", want: "throttle = 0.25"},
		{line: "SET throttle 7", want: "throttle = 1"},
		{line: "on traction_control", want: "traction_control on"},
		{line: "flip traction_control", want: "traction_control off"},
		{line: "off traction_control", want: "traction_control off"},
		{line: "set throttle", wantErr: "usage"},
		{line: "set throttle fast", wantErr: "invalid value"},
		{line: "set brakes 1", wantErr: "unknown control"},
		{line: "on throttle", wantErr: "unknown control"},
		{line: "jump", wantErr: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := c.Execute(tt.line)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, 1.0, throttle.CurrentValue())
	assert.False(t, tcs.IsActive())
}

func TestConsole_UnknownControlIsTyped(t *testing.T) {
	reg, _, _ := newControls()
	_, err := runner.NewConsole(nil, reg).Execute("flip nothing")
	assert.ErrorIs(t, err, domain.ErrUnknownControl)
}

func TestConsole_List(t *testing.T) {
	reg, _, _ := newControls()
	out, err := runner.NewConsole(nil, reg).Execute("list")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "throttle (slider"))
	assert.True(t, strings.HasPrefix(lines[1], "traction_control (switch"))
}

func TestConsole_Serve(t *testing.T) {
	reg, throttle, tcs := newControls()
	in := strings.NewReader("set throttle 0.5\nbogus\non traction_control") // last line has no newline
	handler := &captureHandler{}

	err := runner.NewConsole(in, reg).Serve(context.Background(), handler)
	require.NoError(t, err)

	assert.Equal(t, 0.5, throttle.CurrentValue())
	assert.True(t, tcs.IsActive())
	msgs := handler.System()
	require.Len(t, msgs, 3)
	assert.Equal(t, "throttle = 0.5", msgs[0])
	assert.True(t, strings.HasPrefix(msgs[1], "error: unknown command"))
	assert.Equal(t, "traction_control on", msgs[2])
}

func TestConsole_ServeStopsOnCancel(t *testing.T) {
	reg, _, _ := newControls()
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.NewConsole(pr, reg).Serve(ctx, &captureHandler{}) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("console did not stop")
	}
}
