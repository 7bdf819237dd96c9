package cli

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.SampleInterval = 20 * time.Millisecond
	return cfg
}

func TestNewApp_Defaults(t *testing.T) {
	app, err := NewApp(testConfig(), logging.NewNop(), true)
	require.NoError(t, err)
	defer app.Close()

	assert.Len(t, app.Traction.Wheels, 4)
	assert.Nil(t, app.Locker)
	assert.NotNil(t, app.Recorder)
	assert.Equal(t, "throttle", app.Engine.Outputs()[0].Label)
}

func TestNewApp_ScenarioParams(t *testing.T) {
	cfg := testConfig()
	cfg.Scenario = map[string]any{"wheels": "2"}
	app, err := NewApp(cfg, logging.NewNop(), false)
	require.NoError(t, err)
	defer app.Close()
	assert.Len(t, app.Traction.Wheels, 2)

	cfg.Scenario = map[string]any{"wheels": 1}
	_, err = NewApp(cfg, logging.NewNop(), false)
	assert.Error(t, err)
}

func TestRun_JSONWithReport(t *testing.T) {
	app, err := NewApp(testConfig(), logging.NewNop(), false)
	require.NoError(t, err)
	defer app.Close()

	var out bytes.Buffer
	err = Run(context.Background(), app, RunOptions{
		Duration: 200 * time.Millisecond,
		JSON:     true,
		Report:   true,
		Stdin:    strings.NewReader("set throttle 1\non traction_control\n"),
		Stdout:   &out,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, app.Traction.Throttle.CurrentValue())
	assert.True(t, app.Traction.TractionControl.IsActive())

	text := out.String()
	assert.Contains(t, text, `{"type":"frame"`)
	assert.Contains(t, text, `{"type":"system","message":"throttle = 1"}`)
	assert.Contains(t, text, "Run report")
}

func TestRun_RedisRecorderWithLock(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Recorder.Backend = config.BackendRedis
	cfg.Recorder.Redis.Addr = mr.Addr()
	cfg.Recorder.Redis.Lock = true

	app, err := NewApp(cfg, logging.NewNop(), false)
	require.NoError(t, err)
	defer app.Close()
	require.NotNil(t, app.Locker)

	var out bytes.Buffer
	err = Run(context.Background(), app, RunOptions{Duration: 400 * time.Millisecond, JSON: true, Stdout: &out})
	require.NoError(t, err)

	assert.True(t, mr.Exists("espalier:series:throttle"))
	assert.True(t, mr.Exists("espalier:series:wheel_1.speed"))
	assert.False(t, mr.Exists("espalier:lock:run"), "the run lock is released")
}

func TestServe(t *testing.T) {
	app, err := NewApp(testConfig(), logging.NewNop(), false)
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, app, "127.0.0.1:0", ready) }()

	var addr string
	select {
	case addr = <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/outputs/throttle")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, app.Engine.Running())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, app.Engine.Running())
}
