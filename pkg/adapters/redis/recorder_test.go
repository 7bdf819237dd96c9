package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisRecorder_Contract(t *testing.T) {
	ports.RunRecorderContract(t, func(window time.Duration) ports.Recorder {
		_, client := newClient(t)
		return redis.NewFromClient(client, redis.WithWindow(window))
	})
}

func TestRedisRecorder_KeyLayout(t *testing.T) {
	mr, client := newClient(t)
	rec := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	at := time.Date(2024, 1, 1, 0, 0, 0, 123456789, time.UTC)
	require.NoError(t, rec.Append(ctx, "wheel_1.speed", domain.Point{Time: at, Value: 42.5}))

	assert.True(t, mr.Exists("test:series:wheel_1.speed"))
	members, err := mr.SMembers("test:labels")
	require.NoError(t, err)
	assert.Equal(t, []string{"wheel_1.speed"}, members)

	points, err := rec.Window(ctx, "wheel_1.speed")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].Time.Equal(at), "nanosecond timestamp survives the round trip")
	assert.Equal(t, 42.5, points[0].Value)
}

func TestRedisRecorder_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	rec := redis.NewFromClient(client, redis.WithTTL(time.Second), redis.WithPrefix("ttl:"))
	ctx := context.Background()

	require.NoError(t, rec.Append(ctx, "throttle", domain.Point{Time: time.Now(), Value: 1}))
	assert.True(t, mr.Exists("ttl:series:throttle"))

	mr.FastForward(2 * time.Second)

	assert.False(t, mr.Exists("ttl:series:throttle"), "series should expire")
	points, err := rec.Window(ctx, "throttle")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestRedisRecorder_CorruptMember(t *testing.T) {
	mr, client := newClient(t)
	rec := redis.NewFromClient(client, redis.WithPrefix("bad:"))

	_, err := mr.ZAdd("bad:series:x", 1, "garbage")
	require.NoError(t, err)

	_, err = rec.Window(context.Background(), "x")
	assert.ErrorContains(t, err, "malformed point")
}
