package redis

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Recorder implements ports.Recorder using one Redis sorted set per label.
//
// Members encode the exact timestamp and value ("<unix nanos>|<value>"); the
// score is the timestamp in microseconds, which float64 represents exactly.
type Recorder struct {
	client *backend.Client
	prefix string
	window time.Duration
	ttl    time.Duration
}

var _ ports.Recorder = (*Recorder)(nil)

type Option func(*Recorder)

// WithWindow sets the rolling history window (default: 10s).
func WithWindow(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.window = d
		}
	}
}

// WithTTL sets the expiration of every series, refreshed on each append.
// Zero keeps series until they are trimmed.
func WithTTL(ttl time.Duration) Option {
	return func(r *Recorder) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix for series.
func WithPrefix(prefix string) Option {
	return func(r *Recorder) {
		r.prefix = prefix
	}
}

// New creates a new Redis recorder with options.
func New(address, password string, db int, opts ...Option) *Recorder {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis recorder from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Recorder {
	rec := &Recorder{
		client: client,
		prefix: "espalier:",
		window: domain.DefaultWindow,
	}

	for _, opt := range opts {
		opt(rec)
	}

	return rec
}

// Client returns the underlying client, for sharing with a Locker.
func (r *Recorder) Client() *backend.Client { return r.client }

// Prefix returns the key prefix.
func (r *Recorder) Prefix() string { return r.prefix }

func (r *Recorder) key(label string) string {
	return r.prefix + "series:" + label
}

func (r *Recorder) indexKey() string {
	return r.prefix + "labels"
}

// Append records the point and trims the series in one pipeline.
func (r *Recorder) Append(ctx context.Context, label string, p domain.Point) error {
	key := r.key(label)
	cutoff := p.Time.Add(-r.window).UnixMicro()

	pipe := r.client.Pipeline()

	pipe.ZAdd(ctx, key, backend.Z{
		Score:  float64(p.Time.UnixMicro()),
		Member: encodePoint(p),
	})
	// Exclusive bound: a point exactly one window old is kept.
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
	pipe.SAdd(ctx, r.indexKey(), label)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
		pipe.Expire(ctx, r.indexKey(), r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// Window returns the retained points of label, oldest first.
func (r *Recorder) Window(ctx context.Context, label string) ([]domain.Point, error) {
	members, err := r.client.ZRange(ctx, r.key(label), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read series %q: %w", label, err)
	}

	points := make([]domain.Point, 0, len(members))
	for _, m := range members {
		p, err := decodePoint(m)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", label, err)
		}
		points = append(points, p)
	}
	return points, nil
}

// Labels returns every recorded label, sorted.
func (r *Recorder) Labels(ctx context.Context) ([]string, error) {
	labels, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	slices.Sort(labels)
	return labels, nil
}

// Close closes the redis client.
func (r *Recorder) Close() error {
	return r.client.Close()
}

func encodePoint(p domain.Point) string {
	return strconv.FormatInt(p.Time.UnixNano(), 10) + "|" + strconv.FormatFloat(p.Value, 'g', -1, 64)
}

func decodePoint(member string) (domain.Point, error) {
	ts, val, ok := strings.Cut(member, "|")
	if !ok {
		return domain.Point{}, fmt.Errorf("malformed point %q", member)
	}
	nanos, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("malformed timestamp in %q: %w", member, err)
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("malformed value in %q: %w", member, err)
	}
	return domain.Point{Time: time.Unix(0, nanos), Value: v}, nil
}
