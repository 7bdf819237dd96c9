package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Recorder backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "espalier.yaml"

// Config represents the structure of espalier.yaml.
type Config struct {
	// Tick is the scheduler interval and integration step.
	Tick time.Duration `yaml:"tick" json:"tick"`
	// SampleInterval is how often the runner polls the outputs.
	SampleInterval time.Duration `yaml:"sample_interval" json:"sample_interval"`
	LogLevel       string        `yaml:"log_level" json:"log_level"`

	Recorder RecorderConfig `yaml:"recorder" json:"recorder"`
	HTTP     HTTPConfig     `yaml:"http" json:"http"`

	// Scenario holds free-form parameters decoded by the scenario package.
	Scenario map[string]any `yaml:"scenario" json:"scenario"`
}

// RecorderConfig selects where output history is kept.
type RecorderConfig struct {
	Backend string        `yaml:"backend" json:"backend"`
	Window  time.Duration `yaml:"window" json:"window"`
	Redis   RedisConfig   `yaml:"redis" json:"redis"`
}

// RedisConfig configures the Redis recorder.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"-"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
	// Lock takes a distributed lock on the prefix for the duration of a run.
	Lock bool `yaml:"lock" json:"lock"`
}

// HTTPConfig configures the HTTP adapter.
type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tick:           domain.DefaultTick,
		SampleInterval: domain.DefaultSampleInterval,
		LogLevel:       "info",
		Recorder: RecorderConfig{
			Backend: BackendMemory,
			Window:  domain.DefaultWindow,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "espalier:",
			},
		},
		HTTP: HTTPConfig{Addr: ":8080"},
	}
}

// Load reads a YAML file over the defaults, then applies ESPALIER_*
// environment overrides. An empty path tries DefaultPath and falls back to
// the defaults if it does not exist; an explicit missing path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ESPALIER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ESPALIER_RECORDER"); v != "" {
		cfg.Recorder.Backend = v
	}
	if v := os.Getenv("ESPALIER_REDIS_ADDR"); v != "" {
		cfg.Recorder.Redis.Addr = v
	}
	if v := os.Getenv("ESPALIER_REDIS_PASSWORD"); v != "" {
		cfg.Recorder.Redis.Password = v
	}
	if v := os.Getenv("ESPALIER_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive, got %v", c.Tick))
	}
	if c.SampleInterval <= 0 {
		errs = append(errs, fmt.Errorf("sample_interval must be positive, got %v", c.SampleInterval))
	}
	if c.Recorder.Window <= 0 {
		errs = append(errs, fmt.Errorf("recorder.window must be positive, got %v", c.Recorder.Window))
	}
	switch c.Recorder.Backend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown recorder backend %q", c.Recorder.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
