package goJWT

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goJWT/keys"
)

// Config holds engine-wide settings. It is copied at Build and never changes afterwards.
type Config struct {
	Defaults DefaultsConfig
	KeySets  KeySetsConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// DefaultsConfig holds values applied when a request leaves them out.
type DefaultsConfig struct {
	// IterationCount is the PBES2 count used when the request's Iterations is blank.
	IterationCount int
	// SaltLength is the size in bytes of a generated PBES2 salt.
	SaltLength int
	// Type is written to the "typ" header member when the header has none.
	// Empty disables the default.
	Type string
}

// KeySetsConfig configures the named key set repository created by [Builder.WithRedis].
type KeySetsConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

// AuditConfig controls operation event dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Defaults: DefaultsConfig{
			IterationCount: keys.DefaultIterations,
			SaltLength:     16,
			Type:           "JWT",
		},
		KeySets: KeySetsConfig{
			RedisPrefix: "gojwt:jwks",
			TTL:         24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Defaults.IterationCount < keys.MinIterations || c.Defaults.IterationCount >= keys.MaxIterations {
		return errors.New("Defaults IterationCount must be in [50, 100001)")
	}
	if c.Defaults.SaltLength < 8 || c.Defaults.SaltLength > 1024 {
		return errors.New("Defaults SaltLength must be in [8, 1024]")
	}

	if strings.TrimSpace(c.KeySets.RedisPrefix) == "" {
		return errors.New("KeySets RedisPrefix must not be empty")
	}
	if c.KeySets.TTL < 0 {
		return errors.New("KeySets TTL must be >= 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	return nil
}
