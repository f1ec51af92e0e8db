package goJWT

import (
	"context"
	"time"

	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/keystore"
)

// HealthStatus is an on-demand view of the key set backend.
type HealthStatus struct {
	// KeySetsConfigured is false when the engine has no key set repository.
	KeySetsConfigured bool
	KeySetsAvailable  bool
	KeySetsLatency    time.Duration
}

type pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Health probes the key set repository. Repositories without a network backend
// report available with zero latency.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil || e.keySets == nil {
		return HealthStatus{}
	}
	p, ok := e.keySets.(pinger)
	if !ok {
		return HealthStatus{KeySetsConfigured: true, KeySetsAvailable: true}
	}
	latency, err := p.Ping(ctx)
	return HealthStatus{
		KeySetsConfigured: true,
		KeySetsAvailable:  err == nil,
		KeySetsLatency:    latency,
	}
}

// SecurityReport summarizes the settings that affect what an engine accepts and
// records. It holds no key material.
type SecurityReport struct {
	DefaultIterations int
	SaltLength        int
	DefaultType       string
	KeySetBackend     string
	KeySetTTL         time.Duration
	AuditEnabled      bool
	AuditDropIfFull   bool
	MetricsEnabled    bool
	LatencyHistograms bool
	Algorithms        AlgorithmCounts
	// LintCodes lists the Config.Lint findings at WARN or above.
	LintCodes []string
}

// AlgorithmCounts is the size of each family in the algorithm catalog.
type AlgorithmCounts struct {
	Signing           int
	KeyEncryption     int
	ContentEncryption int
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	backend := "none"
	switch e.keySets.(type) {
	case nil:
	case *keystore.RedisRepository:
		backend = "redis"
	case *keystore.MemoryRepository:
		backend = "memory"
	default:
		backend = "custom"
	}

	cfg := e.config
	return SecurityReport{
		DefaultIterations: cfg.Defaults.IterationCount,
		SaltLength:        cfg.Defaults.SaltLength,
		DefaultType:       cfg.Defaults.Type,
		KeySetBackend:     backend,
		KeySetTTL:         cfg.KeySets.TTL,
		AuditEnabled:      cfg.Audit.Enabled,
		AuditDropIfFull:   cfg.Audit.DropIfFull,
		MetricsEnabled:    cfg.Metrics.Enabled,
		LatencyHistograms: cfg.Metrics.EnableLatencyHistograms,
		Algorithms: AlgorithmCounts{
			Signing:           len(jwa.Signing()),
			KeyEncryption:     len(jwa.KeyEncryption()),
			ContentEncryption: len(jwa.ContentEncryption()),
		},
		LintCodes: cfg.Lint().BySeverity(LintWarn).Codes(),
	}
}
