package goJWT

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/goJWT/internal"
	"github.com/MrEthical07/goJWT/internal/flows"
	"github.com/MrEthical07/goJWT/keystore"
)

// AlgorithmChooser picks the signing algorithm when a header has no "alg". It is
// called with the non-empty set of algorithms acceptable for the key.
type AlgorithmChooser func(acceptable []Algorithm) Algorithm

// RandomAlgorithm picks uniformly from the acceptable set. It is the default chooser.
func RandomAlgorithm(acceptable []Algorithm) Algorithm {
	return acceptable[rand.IntN(len(acceptable))]
}

// Builder configures and constructs an [Engine]. A Builder is single-use.
type Builder struct {
	config Config
	logger *zap.Logger

	keySets  keystore.Repository
	redis    redis.UniversalClient
	selector keystore.Selector

	auditSink AuditSink
	now       func() time.Time
	chooser   AlgorithmChooser

	built bool
}

// New returns a Builder holding [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithKeyRepository sets the store that KeyMaterial.KeySet names are looked up in.
func (b *Builder) WithKeyRepository(repo keystore.Repository) *Builder {
	b.keySets = repo
	return b
}

// WithRedis stores named key sets in Redis using the KeySets config. It is ignored
// when WithKeyRepository is also used.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithKeySelector replaces the rule that picks one key out of a JWKS or named set.
func (b *Builder) WithKeySelector(selector keystore.Selector) *Builder {
	b.selector = selector
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock replaces time.Now for expiry, issued-at and validity checks.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithAlgorithmChooser replaces [RandomAlgorithm].
func (b *Builder) WithAlgorithmChooser(chooser AlgorithmChooser) *Builder {
	b.chooser = chooser
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}
	chooser := b.chooser
	if chooser == nil {
		chooser = RandomAlgorithm
	}

	// -------- KEY SETS --------
	keySets := b.keySets
	if keySets == nil && b.redis != nil {
		keySets = keystore.NewRedisRepository(b.redis, cfg.KeySets.RedisPrefix, cfg.KeySets.TTL)
	}
	resolver := flows.KeyResolver{Selector: b.selector}
	if keySets != nil {
		resolver.KeySets = keySets
	}

	e := &Engine{
		config:  cfg,
		logger:  logger,
		keySets: keySets,
		metrics: NewMetrics(cfg.Metrics),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink, now),
		now:     now,
		deps: flows.Deps{
			Encode: flows.EncodeDeps{
				Now:             now,
				DefaultType:     cfg.Defaults.Type,
				SaltLength:      cfg.Defaults.SaltLength,
				Iterations:      cfg.Defaults.IterationCount,
				NewSalt:         internal.NewSalt,
				ChooseAlgorithm: chooser,
				Keys:            resolver,
				Logger:          logger.Named("encode"),
			},
			Decode: flows.DecodeDeps{
				Now:        now,
				Iterations: cfg.Defaults.IterationCount,
				Keys:       resolver,
				Logger:     logger.Named("decode"),
			},
		},
	}

	b.built = true
	logger.Debug("engine built",
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("audit", cfg.Audit.Enabled),
		zap.Bool("key_sets", keySets != nil),
	)
	return e, nil
}
