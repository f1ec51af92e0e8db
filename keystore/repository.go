package keystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrSetNotFound is returned when no key set is stored under a name.
	ErrSetNotFound = errors.New("key set not found")
	// ErrRepositoryUnavailable wraps backend failures.
	ErrRepositoryUnavailable = errors.New("key set repository unavailable")
	// ErrInvalidSetName is returned for empty or whitespace-only names.
	ErrInvalidSetName = errors.New("invalid key set name")
)

// Repository stores named key sets.
type Repository interface {
	Put(ctx context.Context, name string, set jose.JSONWebKeySet) error
	Get(ctx context.Context, name string) (jose.JSONWebKeySet, error)
	Delete(ctx context.Context, name string) error
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidSetName
	}
	return nil
}

// MemoryRepository keeps key sets in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	sets map[string][]byte
}

// NewMemoryRepository returns an empty [MemoryRepository].
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sets: make(map[string][]byte)}
}

// Put stores a serialized copy of set, so later mutations by the caller are not observed.
func (r *MemoryRepository) Put(_ context.Context, name string, set jose.JSONWebKeySet) error {
	if err := checkName(name); err != nil {
		return err
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.sets[name] = raw
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, name string) (jose.JSONWebKeySet, error) {
	r.mu.RLock()
	raw, ok := r.sets[name]
	r.mu.RUnlock()
	if !ok {
		return jose.JSONWebKeySet{}, ErrSetNotFound
	}
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(raw, &set); err != nil {
		return jose.JSONWebKeySet{}, err
	}
	return set, nil
}

func (r *MemoryRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	delete(r.sets, name)
	r.mu.Unlock()
	return nil
}

// RedisRepository stores key sets as JWKS JSON documents under prefix:name.
type RedisRepository struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisRepository creates a Redis-backed [Repository]. A zero ttl stores sets
// without expiry.
func NewRedisRepository(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisRepository {
	if prefix == "" {
		prefix = "gojwt:jwks"
	}
	return &RedisRepository{redis: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRepository) key(name string) string {
	return r.prefix + ":" + name
}

func (r *RedisRepository) Put(ctx context.Context, name string, set jose.JSONWebKeySet) error {
	if err := checkName(name); err != nil {
		return err
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return err
	}
	if err := r.redis.Set(ctx, r.key(name), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, name string) (jose.JSONWebKeySet, error) {
	raw, err := r.redis.Get(ctx, r.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return jose.JSONWebKeySet{}, ErrSetNotFound
	}
	if err != nil {
		return jose.JSONWebKeySet{}, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(raw, &set); err != nil {
		return jose.JSONWebKeySet{}, fmt.Errorf("decode key set %q: %w", name, err)
	}
	return set, nil
}

// Delete is idempotent.
func (r *RedisRepository) Delete(ctx context.Context, name string) error {
	if err := r.redis.Del(ctx, r.key(name)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return nil
}

// Ping checks Redis availability and returns the round-trip latency.
func (r *RedisRepository) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return time.Since(start), nil
}
