package keystore

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	jose "github.com/go-jose/go-jose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goJWT/jwa"
)

func testSet(t *testing.T) (jose.JSONWebKeySet, *rsa.PrivateKey, *ecdsa.PrivateKey) {
	t.Helper()
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return jose.JSONWebKeySet{Keys: []jose.JSONWebKey{
		{Key: []byte("0123456789abcdef0123456789abcdef"), KeyID: "hmac", Algorithm: "HS256"},
		{Key: rsaKey, KeyID: "rsa-1"},
		{Key: &ecKey.PublicKey, KeyID: "ec-pub"},
		{Key: ecKey, KeyID: "ec-1"},
	}}, rsaKey, ecKey
}

func TestSelectPrecedence(t *testing.T) {
	set, _, _ := testSet(t)

	k, err := Select(set, Hints{KeyID: "rsa-1", Algorithm: jwa.HS256})
	require.NoError(t, err)
	assert.Equal(t, "rsa-1", k.KeyID)

	k, err = Select(set, Hints{KeyID: "missing", Algorithm: jwa.HS256})
	require.NoError(t, err)
	assert.Equal(t, "hmac", k.KeyID)

	k, err = Select(set, Hints{Algorithm: jwa.PS384})
	require.NoError(t, err)
	assert.Equal(t, "rsa-1", k.KeyID)

	k, err = Select(set, Hints{Algorithm: jwa.ES256})
	require.NoError(t, err)
	assert.Equal(t, "ec-pub", k.KeyID)

	k, err = Select(set, Hints{Algorithm: jwa.ES256, Private: true})
	require.NoError(t, err)
	assert.Equal(t, "ec-1", k.KeyID)

	_, err = Select(set, Hints{Algorithm: jwa.ES512})
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = Select(set, Hints{KeyID: "missing"})
	assert.ErrorIs(t, err, ErrKeyNotFound)

	k, err = Select(set, Hints{})
	require.NoError(t, err)
	assert.Equal(t, "hmac", k.KeyID)

	_, err = Select(jose.JSONWebKeySet{}, Hints{})
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDefaultSelectorDelegates(t *testing.T) {
	set, _, _ := testSet(t)
	k, err := DefaultSelector().Select(context.Background(), set, Hints{KeyID: "ec-1"})
	require.NoError(t, err)
	assert.Equal(t, "ec-1", k.KeyID)
}

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisRepository(rdb, "", ttl), mr
}

func TestRepositories(t *testing.T) {
	redisRepo, _ := newRedisRepo(t, 0)
	repos := map[string]Repository{
		"memory": NewMemoryRepository(),
		"redis":  redisRepo,
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			set, rsaKey, _ := testSet(t)

			_, err := repo.Get(ctx, "primary")
			require.ErrorIs(t, err, ErrSetNotFound)

			require.NoError(t, repo.Put(ctx, "primary", set))
			got, err := repo.Get(ctx, "primary")
			require.NoError(t, err)
			require.Len(t, got.Keys, len(set.Keys))

			k, err := Select(got, Hints{KeyID: "rsa-1"})
			require.NoError(t, err)
			priv, ok := k.Key.(*rsa.PrivateKey)
			require.True(t, ok)
			assert.Equal(t, 0, priv.N.Cmp(rsaKey.N))

			require.NoError(t, repo.Delete(ctx, "primary"))
			require.NoError(t, repo.Delete(ctx, "primary"))
			_, err = repo.Get(ctx, "primary")
			assert.ErrorIs(t, err, ErrSetNotFound)

			assert.ErrorIs(t, repo.Put(ctx, "  ", set), ErrInvalidSetName)
		})
	}
}

func TestRedisRepositoryTTLAndPrefix(t *testing.T) {
	repo, mr := newRedisRepo(t, time.Minute)
	set, _, _ := testSet(t)
	require.NoError(t, repo.Put(context.Background(), "rotating", set))

	assert.True(t, mr.Exists("gojwt:jwks:rotating"))
	assert.Equal(t, time.Minute, mr.TTL("gojwt:jwks:rotating"))

	mr.FastForward(2 * time.Minute)
	_, err := repo.Get(context.Background(), "rotating")
	assert.ErrorIs(t, err, ErrSetNotFound)
}

func TestRedisRepositoryUnavailable(t *testing.T) {
	repo, mr := newRedisRepo(t, 0)
	mr.Close()

	_, err := repo.Get(context.Background(), "primary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRepositoryUnavailable))

	_, err = repo.Ping(context.Background())
	assert.ErrorIs(t, err, ErrRepositoryUnavailable)
}

func TestRedisRepositoryCorruptDocument(t *testing.T) {
	repo, mr := newRedisRepo(t, 0)
	require.NoError(t, mr.Set("gojwt:jwks:broken", "{not json"))
	_, err := repo.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSetNotFound)
}
