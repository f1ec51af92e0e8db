package test

import (
	"context"
	"errors"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v3"

	goJWT "github.com/MrEthical07/goJWT"
)

func TestRedisKeySetSignAndVerify(t *testing.T) {
	engine, mr := newRedisEngine(t, goJWT.DefaultConfig())
	ctx := context.Background()

	if err := engine.PutKeySet(ctx, "issuers", ecKeySet(t, "a", "b")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if !mr.Exists("gojwt:jwks:issuers") {
		t.Fatal("expected key set stored under gojwt:jwks:issuers")
	}
	if ttl := mr.TTL("gojwt:jwks:issuers"); ttl != 24*time.Hour {
		t.Fatalf("expected default 24h TTL, got %v", ttl)
	}

	keys := goJWT.KeyMaterial{KeySet: "issuers"}
	enc, err := engine.Encode(ctx, goJWT.EncodeRequest{
		Header:  `{"alg":"ES256","kid":"b"}`,
		Payload: `{"sub":"svc"}`,
		Keys:    keys,
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	dec, err := engine.Decode(ctx, goJWT.DecodeRequest{Token: enc.Token, Keys: keys})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !dec.Valid() || dec.Header["kid"] != "b" {
		t.Fatalf("unexpected decode result: %+v", dec)
	}

	// Replacing the set rotates key "b" away; the old token no longer verifies.
	if err := engine.PutKeySet(ctx, "issuers", ecKeySet(t, "b")); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	_, err = engine.Decode(ctx, goJWT.DecodeRequest{Token: enc.Token, Keys: keys})
	if !errors.Is(err, goJWT.ErrVerificationFailed) {
		t.Fatalf("expected verification failure after rotation, got %v", err)
	}
}

func TestRedisKeySetNoMatchingKey(t *testing.T) {
	engine, _ := newRedisEngine(t, goJWT.DefaultConfig())
	ctx := context.Background()
	if err := engine.PutKeySet(ctx, "one", ecKeySet(t, "a")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	_, err := engine.Encode(ctx, goJWT.EncodeRequest{
		Header:  `{"alg":"ES384","kid":"zzz"}`,
		Payload: `{}`,
		Keys:    goJWT.KeyMaterial{KeySet: "one"},
	})
	if !errors.Is(err, goJWT.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestRedisKeySetDeleteAndMissing(t *testing.T) {
	engine, mr := newRedisEngine(t, goJWT.DefaultConfig())
	ctx := context.Background()
	if err := engine.PutKeySet(ctx, "gone", ecKeySet(t, "a")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := engine.DeleteKeySet(ctx, "gone"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := engine.DeleteKeySet(ctx, "gone"); err != nil {
		t.Fatalf("second delete must be a no-op, got %v", err)
	}
	if mr.Exists("gojwt:jwks:gone") {
		t.Fatal("key set still stored after delete")
	}

	_, err := engine.Encode(ctx, goJWT.EncodeRequest{
		Header:  `{"alg":"ES256"}`,
		Payload: `{}`,
		Keys:    goJWT.KeyMaterial{KeySet: "gone"},
	})
	if !errors.Is(err, goJWT.ErrKeySetNotFound) {
		t.Fatalf("expected ErrKeySetNotFound, got %v", err)
	}
}

func TestRedisKeySetExpires(t *testing.T) {
	cfg := goJWT.DefaultConfig()
	cfg.KeySets.TTL = time.Minute
	cfg.KeySets.RedisPrefix = "tenant:keys"
	engine, mr := newRedisEngine(t, cfg)
	ctx := context.Background()

	if err := engine.PutKeySet(ctx, "short", ecKeySet(t, "a")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if !mr.Exists("tenant:keys:short") {
		t.Fatal("expected configured prefix")
	}
	mr.FastForward(2 * time.Minute)

	_, err := engine.Encode(ctx, goJWT.EncodeRequest{
		Header:  `{"alg":"ES256"}`,
		Payload: `{}`,
		Keys:    goJWT.KeyMaterial{KeySet: "short"},
	})
	if !errors.Is(err, goJWT.ErrKeySetNotFound) {
		t.Fatalf("expected expired key set to be missing, got %v", err)
	}
}

func TestRedisUnavailable(t *testing.T) {
	engine, mr := newRedisEngine(t, goJWT.DefaultConfig())
	ctx := context.Background()
	mr.Close()

	err := engine.PutKeySet(ctx, "x", jose.JSONWebKeySet{})
	if !errors.Is(err, goJWT.ErrKeySetUnavailable) {
		t.Fatalf("expected ErrKeySetUnavailable on put, got %v", err)
	}
	_, err = engine.Decode(ctx, goJWT.DecodeRequest{
		Token: "eyJhbGciOiJFUzI1NiJ9.e30.c2ln",
		Keys:  goJWT.KeyMaterial{KeySet: "x"},
	})
	if !errors.Is(err, goJWT.ErrKeySetUnavailable) {
		t.Fatalf("expected ErrKeySetUnavailable on decode, got %v", err)
	}
	if goJWT.ErrorCode(err) != "key_set_unavailable" {
		t.Fatalf("unexpected code %q", goJWT.ErrorCode(err))
	}
	if h := engine.Health(ctx); h.KeySetsAvailable {
		t.Fatal("health must report the backend unavailable")
	}
}

func TestDecodeWithFixedClock(t *testing.T) {
	engine, err := goJWT.New().WithClock(fixedClock(1_700_000_000)).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	keys := goJWT.KeyMaterial{Secret: testSecret}
	enc, err := engine.Encode(ctx, goJWT.EncodeRequest{
		Header:  `{"alg":"HS512"}`,
		Payload: `{"nbf":1700000100}`,
		Keys:    goJWT.KeyMaterial{Secret: testSecret + testSecret},
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	_, err = engine.Decode(ctx, goJWT.DecodeRequest{Token: enc.Token, Keys: keys})
	if !errors.Is(err, goJWT.ErrVerificationFailed) && !errors.Is(err, goJWT.ErrInsufficientKeyLength) {
		t.Fatalf("expected wrong-secret failure, got %v", err)
	}
	dec, err := engine.Decode(ctx, goJWT.DecodeRequest{Token: enc.Token, Keys: goJWT.KeyMaterial{Secret: testSecret + testSecret}})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if dec.Valid() || len(dec.Violations) != 1 {
		t.Fatalf("expected one not-yet-valid violation, got %+v", dec.Violations)
	}
}
