package goJWT

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	jose "github.com/go-jose/go-jose/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Unix(1700000000, 0)

const testSecret = "a-string-secret-at-least-256-bits-long"

func newTestEngine(t *testing.T, configure func(*Builder)) (*Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	b := New().
		WithLogger(zap.New(core)).
		WithClock(func() time.Time { return fixedNow }).
		WithLatencyHistograms(true)
	if configure != nil {
		configure(b)
	}
	e, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, logs
}

func rsaPEM(t *testing.T) (string, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), key
}

func TestEncodeDecodeHS256RoundTrip(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	material := KeyMaterial{Secret: testSecret}

	enc, err := e.Encode(ctx, EncodeRequest{
		Header:  `{"alg":"HS256"}`,
		Payload: `{"sub":"1234567890","name":"John Doe"}`,
		Keys:    material,
	})
	require.NoError(t, err)
	assert.Equal(t, VariantSigned, enc.Variant)
	assert.Equal(t, Algorithm("HS256"), enc.Algorithm)
	assert.Equal(t, "JWT", enc.Header["typ"])
	assert.Len(t, strings.Split(enc.Token, "."), 3)

	dec, err := e.Decode(ctx, DecodeRequest{Token: enc.Token, Keys: material})
	require.NoError(t, err)
	assert.True(t, dec.Valid())
	assert.Equal(t, "1234567890", dec.Payload["sub"])
	assert.Equal(t, "John Doe", dec.Payload["name"])
	assert.Equal(t, VariantSigned, dec.Variant)
	assert.Nil(t, dec.Derivation)

	snap := e.MetricsSnapshot()
	assert.Equal(t, uint64(1), snap.Counters[MetricEncodeSuccess])
	assert.Equal(t, uint64(1), snap.Counters[MetricDecodeSuccess])
	assert.Len(t, snap.Histograms[MetricEncodeLatency], 8)
}

func TestEncodeExpiryDirectives(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	material := KeyMaterial{Secret: testSecret}

	res, err := e.Encode(ctx, EncodeRequest{
		Header:          `{"alg":"HS256"}`,
		Payload:         `{"exp":1}`,
		Expiry:          ExpiryDirective{Mode: ExpiryRelative, Amount: 2, Unit: Minutes},
		IncludeIssuedAt: true,
		Keys:            material,
	})
	require.NoError(t, err)
	assert.EqualValues(t, fixedNow.Unix()+120, res.Payload["exp"])
	assert.EqualValues(t, fixedNow.Unix(), res.Payload["iat"])

	res, err = e.Encode(ctx, EncodeRequest{
		Header:  `{"alg":"HS256"}`,
		Payload: `{"exp":1}`,
		Expiry:  ExpiryDirective{Mode: ExpiryNone},
		Keys:    material,
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Payload, "exp")
	assert.NotContains(t, res.Payload, "iat")
}

func TestEncodeRejectsNonPositiveRelativeExpiry(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	for _, d := range []ExpiryDirective{
		{Mode: ExpiryRelative, Amount: 0},
		{Mode: ExpiryRelative, Amount: -5},
		{Mode: ExpiryRelative, Amount: -1, Unit: Minutes},
		{Mode: ExpiryRelative, Amount: 1 << 62, Unit: Minutes},
	} {
		res, err := e.Encode(ctx, EncodeRequest{
			Header:  `{"alg":"HS256"}`,
			Payload: `{"sub":"x"}`,
			Expiry:  d,
			Keys:    KeyMaterial{Secret: testSecret},
		})
		require.ErrorIs(t, err, ErrMalformedInput, "%+v", d)
		var mie *MalformedInputError
		require.ErrorAs(t, err, &mie)
		assert.Equal(t, "payload", mie.Segment)
		assert.Nil(t, res)
	}

	// Keep and none ignore Amount.
	_, err := e.Encode(ctx, EncodeRequest{
		Header:  `{"alg":"HS256"}`,
		Payload: `{}`,
		Expiry:  ExpiryDirective{Mode: ExpiryNone, Amount: -5},
		Keys:    KeyMaterial{Secret: testSecret},
	})
	require.NoError(t, err)
}

func TestParseExpiry(t *testing.T) {
	cases := map[string]ExpiryDirective{
		"keep":  {Mode: ExpiryKeep},
		"":      {Mode: ExpiryKeep},
		" None": {Mode: ExpiryNone},
		"1":     {Mode: ExpiryRelative, Amount: 1, Unit: Seconds},
		"90s":   {Mode: ExpiryRelative, Amount: 90, Unit: Seconds},
		"10M":   {Mode: ExpiryRelative, Amount: 10, Unit: Minutes},
	}
	for in, want := range cases {
		got, err := ParseExpiry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"0", "0s", "007", "-5", "-5s", "+5", "10ms", "5sm", "10h", "m", "s", "soon", "1.5m", "99999999999999999999"} {
		_, err := ParseExpiry(in)
		require.ErrorIs(t, err, ErrMalformedInput, in)
	}
}

func TestEncryptedHeaderKeepsNumericMembers(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	material := KeyMaterial{Password: "correct horse battery staple", Iterations: "1000"}

	res, err := e.Encode(ctx, EncodeRequest{
		Header:  `{"alg":"PBES2-HS256+A128KW","enc":"A128GCM","ver":2,"flag":true}`,
		Payload: `{"sub":"x"}`,
		Keys:    material,
	})
	require.NoError(t, err)
	assert.Equal(t, json.Number("2"), res.Header["ver"])
	assert.Equal(t, true, res.Header["flag"])

	raw, err := base64.RawURLEncoding.DecodeString(strings.SplitN(res.Token, ".", 2)[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"ver":2`)

	dec, err := e.Decode(ctx, DecodeRequest{Token: res.Token, Keys: material})
	require.NoError(t, err)
	assert.Equal(t, json.Number("2"), dec.Header["ver"])
}

func TestDecodeReportsExpiredAndNotBefore(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	material := KeyMaterial{Secret: testSecret}

	expired, err := e.Encode(ctx, EncodeRequest{
		Header:  `{"alg":"HS256"}`,
		Payload: `{"exp":1699999900}`,
		Keys:    material,
	})
	require.NoError(t, err)
	dec, err := e.Decode(ctx, DecodeRequest{Token: expired.Token, Keys: material})
	require.NoError(t, err)
	require.Len(t, dec.Violations, 1)
	assert.Equal(t, "token expired 100 seconds ago", dec.Violations[0].Reason)
	assert.False(t, dec.Valid())

	early, err := e.Encode(ctx, EncodeRequest{
		Header:  `{"alg":"HS256"}`,
		Payload: `{"nbf":1700000050}`,
		Keys:    material,
	})
	require.NoError(t, err)
	dec, err = e.Decode(ctx, DecodeRequest{Token: early.Token, Keys: material})
	require.NoError(t, err)
	require.Len(t, dec.Violations, 1)
	assert.Equal(t, "token is not valid yet, becomes valid in 50 seconds", dec.Violations[0].Reason)

	snap := e.MetricsSnapshot()
	assert.Equal(t, uint64(2), snap.Counters[MetricInvalidToken])
	assert.Equal(t, uint64(2), snap.Counters[MetricValidityViolation])
}

func TestEncodeRejectsIncompatibleKeys(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	privatePEM, _ := rsaPEM(t)

	_, err := e.Encode(ctx, EncodeRequest{
		Header:  `{"alg":"ES256"}`,
		Payload: `{}`,
		Keys:    KeyMaterial{PrivateKey: privatePEM},
	})
	var incompatible *IncompatibleAlgorithmError
	require.ErrorAs(t, err, &incompatible)
	assert.ErrorIs(t, err, ErrIncompatibleAlgorithm)
	assert.Equal(t, Algorithm("ES256"), incompatible.Algorithm)

	_, err = e.Encode(ctx, EncodeRequest{
		Header:  `{"alg":"HS512"}`,
		Payload: `{}`,
		Keys:    KeyMaterial{Secret: "0123456789abcdef"},
	})
	var short *InsufficientKeyLengthError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 64, short.Required)
	assert.Equal(t, 16, short.Provided)

	assert.Equal(t, uint64(2), e.MetricsSnapshot().Counters[MetricKeyRejected])
}

func TestDecodeShapeAndInputErrors(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := e.Decode(ctx, DecodeRequest{Token: "a.b.c.d"})
	assert.ErrorIs(t, err, ErrNotAToken)

	_, err = e.Decode(ctx, DecodeRequest{Token: "!!!.e30.sig"})
	assert.ErrorIs(t, err, ErrMalformedHeader)

	_, err = e.Encode(ctx, EncodeRequest{Header: `{"alg":`, Payload: `{}`})
	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "header", malformed.Segment)

	_, err = e.Encode(ctx, EncodeRequest{Header: `{"alg":"HS999"}`, Payload: `{}`, Keys: KeyMaterial{Secret: testSecret}})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	snap := e.MetricsSnapshot()
	assert.Equal(t, uint64(3), snap.Counters[MetricMalformedInput])
	assert.Equal(t, uint64(1), snap.Counters[MetricUnknownAlgorithm])
}

func TestDecodeVerificationFailure(t *testing.T) {
	e, logs := newTestEngine(t, nil)
	ctx := context.Background()

	enc, err := e.Encode(ctx, EncodeRequest{Header: `{"alg":"HS256"}`, Payload: `{}`, Keys: KeyMaterial{Secret: testSecret}})
	require.NoError(t, err)

	_, err = e.Decode(ctx, DecodeRequest{Token: enc.Token, Keys: KeyMaterial{Secret: testSecret + "-other"}})
	var failed *VerificationFailedError
	require.ErrorAs(t, err, &failed)
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Equal(t, uint64(1), e.MetricsSnapshot().Counters[MetricVerificationFailed])
	assert.Equal(t, 1, logs.FilterMessage("verification failed").Len())
	for _, entry := range logs.All() {
		for _, f := range entry.Context {
			assert.NotContains(t, f.String, testSecret)
		}
	}
}

func TestEncryptedRoundTrips(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	privatePEM, _ := rsaPEM(t)

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	ecDER, err := x509.MarshalPKCS8PrivateKey(ecKey)
	require.NoError(t, err)
	ecPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: ecDER}))

	cases := []struct {
		name   string
		header string
		keys   KeyMaterial
	}{
		{"rsa-oaep-256", `{"alg":"RSA-OAEP-256","enc":"A256GCM"}`, KeyMaterial{PrivateKey: privatePEM}},
		{"ecdh-es-kw", `{"alg":"ECDH-ES+A128KW","enc":"A128CBC-HS256"}`, KeyMaterial{PrivateKey: ecPEM}},
		{"pbes2", `{"alg":"PBES2-HS256+A128KW","enc":"A128GCM"}`, KeyMaterial{Password: "correct horse", Iterations: "1000"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enc, err := e.Encode(ctx, EncodeRequest{Header: tc.header, Payload: `{"sub":"enc"}`, Keys: tc.keys})
			require.NoError(t, err)
			assert.Equal(t, VariantEncrypted, enc.Variant)
			assert.Len(t, strings.Split(enc.Token, "."), 5)
			assert.NotContains(t, enc.Header, "kid")

			dec, err := e.Decode(ctx, DecodeRequest{Token: enc.Token, Keys: tc.keys})
			require.NoError(t, err)
			assert.Equal(t, "enc", dec.Payload["sub"])
			assert.Empty(t, dec.Violations)
		})
	}
}

func TestPBES2IterationFallback(t *testing.T) {
	e, logs := newTestEngine(t, nil)
	ctx := context.Background()

	enc, err := e.Encode(ctx, EncodeRequest{
		Header:  `{"alg":"PBES2-HS256+A128KW","enc":"A128GCM"}`,
		Payload: `{}`,
		Keys:    KeyMaterial{Password: "pw", Iterations: "abc"},
	})
	require.NoError(t, err)
	require.Len(t, enc.Warnings, 1)
	assert.ErrorIs(t, enc.Warnings[0], ErrIterationCountOutOfRange)
	assert.EqualValues(t, "8192", enc.Header["p2c"])
	assert.Contains(t, enc.Header, "p2s")
	assert.Equal(t, 1, logs.FilterMessage("iteration count replaced").FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, uint64(1), e.MetricsSnapshot().Counters[MetricIterationDefaulted])

	dec, err := e.Decode(ctx, DecodeRequest{Token: enc.Token, Keys: KeyMaterial{Password: "pw"}})
	require.NoError(t, err)
	require.NotNil(t, dec.Derivation)
	assert.True(t, dec.Derivation.FromHeader)
	assert.Equal(t, 8192, dec.Derivation.Iterations)
	assert.Len(t, dec.Derivation.Salt, 16)

	_, err = e.Decode(ctx, DecodeRequest{Token: enc.Token, Keys: KeyMaterial{Password: "nope"}})
	var failed *DecryptionFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, uint64(1), e.MetricsSnapshot().Counters[MetricDecryptionFailed])
}

func TestEncodeChoosesAlgorithmWithChooser(t *testing.T) {
	var offered []Algorithm
	e, _ := newTestEngine(t, func(b *Builder) {
		b.WithAlgorithmChooser(func(acceptable []Algorithm) Algorithm {
			offered = acceptable
			return acceptable[0]
		})
	})
	privatePEM, _ := rsaPEM(t)

	res, err := e.Encode(context.Background(), EncodeRequest{Header: `{}`, Payload: `{}`, Keys: KeyMaterial{PrivateKey: privatePEM}})
	require.NoError(t, err)
	assert.Equal(t, offered[0], res.Algorithm)
	assert.Contains(t, offered, Algorithm("RS256"))
	assert.Contains(t, offered, Algorithm("PS512"))
}

func TestRandomAlgorithmStaysInSet(t *testing.T) {
	set := []Algorithm{"HS256", "HS384", "HS512"}
	for i := 0; i < 50; i++ {
		assert.Contains(t, set, RandomAlgorithm(set))
	}
}

func TestEngineContextCanceled(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Encode(ctx, EncodeRequest{Header: `{"alg":"HS256"}`, Payload: `{}`, Keys: KeyMaterial{Secret: testSecret}})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = e.Decode(ctx, DecodeRequest{Token: "a.b.c"})
	assert.ErrorIs(t, err, context.Canceled)

	snap := e.MetricsSnapshot()
	assert.Equal(t, uint64(2), snap.Counters[MetricCanceled])
	assert.Zero(t, snap.Counters[MetricEncodeSuccess])
}

func TestEngineAsync(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	material := KeyMaterial{Secret: testSecret}

	encOut := <-e.EncodeAsync(ctx, EncodeRequest{Header: `{"alg":"HS384"}`, Payload: `{"n":1}`, Keys: KeyMaterial{Secret: strings.Repeat("k", 48)}})
	require.NoError(t, encOut.Err)
	assert.Equal(t, Algorithm("HS384"), encOut.Result.Algorithm)

	decOut := <-e.DecodeAsync(ctx, DecodeRequest{Token: "not-a-token", Keys: material})
	assert.ErrorIs(t, decOut.Err, ErrNotAToken)
	assert.Nil(t, decOut.Result)
}

func TestEngineClosedOrNil(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.Close()
	e.Close()

	_, err := e.Encode(context.Background(), EncodeRequest{})
	assert.ErrorIs(t, err, ErrEngineNotReady)

	var nilEngine *Engine
	_, err = nilEngine.Decode(context.Background(), DecodeRequest{})
	assert.ErrorIs(t, err, ErrEngineNotReady)
	assert.Zero(t, nilEngine.AuditDropped())
	assert.Empty(t, nilEngine.MetricsSnapshot().Counters)
}

func TestEngineAuditEvents(t *testing.T) {
	sink := NewChannelSink(8)
	e, _ := newTestEngine(t, func(b *Builder) {
		cfg := DefaultConfig()
		cfg.Audit.Enabled = true
		b.WithConfig(cfg).WithAuditSink(sink)
	})
	ctx := context.Background()

	enc, err := e.Encode(ctx, EncodeRequest{Header: `{"alg":"HS256"}`, Payload: `{}`, Keys: KeyMaterial{Secret: testSecret}})
	require.NoError(t, err)
	_, err = e.Decode(ctx, DecodeRequest{Token: enc.Token, Keys: KeyMaterial{Secret: strings.Repeat("x", 32)}})
	require.Error(t, err)

	first := receiveEvent(t, sink)
	assert.Equal(t, OperationEncode, first.Operation)
	assert.Equal(t, "signed", first.Variant)
	assert.Equal(t, "HS256", first.Algorithm)
	assert.True(t, first.Success)
	assert.Equal(t, fixedNow.UTC(), first.Timestamp)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)

	second := receiveEvent(t, sink)
	assert.Equal(t, OperationDecode, second.Operation)
	assert.False(t, second.Success)
	assert.Equal(t, "verification_failed", second.Error)
	assert.NotEqual(t, first.ID, second.ID)
}

func receiveEvent(t *testing.T, sink *ChannelSink) OperationEvent {
	t.Helper()
	select {
	case ev := <-sink.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
		return OperationEvent{}
	}
}

func TestErrorCode(t *testing.T) {
	cases := map[string]error{
		"":                    nil,
		"canceled":            context.DeadlineExceeded,
		"not_a_token":         ErrNotAToken,
		"unknown_algorithm":   &UnknownAlgorithmError{Algorithm: "X"},
		"key_missing":         &InvalidKeyError{Field: "secret", Err: ErrKeyMaterialMissing},
		"invalid_key":         &InvalidKeyError{Field: "privateKey"},
		"decryption_failed":   &DecryptionFailedError{Err: errors.New("boom")},
		"key_set_unavailable": ErrKeySetUnavailable,
		"internal":            errors.New("other"),
	}
	for want, err := range cases {
		assert.Equal(t, want, ErrorCode(err), "error %v", err)
	}
}

func TestEngineNamedKeySetsInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e, _ := newTestEngine(t, func(b *Builder) { b.WithRedis(rdb) })
	ctx := context.Background()
	_, rsaKey := rsaPEM(t)

	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{Key: rsaKey, KeyID: "k1", Algorithm: "RS256", Use: "sig"}}}
	require.NoError(t, e.PutKeySet(ctx, "main", set))
	assert.True(t, mr.Exists("gojwt:jwks:main"))

	enc, err := e.Encode(ctx, EncodeRequest{Header: `{"alg":"RS256","kid":"k1"}`, Payload: `{"sub":"set"}`, Keys: KeyMaterial{KeySet: "main"}})
	require.NoError(t, err)
	assert.Equal(t, "k1", enc.Header["kid"])

	dec, err := e.Decode(ctx, DecodeRequest{Token: enc.Token, Keys: KeyMaterial{KeySet: "main"}})
	require.NoError(t, err)
	assert.Equal(t, "set", dec.Payload["sub"])

	require.NoError(t, e.DeleteKeySet(ctx, "main"))
	_, err = e.Decode(ctx, DecodeRequest{Token: enc.Token, Keys: KeyMaterial{KeySet: "main"}})
	assert.ErrorIs(t, err, ErrKeySetNotFound)
}

func TestEngineWithoutKeyRepository(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	err := e.PutKeySet(context.Background(), "main", jose.JSONWebKeySet{})
	assert.ErrorIs(t, err, ErrNoKeyRepository)
}
