package goJWT

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"go.uber.org/zap"

	"github.com/MrEthical07/goJWT/internal/flows"
	"github.com/MrEthical07/goJWT/keystore"
)

// Engine encodes and decodes tokens. It holds only immutable configuration and
// concurrency-safe collaborators, so its methods may be called from many goroutines.
type Engine struct {
	config  Config
	logger  *zap.Logger
	keySets keystore.Repository
	metrics *Metrics
	audit   *auditDispatcher
	now     func() time.Time
	deps    flows.Deps
	closed  atomic.Bool
}

// Close stops the audit dispatcher after delivering buffered events. Encode and
// Decode return [ErrEngineNotReady] afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() error {
	if e == nil || e.closed.Load() {
		return ErrEngineNotReady
	}
	return nil
}

// Encode builds a signed or encrypted token from req. Any failure aborts the whole
// operation with one typed error; there is never a partial token.
//
// When ctx is done before the token is ready, Encode returns ctx.Err() and the
// pending result is discarded.
func (e *Engine) Encode(ctx context.Context, req EncodeRequest) (*EncodeResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		e.canceled(ctx, OperationEncode, time.Now())
		return nil, ctx.Err()
	}

	in := flows.EncodeInput{
		Header:          req.Header,
		Payload:         req.Payload,
		Expiry:          req.Expiry.flowMode(),
		ExpiresAfter:    req.Expiry.After(),
		IncludeIssuedAt: req.IncludeIssuedAt,
		Keys:            req.Keys,
	}

	start := time.Now()
	done := make(chan flows.EncodeResult, 1)
	go func() {
		done <- flows.RunEncode(ctx, in, e.deps.Encode)
	}()

	var res flows.EncodeResult
	select {
	case <-ctx.Done():
		e.canceled(ctx, OperationEncode, start)
		return nil, ctx.Err()
	case res = <-done:
	}

	elapsed := time.Since(start)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricEncodeLatency, elapsed)
	}
	e.countWarnings(res.Warnings)

	op := operation{
		name:     OperationEncode,
		variant:  variantOf(res.Shape),
		alg:      res.Algorithm,
		err:      res.Err,
		warnings: len(res.Warnings),
		elapsed:  elapsed,
	}
	if res.Err != nil {
		e.metricInc(MetricEncodeFailure)
		e.countFailure(res.Failure)
		e.audit.emit(ctx, op)
		return nil, res.Err
	}

	e.metricInc(MetricEncodeSuccess)
	e.audit.emit(ctx, op)
	return &EncodeResult{
		Token:     res.Token,
		Header:    res.Header,
		Payload:   res.Payload,
		Variant:   variantOf(res.Shape),
		Algorithm: res.Algorithm,
		Warnings:  res.Warnings,
	}, nil
}

// Decode classifies, verifies or decrypts, and checks the validity of a token.
// Verification and decryption failures are errors. Validity problems such as
// expiry are reported in DecodeResult.Violations and are not errors.
func (e *Engine) Decode(ctx context.Context, req DecodeRequest) (*DecodeResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		e.canceled(ctx, OperationDecode, time.Now())
		return nil, ctx.Err()
	}

	in := flows.DecodeInput{
		Token: req.Token,
		Keys:  req.Keys,
	}

	start := time.Now()
	done := make(chan flows.DecodeResult, 1)
	go func() {
		done <- flows.RunDecode(ctx, in, e.deps.Decode)
	}()

	var res flows.DecodeResult
	select {
	case <-ctx.Done():
		e.canceled(ctx, OperationDecode, start)
		return nil, ctx.Err()
	case res = <-done:
	}

	elapsed := time.Since(start)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricDecodeLatency, elapsed)
	}
	e.countWarnings(res.Warnings)

	op := operation{
		name:       OperationDecode,
		variant:    variantOf(res.Shape),
		alg:        res.Algorithm,
		err:        res.Err,
		violations: len(res.Violations),
		warnings:   len(res.Warnings),
		elapsed:    elapsed,
	}
	if res.Err != nil {
		e.metricInc(MetricDecodeFailure)
		e.countFailure(res.Failure)
		e.audit.emit(ctx, op)
		return nil, res.Err
	}

	e.metricInc(MetricDecodeSuccess)
	if len(res.Violations) > 0 {
		e.metricInc(MetricInvalidToken)
		e.metrics.Add(MetricValidityViolation, uint64(len(res.Violations)))
	}
	e.audit.emit(ctx, op)

	out := &DecodeResult{
		Header:     res.Header,
		Payload:    res.Payload,
		Variant:    variantOf(res.Shape),
		Algorithm:  res.Algorithm,
		Violations: res.Violations,
		Warnings:   res.Warnings,
	}
	if d := res.Derivation; d != nil {
		out.Derivation = &Derivation{Iterations: d.Iterations, Salt: d.Salt, FromHeader: d.FromHeader}
	}
	return out, nil
}

// EncodeAsync runs Encode in its own goroutine. The returned channel receives exactly
// one outcome and is never closed.
func (e *Engine) EncodeAsync(ctx context.Context, req EncodeRequest) <-chan EncodeOutcome {
	out := make(chan EncodeOutcome, 1)
	go func() {
		res, err := e.Encode(ctx, req)
		out <- EncodeOutcome{Result: res, Err: err}
	}()
	return out
}

// DecodeAsync runs Decode in its own goroutine. The returned channel receives exactly
// one outcome and is never closed.
func (e *Engine) DecodeAsync(ctx context.Context, req DecodeRequest) <-chan DecodeOutcome {
	out := make(chan DecodeOutcome, 1)
	go func() {
		res, err := e.Decode(ctx, req)
		out <- DecodeOutcome{Result: res, Err: err}
	}()
	return out
}

// PutKeySet stores a named key set for later use through KeyMaterial.KeySet.
func (e *Engine) PutKeySet(ctx context.Context, name string, set jose.JSONWebKeySet) error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.keySets == nil {
		return ErrNoKeyRepository
	}
	if err := e.keySets.Put(ctx, name, set); err != nil {
		return err
	}
	e.logger.Debug("key set stored", zap.String("name", name), zap.Int("keys", len(set.Keys)))
	return nil
}

func (e *Engine) DeleteKeySet(ctx context.Context, name string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.keySets == nil {
		return ErrNoKeyRepository
	}
	return e.keySets.Delete(ctx, name)
}

func (e *Engine) canceled(ctx context.Context, name string, start time.Time) {
	e.metricInc(MetricCanceled)
	e.logger.Debug("operation canceled", zap.String("operation", name), zap.Error(ctx.Err()))
	// ctx is done; the event is emitted without its cancellation.
	e.audit.emit(context.WithoutCancel(ctx), operation{
		name:    name,
		err:     ctx.Err(),
		elapsed: time.Since(start),
	})
}

func (e *Engine) countWarnings(warnings []error) {
	for _, w := range warnings {
		if errors.Is(w, ErrIterationCountOutOfRange) {
			e.metricInc(MetricIterationDefaulted)
		}
	}
}

func (e *Engine) countFailure(kind flows.FailureKind) {
	switch kind {
	case flows.FailureInput, flows.FailureShape:
		e.metricInc(MetricMalformedInput)
	case flows.FailureAlgorithm:
		e.metricInc(MetricUnknownAlgorithm)
	case flows.FailureKey, flows.FailureCompatibility:
		e.metricInc(MetricKeyRejected)
	case flows.FailureVerification:
		e.metricInc(MetricVerificationFailed)
	case flows.FailureDecryption:
		e.metricInc(MetricDecryptionFailed)
	}
}
