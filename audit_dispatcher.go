package goJWT

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	internalaudit "github.com/MrEthical07/goJWT/internal/audit"
)

type auditDispatcher struct {
	d   *internalaudit.Dispatcher
	now func() time.Time
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink, now func() time.Time) *auditDispatcher {
	d := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
	if d == nil {
		return nil
	}
	return &auditDispatcher{d: d, now: now}
}

// operation describes one finished Encode or Decode for the audit trail.
type operation struct {
	name       string
	variant    Variant
	alg        Algorithm
	err        error
	violations int
	warnings   int
	elapsed    time.Duration
}

func (a *auditDispatcher) emit(ctx context.Context, op operation) {
	if a == nil {
		return
	}
	event := OperationEvent{
		ID:         uuid.NewString(),
		Timestamp:  a.now().UTC(),
		Operation:  op.name,
		Algorithm:  string(op.alg),
		Success:    op.err == nil,
		Error:      ErrorCode(op.err),
		Violations: op.violations,
		Warnings:   op.warnings,
		Duration:   op.elapsed,
		Metadata:   auditMetadata(ctx),
	}
	if op.variant != VariantUnknown {
		event.Variant = op.variant.String()
	}
	a.d.Emit(ctx, event)
}

func (a *auditDispatcher) Close() {
	if a == nil {
		return
	}
	a.d.Close()
}

func (a *auditDispatcher) Dropped() uint64 {
	if a == nil {
		return 0
	}
	return a.d.Dropped()
}

// ErrorCode maps an error to the stable, content-free label used in audit records
// and host error responses. Unrecognized errors map to "internal".
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrNotAToken):
		return "not_a_token"
	case errors.Is(err, ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, ErrUnknownAlgorithm):
		return "unknown_algorithm"
	case errors.Is(err, ErrIncompatibleAlgorithm):
		return "incompatible_algorithm"
	case errors.Is(err, ErrInsufficientKeyLength):
		return "insufficient_key_length"
	case errors.Is(err, ErrVerificationFailed):
		return "verification_failed"
	case errors.Is(err, ErrDecryptionFailed):
		return "decryption_failed"
	case errors.Is(err, ErrKeyNotFound), errors.Is(err, ErrKeySetNotFound):
		return "key_not_found"
	case errors.Is(err, ErrKeySetUnavailable):
		return "key_set_unavailable"
	case errors.Is(err, ErrKeyMaterialMissing):
		return "key_missing"
	case errors.Is(err, ErrInvalidKey), errors.Is(err, ErrUnsupportedKeyEncoding):
		return "invalid_key"
	default:
		return "internal"
	}
}
