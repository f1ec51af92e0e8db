package goJWT

import (
	"io"

	"go.uber.org/zap"

	internalaudit "github.com/MrEthical07/goJWT/internal/audit"
)

// OperationEvent is the audit record the engine emits once per Encode or Decode.
// It never contains key material, token text or claim values.
type OperationEvent = internalaudit.Event

// AuditSink receives [OperationEvent] values from the engine's audit dispatcher.
//
// Emit is called from a single dispatcher goroutine and should not block for long.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes one JSON object per line to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// LoggerSink is an [AuditSink] that writes events through a zap logger.
type LoggerSink = internalaudit.LoggerSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

func NewLoggerSink(logger *zap.Logger) *LoggerSink {
	return internalaudit.NewLoggerSink(logger)
}

const (
	// OperationEncode is the Operation of events emitted by [Engine.Encode].
	OperationEncode = "encode"
	// OperationDecode is the Operation of events emitted by [Engine.Decode].
	OperationDecode = "decode"
)
