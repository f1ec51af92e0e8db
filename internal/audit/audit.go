package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is the canonical audit record for one engine operation. It never carries key
// material, token strings or claim values.
type Event struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Operation  string            `json:"operation"`
	Variant    string            `json:"variant,omitempty"`
	Algorithm  string            `json:"alg,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Violations int               `json:"violations,omitempty"`
	Warnings   int               `json:"warnings,omitempty"`
	Duration   time.Duration     `json:"duration_ns"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// LoggerSink writes each event as a structured log entry at info level.
type LoggerSink struct {
	logger *zap.Logger
}

func NewLoggerSink(logger *zap.Logger) *LoggerSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggerSink{logger: logger}
}

func (s *LoggerSink) Emit(_ context.Context, event Event) {
	fields := []zap.Field{
		zap.String("id", event.ID),
		zap.String("operation", event.Operation),
		zap.Bool("success", event.Success),
		zap.Duration("duration", event.Duration),
	}
	if event.Variant != "" {
		fields = append(fields, zap.String("variant", event.Variant))
	}
	if event.Algorithm != "" {
		fields = append(fields, zap.String("alg", event.Algorithm))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	if event.Violations > 0 {
		fields = append(fields, zap.Int("violations", event.Violations))
	}
	if event.Warnings > 0 {
		fields = append(fields, zap.Int("warnings", event.Warnings))
	}
	s.logger.Info("audit", fields...)
}
