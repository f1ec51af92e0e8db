package otel

import (
	"context"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	goJWT "github.com/MrEthical07/goJWT"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goJWT.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goJWT.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goJWT.MetricsSnapshot{
		Counters:   make(map[goJWT.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[goJWT.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		out.Histograms[k] = append([]uint64(nil), buckets...)
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newReader() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = dp.Value
				}
			}
		}
	}
	return out
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newReader()

	src := &fakeSource{
		snapshot: goJWT.MetricsSnapshot{
			Counters: map[goJWT.MetricID]uint64{
				goJWT.MetricEncodeSuccess: 3,
			},
			Histograms: map[goJWT.MetricID][]uint64{
				goJWT.MetricEncodeLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := New(provider.Meter("gojwt-test"), src)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	got := collect(t, reader)
	if got["gojwt_encode_success_total"] != 3 {
		t.Fatalf("encode success = %d, want 3", got["gojwt_encode_success_total"])
	}
	if got["gojwt_encode_latency_seconds_bucket_le_inf"] != 8 {
		t.Fatalf("+Inf bucket = %d, want 8", got["gojwt_encode_latency_seconds_bucket_le_inf"])
	}
	if got["gojwt_encode_latency_seconds_count"] != 8 {
		t.Fatalf("count = %d, want 8", got["gojwt_encode_latency_seconds_count"])
	}
	if got["gojwt_audit_dropped_total"] != 1 {
		t.Fatalf("audit dropped = %d, want 1", got["gojwt_audit_dropped_total"])
	}
}

func TestExporterReadsEngine(t *testing.T) {
	reader, provider := newReader()

	e, err := goJWT.New().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer e.Close()

	exp, err := New(provider.Meter("gojwt-test"), e)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer exp.Close()

	_, _ = e.Decode(context.Background(), goJWT.DecodeRequest{Token: "a.b"})
	if got := collect(t, reader)["gojwt_decode_failure_total"]; got != 1 {
		t.Fatalf("decode failure = %d, want 1", got)
	}
}

func TestExporterRejectsNilArguments(t *testing.T) {
	_, provider := newReader()

	if _, err := New(provider.Meter("gojwt-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := New(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newReader()

	src := &fakeSource{
		snapshot: goJWT.MetricsSnapshot{
			Counters: map[goJWT.MetricID]uint64{
				goJWT.MetricDecodeSuccess: 1,
			},
			Histograms: map[goJWT.MetricID][]uint64{
				goJWT.MetricDecodeLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := New(provider.Meter("gojwt-test"), src)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goJWT.MetricDecodeSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
