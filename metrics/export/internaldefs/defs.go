package internaldefs

import (
	goJWT "github.com/MrEthical07/goJWT"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   goJWT.MetricID
	Name string
	Help string
}

// HistogramDef names one latency histogram for exporters.
type HistogramDef struct {
	ID   goJWT.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for audit events dropped under backpressure.
const AuditDroppedName = "gojwt_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

var CounterDefs = []CounterDef{
	{ID: goJWT.MetricEncodeSuccess, Name: "gojwt_encode_success_total", Help: "Tokens produced."},
	{ID: goJWT.MetricEncodeFailure, Name: "gojwt_encode_failure_total", Help: "Encode operations that returned an error."},
	{ID: goJWT.MetricDecodeSuccess, Name: "gojwt_decode_success_total", Help: "Tokens verified or decrypted."},
	{ID: goJWT.MetricDecodeFailure, Name: "gojwt_decode_failure_total", Help: "Decode operations that returned an error."},
	{ID: goJWT.MetricMalformedInput, Name: "gojwt_malformed_input_total", Help: "Header, payload or token text that could not be parsed."},
	{ID: goJWT.MetricUnknownAlgorithm, Name: "gojwt_unknown_algorithm_total", Help: "Requests naming an algorithm outside the catalog."},
	{ID: goJWT.MetricKeyRejected, Name: "gojwt_key_rejected_total", Help: "Key material that was missing, unparseable or unsuitable for the algorithm."},
	{ID: goJWT.MetricVerificationFailed, Name: "gojwt_verification_failed_total", Help: "Signatures that did not verify."},
	{ID: goJWT.MetricDecryptionFailed, Name: "gojwt_decryption_failed_total", Help: "Encrypted tokens that could not be decrypted."},
	{ID: goJWT.MetricInvalidToken, Name: "gojwt_invalid_token_total", Help: "Decoded tokens with at least one validity violation."},
	{ID: goJWT.MetricValidityViolation, Name: "gojwt_validity_violation_total", Help: "Validity violations across all decoded tokens."},
	{ID: goJWT.MetricIterationDefaulted, Name: "gojwt_iteration_defaulted_total", Help: "PBKDF2 iteration counts replaced by the default."},
	{ID: goJWT.MetricCanceled, Name: "gojwt_canceled_total", Help: "Operations abandoned because the context ended."},
}

var HistogramDefs = []HistogramDef{
	{ID: goJWT.MetricEncodeLatency, Name: "gojwt_encode_latency_seconds", Help: "Encode latency histogram."},
	{ID: goJWT.MetricDecodeLatency, Name: "gojwt_decode_latency_seconds", Help: "Decode latency histogram."},
}

// HistogramBounds are the upper bounds of the engine's latency buckets, in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix holds HistogramBounds in a form usable inside instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, zero filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
