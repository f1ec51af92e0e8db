package goJWT

import (
	"fmt"
	"strings"
)

// LintSeverity ranks a configuration finding.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is one finding. Code is stable and safe to match on.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of findings for a Config.
type LintResult []LintWarning

func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the findings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError returns an error listing every finding at or above min, or nil.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	parts := make([]string, 0, len(hits))
	for _, w := range hits {
		parts = append(parts, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

// Lint reports settings that are valid but weak or surprising. It never fails; use
// [Config.Validate] for hard errors.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, format string, args ...any) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if c.Defaults.IterationCount < 1000 {
		add("iterations_low", LintHigh,
			"default PBES2 iteration count %d makes password-derived keys cheap to brute force", c.Defaults.IterationCount)
	}
	if c.Defaults.SaltLength < 16 {
		add("salt_short", LintWarn, "generated PBES2 salts are %d bytes; 16 or more is usual", c.Defaults.SaltLength)
	}
	if c.Defaults.Type == "" {
		add("typ_default_disabled", LintInfo, "headers without \"typ\" are left without one")
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		add("audit_blocking", LintWarn, "a slow audit sink stalls Encode and Decode when the buffer is full")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "no operation events are emitted")
	}
	if c.KeySets.TTL == 0 {
		add("key_set_ttl_none", LintInfo, "named key sets stored in Redis never expire")
	}
	if !c.Metrics.Enabled {
		add("metrics_disabled", LintInfo, "metric snapshots and exporters report zeros")
	}
	return ws
}
