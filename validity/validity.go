// Package validity reports why a decoded token should not be trusted.
package validity

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/MrEthical07/goJWT/jwa"
)

// Violation is one reason a token is not valid.
type Violation struct {
	Reason string
}

func (v Violation) String() string { return v.Reason }

// Valid reports whether no violations were found.
func Valid(v []Violation) bool { return len(v) == 0 }

// Check runs every rule against header and payload and returns the violations in rule
// order: missing alg, unacceptable alg, expired, not yet valid, issued in the future.
// No rule short-circuits another.
func Check(header, payload map[string]any, acceptable []jwa.Algorithm, now time.Time) []Violation {
	var out []Violation

	alg, hasAlg := header["alg"].(string)
	if !hasAlg || alg == "" {
		hasAlg = false
		out = append(out, Violation{Reason: `missing "alg" header parameter`})
	}
	if !hasAlg || !slices.Contains(acceptable, jwa.Algorithm(alg)) {
		name := alg
		if !hasAlg {
			name = "<none>"
		}
		out = append(out, Violation{Reason: fmt.Sprintf("algorithm %q is not acceptable for the supplied key", name)})
	}

	nowSec := float64(now.Unix())
	if exp, ok := NumericClaim(payload, "exp"); ok && nowSec > exp {
		out = append(out, Violation{Reason: "token expired " + seconds(nowSec-exp) + " ago"})
	}
	if nbf, ok := NumericClaim(payload, "nbf"); ok && nbf > nowSec {
		out = append(out, Violation{Reason: "token is not valid yet, becomes valid in " + seconds(nbf-nowSec)})
	}
	if iat, ok := NumericClaim(payload, "iat"); ok && iat > nowSec {
		out = append(out, Violation{Reason: "token was issued in the future, in " + seconds(iat-nowSec)})
	}
	return out
}

// NumericClaim reads a Unix-seconds claim as given, fractions included. NaN and
// infinite values are treated as absent.
func NumericClaim(claims map[string]any, name string) (float64, bool) {
	var f float64
	switch v := claims[name].(type) {
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// seconds renders a positive delta rounded up to whole seconds.
func seconds(delta float64) string {
	n := math.Ceil(delta)
	if n == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%.0f seconds", n)
}
