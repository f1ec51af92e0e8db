// Package report renders engine results as JSON documents for the command line
// and HTTP hosts.
package report

import (
	"encoding/base64"

	goJWT "github.com/MrEthical07/goJWT"
)

// Encoded is the JSON view of an encode result.
type Encoded struct {
	Token     string         `json:"token"`
	Variant   string         `json:"variant"`
	Algorithm string         `json:"alg"`
	Header    map[string]any `json:"header"`
	Payload   map[string]any `json:"payload"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// Derivation is the JSON view of PBES2 parameters.
type Derivation struct {
	Iterations int    `json:"iterations"`
	Salt       string `json:"salt"`
	FromHeader bool   `json:"fromHeader"`
}

// Decoded is the JSON view of a decode result.
type Decoded struct {
	Valid      bool           `json:"valid"`
	Variant    string         `json:"variant"`
	Algorithm  string         `json:"alg"`
	Header     map[string]any `json:"header"`
	Payload    map[string]any `json:"payload"`
	Violations []string       `json:"violations,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	Derivation *Derivation    `json:"derivation,omitempty"`
}

// Error is the JSON view of a failed operation.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func FromEncode(res *goJWT.EncodeResult) Encoded {
	return Encoded{
		Token:     res.Token,
		Variant:   res.Variant.String(),
		Algorithm: string(res.Algorithm),
		Header:    res.Header,
		Payload:   res.Payload,
		Warnings:  messages(res.Warnings),
	}
}

func FromDecode(res *goJWT.DecodeResult) Decoded {
	out := Decoded{
		Valid:     res.Valid(),
		Variant:   res.Variant.String(),
		Algorithm: string(res.Algorithm),
		Header:    res.Header,
		Payload:   res.Payload,
		Warnings:  messages(res.Warnings),
	}
	for _, v := range res.Violations {
		out.Violations = append(out.Violations, v.Reason)
	}
	if d := res.Derivation; d != nil {
		out.Derivation = &Derivation{
			Iterations: d.Iterations,
			Salt:       base64.RawURLEncoding.EncodeToString(d.Salt),
			FromHeader: d.FromHeader,
		}
	}
	return out
}

// FromError labels err with the same code the audit trail uses.
func FromError(err error) Error {
	return Error{Code: goJWT.ErrorCode(err), Message: err.Error()}
}

func messages(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
