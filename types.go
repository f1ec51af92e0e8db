package goJWT

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goJWT/internal/compact"
	"github.com/MrEthical07/goJWT/internal/flows"
	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/keys"
	"github.com/MrEthical07/goJWT/validity"
)

// Algorithm is a catalog algorithm identifier such as "HS256" or "RSA-OAEP-256".
type Algorithm = jwa.Algorithm

// KeyMaterial is the raw key input of one request. See [keys.Material] for which
// fields each algorithm family reads.
type KeyMaterial = keys.Material

// Coding declares how symmetric key text is turned into bytes.
type Coding = keys.Coding

const (
	CodingUTF8   = keys.CodingUTF8
	CodingBase64 = keys.CodingBase64
	CodingHex    = keys.CodingHex
	CodingPBKDF2 = keys.CodingPBKDF2
)

// KeyDescriptor summarizes parsed key material for the compatibility predicates.
type KeyDescriptor = keys.Descriptor

// KeyUsage records what a key is used for in one operation.
type KeyUsage = keys.Usage

const (
	UsageSign   = keys.UsageSign
	UsageVerify = keys.UsageVerify
	UsageDerive = keys.UsageDerive
)

// Violation is one human-readable validity problem found on decode.
type Violation = validity.Violation

// Variant is the serialization of a token.
type Variant int

const (
	VariantUnknown Variant = iota
	// VariantSigned is a three-segment compact JWS.
	VariantSigned
	// VariantEncrypted is a five-segment compact JWE.
	VariantEncrypted
)

func (v Variant) String() string {
	switch v {
	case VariantSigned:
		return "signed"
	case VariantEncrypted:
		return "encrypted"
	default:
		return "unknown"
	}
}

func variantOf(s compact.Shape) Variant {
	switch s {
	case compact.ShapeSigned:
		return VariantSigned
	case compact.ShapeEncrypted:
		return VariantEncrypted
	default:
		return VariantUnknown
	}
}

// ExpiryMode selects what Encode does with the "exp" claim.
type ExpiryMode int

const (
	// ExpiryKeep leaves "exp" exactly as the payload gives it.
	ExpiryKeep ExpiryMode = iota
	// ExpiryNone removes "exp".
	ExpiryNone
	// ExpiryRelative sets "exp" to now plus Amount Units, replacing any given value.
	ExpiryRelative
)

// ExpiryUnit is the unit of a relative expiry.
type ExpiryUnit int

const (
	Seconds ExpiryUnit = iota
	Minutes
)

// ExpiryDirective tells Encode how to set "exp".
type ExpiryDirective struct {
	Mode   ExpiryMode
	Amount int64
	Unit   ExpiryUnit
}

// After is the duration a relative directive adds to the current time. It is zero
// when Amount is below one or the duration does not fit in a time.Duration, and
// Encode rejects such a relative directive.
func (d ExpiryDirective) After() time.Duration {
	unit := time.Second
	if d.Unit == Minutes {
		unit = time.Minute
	}
	if d.Amount < 1 || d.Amount > int64(math.MaxInt64/unit) {
		return 0
	}
	return time.Duration(d.Amount) * unit
}

// ParseExpiry reads the text form of an [ExpiryDirective]: "keep" or empty, "none",
// or a positive count with an optional unit, "90" or "90s" for seconds and "10m"
// for minutes. The count has no sign and no leading zero.
func ParseExpiry(s string) (ExpiryDirective, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "keep":
		return ExpiryDirective{Mode: ExpiryKeep}, nil
	case "none":
		return ExpiryDirective{Mode: ExpiryNone}, nil
	}

	d := ExpiryDirective{Mode: ExpiryRelative, Unit: Seconds}
	digits := s
	switch {
	case strings.HasSuffix(s, "m"):
		d.Unit = Minutes
		digits = s[:len(s)-1]
	case strings.HasSuffix(s, "s"):
		digits = s[:len(s)-1]
	}
	if !isCount(digits) {
		return ExpiryDirective{}, &MalformedInputError{Segment: "expiry", Err: fmt.Errorf("invalid expiry %q", s)}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return ExpiryDirective{}, &MalformedInputError{Segment: "expiry", Err: err}
	}
	d.Amount = n
	if d.After() == 0 {
		return ExpiryDirective{}, &MalformedInputError{Segment: "expiry", Err: fmt.Errorf("expiry %q out of range", s)}
	}
	return d, nil
}

// isCount matches [1-9][0-9]*.
func isCount(s string) bool {
	if s == "" || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (d ExpiryDirective) flowMode() flows.ExpiryMode {
	switch d.Mode {
	case ExpiryNone:
		return flows.ExpiryNone
	case ExpiryRelative:
		return flows.ExpiryRelative
	default:
		return flows.ExpiryKeep
	}
}

// EncodeRequest is the input of [Engine.Encode]. Header and Payload are JSON object
// text. A header with both "alg" and "enc" produces an encrypted token; anything else
// produces a signed token.
type EncodeRequest struct {
	Header          string
	Payload         string
	Expiry          ExpiryDirective
	IncludeIssuedAt bool
	Keys            KeyMaterial
}

// EncodeResult is the output of a successful [Engine.Encode].
type EncodeResult struct {
	Token string
	// Header is the protected header of Token, including members the primitive
	// added such as "p2c", "p2s" and "epk".
	Header    map[string]any
	Payload   map[string]any
	Variant   Variant
	Algorithm Algorithm
	// Warnings holds recoverable problems, such as a replaced iteration count.
	Warnings []error
}

// DecodeRequest is the input of [Engine.Decode].
type DecodeRequest struct {
	Token string
	Keys  KeyMaterial
}

// Derivation reports the PBES2 parameters of a decoded token. Decryption always
// uses the "p2c" and "p2s" members of the token header. When the header lacks one
// of them, the request's Iterations or Salt stands in for display only and
// FromHeader is false; such a token does not decrypt.
type Derivation struct {
	Iterations int
	Salt       []byte
	FromHeader bool
}

// DecodeResult is the output of a successful [Engine.Decode]. A token with violations
// still decodes; Violations lists them in a fixed order.
type DecodeResult struct {
	Header     map[string]any
	Payload    map[string]any
	Variant    Variant
	Algorithm  Algorithm
	Violations []Violation
	Warnings   []error
	// Derivation is set for PBES2 tokens only.
	Derivation *Derivation
}

// Valid reports whether the decoded token has no violations.
func (r *DecodeResult) Valid() bool {
	return r != nil && validity.Valid(r.Violations)
}

// EncodeOutcome is delivered by [Engine.EncodeAsync].
type EncodeOutcome struct {
	Result *EncodeResult
	Err    error
}

// DecodeOutcome is delivered by [Engine.DecodeAsync].
type DecodeOutcome struct {
	Result *DecodeResult
	Err    error
}
