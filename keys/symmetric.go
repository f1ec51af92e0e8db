package keys

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/MrEthical07/goJWT/jwa"
)

// Coding declares how symmetric key text is turned into bytes.
type Coding string

const (
	CodingUTF8   Coding = "utf-8"
	CodingBase64 Coding = "base64"
	CodingHex    Coding = "hex"
	CodingPBKDF2 Coding = "pbkdf2"
)

const (
	// MinIterations is the smallest accepted PBKDF2 iteration count.
	MinIterations = 50
	// MaxIterations is the exclusive upper bound for PBKDF2 iteration counts.
	MaxIterations = 100001
	// DefaultIterations replaces an unparseable or out-of-range iteration count.
	DefaultIterations = 8192
)

// SymmetricInput is the raw secret form: text under a declared coding, plus the
// PBKDF2 parameters used when Coding is CodingPBKDF2.
type SymmetricInput struct {
	Text       string
	Coding     Coding
	Salt       string
	SaltCoding Coding
	Iterations string
}

// Symmetric is a resolved secret ready for HMAC or PBES2.
type Symmetric struct {
	Key        []byte
	Descriptor Descriptor
	// Iterations is set when the key was derived with PBKDF2.
	Iterations int
}

// ParseIterationCount parses s as a PBKDF2 iteration count. An unparseable or
// out-of-range value yields DefaultIterations and a warning; the count is always usable.
func ParseIterationCount(s string) (int, *IterationCountWarning) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < MinIterations || n >= MaxIterations {
		return DefaultIterations, &IterationCountWarning{Input: s, Used: DefaultIterations}
	}
	return n, nil
}

// IterationsOrDefault is ParseIterationCount except that blank input selects def
// without a warning.
func IterationsOrDefault(s string, def int) (int, *IterationCountWarning) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return ParseIterationCount(s)
}

// Decode converts text to bytes using a byte coding (utf-8, base64 or hex).
// pbkdf2 is not a byte coding and is rejected here.
func Decode(field, text string, coding Coding) ([]byte, error) {
	switch coding {
	case CodingUTF8, "":
		return []byte(text), nil
	case CodingBase64:
		raw, err := decodeBase64(strings.TrimSpace(text))
		if err != nil {
			return nil, &InvalidKeyError{Field: field, Err: err}
		}
		return raw, nil
	case CodingHex:
		raw, err := hex.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return nil, &InvalidKeyError{Field: field, Err: err}
		}
		return raw, nil
	default:
		return nil, &UnsupportedKeyEncodingError{Field: field, Coding: string(coding)}
	}
}

// decodeBase64 accepts the standard and URL alphabets, padded or not.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if strings.ContainsAny(s, "-_") {
		return base64.RawURLEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// ResolveSymmetric turns in into key bytes for alg. Derivation length for pbkdf2 is
// RequiredKeyBits(alg)/8. The returned warnings are non-fatal.
func ResolveSymmetric(in SymmetricInput, alg jwa.Algorithm) (Symmetric, []error, error) {
	if in.Text == "" {
		return Symmetric{}, nil, &InvalidKeyError{Field: "secret", Err: ErrKeyMaterialMissing}
	}

	if in.Coding != CodingPBKDF2 {
		raw, err := Decode("secret", in.Text, in.Coding)
		if err != nil {
			return Symmetric{}, nil, err
		}
		return Symmetric{Key: raw, Descriptor: Describe(raw, UsageSign)}, nil, nil
	}

	bits := jwa.RequiredKeyBits(alg)
	if bits <= 0 || bits%8 != 0 || bits > 1024 {
		// Not an HMAC or PBES2 algorithm: nothing defines a derivation length.
		return Symmetric{}, nil, &jwa.UnknownAlgorithmError{Algorithm: string(alg), Family: jwa.FamilySigning}
	}

	salt, err := Decode("salt", in.Salt, in.SaltCoding)
	if err != nil {
		return Symmetric{}, nil, err
	}

	var warnings []error
	iterations, warn := IterationsOrDefault(in.Iterations, DefaultIterations)
	if warn != nil {
		warnings = append(warnings, warn)
	}

	key := pbkdf2.Key([]byte(in.Text), salt, iterations, bits/8, sha256.New)
	return Symmetric{
		Key:        key,
		Descriptor: Describe(key, UsageDerive),
		Iterations: iterations,
	}, warnings, nil
}

// CheckKeyLength enforces len(key)*8 >= RequiredKeyBits(alg).
func CheckKeyLength(key []byte, alg jwa.Algorithm) error {
	required := jwa.RequiredKeyBits(alg)
	if len(key)*8 >= required {
		return nil
	}
	return &InsufficientKeyLengthError{
		Algorithm: alg,
		Required:  required / 8,
		Provided:  len(key),
	}
}
