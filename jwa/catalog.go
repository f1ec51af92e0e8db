package jwa

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Algorithm is a JOSE algorithm identifier as it appears in the "alg" or "enc" header.
type Algorithm string

// Family groups catalog identifiers by the header parameter they may appear in.
type Family int

const (
	// FamilyUnknown is returned for identifiers outside the catalog.
	FamilyUnknown Family = iota
	// FamilySigning covers JWS "alg" values.
	FamilySigning
	// FamilyKeyEncryption covers JWE "alg" values.
	FamilyKeyEncryption
	// FamilyContentEncryption covers JWE "enc" values.
	FamilyContentEncryption
)

func (f Family) String() string {
	switch f {
	case FamilySigning:
		return "signing"
	case FamilyKeyEncryption:
		return "key-encryption"
	case FamilyContentEncryption:
		return "content-encryption"
	default:
		return "unknown"
	}
}

const (
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
	RS512 Algorithm = "RS512"
	PS256 Algorithm = "PS256"
	PS384 Algorithm = "PS384"
	PS512 Algorithm = "PS512"
	ES256 Algorithm = "ES256"
	ES384 Algorithm = "ES384"
	ES512 Algorithm = "ES512"
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"

	RSAOAEP         Algorithm = "RSA-OAEP"
	RSAOAEP256      Algorithm = "RSA-OAEP-256"
	ECDHES          Algorithm = "ECDH-ES"
	ECDHESA128KW    Algorithm = "ECDH-ES+A128KW"
	ECDHESA256KW    Algorithm = "ECDH-ES+A256KW"
	PBES2HS256A128KW Algorithm = "PBES2-HS256+A128KW"
	PBES2HS384A192KW Algorithm = "PBES2-HS384+A192KW"
	PBES2HS512A256KW Algorithm = "PBES2-HS512+A256KW"

	A128CBCHS256 Algorithm = "A128CBC-HS256"
	A256CBCHS512 Algorithm = "A256CBC-HS512"
	A128GCM      Algorithm = "A128GCM"
	A256GCM      Algorithm = "A256GCM"

	// None is the display value used when a key admits no algorithm at all.
	None Algorithm = "NONE"
)

// ECDH-ES+A192KW is intentionally not part of the catalog.
var (
	rsaPKCS1 = []Algorithm{RS256, RS384, RS512}
	rsaPSS   = []Algorithm{PS256, PS384, PS512}
	ecdsa    = []Algorithm{ES256, ES384, ES512}
	hmacs    = []Algorithm{HS256, HS384, HS512}

	rsaOAEP = []Algorithm{RSAOAEP, RSAOAEP256}
	ecdhES  = []Algorithm{ECDHES, ECDHESA128KW, ECDHESA256KW}
	pbes2   = []Algorithm{PBES2HS256A128KW, PBES2HS384A192KW, PBES2HS512A256KW}

	contentEncryption = []Algorithm{A128CBCHS256, A256CBCHS512, A128GCM, A256GCM}
)

var families = buildFamilies()

func buildFamilies() map[Algorithm]Family {
	out := make(map[Algorithm]Family, 24)
	for _, group := range [][]Algorithm{rsaPKCS1, rsaPSS, ecdsa, hmacs} {
		for _, alg := range group {
			out[alg] = FamilySigning
		}
	}
	for _, group := range [][]Algorithm{rsaOAEP, ecdhES, pbes2} {
		for _, alg := range group {
			out[alg] = FamilyKeyEncryption
		}
	}
	for _, alg := range contentEncryption {
		out[alg] = FamilyContentEncryption
	}
	return out
}

// ErrUnknownAlgorithm is returned for identifiers outside the catalog of the requested family.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// UnknownAlgorithmError names the rejected identifier and the family it was checked against.
type UnknownAlgorithmError struct {
	Algorithm string
	Family    Family
}

func (e *UnknownAlgorithmError) Error() string {
	if e.Family == FamilyUnknown {
		return fmt.Sprintf("unknown algorithm %q", e.Algorithm)
	}
	return fmt.Sprintf("unknown %s algorithm %q", e.Family, e.Algorithm)
}

func (e *UnknownAlgorithmError) Unwrap() error {
	return ErrUnknownAlgorithm
}

// Signing returns the signing algorithms in catalog order.
func Signing() []Algorithm {
	return concat(rsaPKCS1, rsaPSS, ecdsa, hmacs)
}

// KeyEncryption returns the key-encryption algorithms in catalog order.
func KeyEncryption() []Algorithm {
	return concat(rsaOAEP, ecdhES, pbes2)
}

// ContentEncryption returns the content-encryption algorithms in catalog order.
func ContentEncryption() []Algorithm {
	return concat(contentEncryption)
}

// HMAC returns the HS family.
func HMAC() []Algorithm { return concat(hmacs) }

// RSASigning returns the RS and PS families.
func RSASigning() []Algorithm { return concat(rsaPKCS1, rsaPSS) }

// RSAOAEPFamily returns the RSA-OAEP key-encryption family.
func RSAOAEPFamily() []Algorithm { return concat(rsaOAEP) }

// ECDHESFamily returns the ECDH-ES key-encryption family.
func ECDHESFamily() []Algorithm { return concat(ecdhES) }

// PBES2Family returns the password-based key-encryption family.
func PBES2Family() []Algorithm { return concat(pbes2) }

// Lookup reports the family of s, or false when s is not in the catalog.
func Lookup(s string) (Algorithm, Family, bool) {
	alg := Algorithm(s)
	family, ok := families[alg]
	return alg, family, ok
}

// Parse returns s as an Algorithm when it belongs to family.
func Parse(s string, family Family) (Algorithm, error) {
	alg, got, ok := Lookup(s)
	if !ok || got != family {
		return "", &UnknownAlgorithmError{Algorithm: s, Family: family}
	}
	return alg, nil
}

// FamilyOf returns the family of alg, FamilyUnknown when outside the catalog.
func FamilyOf(alg Algorithm) Family {
	return families[alg]
}

func (a Algorithm) String() string { return string(a) }

// IsHMAC reports whether a is an HS algorithm.
func IsHMAC(a Algorithm) bool { return contains(hmacs, a) }

// IsRSASigning reports whether a is an RS or PS algorithm.
func IsRSASigning(a Algorithm) bool { return contains(rsaPKCS1, a) || contains(rsaPSS, a) }

// IsECDSA reports whether a is an ES algorithm.
func IsECDSA(a Algorithm) bool { return contains(ecdsa, a) }

// IsPBES2 reports whether a is a PBES2 key-encryption algorithm.
func IsPBES2(a Algorithm) bool { return contains(pbes2, a) }

// IsRSAOAEP reports whether a is an RSA-OAEP key-encryption algorithm.
func IsRSAOAEP(a Algorithm) bool { return contains(rsaOAEP, a) }

// IsECDHES reports whether a is an ECDH-ES key-encryption algorithm.
func IsECDHES(a Algorithm) bool { return contains(ecdhES, a) }

// unreachableKeyBits is larger than any key a caller can supply.
const unreachableKeyBits = math.MaxInt

// RequiredKeyBits returns the minimum symmetric key size for HMAC and PBES2 algorithms.
// Every other identifier maps to a value no key can satisfy.
func RequiredKeyBits(a Algorithm) int {
	switch {
	case IsHMAC(a):
		return hashBits(string(a[2:]))
	case IsPBES2(a):
		// PBES2-HS256+A128KW -> "256"
		rest := strings.TrimPrefix(string(a), "PBES2-HS")
		if i := strings.IndexByte(rest, '+'); i > 0 {
			return hashBits(rest[:i])
		}
	}
	return unreachableKeyBits
}

func hashBits(s string) int {
	switch s {
	case "256":
		return 256
	case "384":
		return 384
	case "512":
		return 512
	default:
		return unreachableKeyBits
	}
}

// Contains reports whether alg is in set.
func Contains(set []Algorithm, alg Algorithm) bool {
	return contains(set, alg)
}

func contains(set []Algorithm, alg Algorithm) bool {
	for _, a := range set {
		if a == alg {
			return true
		}
	}
	return false
}

func concat(groups ...[]Algorithm) []Algorithm {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]Algorithm, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
