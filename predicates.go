package goJWT

import (
	"time"

	"github.com/MrEthical07/goJWT/keys"
	"github.com/MrEthical07/goJWT/validity"
)

// DescribeKey summarizes a parsed key handle ([]byte, RSA or ECDSA key) for the
// compatibility predicates.
func DescribeKey(key any, usage KeyUsage) KeyDescriptor {
	return keys.Describe(key, usage)
}

// AcceptableSigningAlgorithms lists the signing algorithms a key may be used with.
func AcceptableSigningAlgorithms(d KeyDescriptor) []Algorithm {
	return keys.AcceptableSigningAlgorithms(d)
}

// AcceptableEncryptionAlgorithms lists the key-encryption algorithms a key may be used with.
func AcceptableEncryptionAlgorithms(d KeyDescriptor) []Algorithm {
	return keys.AcceptableEncryptionAlgorithms(d)
}

func IsCompatible(alg Algorithm, d KeyDescriptor) bool {
	return keys.IsCompatible(alg, d)
}

// KeysAreCompatible reports whether key material for a can be reused for b.
func KeysAreCompatible(a, b Algorithm) bool {
	return keys.KeysAreCompatible(a, b)
}

// CheckValidity runs the validity rules on an already decoded header and payload.
func CheckValidity(header, payload map[string]any, acceptable []Algorithm, now time.Time) []Violation {
	return validity.Check(header, payload, acceptable, now)
}
