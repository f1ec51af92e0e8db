package keys

import (
	"strings"

	"github.com/MrEthical07/goJWT/jwa"
)

// AcceptableSigningAlgorithms returns the signing algorithms legal for d.
// An empty result means no signing operation is possible with this key.
func AcceptableSigningAlgorithms(d Descriptor) []jwa.Algorithm {
	switch d.Kind {
	case KindSymmetric:
		return jwa.HMAC()
	case KindRSA:
		return jwa.RSASigning()
	case KindEllipticCurve:
		switch d.BitLength {
		case 256:
			return []jwa.Algorithm{jwa.ES256}
		case 384:
			return []jwa.Algorithm{jwa.ES384}
		case 521:
			return []jwa.Algorithm{jwa.ES512}
		}
	}
	return []jwa.Algorithm{}
}

// AcceptableEncryptionAlgorithms returns the key-encryption algorithms legal for d.
func AcceptableEncryptionAlgorithms(d Descriptor) []jwa.Algorithm {
	switch d.Kind {
	case KindRSA:
		return jwa.RSAOAEPFamily()
	case KindSymmetric:
		return jwa.PBES2Family()
	case KindEllipticCurve:
		return jwa.ECDHESFamily()
	}
	return []jwa.Algorithm{}
}

// IsCompatible reports whether alg may be used with a key described by d.
// Content-encryption identifiers are never bound to a key and always report false.
func IsCompatible(alg jwa.Algorithm, d Descriptor) bool {
	switch jwa.FamilyOf(alg) {
	case jwa.FamilySigning:
		return jwa.Contains(AcceptableSigningAlgorithms(d), alg)
	case jwa.FamilyKeyEncryption:
		return jwa.Contains(AcceptableEncryptionAlgorithms(d), alg)
	default:
		return false
	}
}

// CheckCompatible returns an *IncompatibleAlgorithmError when alg cannot be used with d.
func CheckCompatible(alg jwa.Algorithm, d Descriptor) error {
	if IsCompatible(alg, d) {
		return nil
	}
	return &IncompatibleAlgorithmError{Algorithm: alg, Descriptor: d}
}

// KeysAreCompatible reports whether key material entered for algorithm a can still be
// used after switching to algorithm b. RSA signing algorithms share keys regardless of
// hash or padding; ES algorithms are bound to a curve and only match themselves.
func KeysAreCompatible(a, b jwa.Algorithm) bool {
	if isRSAPrefixed(a) && isRSAPrefixed(b) {
		return true
	}
	if strings.HasPrefix(string(a), "ES") && strings.HasPrefix(string(b), "ES") {
		return a == b
	}
	return false
}

func isRSAPrefixed(a jwa.Algorithm) bool {
	return strings.HasPrefix(string(a), "RS") || strings.HasPrefix(string(a), "PS")
}
