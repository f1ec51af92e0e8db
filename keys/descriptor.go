package keys

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"
)

// Kind is the key type discriminator of a [Descriptor].
type Kind int

const (
	// KindUnknown marks key material no catalog algorithm can use.
	KindUnknown Kind = iota
	// KindSymmetric is raw secret bytes ("oct").
	KindSymmetric
	// KindRSA is an RSA public or private key.
	KindRSA
	// KindEllipticCurve is an ECDSA public or private key.
	KindEllipticCurve
)

func (k Kind) String() string {
	switch k {
	case KindSymmetric:
		return "symmetric"
	case KindRSA:
		return "RSA"
	case KindEllipticCurve:
		return "EC"
	default:
		return "unknown"
	}
}

// Usage records what the key is being used for in the current operation.
type Usage int

const (
	UsageSign Usage = iota
	UsageVerify
	UsageDerive
)

func (u Usage) String() string {
	switch u {
	case UsageSign:
		return "sign"
	case UsageVerify:
		return "verify"
	case UsageDerive:
		return "derive"
	default:
		return "unknown"
	}
}

// Descriptor summarizes parsed key material. It is a value and never changes after creation.
type Descriptor struct {
	Kind      Kind
	BitLength int
	Usage     Usage
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s/%d (%s)", d.Kind, d.BitLength, d.Usage)
}

// Describe builds a Descriptor for a key handle as produced by the resolver.
func Describe(key any, usage Usage) Descriptor {
	switch k := key.(type) {
	case []byte:
		return Descriptor{Kind: KindSymmetric, BitLength: len(k) * 8, Usage: usage}
	case *rsa.PrivateKey:
		if k == nil || k.N == nil {
			break
		}
		return Descriptor{Kind: KindRSA, BitLength: k.N.BitLen(), Usage: usage}
	case *rsa.PublicKey:
		if k == nil || k.N == nil {
			break
		}
		return Descriptor{Kind: KindRSA, BitLength: k.N.BitLen(), Usage: usage}
	case *ecdsa.PrivateKey:
		if k == nil || k.Curve == nil {
			break
		}
		return Descriptor{Kind: KindEllipticCurve, BitLength: k.Curve.Params().BitSize, Usage: usage}
	case *ecdsa.PublicKey:
		if k == nil || k.Curve == nil {
			break
		}
		return Descriptor{Kind: KindEllipticCurve, BitLength: k.Curve.Params().BitSize, Usage: usage}
	}
	return Descriptor{Kind: KindUnknown, Usage: usage}
}

// PublicOf returns the public half of an asymmetric private key. Public keys and
// symmetric secrets are returned unchanged.
func PublicOf(key any) any {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return &k.PublicKey
	case *ecdsa.PrivateKey:
		return &k.PublicKey
	default:
		return key
	}
}
