package generate

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"

	"github.com/MrEthical07/goJWT/jwa"
)

// RSABits is the modulus size of generated RSA keys.
const RSABits = 2048

// ErrNoKeyPair is returned by [KeyPair] for algorithms that use symmetric keys.
var ErrNoKeyPair = errors.New("algorithm does not use a key pair")

// Pair is a PEM encoded key pair: PKCS#8 private key and PKIX public key.
type Pair struct {
	PrivateKey string
	PublicKey  string
}

// KeyPair generates a key pair for alg using r, or crypto/rand.Reader when r is nil.
//
// RSA signing and RSA-OAEP get RSABits RSA keys. ES256, ES384 and ES512 get keys on
// P-256, P-384 and P-521. ECDH-ES algorithms always get P-256 keys.
func KeyPair(alg jwa.Algorithm, r io.Reader) (Pair, error) {
	if r == nil {
		r = rand.Reader
	}
	var (
		priv crypto.Signer
		err  error
	)
	switch {
	case jwa.IsRSASigning(alg), jwa.IsRSAOAEP(alg):
		priv, err = rsa.GenerateKey(r, RSABits)
	case alg == jwa.ES256, jwa.IsECDHES(alg):
		priv, err = ecdsa.GenerateKey(elliptic.P256(), r)
	case alg == jwa.ES384:
		priv, err = ecdsa.GenerateKey(elliptic.P384(), r)
	case alg == jwa.ES512:
		priv, err = ecdsa.GenerateKey(elliptic.P521(), r)
	case jwa.FamilyOf(alg) == jwa.FamilyUnknown:
		return Pair{}, &jwa.UnknownAlgorithmError{Algorithm: string(alg)}
	default:
		return Pair{}, fmt.Errorf("%s: %w", alg, ErrNoKeyPair)
	}
	if err != nil {
		return Pair{}, fmt.Errorf("generate %s key: %w", alg, err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return Pair{}, fmt.Errorf("marshal private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(priv.Public())
	if err != nil {
		return Pair{}, fmt.Errorf("marshal public key: %w", err)
	}
	return Pair{
		PrivateKey: string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})),
		PublicKey:  string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})),
	}, nil
}
