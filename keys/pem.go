package keys

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// PEMKind is the label between the BEGIN/END delimiters.
type PEMKind string

const (
	PEMPrivateKey    PEMKind = "PRIVATE KEY"
	PEMPublicKey     PEMKind = "PUBLIC KEY"
	PEMRSAPrivateKey PEMKind = "RSA PRIVATE KEY"
	PEMRSAPublicKey  PEMKind = "RSA PUBLIC KEY"
)

var pemKinds = []PEMKind{PEMRSAPrivateKey, PEMRSAPublicKey, PEMPrivateKey, PEMPublicKey}

// DetectPEM recognizes a single PEM block by its exact delimiters. Only leading and
// trailing whitespace is ignored; the body is not inspected.
func DetectPEM(text string) (PEMKind, bool) {
	s := strings.TrimSpace(text)
	for _, kind := range pemKinds {
		begin := "-----BEGIN " + string(kind) + "-----"
		end := "-----END " + string(kind) + "-----"
		if strings.HasPrefix(s, begin) && strings.HasSuffix(s, end) && len(s) >= len(begin)+len(end) {
			return kind, true
		}
	}
	return "", false
}

// IsPrivate reports whether k holds private key material.
func (k PEMKind) IsPrivate() bool {
	return k == PEMPrivateKey || k == PEMRSAPrivateKey
}

// ParsePrivatePEM parses an RSA or EC private key. PKCS#8 blocks try RSA first, then EC.
func ParsePrivatePEM(field, text string) (any, error) {
	kind, ok := DetectPEM(text)
	if !ok {
		return nil, &InvalidKeyError{Field: field, Err: errors.New("not a PEM encoded key")}
	}
	if !kind.IsPrivate() {
		return nil, &InvalidKeyError{Field: field, Err: errors.New("expected a private key, got " + string(kind))}
	}

	data := []byte(strings.TrimSpace(text))
	rsaKey, rsaErr := jwt.ParseRSAPrivateKeyFromPEM(data)
	if rsaErr == nil {
		return rsaKey, nil
	}
	if kind == PEMRSAPrivateKey {
		return nil, &InvalidKeyError{Field: field, Err: rsaErr}
	}
	ecKey, ecErr := jwt.ParseECPrivateKeyFromPEM(data)
	if ecErr == nil {
		return ecKey, nil
	}
	return nil, &InvalidKeyError{Field: field, Err: errors.Join(rsaErr, ecErr)}
}

// ParsePublicPEM parses an RSA or EC public key. A private key block is accepted and
// reduced to its public half.
func ParsePublicPEM(field, text string) (any, error) {
	kind, ok := DetectPEM(text)
	if !ok {
		return nil, &InvalidKeyError{Field: field, Err: errors.New("not a PEM encoded key")}
	}
	if kind.IsPrivate() {
		priv, err := ParsePrivatePEM(field, text)
		if err != nil {
			return nil, err
		}
		return PublicOf(priv), nil
	}

	data := []byte(strings.TrimSpace(text))
	rsaKey, rsaErr := jwt.ParseRSAPublicKeyFromPEM(data)
	if rsaErr == nil {
		return rsaKey, nil
	}
	if kind == PEMRSAPublicKey {
		return nil, &InvalidKeyError{Field: field, Err: rsaErr}
	}
	ecKey, ecErr := jwt.ParseECPublicKeyFromPEM(data)
	if ecErr == nil {
		return ecKey, nil
	}
	return nil, &InvalidKeyError{Field: field, Err: errors.Join(rsaErr, ecErr)}
}
