package jwt

import (
	"errors"
	"fmt"
	"maps"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goJWT/jwa"
)

// ErrVerificationFailed is the sentinel wrapped by [VerificationFailedError].
var ErrVerificationFailed = errors.New("signature verification failed")

// VerificationFailedError carries the primitive error returned while verifying a token.
type VerificationFailedError struct {
	Algorithm jwa.Algorithm
	Err       error
}

func (e *VerificationFailedError) Error() string {
	if e.Algorithm == "" {
		return fmt.Sprintf("signature verification failed: %v", e.Err)
	}
	return fmt.Sprintf("signature verification failed (%s): %v", e.Algorithm, e.Err)
}

func (e *VerificationFailedError) Unwrap() []error {
	return []error{ErrVerificationFailed, e.Err}
}

// Method maps a catalog signing algorithm to its golang-jwt implementation.
func Method(alg jwa.Algorithm) (gjwt.SigningMethod, error) {
	if !jwa.Contains(jwa.Signing(), alg) {
		return nil, &jwa.UnknownAlgorithmError{Algorithm: string(alg), Family: jwa.FamilySigning}
	}
	method := gjwt.GetSigningMethod(string(alg))
	if method == nil {
		return nil, &jwa.UnknownAlgorithmError{Algorithm: string(alg), Family: jwa.FamilySigning}
	}
	return method, nil
}

// Sign produces a compact JWS. The header is written as given except that "alg" is set
// to alg; no other member (kid, typ) is added.
func Sign(alg jwa.Algorithm, header, claims map[string]any, key any) (string, error) {
	method, err := Method(alg)
	if err != nil {
		return "", err
	}

	token := gjwt.NewWithClaims(method, gjwt.MapClaims(maps.Clone(claims)))
	hdr := maps.Clone(header)
	if hdr == nil {
		hdr = make(map[string]any, 1)
	}
	hdr["alg"] = method.Alg()
	token.Header = hdr

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", alg, err)
	}
	return signed, nil
}

// Verify checks the signature of a compact JWS against key, accepting only alg, and
// returns the claims with numbers decoded as json.Number. Padded base64url segments are
// tolerated.
func Verify(token string, alg jwa.Algorithm, key any) (map[string]any, error) {
	parser := gjwt.NewParser(
		gjwt.WithValidMethods([]string{string(alg)}),
		gjwt.WithJSONNumber(),
		gjwt.WithPaddingAllowed(),
		gjwt.WithoutClaimsValidation(),
	)

	claims := gjwt.MapClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*gjwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return nil, &VerificationFailedError{Algorithm: alg, Err: err}
	}
	return map[string]any(claims), nil
}
