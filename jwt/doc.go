// Package jwt signs and verifies compact JWS tokens with caller-supplied headers and
// claim maps.
//
// It is a thin adapter over github.com/golang-jwt/jwt/v5. Claim validation (exp, nbf,
// iat) is switched off here; temporal problems are reported by the validity package
// instead of failing verification.
package jwt
