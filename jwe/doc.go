// Package jwe encrypts and decrypts compact JWE tokens through go-jose.
//
// Only the algorithms in the jwa catalog are accepted. Callers resolve and check keys
// before calling in; this package does not look at key sizes or types.
package jwe
