// Package keys turns raw credential input into key handles and decides which catalog
// algorithms a key may be used with.
//
// The compatibility matrix is fixed: symmetric keys admit the HMAC signing family and
// the PBES2 key-encryption family, RSA keys admit RS/PS and RSA-OAEP, and elliptic-curve
// keys admit exactly one ES algorithm (by curve size) and the ECDH-ES family.
//
// Key input is recognized structurally: PEM by exact delimiters, JWKS by a JSON probe,
// and symmetric secrets by an explicitly declared coding (utf-8, base64, hex, pbkdf2).
//
// # What this package must NOT do
//
//   - Sign, verify, encrypt or decrypt.
//   - Fall back silently: an unknown coding is an error, and the only substituted value
//     is the PBKDF2 iteration count, which is reported as a warning.
package keys
