// Package jwa is the closed catalog of JOSE algorithm identifiers the workbench understands.
//
// Identifiers are grouped into three families: signing ("alg" of a JWS), key-encryption
// ("alg" of a JWE) and content-encryption ("enc" of a JWE). Anything outside the catalog is
// rejected with [ErrUnknownAlgorithm]; ECDH-ES+A192KW is deliberately absent.
//
// # What this package must NOT do
//
//   - Perform cryptographic operations.
//   - Allow the catalog to be extended at runtime.
package jwa
