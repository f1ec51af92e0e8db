// Package goJWT is the core of a JSON Web Token workbench. It assembles signed (JWS)
// and encrypted (JWE) compact tokens from header and payload JSON, decodes and
// validates tokens, and refuses algorithm and key combinations that cannot work.
//
// Hosts (a CLI, an HTTP handler, an editor) hand the [Engine] raw strings and get
// structured results back:
//
//	engine, err := goJWT.New().WithLogger(logger).Build()
//	res, err := engine.Encode(ctx, goJWT.EncodeRequest{
//		Header:  `{"alg":"HS256"}`,
//		Payload: `{"sub":"1234567890"}`,
//		Keys:    goJWT.KeyMaterial{Secret: "a-string-secret-at-least-256-bits-long"},
//	})
//
// Engine methods are safe to call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// goJWT is the public surface. It exposes [Engine], [Builder], [Config], request and
// result types, and re-exports the pure compatibility and validity predicates. The
// algorithm catalog lives in jwa, key parsing and the compatibility matrix in keys,
// named key sets in keystore, validity rules in validity, and the primitive adapters
// in jwt and jwe. Flow orchestration lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Implement cryptographic primitives; signing, encryption and key derivation are
//     delegated to golang-jwt, go-jose and x/crypto.
//   - Log or audit key material, token strings or claim values.
//   - Import the session or generate packages (they import goJWT).
package goJWT
