// Package generate produces sample tokens inputs: names, passwords, headers,
// payloads, symmetric secrets and asymmetric key pairs.
//
// A [Generator] is seeded, so the same seed yields the same sequence of values.
// Key pairs are produced by [KeyPair] from a caller-supplied reader. The standard
// library key generators may consume extra randomness, so key pairs are not
// reproducible even from a seeded reader.
//
// # What this package must NOT do
//
//   - Encode, sign or encrypt tokens.
//   - Be used as a source of production key material. Use crypto/rand.Reader for that.
package generate
