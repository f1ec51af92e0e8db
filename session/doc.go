// Package session models one token editing session as an explicit state value with
// pure transitions.
//
// A host (editor, form, TUI) keeps a [State] and calls [SetVariant], [SetAlgorithm],
// [SetEncryption] or [SetSecretCoding] when the user changes a control. Each
// transition returns the new State plus a list of [Directive] values the host applies
// to its own widgets, such as marking key inputs stale or generating fresh keys.
//
// # Architecture boundaries
//
// This package owns editing decisions only. Encoding and decoding stay in the goJWT
// Engine; [State.EncodeRequest] and [FromDecoded] convert between the two.
//
// # What this package must NOT do
//
//   - Persist state or touch storage of any kind.
//   - Perform cryptographic operations or generate keys itself.
//   - Mutate a State passed in; transitions always return a copy.
package session
