// Package flows contains pure-function orchestrators for every Engine operation.
//
// RunEncode and RunDecode accept a typed dependency struct and return a result that
// either carries the produced value or a classified failure. The Engine maps failure
// kinds to metrics and audit events and keeps its own type thin.
//
// # Architecture boundaries
//
// Flow functions coordinate the key resolver, the JWS and JWE adapters, and the
// validity policy. They do NOT own the key-set repository, the logger, or the clock;
// ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goJWT (to avoid import cycles).
//   - Log key material, secrets, passwords or token strings.
package flows
