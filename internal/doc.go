// Package internal contains helper utilities that are intentionally private to goJWT,
// including secure salt generation.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - compact: compact-serialization classification and segment codecs
//   - flows: pure-function orchestrators for Encode and Decode
//   - report: JSON views of engine results shared by the CLI and HTTP hosts
//
// # What this package must NOT do
//
//   - Export types that appear in the public goJWT API.
//   - Be imported by any package outside the goJWT module.
package internal
