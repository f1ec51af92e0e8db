// Package middleware exposes HTTP middleware that admits requests carrying a bearer
// token the goJWT.Engine can decode with fixed key material.
//
// # Guards
//
//   - [Guard]: mode chosen by the caller.
//   - [RequireVerified]: the token must verify or decrypt; validity violations pass.
//   - [RequireStrict]: the token must also have no validity violations.
//
// Each guard reads the Authorization header, calls Engine.Decode, and stores the
// decoded result in the request context.
//
// # What this package must NOT do
//
//   - Parse, verify or decrypt tokens directly (delegates to Engine).
//   - Echo the token or the decode error to the client.
//   - Make authorization decisions beyond pass/reject.
package middleware
