// Package claims decodes the self-describing payload of SmartWork bearer tokens.
//
// The client never trusts a token for authorization; it only needs the expiry
// claim to decide whether a request may leave the process. [Decode] therefore
// reads the payload without verifying the signature, and [Expired] fails safe:
// a JWT-shaped token that cannot be decoded is reported as expired. Tokens
// with no dot at all are opaque credentials and are never expired locally.
//
// [Manager] is the keyed counterpart used where the signing key is shared
// (test backends, trusted sidecars). It issues and verifies tokens with HS256
// or Ed25519.
//
// # What this package must NOT do
//
//   - Import swclient or session (no upward imports).
//   - Perform network I/O.
package claims
