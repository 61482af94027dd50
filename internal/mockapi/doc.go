// Package mockapi is an in-process SmartWork backend for tests and for
// `swctl mock-server`.
//
// It serves the /api/v1 surface the client talks to, issues HS256 access
// tokens, hashes seeded passwords with Argon2id, and can be scripted to fail
// a route with a chosen status. Replies are bare JSON with FastAPI-style
// {"detail": ...} errors, or the normalized {success, data, error} envelope
// when Config.Envelope is set.
package mockapi
