// Package session holds the client-side Session: the bearer token paired with
// the cached profile of the signed-in user.
//
// # Pairing invariant
//
// A Session is all-or-nothing. Every [Store] either returns a Session with both
// token and user populated or reports [ErrNoSession]. A half-written pair found
// on load (token without user, or the reverse) is purged and reported absent.
//
// # Persisted layout
//
// Persistent stores keep two associated keys, one for the raw token and one for
// the JSON-encoded user profile, so the layout matches what browser clients keep
// in local storage.
//
// # What this package must NOT do
//
//   - Import swclient (no upward imports).
//   - Decide whether a token is expired; that belongs to the request pipeline.
package session
