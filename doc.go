// Package swclient is the request gateway of SmartWork 360 clients.
//
// Every feature (tasks, dashboards, notifications, users, chatbot) reaches
// the SmartWork backend through one [Client]. The Client owns the Session,
// a bearer token paired with the signed-in user's profile, and applies the
// same rules to every call:
//
//   - A Session whose token has expired is cleared before anything is sent
//     and the call fails with [KindSessionExpired].
//   - A live Session is attached as "Authorization: Bearer <token>"; without
//     one no Authorization header is sent.
//   - Every failure is an [*Error] carrying exactly one [ErrorKind].
//   - An HTTP 401 clears the Session.
//   - Both Session-clearing outcomes signal the login boundary through a
//     [RedirectHandler]. The Client never navigates by itself.
//
// # Session pairing
//
// Token and user are stored and removed together. Stores never hand out a
// token without its user or the reverse; see package session.
//
// # Architecture boundaries
//
// swclient is the public surface. Token claims live in package claims,
// persistence in package session, and audit dispatch under internal/.
// No call is retried or queued, and no timer watches token expiry; expiry is
// checked when a call is made.
package swclient
