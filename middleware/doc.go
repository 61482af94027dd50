// Package middleware exposes HTTP middleware for Go-served SmartWork
// frontends that hold a swclient.Client on the server side.
//
// # Guards
//
//   - [RequireSession] sends visitors without a live Session to the login
//     boundary with 303 See Other.
//   - [RequireRole] additionally rejects other roles with 403.
//   - [RedirectIfSignedIn] sends signed-in visitors of the login page to
//     their dashboard.
//
// Guards inject the Session into the request context; read it back with
// [SessionFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Client calls. It does not
// decode tokens or touch session stores itself; expiry is decided by
// Client.ActiveSession.
package middleware
