// Package audit relays session lifecycle events to caller-supplied sinks.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, zap logger, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full or block-if-full semantics.
//   - [Event]: one session or request outcome worth recording.
//
// This package owns buffering and delivery only. The client decides which
// events to emit. It must not import swclient.
package audit
