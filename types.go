package swclient

import (
	"io"

	internalaudit "github.com/MrEthical07/swclient/internal/audit"
	"github.com/MrEthical07/swclient/session"
	"go.uber.org/zap"
)

// Session is the bearer token and user profile pair held by a Client.
type Session = session.Session

// User is the cached profile of the signed-in user.
type User = session.User

// Role is the coarse role carried by [User].
type Role = session.Role

// Roles re-exported for callers that only import the root package.
const (
	RoleAdmin    = session.RoleAdmin
	RoleManager  = session.RoleManager
	RoleEmployee = session.RoleEmployee
)

// AuditEvent is a structured audit record emitted by the client.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the client's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// ZapSink is an [AuditSink] that logs events through zap.
type ZapSink = internalaudit.ZapSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewZapSink creates a [ZapSink] logging under the "audit" name.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return internalaudit.NewZapSink(logger)
}
