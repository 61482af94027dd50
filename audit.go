package swclient

import (
	"context"

	internalaudit "github.com/MrEthical07/swclient/internal/audit"
)

const (
	auditEventSessionSet      = "session_set"
	auditEventSessionCleared  = "session_cleared"
	auditEventSessionExpired  = "session_expired"
	auditEventAuthRejected    = "auth_rejected"
	auditEventLoginSuccess    = "login_success"
	auditEventLoginFailure    = "login_failure"
	auditEventLogout          = "logout"
	auditEventRequestRejected = "request_rejected"
)

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *internalaudit.Dispatcher {
	return internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
}

// emitAudit never carries tokens or request bodies. Only ids, roles and
// classification end up in events.
func (c *Client) emitAudit(ctx context.Context, eventType string, success bool, user *User, e *Error, metadata map[string]string) {
	if c == nil || c.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: c.now().UTC(),
		EventType: eventType,
		Success:   success,
		Metadata:  metadata,
		RequestID: RequestIDFromContext(ctx),
	}
	if user != nil {
		event.UserID = user.ID
		event.Role = string(user.Role)
	}
	if e != nil {
		event.Method = e.Method
		event.Path = e.Path
		event.Status = e.Status
		event.Kind = e.Kind.String()
		event.RequestID = e.RequestID
		event.Error = e.Kind.sentinel().Error()
	}

	c.audit.Emit(ctx, event)
}
