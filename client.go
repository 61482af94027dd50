package swclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/MrEthical07/swclient/claims"
	internalaudit "github.com/MrEthical07/swclient/internal/audit"
	"github.com/MrEthical07/swclient/session"
	"go.uber.org/zap"
)

// Client is the single gateway between SmartWork features and the backend.
//
// A Client is safe for concurrent use. It owns the Session: every request
// reads it, and only SetSession, ClearSession, a local expiry short-circuit
// or an HTTP 401 change it.
type Client struct {
	config     Config
	baseURL    *url.URL
	http       *http.Client
	store      session.Store
	closeStore func() error
	redirect   RedirectHandler
	logger     *zap.Logger
	audit      *internalaudit.Dispatcher
	metrics    *Metrics
	now        func() time.Time

	Auth          *AuthService
	Tasks         *TasksService
	Dashboard     *DashboardService
	Notifications *NotificationsService
	Users         *UsersService
	Chatbot       *ChatbotService
}

func (c *Client) initServices() {
	c.Auth = &AuthService{client: c}
	c.Tasks = &TasksService{client: c}
	c.Dashboard = &DashboardService{client: c}
	c.Notifications = &NotificationsService{client: c}
	c.Users = &UsersService{client: c}
	c.Chatbot = &ChatbotService{client: c}
}

// Config returns a copy of the configuration the Client was built with.
func (c *Client) Config() Config {
	return cloneConfig(c.config)
}

// Close stops the audit dispatcher and releases a Redis connection the
// Client opened itself. It does not clear the Session.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.audit != nil {
		c.audit.Close()
	}
	if c.closeStore != nil {
		return c.closeStore()
	}
	return nil
}

// AuditDropped returns the number of audit events lost to backpressure.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot copies the in-process counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// Session returns the current Session, or false when there is none.
//
// Session only reads the session store. A store failure is logged and
// reported as no Session.
func (c *Client) Session(ctx context.Context) (*Session, bool) {
	if c == nil {
		return nil, false
	}
	s, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			c.logger.Warn("session load failed", zap.Error(err))
		}
		return nil, false
	}
	return s, true
}

// SetSession stores token and user together, replacing any prior Session.
//
// An empty token or a zero user is rejected with
// session.ErrIncompleteSession and leaves the prior Session in place.
func (c *Client) SetSession(ctx context.Context, token string, user User) error {
	if c == nil {
		return ErrClientNotReady
	}
	s, err := session.New(token, user)
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, s); err != nil {
		c.logger.Error("session save failed", zap.Error(err))
		return err
	}

	c.metricInc(MetricSessionSet)
	c.emitAudit(ctx, auditEventSessionSet, true, &s.User, nil, nil)
	c.logger.Debug("session set", zap.Int64("user_id", user.ID), zap.String("role", string(s.User.Role)))
	return nil
}

// ClearSession removes the token and user. Clearing an absent Session is a
// no-op and does not signal a redirect.
func (c *Client) ClearSession(ctx context.Context) error {
	if c == nil {
		return ErrClientNotReady
	}
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("session clear failed", zap.Error(err))
		return err
	}
	c.metricInc(MetricSessionCleared)
	c.emitAudit(ctx, auditEventSessionCleared, true, nil, nil, nil)
	return nil
}

// invalidate clears the Session and then signals the login boundary. The
// signal is sent even when the store fails to clear.
func (c *Client) invalidate(ctx context.Context, reason RedirectReason, user *User, e *Error) error {
	clearErr := c.store.Clear(ctx)
	if clearErr != nil {
		c.logger.Error("session clear failed", zap.String("reason", string(reason)), zap.Error(clearErr))
	} else {
		c.metricInc(MetricSessionCleared)
	}

	fields := []zap.Field{zap.String("reason", string(reason))}
	if e != nil {
		fields = append(fields, zap.String("method", e.Method), zap.String("path", e.Path), zap.String("request_id", e.RequestID))
	}
	if user != nil {
		fields = append(fields, zap.Int64("user_id", user.ID))
	}
	c.logger.Warn("session invalidated", fields...)

	switch reason {
	case ReasonSessionExpired:
		c.emitAudit(ctx, auditEventSessionExpired, false, user, e, nil)
	case ReasonUnauthenticated:
		c.emitAudit(ctx, auditEventAuthRejected, false, user, e, nil)
	case ReasonLogout:
		c.emitAudit(ctx, auditEventLogout, true, user, nil, nil)
	}

	c.metricInc(MetricRedirect)
	c.redirect.Redirect(ctx, RedirectSignal{
		Reason:    reason,
		LoginPath: c.config.LoginPath,
		At:        c.now(),
	})
	return clearErr
}

// ActiveSession is Session with the local expiry rule applied: an expired
// Session is cleared, a redirect is signaled, and false is returned.
func (c *Client) ActiveSession(ctx context.Context) (*Session, bool) {
	s, ok := c.Session(ctx)
	if !ok {
		return nil, false
	}
	if claims.Expired(s.Token, c.now(), c.config.Expiry.Leeway) {
		c.metricInc(MetricSessionExpired)
		_ = c.invalidate(ctx, ReasonSessionExpired, &s.User, nil)
		return nil, false
	}
	return s, true
}
