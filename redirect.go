package swclient

import (
	"context"
	"sync/atomic"
	"time"
)

// RedirectReason says why the login boundary was signaled.
type RedirectReason string

const (
	// ReasonSessionExpired follows a local expiry short-circuit.
	ReasonSessionExpired RedirectReason = "session_expired"
	// ReasonUnauthenticated follows an HTTP 401.
	ReasonUnauthenticated RedirectReason = "unauthenticated"
	// ReasonLogout follows an explicit Logout.
	ReasonLogout RedirectReason = "logout"
)

// RedirectSignal asks the embedding application to send the user to the
// login boundary. The client never navigates by itself.
type RedirectSignal struct {
	Reason    RedirectReason
	LoginPath string
	At        time.Time
}

// RedirectHandler receives redirect signals. Handlers are called
// synchronously, after the Session has been cleared, and must not block.
type RedirectHandler interface {
	Redirect(ctx context.Context, sig RedirectSignal)
}

// RedirectFunc adapts a function to [RedirectHandler].
type RedirectFunc func(ctx context.Context, sig RedirectSignal)

// Redirect calls f(ctx, sig).
func (f RedirectFunc) Redirect(ctx context.Context, sig RedirectSignal) {
	f(ctx, sig)
}

type noopRedirect struct{}

func (noopRedirect) Redirect(context.Context, RedirectSignal) {}

// ChannelRedirector delivers signals on a buffered channel. When the buffer
// is full the signal is dropped and counted; a pending signal already tells
// the consumer to navigate.
type ChannelRedirector struct {
	signals chan RedirectSignal
	dropped atomic.Uint64
}

// NewChannelRedirector returns a ChannelRedirector with the given capacity.
func NewChannelRedirector(buffer int) *ChannelRedirector {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelRedirector{signals: make(chan RedirectSignal, buffer)}
}

// Redirect queues sig without blocking.
func (r *ChannelRedirector) Redirect(_ context.Context, sig RedirectSignal) {
	select {
	case r.signals <- sig:
	default:
		r.dropped.Add(1)
	}
}

// Signals returns the receive side of the queue.
func (r *ChannelRedirector) Signals() <-chan RedirectSignal {
	return r.signals
}

// Dropped returns how many signals found the buffer full.
func (r *ChannelRedirector) Dropped() uint64 {
	return r.dropped.Load()
}

// DashboardRoute returns the landing page for role after login: admins go
// to /admin, everyone else to /dashboard.
func DashboardRoute(role Role) string {
	if role == RoleAdmin {
		return "/admin"
	}
	return "/dashboard"
}
