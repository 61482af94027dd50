package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/swclient"
)

type sessionContextKey struct{}

// SessionFromContext returns the Session injected by a guard.
func SessionFromContext(ctx context.Context) (*swclient.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*swclient.Session)
	return s, ok
}

// RequireSession redirects to loginPath unless the client holds a live
// Session. An empty loginPath uses the client's configured LoginPath.
func RequireSession(client *swclient.Client, loginPath string) func(http.Handler) http.Handler {
	return guard(client, loginPath, nil)
}

// RequireRole is RequireSession that also answers 403 when the Session's
// role is not one of roles.
func RequireRole(client *swclient.Client, roles ...swclient.Role) func(http.Handler) http.Handler {
	allowed := make(map[swclient.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return guard(client, "", allowed)
}

func guard(client *swclient.Client, loginPath string, allowed map[swclient.Role]struct{}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			s, ok := client.ActiveSession(r.Context())
			if !ok {
				http.Redirect(w, r, resolveLoginPath(client, loginPath), http.StatusSeeOther)
				return
			}

			if allowed != nil {
				if _, ok := allowed[s.User.Role]; !ok {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectIfSignedIn sends visitors holding a live Session to the dashboard
// of their role and serves next to everyone else.
func RedirectIfSignedIn(client *swclient.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client != nil {
				if s, ok := client.ActiveSession(r.Context()); ok {
					http.Redirect(w, r, swclient.DashboardRoute(s.User.Role), http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveLoginPath(client *swclient.Client, loginPath string) string {
	if loginPath != "" {
		return loginPath
	}
	return client.Config().LoginPath
}
