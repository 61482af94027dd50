package mockapi

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/MrEthical07/swclient/session"
)

type principalKey struct{}

func principalFrom(ctx context.Context) session.User {
	u, _ := ctx.Value(principalKey{}).(session.User)
	return u
}

// authed verifies the bearer token and, when roles are given, the caller's
// role before invoking next.
func (s *Server) authed(next http.HandlerFunc, roles ...session.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		c, err := s.tokens.Verify(token)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		u, found := s.userByID(c.UserID)
		if !found || !u.IsActive {
			s.writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, u.Role) {
			s.writeError(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, u)))
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
