package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrEthical07/swclient"
	"github.com/MrEthical07/swclient/claims"
)

func newTestClient(t *testing.T) *swclient.Client {
	t.Helper()
	c, err := swclient.New().WithBaseURL("http://backend.invalid").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func okHandler(t *testing.T, wantRole swclient.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		if !ok {
			t.Error("expected session in context")
		} else if s.User.Role != wantRole {
			t.Errorf("expected role %q, got %q", wantRole, s.User.Role)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireSessionRedirectsWithoutSession(t *testing.T) {
	c := newTestClient(t)
	h := RequireSession(c, "")(okHandler(t, ""))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected /login, got %q", loc)
	}
}

func TestRequireSessionPassesLiveSession(t *testing.T) {
	c := newTestClient(t)
	user := swclient.User{ID: 1, Email: "a@b.com", Role: swclient.RoleEmployee}
	if err := c.SetSession(context.Background(), "tok-abc", user); err != nil {
		t.Fatalf("set session: %v", err)
	}

	h := RequireSession(c, "/signin")(okHandler(t, swclient.RoleEmployee))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRequireSessionClearsExpiredSession(t *testing.T) {
	c := newTestClient(t)
	mgr, err := claims.NewManager(claims.Config{TTL: time.Minute, SigningMethod: claims.MethodHS256, PrivateKey: []byte("k")})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	token, err := mgr.IssueAt(time.Now().Add(-time.Hour), 1, "a@b.com", "employee")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	user := swclient.User{ID: 1, Email: "a@b.com", Role: swclient.RoleEmployee}
	if err := c.SetSession(context.Background(), token, user); err != nil {
		t.Fatalf("set session: %v", err)
	}

	h := RequireSession(c, "/signin")(okHandler(t, swclient.RoleEmployee))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/signin" {
		t.Fatalf("expected redirect to /signin, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, ok := c.Session(context.Background()); ok {
		t.Fatal("expected expired session to be cleared")
	}
}

func TestRequireRole(t *testing.T) {
	c := newTestClient(t)
	user := swclient.User{ID: 2, Email: "m@b.com", Role: swclient.RoleManager}
	if err := c.SetSession(context.Background(), "tok-mgr", user); err != nil {
		t.Fatalf("set session: %v", err)
	}

	rec := httptest.NewRecorder()
	RequireRole(c, swclient.RoleAdmin)(okHandler(t, swclient.RoleAdmin)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	RequireRole(c, swclient.RoleAdmin, swclient.RoleManager)(okHandler(t, swclient.RoleManager)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/team", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRedirectIfSignedIn(t *testing.T) {
	c := newTestClient(t)
	login := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	RedirectIfSignedIn(c)(login).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login page, got %d", rec.Code)
	}

	user := swclient.User{ID: 3, Email: "root@b.com", Role: swclient.RoleAdmin}
	if err := c.SetSession(context.Background(), "tok-admin", user); err != nil {
		t.Fatalf("set session: %v", err)
	}
	rec = httptest.NewRecorder()
	RedirectIfSignedIn(c)(login).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin" {
		t.Fatalf("expected redirect to /admin, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
