package swclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/swclient/claims"
)

// countingBackend is an httptest server that records every request it sees.
type countingBackend struct {
	srv     *httptest.Server
	calls   atomic.Int64
	mu      sync.Mutex
	last    *http.Request
	handler http.HandlerFunc
}

func newCountingBackend(t *testing.T, h http.HandlerFunc) *countingBackend {
	t.Helper()
	b := &countingBackend{handler: h}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		b.mu.Lock()
		b.last = r.Clone(context.Background())
		b.mu.Unlock()
		b.handler(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *countingBackend) Calls() int64 {
	return b.calls.Load()
}

func (b *countingBackend) Last() *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func statusHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

type recordingRedirect struct {
	mu      sync.Mutex
	signals []RedirectSignal
}

func (r *recordingRedirect) Redirect(_ context.Context, sig RedirectSignal) {
	r.mu.Lock()
	r.signals = append(r.signals, sig)
	r.mu.Unlock()
}

func (r *recordingRedirect) Signals() []RedirectSignal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RedirectSignal(nil), r.signals...)
}

func newTestClient(t *testing.T, baseURL string, redirect RedirectHandler) *Client {
	t.Helper()
	b := New().WithBaseURL(baseURL).WithTimeout(2 * time.Second)
	if redirect != nil {
		b.WithRedirectHandler(redirect)
	}
	c, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testUser() User {
	return User{ID: 1, Email: "a@b.com", Role: RoleEmployee}
}

func issueToken(t *testing.T, issuedAt time.Time, ttl time.Duration) string {
	t.Helper()
	mgr, err := claims.NewManager(claims.Config{
		TTL:           ttl,
		SigningMethod: claims.MethodHS256,
		PrivateKey:    []byte("test-secret"),
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	token, err := mgr.IssueAt(issuedAt, 1, "a@b.com", "employee")
	if err != nil {
		t.Fatalf("IssueAt failed: %v", err)
	}
	return token
}

func mustKind(t *testing.T, err error, want ErrorKind) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	e, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if e.Kind != want {
		t.Fatalf("expected kind %s, got %s (%v)", want, e.Kind, err)
	}
	return e
}
