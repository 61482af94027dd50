package swclient

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/MrEthical07/swclient/session"
)

func TestSessionPairingInvariant(t *testing.T) {
	c := newTestClient(t, "http://backend.invalid", nil)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		switch rng.Intn(4) {
		case 0:
			_ = c.SetSession(ctx, "tok-abc", testUser())
		case 1:
			_ = c.SetSession(ctx, "", testUser())
		case 2:
			_ = c.SetSession(ctx, "tok-xyz", User{})
		case 3:
			_ = c.ClearSession(ctx)
		}

		s, ok := c.Session(ctx)
		if ok && (s.Token == "" || s.User.IsZero()) {
			t.Fatalf("step %d: half session observed: %+v", i, s)
		}
		if !ok && s != nil {
			t.Fatalf("step %d: absent session returned a value", i)
		}
	}
}

func TestSetSessionRejectsHalfPair(t *testing.T) {
	c := newTestClient(t, "http://backend.invalid", nil)
	ctx := context.Background()

	if err := c.SetSession(ctx, "tok-abc", testUser()); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}
	if err := c.SetSession(ctx, "  ", testUser()); !errors.Is(err, session.ErrIncompleteSession) {
		t.Fatalf("expected ErrIncompleteSession, got %v", err)
	}
	s, ok := c.Session(ctx)
	if !ok || s.Token != "tok-abc" {
		t.Fatal("rejected SetSession must keep the prior session")
	}
}

func TestSetSessionReplaces(t *testing.T) {
	c := newTestClient(t, "http://backend.invalid", nil)
	ctx := context.Background()

	_ = c.SetSession(ctx, "tok-1", testUser())
	other := User{ID: 9, Email: "m@b.com", Role: RoleManager}
	if err := c.SetSession(ctx, "tok-2", other); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}
	s, ok := c.Session(ctx)
	if !ok || s.Token != "tok-2" || s.User.ID != 9 {
		t.Fatalf("expected replaced session, got %+v", s)
	}
}

func TestClearSessionIdempotent(t *testing.T) {
	redirect := &recordingRedirect{}
	c := newTestClient(t, "http://backend.invalid", redirect)
	ctx := context.Background()

	if err := c.ClearSession(ctx); err != nil {
		t.Fatalf("clear on empty failed: %v", err)
	}
	_ = c.SetSession(ctx, "tok-abc", testUser())
	if err := c.ClearSession(ctx); err != nil {
		t.Fatalf("first clear failed: %v", err)
	}
	if err := c.ClearSession(ctx); err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
	if _, ok := c.Session(ctx); ok {
		t.Fatal("expected absent session")
	}
	if len(redirect.Signals()) != 0 {
		t.Fatal("ClearSession must not signal a redirect")
	}
}

func TestSessionReturnsCopy(t *testing.T) {
	c := newTestClient(t, "http://backend.invalid", nil)
	ctx := context.Background()
	_ = c.SetSession(ctx, "tok-abc", testUser())

	s, _ := c.Session(ctx)
	s.Token = "mutated"
	again, _ := c.Session(ctx)
	if again.Token != "tok-abc" {
		t.Fatal("callers must not be able to mutate the stored session")
	}
}

func TestLogoutSignalsRedirect(t *testing.T) {
	redirect := &recordingRedirect{}
	c := newTestClient(t, "http://backend.invalid", redirect)
	ctx := context.Background()
	_ = c.SetSession(ctx, "tok-abc", testUser())

	if err := c.Auth.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok := c.Session(ctx); ok {
		t.Fatal("expected session cleared on logout")
	}
	sigs := redirect.Signals()
	if len(sigs) != 1 || sigs[0].Reason != ReasonLogout {
		t.Fatalf("unexpected signals: %+v", sigs)
	}
	if c.MetricsSnapshot().Counters[MetricLogout] != 1 {
		t.Fatal("expected logout metric")
	}
}

func TestActiveSessionAppliesExpiry(t *testing.T) {
	redirect := &recordingRedirect{}
	c := newTestClient(t, "http://backend.invalid", redirect)
	ctx := context.Background()

	token := issueToken(t, time.Now().Add(-3*time.Hour), time.Hour)
	_ = c.SetSession(ctx, token, testUser())

	if _, ok := c.ActiveSession(ctx); ok {
		t.Fatal("expected expired session to be rejected")
	}
	if _, ok := c.Session(ctx); ok {
		t.Fatal("expected expired session to be cleared")
	}
	if len(redirect.Signals()) != 1 {
		t.Fatal("expected one redirect signal")
	}
}

var errClearRefused = errors.New("clear refused")

// stuckStore is a MemoryStore whose Clear always fails.
type stuckStore struct {
	*session.MemoryStore
}

func (stuckStore) Clear(context.Context) error {
	return errClearRefused
}

func TestInvalidationSurfacesClearFailure(t *testing.T) {
	redirect := &recordingRedirect{}
	c, err := New().
		WithBaseURL("http://backend.invalid").
		WithSessionStore(stuckStore{session.NewMemoryStore()}).
		WithRedirectHandler(redirect).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	expired := issueToken(t, time.Now().Add(-2*time.Hour), time.Hour)
	if err := c.SetSession(ctx, expired, testUser()); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	_, err = c.Request(ctx, "GET", "/tasks", nil)
	e := mustKind(t, err, KindSessionExpired)
	if !errors.Is(err, ErrSessionExpired) || !errors.Is(err, errClearRefused) {
		t.Fatalf("expected both the kind and the clear failure, got %v", err)
	}
	if e.Err == nil {
		t.Fatal("expected the clear failure on Err")
	}
	if len(redirect.Signals()) != 1 {
		t.Fatalf("expected the redirect despite the clear failure, got %d", len(redirect.Signals()))
	}
}

func TestLegacyRoleNormalizedInMemory(t *testing.T) {
	c := newTestClient(t, "http://backend.invalid", nil)
	ctx := context.Background()

	u := testUser()
	u.Role = "user"
	if err := c.SetSession(ctx, "tok-abc", u); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}
	s, ok := c.Session(ctx)
	if !ok || s.User.Role != RoleEmployee {
		t.Fatalf("expected role %q, got %+v", RoleEmployee, s)
	}
}
