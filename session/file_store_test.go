package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorePurgesOrphanUser(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "p1_")
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	userPath := filepath.Join(dir, "p1_user.json")
	if err := os.WriteFile(userPath, []byte(`{"id":1,"email":"a@b.com","role":"admin"}`), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := os.Stat(userPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("orphan user file must be removed, stat err=%v", err)
	}
}

func TestFileStoreWritesPrivateFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "")
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	if err := store.Save(context.Background(), &Session{Token: "tok", User: testUser()}); err != nil {
		t.Fatalf("save: %v", err)
	}

	for _, name := range []string{"access_token", "user.json"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("%s mode = %v, want 0600", name, info.Mode().Perm())
		}
	}
	raw, err := os.ReadFile(filepath.Join(dir, "access_token"))
	if err != nil || string(raw) != "tok" {
		t.Fatalf("token file = %q, err=%v", raw, err)
	}
}

func TestNewFileStoreRequiresDir(t *testing.T) {
	if _, err := NewFileStore("  ", ""); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
