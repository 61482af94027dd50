package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists the Session as two files in a directory: the raw token
// and the JSON user profile. Files are written with mode 0600.
type FileStore struct {
	mu        sync.Mutex
	tokenPath string
	userPath  string
}

// NewFileStore returns a FileStore rooted at dir. prefix is prepended to the
// default key names so several profiles can share a directory.
func NewFileStore(dir, prefix string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("session directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &FileStore{
		tokenPath: filepath.Join(dir, prefix+DefaultTokenKey),
		userPath:  filepath.Join(dir, prefix+DefaultUserKey+".json"),
	}, nil
}

// Load reads both files. A missing or corrupt half purges the other.
func (f *FileStore) Load(context.Context) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, tokenErr := os.ReadFile(f.tokenPath)
	user, userErr := os.ReadFile(f.userPath)
	tokenMissing := errors.Is(tokenErr, fs.ErrNotExist)
	userMissing := errors.Is(userErr, fs.ErrNotExist)

	if tokenMissing && userMissing {
		return nil, ErrNoSession
	}
	if tokenErr != nil && !tokenMissing {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, tokenErr)
	}
	if userErr != nil && !userMissing {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, userErr)
	}
	if tokenMissing || userMissing {
		return nil, f.purge()
	}

	u, err := DecodeUser(user)
	if err != nil {
		return nil, f.purge()
	}
	s := &Session{Token: strings.TrimSpace(string(token)), User: u}
	if s.Validate() != nil {
		return nil, f.purge()
	}
	return s, nil
}

// Save writes the user file first and the token file last, each through a
// rename so readers never see a truncated file.
func (f *FileStore) Save(_ context.Context, s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := EncodeUser(s.User)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := writeFileAtomic(f.userPath, data); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := writeFileAtomic(f.tokenPath, []byte(s.Token)); err != nil {
		_ = os.Remove(f.userPath)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Clear removes the token file first, then the user file.
func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.removeBoth(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (f *FileStore) purge() error {
	if err := f.removeBoth(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ErrNoSession
}

func (f *FileStore) removeBoth() error {
	if err := os.Remove(f.tokenPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Remove(f.userPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".swclient-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
