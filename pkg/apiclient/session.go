package apiclient

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the bearer token of a Session.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryStore keeps the token for the life of the process.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error { return m.Save("") }

// FileStore keeps the token in a file readable only by the owner, so a
// terminal that "remembers" the login survives restarts.
type FileStore struct {
	Path string
}

func (f FileStore) Load() (string, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (f FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(token), 0o600)
}

func (f FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Session is the authentication state shared by every call a Client makes.
// The token is read from the store once and cached.
type Session struct {
	mu     sync.RWMutex
	store  TokenStore
	token  string
	loaded bool
}

func NewSession(store TokenStore) *Session {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Session{store: store}
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	if s.loaded {
		t := s.token
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		t, err := s.store.Load()
		if err == nil {
			s.token = t
		}
		s.loaded = true
	}
	return s.token
}

func (s *Session) Autenticado() bool { return s.Token() != "" }

func (s *Session) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(token); err != nil {
		return err
	}
	s.token, s.loaded = token, true
	return nil
}

// Clear logs out. The in-memory token is dropped even if the store fails.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.loaded = "", true
	return s.store.Clear()
}
