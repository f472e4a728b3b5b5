package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// UserInfo is the public identity snapshot carried by a session. The role is
// informational on the client side; the server re-checks it on every request.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// Session is the single injectable holder of client auth state: the bearer
// token and the identity it was issued for. All reads and writes go through
// it, so callers never share loose token strings.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *UserInfo
	path  string
}

// NewSession returns an empty in-memory session.
func NewSession() *Session {
	return &Session{}
}

// DefaultSessionPath places the session file under the user config directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "schoolctl", "session.json"), nil
}

// LoadSession restores a persisted session from path. A missing file yields
// an empty session, not an error.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}

	var state sessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt session file is treated as logged out.
		return s, nil
	}
	s.token = state.Token
	s.user = state.User
	return s, nil
}

type sessionState struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user,omitempty"`
}

// Set stores a new token and identity, replacing any previous session, and
// persists the state before returning.
func (s *Session) Set(token string, user UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	u := user
	s.user = &u
	return s.persistLocked()
}

// Clear drops the session synchronously: once it returns, neither memory nor
// disk holds the token.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Token returns the current bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated is derived from the token; there is no separate flag that
// could drift out of sync.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// CurrentUser returns a copy of the identity snapshot, or false when logged
// out.
func (s *Session) CurrentUser() (UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return UserInfo{}, false
	}
	return *s.user, true
}

// Role returns the session's role, empty when logged out.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *Session) persistLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.Marshal(sessionState{Token: s.token, User: s.user})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
