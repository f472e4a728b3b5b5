package client

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := LoadSession(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("fresh session should not be authenticated")
	}

	user := UserInfo{ID: "u1", Email: "a@x.com", FirstName: "A", Role: "teacher"}
	if err := s.Set("tok-123", user); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !s.IsAuthenticated() {
		t.Fatalf("expected authenticated after Set")
	}
	if s.Role() != "teacher" {
		t.Fatalf("expected role teacher, got %q", s.Role())
	}

	restored, err := LoadSession(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if restored.Token() != "tok-123" {
		t.Fatalf("expected persisted token, got %q", restored.Token())
	}
	got, ok := restored.CurrentUser()
	if !ok || got.Email != "a@x.com" {
		t.Fatalf("expected persisted user, got %+v ok=%v", got, ok)
	}
}

func TestSessionClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := LoadSession(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.Set("tok", UserInfo{ID: "u1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if s.IsAuthenticated() {
		t.Fatalf("expected logged out after Clear")
	}
	if _, ok := s.CurrentUser(); ok {
		t.Fatalf("expected no user after Clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected session file removed, stat err = %v", err)
	}
}

func TestLoadSessionCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := LoadSession(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("corrupt session file should load as logged out")
	}
}

func TestGuardRedirectsAndRemembers(t *testing.T) {
	s := NewSession()
	g := NewGuard(s, "/login")

	if target := g.Check("/students"); target != "/login" {
		t.Fatalf("expected redirect to /login, got %q", target)
	}

	if err := s.Set("tok", UserInfo{ID: "u1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if target := g.AfterLogin("/dashboard"); target != "/students" {
		t.Fatalf("expected remembered /students, got %q", target)
	}
	if target := g.AfterLogin("/dashboard"); target != "/dashboard" {
		t.Fatalf("expected fallback after consuming remembered target, got %q", target)
	}
	if target := g.Check("/fees"); target != "/fees" {
		t.Fatalf("expected authenticated pass-through, got %q", target)
	}
}
