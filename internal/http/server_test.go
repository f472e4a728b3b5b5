package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/theswapneil/school-management-system/internal/config"
	"github.com/theswapneil/school-management-system/internal/model"
	"github.com/theswapneil/school-management-system/internal/repository"
	"github.com/theswapneil/school-management-system/internal/service"
)

type memIdentityStore struct {
	mu    sync.Mutex
	users map[string]model.User // keyed by email
}

func newMemIdentityStore() *memIdentityStore {
	return &memIdentityStore{users: make(map[string]model.User)}
}

func (s *memIdentityStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (s *memIdentityStore) GetUserByID(_ context.Context, userID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *memIdentityStore) CreateUser(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return repository.ErrDuplicate
	}
	s.users[user.Email] = user
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		JWTSecret: testSecret,
		JWTIssuer: testIssuer,
		TokenTTL:  time.Hour,
	}
	svc := service.NewAuthService(newMemIdentityStore(), zap.NewNop(), cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	srv := httptest.NewServer(NewServer(cfg, zap.NewNop(), svc, nil, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body map[string]interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func registerUser(t *testing.T, srv *httptest.Server, email, role string) authResponse {
	t.Helper()
	body := map[string]interface{}{
		"email":     email,
		"password":  "secret123",
		"firstName": "Test",
		"lastName":  "User",
	}
	if role != "" {
		body["role"] = role
	}
	resp := postJSON(t, srv.URL+"/api/auth/register", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", email, resp.StatusCode)
	}
	var out authResponse
	decodeBody(t, resp, &out)
	return out
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	srv := newTestServer(t)

	out := registerUser(t, srv, "new@school.test", "")
	if out.User.Role != "student" {
		t.Fatalf("expected default role student, got %q", out.User.Role)
	}
	if out.Token == "" {
		t.Fatalf("expected a token in the registration response")
	}
	if out.User.ID == "" {
		t.Fatalf("expected a generated user id")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "dup@school.test", "")

	resp := postJSON(t, srv.URL+"/api/auth/register", map[string]interface{}{
		"email":     "dup@school.test",
		"password":  "other456",
		"firstName": "Other",
		"lastName":  "User",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/register", map[string]interface{}{
		"email":    "partial@school.test",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", resp.StatusCode)
	}
}

func TestRegisterUnknownRole(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/register", map[string]interface{}{
		"email":     "hack@school.test",
		"password":  "secret123",
		"firstName": "Test",
		"lastName":  "User",
		"role":      "superadmin",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", resp.StatusCode)
	}
}

func TestLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "login@school.test", "teacher")

	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]interface{}{
		"email":    "login@school.test",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out authResponse
	decodeBody(t, resp, &out)
	if out.Token == "" {
		t.Fatalf("expected a token")
	}
	if out.User.Role != "teacher" {
		t.Fatalf("expected role teacher, got %q", out.User.Role)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]interface{}{
		"email":    "nobody@school.test",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown email, got %d", resp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "wrongpw@school.test", "")

	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]interface{}{
		"email":    "wrongpw@school.test",
		"password": "not-the-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
}

func TestLoginMissingFields(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]interface{}{
		"email": "login@school.test",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", resp.StatusCode)
	}
}

func TestMe(t *testing.T) {
	srv := newTestServer(t)
	out := registerUser(t, srv, "me@school.test", "parent")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+out.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Data userResponse `json:"data"`
	}
	decodeBody(t, resp, &body)
	if body.Data.Email != "me@school.test" || body.Data.Role != "parent" {
		t.Fatalf("unexpected identity: %+v", body.Data)
	}
}

func TestMeWithoutToken(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/auth/me")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRoleGatedRoutesDenyByRole(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		role   string
		method string
		path   string
	}{
		{"student", http.MethodPost, "/api/students/"},
		{"teacher", http.MethodPost, "/api/students/"},
		{"parent", http.MethodPost, "/api/attendance/"},
		{"student", http.MethodGet, "/api/fees/student/some-id"},
	}
	for i, tc := range cases {
		out := registerUser(t, srv, fmt.Sprintf("deny%d@school.test", i), tc.role)
		req, err := http.NewRequest(tc.method, srv.URL+tc.path, bytes.NewReader([]byte("{}")))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+out.Token)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("do: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s as %s: expected 403, got %d", tc.method, tc.path, tc.role, resp.StatusCode)
		}
	}
}

func TestListStudentsRejectsBadFilters(t *testing.T) {
	srv := newTestServer(t)
	out := registerUser(t, srv, "filters@school.test", "")

	for _, query := range []string{"?classId=not-a-uuid", "?status=enrolled"} {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/students/"+query, nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+out.Token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("do: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", query, resp.StatusCode)
		}
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
