package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/theswapneil/school-management-system/internal/auth"
	"github.com/theswapneil/school-management-system/internal/model"
	"github.com/theswapneil/school-management-system/internal/repository"
)

// memStore is an in-memory IdentityStore with the same uniqueness semantics
// as the Postgres email index.
type memStore struct {
	mu      sync.Mutex
	byEmail map[string]model.User
	byID    map[string]model.User
}

func newMemStore() *memStore {
	return &memStore{
		byEmail: make(map[string]model.User),
		byID:    make(map[string]model.User),
	}
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *memStore) GetUserByID(_ context.Context, userID string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[userID]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *memStore) CreateUser(_ context.Context, user model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[user.Email]; exists {
		return repository.ErrDuplicate
	}
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func newTestService(store IdentityStore) *AuthService {
	return NewAuthService(store, zap.NewNop(), "test-secret", "test-issuer", time.Hour)
}

func register(t *testing.T, svc *AuthService, email string) AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "secret1",
		FirstName: "A",
		LastName:  "B",
	})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	return result
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	svc := newTestService(newMemStore())
	result := register(t, svc, "a@x.com")

	if result.User.Role != model.RoleStudent {
		t.Fatalf("expected default role student, got %s", result.User.Role)
	}
	if !result.User.Active {
		t.Fatalf("expected new user to be active")
	}
	if result.Token == "" {
		t.Fatalf("expected a token")
	}

	claims, err := auth.ParseToken("test-secret", result.Token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.Email != "a@x.com" || claims.Role != "student" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"a@x.com":       "a@x.com",
		"  A@X.CoM ":    "a@x.com",
		"\tMiXeD@X.cm":  "mixed@x.cm",
		"":              "",
		"   ":           "",
	}
	for in, expect := range cases {
		if got := NormalizeEmail(in); got != expect {
			t.Fatalf("NormalizeEmail(%q) = %q, expected %q", in, got, expect)
		}
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	result := register(t, svc, "  MiXeD@X.CoM ")

	if result.User.Email != "mixed@x.com" {
		t.Fatalf("expected lowercase email, got %s", result.User.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(newMemStore())
	register(t, svc, "a@x.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:     "A@X.com",
		Password:  "other",
		FirstName: "C",
		LastName:  "D",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:     "a@x.com",
		Password:  "secret1",
		FirstName: "A",
		LastName:  "B",
		Role:      "superuser",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown role, got %v", err)
	}
}

func TestConcurrentDuplicateRegistration(t *testing.T) {
	svc := newTestService(newMemStore())

	const n = 8
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := svc.Register(context.Background(), RegisterInput{
				Email:     "race@x.com",
				Password:  "secret1",
				FirstName: "A",
				LastName:  "B",
			})
			results <- err
		}()
	}

	var successes, conflicts int
	for i := 0; i < n; i++ {
		switch err := <-results; {
		case err == nil:
			successes++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one success, got %d (%d conflicts)", successes, conflicts)
	}
}

func TestLoginSuccess(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	register(t, svc, "a@x.com")

	result, err := svc.Login(context.Background(), "A@x.com", "secret1")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if result.User.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if result.Token == "" {
		t.Fatalf("expected a token")
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.Login(context.Background(), "z@x.com", "whatever")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	register(t, svc, "a@x.com")

	_, err := svc.Login(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}

	// Failed logins must not alter stored state.
	if _, err := svc.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("expected subsequent correct login to succeed: %v", err)
	}
}

func TestLoginMissingFields(t *testing.T) {
	svc := newTestService(newMemStore())
	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
