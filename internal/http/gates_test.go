package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theswapneil/school-management-system/internal/auth"
	"github.com/theswapneil/school-management-system/internal/model"
)

const (
	testSecret = "test-secret"
	testIssuer = "test-issuer"
)

func mustToken(t *testing.T, role model.Role) string {
	t.Helper()
	token, err := auth.NewAccessToken(testSecret, testIssuer, 10*time.Minute, model.User{
		ID:        "user-1",
		Email:     "a@x.com",
		FirstName: "A",
		Role:      role,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return token
}

func gatedHandler(gates ...gate) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return pipeline(gates...)(next)
}

func doGated(t *testing.T, handler http.Handler, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthGateMissingToken(t *testing.T) {
	handler := gatedHandler(newAuthGate(testSecret))

	if rec := doGated(t, handler, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", rec.Code)
	}
	if rec := doGated(t, handler, "Basic abc"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer header, got %d", rec.Code)
	}
}

func TestAuthGateInvalidToken(t *testing.T) {
	handler := gatedHandler(newAuthGate(testSecret))

	if rec := doGated(t, handler, "Bearer garbage"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for garbage token, got %d", rec.Code)
	}

	wrongSecret, err := auth.NewAccessToken("other-secret", testIssuer, time.Minute, model.User{
		ID: "user-1", Email: "a@x.com", Role: model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if rec := doGated(t, handler, "Bearer "+wrongSecret); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong-secret token, got %d", rec.Code)
	}
}

func TestAuthGateValidToken(t *testing.T) {
	handler := gatedHandler(newAuthGate(testSecret))
	if rec := doGated(t, handler, "Bearer "+mustToken(t, model.RoleStudent)); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d", rec.Code)
	}
}

func TestRoleGateAllowList(t *testing.T) {
	handler := gatedHandler(newAuthGate(testSecret), newRoleGate(model.RoleAdmin, model.RoleTeacher))

	if rec := doGated(t, handler, "Bearer "+mustToken(t, model.RoleAdmin)); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
	if rec := doGated(t, handler, "Bearer "+mustToken(t, model.RoleTeacher)); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for teacher, got %d", rec.Code)
	}
	if rec := doGated(t, handler, "Bearer "+mustToken(t, model.RoleStudent)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student, got %d", rec.Code)
	}
	if rec := doGated(t, handler, "Bearer "+mustToken(t, model.RoleParent)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for parent, got %d", rec.Code)
	}
}

func TestRoleGateDeniesAdminOnlyForTeacher(t *testing.T) {
	handler := gatedHandler(newAuthGate(testSecret), newRoleGate(model.RoleAdmin))
	if rec := doGated(t, handler, "Bearer "+mustToken(t, model.RoleTeacher)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for teacher on admin-only route, got %d", rec.Code)
	}
}

func TestPipelineRejectsRoleGateBeforeAuthGate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected pipeline to panic on role gate without auth gate")
		}
	}()
	pipeline(newRoleGate(model.RoleAdmin))
}

func TestRoleGateWithoutIdentityDeniesAll(t *testing.T) {
	// Simulates a miswired chain that slipped past composition: a role gate
	// looking at a request that never went through an auth gate.
	g := newRoleGate(model.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, d := g.check(req); d == nil || d.status != http.StatusForbidden {
		t.Fatalf("expected deny-all denial, got %+v", d)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"Bearer abc":      "abc",
		"bearer abc":      "abc",
		"Bearer  abc ":    "abc",
		"Basic abc":       "",
		"Bearer":          "",
		"abc":             "",
		"Bearer a b":      "a b",
	}
	for header, expect := range cases {
		if got := bearerToken(header); got != expect {
			t.Fatalf("bearerToken(%q) = %q, expected %q", header, got, expect)
		}
	}
}
