package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wastenexus/wastenexus/internal/auth"
	"github.com/wastenexus/wastenexus/internal/model"
)

func testToken(t *testing.T, issuer *auth.TokenIssuer, role model.Role) string {
	t.Helper()
	token, err := issuer.Sign(&model.User{ID: 7, Email: "user@example.com", Role: role})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestRequireAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	var gotID int64
	var gotRole model.Role
	handler := RequireAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			t.Error("expected auth context")
		}
		gotID = ac.UserID
		gotRole = ac.Role
	}))

	// No token.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}

	// Garbage token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}

	// Token signed with a different secret.
	other := auth.NewTokenIssuer("other-secret", time.Hour)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, other, model.RoleCitizen))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong secret status = %d, want 401", rec.Code)
	}

	// Valid token in the header.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, issuer, model.RoleCitizen))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", rec.Code)
	}
	if gotID != 7 {
		t.Errorf("user id = %d, want 7", gotID)
	}
	if gotRole != model.RoleCitizen {
		t.Errorf("role = %q, want %q", gotRole, model.RoleCitizen)
	}

	// Valid token in the query string, as sent on websocket upgrades.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/?token="+testToken(t, issuer, model.RoleCitizen), nil)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("query token status = %d, want 200", rec.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := RequireAuth(issuer)(
		RequirePermission(auth.PermClaimReport)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		),
	)

	cases := []struct {
		role model.Role
		want int
	}{
		{model.RoleCitizen, http.StatusForbidden},
		{model.RoleWorker, http.StatusOK},
		{model.RoleAdmin, http.StatusOK},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+testToken(t, issuer, tc.role))
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("role %s: status = %d, want %d", tc.role, rec.Code, tc.want)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := RequireAuth(issuer)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, issuer, model.RoleWorker))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("worker status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, issuer, model.RoleAdmin))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}
}
