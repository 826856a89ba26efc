package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wastenexus/wastenexus/internal/auth"
	"github.com/wastenexus/wastenexus/internal/database"
	"github.com/wastenexus/wastenexus/internal/logging"
	"github.com/wastenexus/wastenexus/internal/model"
	"github.com/wastenexus/wastenexus/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A pooled second connection to :memory: would see its own empty database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	logger := logging.Setup("error", "")
	srv := New(db, Config{JWTSecret: "test-secret"}, logger)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var fields map[string]json.RawMessage
	json.NewDecoder(resp.Body).Decode(&fields)
	return resp, fields
}

func registerUser(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	resp, fields := doJSON(t, "POST", ts.URL+"/api/register", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": "long-enough-password",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	var token string
	json.Unmarshal(fields["token"], &token)
	if token == "" {
		t.Fatal("expected a token")
	}
	return token
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, fields := doJSON(t, "GET", ts.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var status string
	json.Unmarshal(fields["status"], &status)
	if status != "ok" {
		t.Errorf("status = %q, want ok", status)
	}
}

func TestRegisterLoginMe(t *testing.T) {
	ts, _ := newTestServer(t)

	registerUser(t, ts, "alice@example.com")

	// Duplicate registration conflicts.
	resp, _ := doJSON(t, "POST", ts.URL+"/api/register", "", map[string]string{
		"email": "alice@example.com", "name": "Dup", "password": "long-enough-password",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", resp.StatusCode)
	}

	// Wrong password.
	resp, _ = doJSON(t, "POST", ts.URL+"/api/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", resp.StatusCode)
	}

	// Good login.
	resp, fields := doJSON(t, "POST", ts.URL+"/api/login", "", map[string]string{
		"email": "alice@example.com", "password": "long-enough-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var token string
	json.Unmarshal(fields["token"], &token)

	resp, fields = doJSON(t, "GET", ts.URL+"/api/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	var role string
	json.Unmarshal(fields["role"], &role)
	if role != "citizen" {
		t.Errorf("role = %q, want citizen", role)
	}

	// No token.
	resp, _ = doJSON(t, "GET", ts.URL+"/api/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated me status = %d, want 401", resp.StatusCode)
	}
}

func TestRedeemFlowOverHTTP(t *testing.T) {
	ts, srv := newTestServer(t)
	token := registerUser(t, ts, "alice@example.com")

	// Seed an item and a balance directly.
	rewards := store.NewRewardStore(srv.db)
	item, err := rewards.Create("Bus Pass", "", 50, 1, model.CategoryTransport, true)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if _, err := srv.db.Exec(`UPDATE users SET points = 60`); err != nil {
		t.Fatalf("seed points: %v", err)
	}

	url := fmt.Sprintf("%s/api/rewards/%d/redeem", ts.URL, item.ID)
	resp, fields := doJSON(t, "POST", url, token, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("redeem status = %d", resp.StatusCode)
	}
	var status string
	json.Unmarshal(fields["status"], &status)
	if status != "pending" {
		t.Errorf("redemption status = %q, want pending", status)
	}

	// Stock exhausted: second redemption conflicts.
	resp, _ = doJSON(t, "POST", url, token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("second redeem status = %d, want 409", resp.StatusCode)
	}

	// Balance reflects the deduction.
	resp, fields = doJSON(t, "GET", ts.URL+"/api/me", token, nil)
	var points int
	json.Unmarshal(fields["points"], &points)
	if points != 10 {
		t.Errorf("points = %d, want 10", points)
	}
}

func TestRoleGatesOverHTTP(t *testing.T) {
	ts, srv := newTestServer(t)
	token := registerUser(t, ts, "citizen@example.com")

	// Citizens cannot claim reports or reach admin routes.
	resp, _ := doJSON(t, "POST", ts.URL+"/api/reports/1/claim", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("citizen claim status = %d, want 403", resp.StatusCode)
	}
	resp, _ = doJSON(t, "GET", ts.URL+"/api/admin/users", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("citizen admin status = %d, want 403", resp.StatusCode)
	}

	// Promote to admin and sign a fresh token.
	users := store.NewUserStore(srv.db)
	u, err := users.GetByEmail("citizen@example.com")
	if err != nil || u == nil {
		t.Fatalf("get user: %v", err)
	}
	if err := users.SetRole(u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	u.Role = model.RoleAdmin
	adminToken, err := auth.NewTokenIssuer("test-secret", 0).Sign(u)
	if err != nil {
		t.Fatalf("sign admin token: %v", err)
	}

	resp, _ = doJSON(t, "GET", ts.URL+"/api/admin/users", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin users status = %d, want 200", resp.StatusCode)
	}
}

func TestCollectionEnvelopes(t *testing.T) {
	ts, srv := newTestServer(t)

	rewards := store.NewRewardStore(srv.db)
	if _, err := rewards.Create("Compost Bin", "", 30, 5, model.CategoryEcoProducts, true); err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if _, err := srv.db.Exec(
		`INSERT INTO events (title, starts_at, max_participants, points_reward)
		 VALUES ('Cleanup', CURRENT_TIMESTAMP, 0, 25)`,
	); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	cases := []struct {
		path string
		key  string
	}{
		{"/api/rewards", "rewards"},
		{"/api/events", "events"},
	}
	for _, tc := range cases {
		resp, fields := doJSON(t, "GET", ts.URL+tc.path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d", tc.path, resp.StatusCode)
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(fields[tc.key], &entries); err != nil {
			t.Fatalf("GET %s: expected %q array envelope: %v", tc.path, tc.key, err)
		}
		if len(entries) != 1 {
			t.Errorf("GET %s: got %d entries, want 1", tc.path, len(entries))
		}
	}
}

func TestJoinEventOverHTTP(t *testing.T) {
	ts, srv := newTestServer(t)
	token := registerUser(t, ts, "alice@example.com")

	var eventID int64
	if err := srv.db.QueryRow(
		`INSERT INTO events (title, starts_at, max_participants, points_reward)
		 VALUES ('Cleanup', CURRENT_TIMESTAMP, 0, 25) RETURNING id`,
	).Scan(&eventID); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	url := fmt.Sprintf("%s/api/events/%d/join", ts.URL, eventID)
	resp, _ := doJSON(t, "POST", url, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, "POST", url, token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("rejoin status = %d, want 409", resp.StatusCode)
	}

	resp, fields := doJSON(t, "GET", ts.URL+"/api/me", token, nil)
	var points int
	json.Unmarshal(fields["points"], &points)
	if points != 25 {
		t.Errorf("points = %d, want 25", points)
	}
}
