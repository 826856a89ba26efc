package store

import (
	"database/sql"
	"testing"

	"github.com/wastenexus/wastenexus/internal/model"
)

func seedUser(t *testing.T, db *sql.DB, email string, role model.Role, points int) *model.User {
	t.Helper()
	us := NewUserStore(db)
	u, err := us.Create(email, "User "+email, "hash", role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if points != 0 {
		if _, err := db.Exec(`UPDATE users SET points = ? WHERE id = ?`, points, u.ID); err != nil {
			t.Fatalf("seed points: %v", err)
		}
	}
	return u
}

func TestUserCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	user, err := us.Create("ada@example.com", "Ada", "hashed-secret", model.RoleCitizen)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email = %q, want %q", user.Email, "ada@example.com")
	}
	if user.Role != model.RoleCitizen {
		t.Errorf("role = %q, want citizen", user.Role)
	}
	if user.Points != 0 {
		t.Errorf("points = %d, want 0", user.Points)
	}

	got, err := us.GetByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("get by email = %+v, want id %d", got, user.ID)
	}
	if got.PasswordHash != "hashed-secret" {
		t.Errorf("password hash = %q, want stored hash", got.PasswordHash)
	}
}

func TestUserNotFound(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	got, err := us.GetByID(999)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got != nil {
		t.Error("expected nil for non-existent user")
	}

	got, err = us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got != nil {
		t.Error("expected nil for non-existent email")
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	if _, err := us.Create("dup@example.com", "First", "h", model.RoleCitizen); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("dup@example.com", "Second", "h", model.RoleCitizen); err == nil {
		t.Error("expected error for duplicate email")
	}
}

func TestUserSetRole(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	user := seedUser(t, db, "worker@example.com", model.RoleCitizen, 0)
	if err := us.SetRole(user.ID, model.RoleWorker); err != nil {
		t.Fatalf("set role: %v", err)
	}

	got, _ := us.GetByID(user.ID)
	if got.Role != model.RoleWorker {
		t.Errorf("role = %q, want worker", got.Role)
	}
}

func TestLeaderboardRanksAndTies(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	seedUser(t, db, "a@example.com", model.RoleCitizen, 100)
	seedUser(t, db, "b@example.com", model.RoleCitizen, 50)
	seedUser(t, db, "c@example.com", model.RoleCitizen, 50)
	seedUser(t, db, "d@example.com", model.RoleCitizen, 10)

	entries, err := us.Leaderboard(3)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Ranks are positional: ties get consecutive ranks, not shared ranks.
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Errorf("entries[%d].Rank = %d, want %d", i, e.Rank, i+1)
		}
	}
	if entries[0].Points != 100 {
		t.Errorf("entries[0].Points = %d, want 100", entries[0].Points)
	}
	if entries[1].Points != 50 || entries[2].Points != 50 {
		t.Errorf("tied entries = %d, %d, want 50, 50", entries[1].Points, entries[2].Points)
	}
}

func TestLeaderboardExcludesNonCitizens(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	seedUser(t, db, "citizen@example.com", model.RoleCitizen, 10)
	seedUser(t, db, "worker@example.com", model.RoleWorker, 500)
	seedUser(t, db, "admin@example.com", model.RoleAdmin, 900)

	entries, err := us.Leaderboard(0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Points != 10 {
		t.Errorf("points = %d, want 10", entries[0].Points)
	}
}

func TestLeaderboardDefaultLimit(t *testing.T) {
	db := openTestDB(t)
	us := NewUserStore(db)

	for i := 0; i < 15; i++ {
		seedUser(t, db, string(rune('a'+i))+"@example.com", model.RoleCitizen, i)
	}

	entries, err := us.Leaderboard(0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != defaultLeaderboardLimit {
		t.Errorf("expected %d entries, got %d", defaultLeaderboardLimit, len(entries))
	}
}
