package store

import (
	"testing"

	"github.com/wastenexus/wastenexus/internal/model"
)

func TestApplicationCreateAndReview(t *testing.T) {
	db := openTestDB(t)
	as := NewApplicationStore(db)

	user := seedUser(t, db, "hopeful@example.com", model.RoleCitizen, 0)

	app, err := as.Create(user.ID, "Two years sorting recyclables", "weekends")
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if app.Status != model.ApplicationPending {
		t.Errorf("status = %q, want pending", app.Status)
	}
	if app.ReviewedAt != nil {
		t.Error("expected no review timestamp yet")
	}

	pending, err := as.HasPending(user.ID)
	if err != nil {
		t.Fatalf("has pending: %v", err)
	}
	if !pending {
		t.Error("expected a pending application")
	}

	ok, err := as.Review(app.ID, model.ApplicationApproved)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !ok {
		t.Fatal("expected review to succeed")
	}

	got, _ := as.GetByID(app.ID)
	if got.Status != model.ApplicationApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
	if got.ReviewedAt == nil {
		t.Error("expected a review timestamp")
	}

	pending, _ = as.HasPending(user.ID)
	if pending {
		t.Error("expected no pending application after review")
	}

	// Reviewed applications are final.
	ok, _ = as.Review(app.ID, model.ApplicationRejected)
	if ok {
		t.Error("expected second review to fail")
	}
}

func TestApplicationListByStatus(t *testing.T) {
	db := openTestDB(t)
	as := NewApplicationStore(db)

	u1 := seedUser(t, db, "a@example.com", model.RoleCitizen, 0)
	u2 := seedUser(t, db, "b@example.com", model.RoleCitizen, 0)

	first, _ := as.Create(u1.ID, "exp", "weekdays")
	as.Create(u2.ID, "exp", "evenings")
	as.Review(first.ID, model.ApplicationRejected)

	pending, err := as.List(string(model.ApplicationPending))
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].UserID != u2.ID {
		t.Fatalf("pending = %+v, want u2 only", pending)
	}

	all, _ := as.List("")
	if len(all) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(all))
	}
}
