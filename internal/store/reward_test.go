package store

import (
	"testing"

	"github.com/wastenexus/wastenexus/internal/model"
)

func TestRewardItemCRUD(t *testing.T) {
	db := openTestDB(t)
	rs := NewRewardStore(db)

	item, err := rs.Create("Bus Pass", "One free ride", 50, 10, model.CategoryTransport, true)
	if err != nil {
		t.Fatalf("create reward item: %v", err)
	}
	if item.PointsCost != 50 {
		t.Errorf("points_cost = %d, want 50", item.PointsCost)
	}
	if item.Stock != 10 {
		t.Errorf("stock = %d, want 10", item.Stock)
	}
	if item.Category != model.CategoryTransport {
		t.Errorf("category = %q, want transport", item.Category)
	}
	if !item.Active {
		t.Error("expected active")
	}

	got, err := rs.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get reward item: %v", err)
	}
	if got == nil || got.Title != "Bus Pass" {
		t.Fatalf("got %+v, want Bus Pass", got)
	}

	updated, err := rs.Update(item.ID, "Metro Pass", "Two rides", 80, 5, model.CategoryTransport, true)
	if err != nil {
		t.Fatalf("update reward item: %v", err)
	}
	if updated.Title != "Metro Pass" || updated.PointsCost != 80 || updated.Stock != 5 {
		t.Errorf("updated = %+v, want Metro Pass/80/5", updated)
	}

	if err := rs.Deactivate(item.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, _ = rs.GetByID(item.ID)
	if got.Active {
		t.Error("expected inactive after deactivate")
	}
}

func TestRewardItemNotFound(t *testing.T) {
	db := openTestDB(t)
	rs := NewRewardStore(db)

	got, err := rs.GetByID(999)
	if err != nil {
		t.Fatalf("get reward item: %v", err)
	}
	if got != nil {
		t.Error("expected nil for non-existent item")
	}
}

func TestRewardCatalogOrdering(t *testing.T) {
	db := openTestDB(t)
	rs := NewRewardStore(db)

	rs.Create("Pricey", "", 300, model.UnlimitedStock, model.CategoryOther, true)
	rs.Create("Cheap", "", 20, model.UnlimitedStock, model.CategoryEcoProducts, true)
	rs.Create("Hidden", "", 10, model.UnlimitedStock, model.CategoryOther, false)
	rs.Create("Middle", "", 100, model.UnlimitedStock, model.CategoryBillDiscount, true)

	// Catalog: active only, ascending cost.
	catalog, err := rs.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(catalog) != 3 {
		t.Fatalf("expected 3 catalog items, got %d", len(catalog))
	}
	wantTitles := []string{"Cheap", "Middle", "Pricey"}
	for i, want := range wantTitles {
		if catalog[i].Title != want {
			t.Errorf("catalog[%d].Title = %q, want %q", i, catalog[i].Title, want)
		}
	}

	all, err := rs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 items, got %d", len(all))
	}
	if all[3].Title != "Hidden" {
		t.Errorf("all[3].Title = %q, want Hidden (inactive last)", all[3].Title)
	}
}

func TestListRedemptionsByUser(t *testing.T) {
	db := openTestDB(t)
	rs := NewRewardStore(db)

	alice := seedUser(t, db, "alice@example.com", model.RoleCitizen, 0)
	bob := seedUser(t, db, "bob@example.com", model.RoleCitizen, 0)
	item, _ := rs.Create("Treat", "", 25, model.UnlimitedStock, model.CategoryOther, true)

	insert := func(userID int64) {
		t.Helper()
		if _, err := db.Exec(
			`INSERT INTO reward_redemptions (reward_id, user_id, points_spent) VALUES (?, ?, ?)`,
			item.ID, userID, 25,
		); err != nil {
			t.Fatalf("insert redemption: %v", err)
		}
	}
	insert(alice.ID)
	insert(alice.ID)
	insert(bob.ID)

	aliceRedemptions, err := rs.ListRedemptionsByUser(alice.ID)
	if err != nil {
		t.Fatalf("list alice redemptions: %v", err)
	}
	if len(aliceRedemptions) != 2 {
		t.Fatalf("expected 2 alice redemptions, got %d", len(aliceRedemptions))
	}
	for _, r := range aliceRedemptions {
		if r.Status != model.RedemptionPending {
			t.Errorf("status = %q, want pending", r.Status)
		}
	}

	pending, err := rs.ListRedemptionsByStatus(model.RedemptionPending)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending redemptions, got %d", len(pending))
	}
}
