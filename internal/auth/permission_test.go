package auth

import (
	"context"
	"testing"

	"github.com/wastenexus/wastenexus/internal/model"
)

func TestPermissionsByRole(t *testing.T) {
	tests := []struct {
		role model.Role
		perm Permission
		want bool
	}{
		{model.RoleCitizen, PermSubmitReport, true},
		{model.RoleCitizen, PermClaimReport, false},
		{model.RoleCitizen, PermManageRewards, false},
		{model.RoleWorker, PermClaimReport, true},
		{model.RoleWorker, PermCompleteReport, true},
		{model.RoleWorker, PermReviewRedemptions, false},
		{model.RoleAdmin, PermManageRewards, true},
		{model.RoleAdmin, PermReviewApplications, true},
		{model.RoleAdmin, PermSubmitReport, true},
	}

	for _, tt := range tests {
		if got := Can(tt.role, tt.perm); got != tt.want {
			t.Errorf("Can(%s, %s) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestPermissionDefaultDeny(t *testing.T) {
	if Can("superuser", PermManageRewards) {
		t.Error("unknown role should be denied")
	}
	if Can(model.RoleCitizen, Permission("made:up")) {
		t.Error("unknown permission should be denied")
	}
	if Can("", PermSubmitReport) {
		t.Error("empty role should be denied")
	}
}

func TestCanCtx(t *testing.T) {
	ctx := context.Background()
	if CanCtx(ctx, PermSubmitReport) {
		t.Error("unauthenticated context should be denied")
	}

	ctx = WithAuth(ctx, AuthContext{UserID: 1, Role: model.RoleWorker})
	if !CanCtx(ctx, PermClaimReport) {
		t.Error("worker should be able to claim reports")
	}
	if CanCtx(ctx, PermManageRewards) {
		t.Error("worker should not manage rewards")
	}
}

func TestAuthContextRoundTrip(t *testing.T) {
	ac := AuthContext{UserID: 7, Email: "w@example.com", Role: model.RoleAdmin}
	ctx := WithAuth(context.Background(), ac)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if got != ac {
		t.Errorf("got %+v, want %+v", got, ac)
	}
	if id, ok := UserID(ctx); !ok || id != 7 {
		t.Errorf("UserID = %d (ok=%v), want 7", id, ok)
	}
	if !IsAdmin(ctx) {
		t.Error("expected admin")
	}
}

func TestAuthContextMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Error("expected no auth context")
	}
	if _, ok := UserID(ctx); ok {
		t.Error("expected no user id")
	}
	if IsAdmin(ctx) {
		t.Error("expected not admin")
	}
}
