package auth

import (
	"context"

	"github.com/wastenexus/wastenexus/internal/model"
)

// Permission names an operation gated by role.
type Permission string

const (
	PermSubmitReport       Permission = "report:submit"
	PermClaimReport        Permission = "report:claim"
	PermCompleteReport     Permission = "report:complete"
	PermManageRewards      Permission = "rewards:manage"
	PermReviewRedemptions  Permission = "redemptions:review"
	PermManageEvents       Permission = "events:manage"
	PermReviewApplications Permission = "applications:review"
	PermReviewGallery      Permission = "gallery:review"
	PermListUsers          Permission = "users:list"
)

// rolePermissions enumerates what each role may do. Anything not listed is
// denied; there is no wildcard role.
var rolePermissions = map[model.Role]map[Permission]bool{
	model.RoleCitizen: {
		PermSubmitReport: true,
	},
	model.RoleWorker: {
		PermSubmitReport:   true,
		PermClaimReport:    true,
		PermCompleteReport: true,
	},
	model.RoleAdmin: {
		PermSubmitReport:       true,
		PermClaimReport:        true,
		PermCompleteReport:     true,
		PermManageRewards:      true,
		PermReviewRedemptions:  true,
		PermManageEvents:       true,
		PermReviewApplications: true,
		PermReviewGallery:      true,
		PermListUsers:          true,
	},
}

// Can reports whether the role holds the permission. Unknown roles and
// unknown permissions are denied.
func Can(role model.Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return perms[perm]
}

// CanCtx checks the permission against the authenticated role in ctx.
func CanCtx(ctx context.Context, perm Permission) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return Can(ac.Role, perm)
}

func IsAdmin(ctx context.Context) bool {
	return RoleFromContext(ctx) == model.RoleAdmin
}
