package auth

import (
	"context"

	"github.com/wastenexus/wastenexus/internal/model"
)

type contextKey struct{}

type AuthContext struct {
	UserID int64
	Email  string
	Role   model.Role
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) (int64, bool) {
	ac, ok := FromContext(ctx)
	return ac.UserID, ok
}

func RoleFromContext(ctx context.Context) model.Role {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.Role
}
