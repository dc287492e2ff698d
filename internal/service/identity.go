package service

import (
	"context"

	"github.com/campusswap/backend/pkg/auth"
)

// IdentityResolver returns the authenticated user for the current request.
type IdentityResolver interface {
	ResolveCurrentUser(ctx context.Context) (string, bool)
}

type contextIdentityResolver struct{}

// NewContextIdentityResolver resolves identity from the request context set by
// the pkg/auth middleware.
func NewContextIdentityResolver() IdentityResolver {
	return contextIdentityResolver{}
}

func (contextIdentityResolver) ResolveCurrentUser(ctx context.Context) (string, bool) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
