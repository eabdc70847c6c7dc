package service

import (
	"context"

	"pethotel/internal/domain"
)

// AuthProvider reports the signed-in member of a request, or nil for guests.
type AuthProvider interface {
	CurrentIdentity(ctx context.Context) *domain.UserRef
}

type userContextKey struct{}

// WithUser returns a context carrying an authenticated member.
func WithUser(ctx context.Context, user domain.UserRef) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the member stored by WithUser.
func UserFromContext(ctx context.Context) (*domain.UserRef, bool) {
	user, ok := ctx.Value(userContextKey{}).(domain.UserRef)
	if !ok || user.ID == "" {
		return nil, false
	}
	return &user, true
}

// ContextAuthProvider reads the member placed in the context by the auth middleware.
type ContextAuthProvider struct{}

// CurrentIdentity implements AuthProvider.
func (ContextAuthProvider) CurrentIdentity(ctx context.Context) *domain.UserRef {
	user, _ := UserFromContext(ctx)
	return user
}
