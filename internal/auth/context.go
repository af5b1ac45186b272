// Package auth provides authentication context helpers.
//
// This package is imported by both middleware and handler packages without
// causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/identity"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	identityContextKey contextKey = "identity"
	userContextKey     contextKey = "user"
	quotaContextKey    contextKey = "quota"
)

// GetIdentity retrieves the resolved caller identity from the context.
// Returns nil if the request carried no valid credential.
func GetIdentity(ctx context.Context) *identity.Identity {
	ident, ok := ctx.Value(identityContextKey).(*identity.Identity)
	if !ok {
		return nil
	}
	return ident
}

// SetIdentity stores a resolved identity in the context.
func SetIdentity(ctx context.Context, ident *identity.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

// GetUser retrieves the authenticated user from the context.
//
// Returns nil if no user is authenticated.
func GetUser(ctx context.Context) *domain.User {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserFromRequest retrieves the authenticated user from the request context.
func GetUserFromRequest(r *http.Request) *domain.User {
	return GetUser(r.Context())
}

// SetUser stores a user in the context. Called by the authentication
// middleware after resolving the caller's credential to a user row.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetQuotaStatus retrieves the quota status attached by the quota gate.
// Returns nil on routes that are not quota-gated.
func GetQuotaStatus(ctx context.Context) *domain.QuotaStatus {
	status, ok := ctx.Value(quotaContextKey).(*domain.QuotaStatus)
	if !ok {
		return nil
	}
	return status
}

// SetQuotaStatus stores a computed quota status in the context for
// downstream display.
func SetQuotaStatus(ctx context.Context, status *domain.QuotaStatus) context.Context {
	return context.WithValue(ctx, quotaContextKey, status)
}
