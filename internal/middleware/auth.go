// Package middleware contains HTTP middleware for the JobBridge API.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler.
// They are designed to be composed using a middleware stack approach.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jobbridge/jobbridge/internal/auth"
	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/handler"
	"github.com/jobbridge/jobbridge/internal/identity"
	"github.com/jobbridge/jobbridge/internal/service"
)

// =============================================================================
// Auth Middleware Configuration
// =============================================================================

// AuthMiddleware resolves bearer credentials to users.
//
// Two credential shapes share the Authorization header: Supabase access
// tokens and JobBridge API keys ("jbk_..."). API keys are an enterprise
// feature; tokens are the normal path.
type AuthMiddleware struct {
	verifier identity.Verifier
	users    service.UserService
	apiKeys  service.APIKeyService
	logger   *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier identity.Verifier, users service.UserService, apiKeys service.APIKeyService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		users:    users,
		apiKeys:  apiKeys,
		logger:   logger,
	}
}

// =============================================================================
// WithUser Middleware
// =============================================================================

// WithUser is middleware that attempts to resolve the Authorization header
// to a user.
//
// This middleware:
//  1. Extracts the bearer credential, if any
//  2. Resolves it via the API key service or the identity verifier
//  3. Provisions the user row on first sight of a verified identity
//  4. Stores the identity and user in the request context
//  5. Continues to the next handler regardless of authentication status
//
// An invalid credential is treated the same as no credential: the request
// proceeds anonymously and RequireUser decides whether that is acceptable.
func (m *AuthMiddleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := bearerCredential(r)
		if credential == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()

		if service.IsAPIKey(credential) {
			user, err := m.apiKeys.Authenticate(ctx, credential)
			if err != nil {
				m.logger.Debug("api key rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			// API keys carry no provider session, so the identity is
			// synthesized from the user row.
			ident := &identity.Identity{
				ID:    user.ID,
				Email: user.Email,
				Name:  user.Name,
			}
			ctx = auth.SetIdentity(ctx, ident)
			ctx = auth.SetUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		ident, err := m.verifier.Resolve(ctx, credential)
		if err != nil {
			m.logger.Debug("token rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.Provision(ctx, domain.ProvisionParams{
			ID:    ident.ID,
			Email: ident.Email,
			Name:  ident.Name,
		})
		if err != nil {
			m.logger.Error("failed to provision user",
				"user_id", ident.ID,
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		ctx = auth.SetIdentity(ctx, ident)
		ctx = auth.SetUser(ctx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// =============================================================================
// RequireUser Middleware
// =============================================================================

// RequireUser is middleware that requires an authenticated user.
//
// IMPORTANT: This middleware must be used AFTER WithUser in the middleware
// chain.
//
// Usage:
//
//	stack := Stack(authMw.WithUser, authMw.RequireUser)
//	mux.Handle("GET /api/applications", stack(listHandler))
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Request Helpers
// =============================================================================

// bearerCredential extracts the credential from the Authorization header.
// Returns "" when the header is absent or not a bearer scheme.
func bearerCredential(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	scheme, credential, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(credential)
}

// =============================================================================
// Middleware Stack Helpers
// =============================================================================

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// in the slice is the outermost (runs first on request, last on response).
//
// Example:
//
//	stack := Stack(loggingMw, authMw.WithUser, authMw.RequireUser)
//	mux.Handle("GET /api/applications", stack(listHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// =============================================================================
// Compile-time checks
// =============================================================================

var (
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).WithUser
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireUser
)
