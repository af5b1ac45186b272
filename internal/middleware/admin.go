package middleware

import (
	"log/slog"
	"net/http"

	"github.com/jobbridge/jobbridge/internal/auth"
	"github.com/jobbridge/jobbridge/internal/authz"
	"github.com/jobbridge/jobbridge/internal/handler"
	"github.com/jobbridge/jobbridge/internal/metrics"
)

// AdminMiddleware guards the admin API surface.
type AdminMiddleware struct {
	resolver *authz.Resolver
	logger   *slog.Logger
}

// NewAdminMiddleware creates a new AdminMiddleware instance.
func NewAdminMiddleware(resolver *authz.Resolver, logger *slog.Logger) *AdminMiddleware {
	return &AdminMiddleware{
		resolver: resolver,
		logger:   logger,
	}
}

// RequireAdmin is middleware that admits only callers the resolver
// recognizes as admins. Unauthenticated callers get a 401; everyone else
// who is not an admin gets a bare 403 with no detail about which check
// fell short.
//
// IMPORTANT: Use this AFTER WithUser in the middleware chain.
func (m *AdminMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := auth.GetIdentity(r.Context())

		granted, err := m.resolver.IsAdmin(r.Context(), ident)
		if err != nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		if !granted {
			metrics.AdminChecksTotal.WithLabelValues("denied").Inc()
			handler.ForbiddenResponse(w, r, m.logger)
			return
		}

		metrics.AdminChecksTotal.WithLabelValues("granted").Inc()
		next.ServeHTTP(w, r)
	})
}
