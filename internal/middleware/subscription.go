package middleware

import (
	"log/slog"
	"net/http"

	"github.com/jobbridge/jobbridge/internal/auth"
	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/handler"
	"github.com/jobbridge/jobbridge/internal/metrics"
	"github.com/jobbridge/jobbridge/internal/service"
)

// =============================================================================
// Subscription Middleware Configuration
// =============================================================================

// SubscriptionMiddleware gates routes on the caller's subscription tier.
//
// Two gates are provided: RequireFeature rejects callers whose tier lacks a
// feature, and RequireApplicationQuota rejects callers whose monthly
// application allowance is exhausted. Both gates only read state; the quota
// counter is incremented by the application service after the protected
// action succeeds.
type SubscriptionMiddleware struct {
	quota  service.QuotaService
	logger *slog.Logger
}

// NewSubscriptionMiddleware creates a new SubscriptionMiddleware instance.
func NewSubscriptionMiddleware(quota service.QuotaService, logger *slog.Logger) *SubscriptionMiddleware {
	return &SubscriptionMiddleware{
		quota:  quota,
		logger: logger,
	}
}

// =============================================================================
// RequireFeature Middleware
// =============================================================================

// RequireFeature returns middleware that rejects callers whose tier does not
// include the named feature.
//
// IMPORTANT: Use this AFTER WithUser in the middleware chain.
//
// Usage:
//
//	mux.Handle("POST /api/keys",
//	    Stack(authMw.WithUser, subMw.RequireFeature(domain.FeatureAPIAccess))(createKeyHandler))
func (m *SubscriptionMiddleware) RequireFeature(feature domain.FeatureKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.GetUser(r.Context())
			if user == nil {
				handler.UnauthorizedResponse(w, r, m.logger)
				return
			}

			tier := user.EffectiveTier()
			if domain.HasFeatureAccess(tier, feature) {
				next.ServeHTTP(w, r)
				return
			}

			m.logger.Info("feature gate denied",
				"user_id", user.ID,
				"feature", feature,
				"current_tier", tier,
				"required_tier", domain.RequiredTierFor(feature),
			)
			metrics.GateDenialsTotal.WithLabelValues("feature", string(feature)).Inc()

			handler.FeatureDenialResponse(w, feature, tier)
		})
	}
}

// =============================================================================
// RequireApplicationQuota Middleware
// =============================================================================

// RequireApplicationQuota is middleware that rejects callers who have used
// up their monthly application allowance.
//
// On the allow path the computed quota status is attached to the request
// context so handlers can echo it without re-reading the database. No
// counter is touched here.
//
// IMPORTANT: Use this AFTER WithUser in the middleware chain.
func (m *SubscriptionMiddleware) RequireApplicationQuota(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.GetUser(r.Context())
		if user == nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		status, err := m.quota.Status(r.Context(), user.ID)
		if err != nil {
			if domain.ErrorCode(err) == domain.ENOTFOUND {
				handler.ErrorResponse(w, r, m.logger, err)
				return
			}
			// Fail closed. A broken quota read becomes a denial, not a
			// 500 with internals attached.
			m.logger.Error("quota check failed", "user_id", user.ID, "error", err)
			handler.ForbiddenResponse(w, r, m.logger)
			return
		}

		if !status.Allowed {
			m.logger.Info("quota gate denied",
				"user_id", user.ID,
				"limit", status.Limit,
				"reset_date", status.ResetDate,
			)
			metrics.GateDenialsTotal.WithLabelValues("quota", string(domain.FeatureMonthlyApplications)).Inc()

			handler.QuotaDenialResponse(w, status)
			return
		}

		ctx := auth.SetQuotaStatus(r.Context(), status)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
