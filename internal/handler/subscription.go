// This file implements the subscription endpoints the SPA reads to render
// usage meters and plan comparison tables.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/jobbridge/jobbridge/internal/auth"
	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/service"
)

// =============================================================================
// Response Types
// =============================================================================

// UsageResponse reports the caller's tier and application quota.
type UsageResponse struct {
	Tier  string              `json:"tier"`
	Quota *domain.QuotaStatus `json:"quota"`
}

// FeatureEntry describes one feature and whether the caller's tier has it.
type FeatureEntry struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Included     bool   `json:"included"`
	RequiredTier string `json:"requiredTier"`
}

// FeaturesResponse is the full feature catalog evaluated for one tier.
type FeaturesResponse struct {
	Tier                string         `json:"tier"`
	MonthlyApplications int            `json:"monthlyApplications"`
	Features            []FeatureEntry `json:"features"`
}

// =============================================================================
// Handler Configuration
// =============================================================================

// SubscriptionHandler handles subscription and usage HTTP requests.
type SubscriptionHandler struct {
	quota  service.QuotaService
	logger *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(quota service.QuotaService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		quota:  quota,
		logger: logger,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers subscription routes with the provided mux.
//
// Routes:
//   - GET /api/subscription/usage    -> Usage
//   - GET /api/subscription/features -> Features
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /api/subscription/usage", requireUser(http.HandlerFunc(h.Usage)))
	mux.Handle("GET /api/subscription/features", requireUser(http.HandlerFunc(h.Features)))
}

// =============================================================================
// GET /api/subscription/usage - Current Quota
// =============================================================================

// Usage returns the caller's tier and remaining application quota. The
// read applies the monthly rollover, so a stale counter is reset before
// being reported.
func (h *SubscriptionHandler) Usage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	status, err := h.quota.Status(r.Context(), user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, UsageResponse{
		Tier:  string(user.EffectiveTier()),
		Quota: status,
	})
}

// =============================================================================
// GET /api/subscription/features - Feature Catalog
// =============================================================================

// Features returns every gated feature evaluated against the caller's tier.
func (h *SubscriptionHandler) Features(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	tier := user.EffectiveTier()

	entries := make([]FeatureEntry, 0, len(domain.AllFeatures))
	for _, feature := range domain.AllFeatures {
		info := domain.GetFeatureInfo(feature)
		entries = append(entries, FeatureEntry{
			Key:          string(feature),
			Name:         info.Name,
			Description:  info.Description,
			Included:     domain.HasFeatureAccess(tier, feature),
			RequiredTier: string(domain.RequiredTierFor(feature)),
		})
	}

	writeJSON(w, http.StatusOK, FeaturesResponse{
		Tier:                string(tier),
		MonthlyApplications: domain.GetMonthlyApplicationLimit(tier),
		Features:            entries,
	})
}
