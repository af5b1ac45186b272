// This file defines the structured subscription denial payloads. Both the
// gate middleware and the submission handler emit them, so the SPA parses
// one shape regardless of where a denial was decided.
package handler

import (
	"net/http"
	"time"

	"github.com/jobbridge/jobbridge/internal/domain"
)

// Stable rejection codes. These are rendered by the SPA, not just logged;
// changing them breaks the upgrade dialogs.
const (
	CodeSubscriptionRequired    = "SUBSCRIPTION_REQUIRED"
	CodeApplicationLimitReached = "APPLICATION_LIMIT_REACHED"
)

// FeatureDenial is the upgrade payload the front end renders its upgrade
// dialog from. Field presence and naming are part of the API contract.
type FeatureDenial struct {
	Error        string `json:"error"`
	Code         string `json:"code"`
	Feature      string `json:"feature"`
	Description  string `json:"description"`
	RequiredTier string `json:"requiredTier"`
	CurrentTier  string `json:"currentTier"`
	Message      string `json:"message"`
}

// QuotaDenial is the payload returned when the monthly application
// allowance is exhausted.
type QuotaDenial struct {
	Error        string     `json:"error"`
	Code         string     `json:"code"`
	Limit        int        `json:"limit"`
	Remaining    int        `json:"remaining"`
	ResetDate    *time.Time `json:"resetDate"`
	Message      string     `json:"message"`
	RequiredTier string     `json:"requiredTier"`
}

// FeatureDenialResponse writes the 403 payload for a tier that lacks the
// named feature.
func FeatureDenialResponse(w http.ResponseWriter, feature domain.FeatureKey, current domain.SubscriptionTier) {
	info := domain.GetFeatureInfo(feature)
	required := domain.RequiredTierFor(feature)

	writeJSON(w, http.StatusForbidden, FeatureDenial{
		Error:        "Subscription upgrade required",
		Code:         CodeSubscriptionRequired,
		Feature:      info.Name,
		Description:  info.Description,
		RequiredTier: string(required),
		CurrentTier:  string(current),
		Message:      "Upgrade to the " + string(required) + " plan to use " + info.Name + ".",
	})
}

// QuotaDenialResponse writes the 403 payload for an exhausted monthly
// application allowance.
func QuotaDenialResponse(w http.ResponseWriter, status *domain.QuotaStatus) {
	writeJSON(w, http.StatusForbidden, QuotaDenial{
		Error:        "Application limit reached",
		Code:         CodeApplicationLimitReached,
		Limit:        status.Limit,
		Remaining:    0,
		ResetDate:    status.ResetDate,
		Message:      "You have reached your monthly application limit. Upgrade to the pro plan for unlimited applications.",
		RequiredTier: string(domain.SubscriptionTierPro),
	})
}
