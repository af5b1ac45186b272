package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobbridge/jobbridge/internal/auth"
	"github.com/jobbridge/jobbridge/internal/domain"
)

type stubQuotaService struct {
	status *domain.QuotaStatus
	err    error
}

func (s *stubQuotaService) Status(ctx context.Context, userID uuid.UUID) (*domain.QuotaStatus, error) {
	return s.status, s.err
}

func (s *stubQuotaService) Consume(ctx context.Context, userID uuid.UUID) (*domain.QuotaStatus, error) {
	return s.status, s.err
}

func authedRequest(method, target string, tier domain.SubscriptionTier) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	user := &domain.User{ID: uuid.New(), Email: "user@example.com", SubscriptionTier: tier}
	return req.WithContext(auth.SetUser(req.Context(), user))
}

func TestSubscriptionHandler_Usage(t *testing.T) {
	reset := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	quota := &stubQuotaService{status: &domain.QuotaStatus{
		Allowed:   true,
		Remaining: 2,
		Limit:     5,
		ResetDate: &reset,
	}}
	h := NewSubscriptionHandler(quota, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.Usage(rec, authedRequest("GET", "/api/subscription/usage", domain.SubscriptionTierFree))

	require.Equal(t, http.StatusOK, rec.Code)

	var body UsageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "free", body.Tier)
	require.NotNil(t, body.Quota)
	assert.Equal(t, 2, body.Quota.Remaining)
	assert.Equal(t, 5, body.Quota.Limit)
}

func TestSubscriptionHandler_Usage_Unauthenticated(t *testing.T) {
	h := NewSubscriptionHandler(&stubQuotaService{}, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.Usage(rec, httptest.NewRequest("GET", "/api/subscription/usage", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubscriptionHandler_Features_FreeTier(t *testing.T) {
	h := NewSubscriptionHandler(&stubQuotaService{}, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.Features(rec, authedRequest("GET", "/api/subscription/features", domain.SubscriptionTierFree))

	require.Equal(t, http.StatusOK, rec.Code)

	var body FeaturesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "free", body.Tier)
	assert.Equal(t, 5, body.MonthlyApplications)
	assert.Len(t, body.Features, len(domain.AllFeatures))

	byKey := make(map[string]FeatureEntry, len(body.Features))
	for _, entry := range body.Features {
		byKey[entry.Key] = entry
	}

	assert.True(t, byKey["jobRecommendations"].Included)
	assert.False(t, byKey["aiResumeBuilder"].Included)
	assert.Equal(t, "pro", byKey["aiResumeBuilder"].RequiredTier)
	assert.Equal(t, "enterprise", byKey["apiAccess"].RequiredTier)
}

func TestSubscriptionHandler_Features_EnterpriseHasEverything(t *testing.T) {
	h := NewSubscriptionHandler(&stubQuotaService{}, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.Features(rec, authedRequest("GET", "/api/subscription/features", domain.SubscriptionTierEnterprise))

	require.Equal(t, http.StatusOK, rec.Code)

	var body FeaturesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, domain.UnlimitedApplications, body.MonthlyApplications)
	for _, entry := range body.Features {
		assert.True(t, entry.Included, "feature %s should be included for enterprise", entry.Key)
	}
}
