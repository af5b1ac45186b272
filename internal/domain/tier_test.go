package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTierLimits_UnknownTierFallsBackToFree(t *testing.T) {
	free := tierCatalog[SubscriptionTierFree]

	tests := []struct {
		name string
		tier SubscriptionTier
	}{
		{"empty tier", SubscriptionTier("")},
		{"unknown tier", SubscriptionTier("platinum")},
		{"mixed case", SubscriptionTier("Pro")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, free, GetTierLimits(tt.tier))
		})
	}
}

func TestGetTierLimits_KnownTiers(t *testing.T) {
	assert.Equal(t, 5, GetTierLimits(SubscriptionTierFree).MonthlyApplications)
	assert.Equal(t, UnlimitedApplications, GetTierLimits(SubscriptionTierPro).MonthlyApplications)
	assert.Equal(t, UnlimitedApplications, GetTierLimits(SubscriptionTierEnterprise).MonthlyApplications)
}

func TestHasFeatureAccess_MonthlyApplicationsSemantics(t *testing.T) {
	// The numeric field reads as "enabled" for any nonzero value, including
	// the unlimited sentinel.
	tests := []struct {
		name  string
		limit int
		want  bool
	}{
		{"zero means disabled", 0, false},
		{"positive limit means enabled", 5, true},
		{"unlimited sentinel means enabled", UnlimitedApplications, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits := TierLimits{MonthlyApplications: tt.limit}
			assert.Equal(t, tt.want, featureFlag(limits, FeatureMonthlyApplications))
		})
	}
}

func TestHasFeatureAccess_ByTier(t *testing.T) {
	tests := []struct {
		name    string
		tier    SubscriptionTier
		feature FeatureKey
		want    bool
	}{
		{"free has job recommendations", SubscriptionTierFree, FeatureJobRecommendations, true},
		{"free has application tips", SubscriptionTierFree, FeatureApplicationTips, true},
		{"free lacks ai resume builder", SubscriptionTierFree, FeatureAIResumeBuilder, false},
		{"free lacks api access", SubscriptionTierFree, FeatureAPIAccess, false},
		{"pro has ai resume builder", SubscriptionTierPro, FeatureAIResumeBuilder, true},
		{"pro has bulk apply", SubscriptionTierPro, FeatureBulkApply, true},
		{"pro lacks api access", SubscriptionTierPro, FeatureAPIAccess, false},
		{"pro lacks team features", SubscriptionTierPro, FeatureTeamFeatures, false},
		{"enterprise has api access", SubscriptionTierEnterprise, FeatureAPIAccess, true},
		{"enterprise has team features", SubscriptionTierEnterprise, FeatureTeamFeatures, true},
		{"unknown tier evaluated as free", SubscriptionTier("platinum"), FeatureAIResumeBuilder, false},
		{"unknown feature denied", SubscriptionTierEnterprise, FeatureKey("timeTravel"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasFeatureAccess(tt.tier, tt.feature))
		})
	}
}

func TestGetMonthlyApplicationLimit(t *testing.T) {
	assert.Equal(t, 5, GetMonthlyApplicationLimit(SubscriptionTierFree))
	assert.Equal(t, UnlimitedApplications, GetMonthlyApplicationLimit(SubscriptionTierPro))
	assert.Equal(t, 5, GetMonthlyApplicationLimit(SubscriptionTier("nope")))
}

func TestRequiredTierFor(t *testing.T) {
	tests := []struct {
		name    string
		feature FeatureKey
		want    SubscriptionTier
	}{
		{"recommendations available on free", FeatureJobRecommendations, SubscriptionTierFree},
		{"ai resume builder needs pro", FeatureAIResumeBuilder, SubscriptionTierPro},
		{"cover letters need pro", FeatureCoverLetterGenerator, SubscriptionTierPro},
		{"api access needs enterprise", FeatureAPIAccess, SubscriptionTierEnterprise},
		{"team features need enterprise", FeatureTeamFeatures, SubscriptionTierEnterprise},
		{"unknown feature points at top tier", FeatureKey("timeTravel"), SubscriptionTierEnterprise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiredTierFor(tt.feature))
		})
	}
}

func TestGetFeatureInfo_FallbackForUnknownKey(t *testing.T) {
	info := GetFeatureInfo(FeatureKey("resumeScoring"))
	assert.Equal(t, "Resume Scoring", info.Name)
	assert.NotEmpty(t, info.Description)
}
