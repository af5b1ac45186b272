// Package domain contains core business types and interfaces.
//
// This file defines the subscription tier catalog: the feature flags and
// numeric limits attached to each tier, and the pure lookup functions the
// access middleware evaluates on every gated request.
package domain

// SubscriptionTier represents the pricing tier of a subscription.
type SubscriptionTier string

const (
	SubscriptionTierFree       SubscriptionTier = "free"
	SubscriptionTierPro        SubscriptionTier = "pro"
	SubscriptionTierEnterprise SubscriptionTier = "enterprise"
)

// tierOrder is the upgrade path from cheapest to most expensive.
// RequiredTierFor walks this to find the lowest tier unlocking a feature.
var tierOrder = []SubscriptionTier{
	SubscriptionTierFree,
	SubscriptionTierPro,
	SubscriptionTierEnterprise,
}

// UnlimitedApplications is the sentinel for tiers with no monthly cap.
const UnlimitedApplications = -1

// FeatureKey identifies a gated capability.
type FeatureKey string

const (
	FeatureMonthlyApplications  FeatureKey = "monthlyApplications"
	FeatureAIResumeBuilder      FeatureKey = "aiResumeBuilder"
	FeatureResumeParsing        FeatureKey = "resumeParsing"
	FeatureInterviewPrep        FeatureKey = "interviewPrep"
	FeatureJobRecommendations   FeatureKey = "jobRecommendations"
	FeatureCoverLetterGenerator FeatureKey = "coverLetterGenerator"
	FeatureSkillsGapAnalysis    FeatureKey = "skillsGapAnalysis"
	FeatureChatAssistant        FeatureKey = "chatAssistant"
	FeatureApplicationTips      FeatureKey = "applicationTips"
	FeatureBulkApply            FeatureKey = "bulkApply"
	FeaturePrioritySupport      FeatureKey = "prioritySupport"
	FeatureAnalyticsAccess      FeatureKey = "analyticsAccess"
	FeatureAPIAccess            FeatureKey = "apiAccess"
	FeatureTeamFeatures         FeatureKey = "teamFeatures"
)

// AllFeatures lists every gated feature in display order.
var AllFeatures = []FeatureKey{
	FeatureMonthlyApplications,
	FeatureAIResumeBuilder,
	FeatureResumeParsing,
	FeatureInterviewPrep,
	FeatureJobRecommendations,
	FeatureCoverLetterGenerator,
	FeatureSkillsGapAnalysis,
	FeatureChatAssistant,
	FeatureApplicationTips,
	FeatureBulkApply,
	FeaturePrioritySupport,
	FeatureAnalyticsAccess,
	FeatureAPIAccess,
	FeatureTeamFeatures,
}

// TierLimits defines the entitlements of a subscription tier.
//
// MonthlyApplications is the only numeric limit; UnlimitedApplications (-1)
// means no cap. Everything else is a plain on/off flag.
type TierLimits struct {
	MonthlyApplications  int
	AIResumeBuilder      bool
	ResumeParsing        bool
	InterviewPrep        bool
	JobRecommendations   bool
	CoverLetterGenerator bool
	SkillsGapAnalysis    bool
	ChatAssistant        bool
	ApplicationTips      bool
	BulkApply            bool
	PrioritySupport      bool
	AnalyticsAccess      bool
	APIAccess            bool
	TeamFeatures         bool
}

// tierCatalog maps subscription tiers to their entitlements.
// Defined once at process start and never mutated; safe for concurrent reads.
var tierCatalog = map[SubscriptionTier]TierLimits{
	SubscriptionTierFree: {
		MonthlyApplications: 5,
		JobRecommendations:  true,
		ApplicationTips:     true,
	},
	SubscriptionTierPro: {
		MonthlyApplications:  UnlimitedApplications,
		AIResumeBuilder:      true,
		ResumeParsing:        true,
		InterviewPrep:        true,
		JobRecommendations:   true,
		CoverLetterGenerator: true,
		SkillsGapAnalysis:    true,
		ChatAssistant:        true,
		ApplicationTips:      true,
		BulkApply:            true,
		PrioritySupport:      true,
		AnalyticsAccess:      true,
	},
	SubscriptionTierEnterprise: {
		MonthlyApplications:  UnlimitedApplications,
		AIResumeBuilder:      true,
		ResumeParsing:        true,
		InterviewPrep:        true,
		JobRecommendations:   true,
		CoverLetterGenerator: true,
		SkillsGapAnalysis:    true,
		ChatAssistant:        true,
		ApplicationTips:      true,
		BulkApply:            true,
		PrioritySupport:      true,
		AnalyticsAccess:      true,
		APIAccess:            true,
		TeamFeatures:         true,
	},
}

// GetTierLimits returns the limits for a tier, defaulting to the free tier
// for unknown or empty tier values. It never fails and never returns a
// partial record.
func GetTierLimits(tier SubscriptionTier) TierLimits {
	if limits, ok := tierCatalog[tier]; ok {
		return limits
	}
	return tierCatalog[SubscriptionTierFree]
}

// featureFlag reads the named flag from a limits record.
//
// The one numeric field reads as "enabled" for any value other than zero.
// A limit of 0 means the feature is off entirely, while -1 means unlimited;
// callers gating on FeatureMonthlyApplications must keep that in mind. This
// convention is intentionally restricted to the applications field and must
// not be extended to future numeric limits.
func featureFlag(limits TierLimits, feature FeatureKey) bool {
	switch feature {
	case FeatureMonthlyApplications:
		return limits.MonthlyApplications != 0
	case FeatureAIResumeBuilder:
		return limits.AIResumeBuilder
	case FeatureResumeParsing:
		return limits.ResumeParsing
	case FeatureInterviewPrep:
		return limits.InterviewPrep
	case FeatureJobRecommendations:
		return limits.JobRecommendations
	case FeatureCoverLetterGenerator:
		return limits.CoverLetterGenerator
	case FeatureSkillsGapAnalysis:
		return limits.SkillsGapAnalysis
	case FeatureChatAssistant:
		return limits.ChatAssistant
	case FeatureApplicationTips:
		return limits.ApplicationTips
	case FeatureBulkApply:
		return limits.BulkApply
	case FeaturePrioritySupport:
		return limits.PrioritySupport
	case FeatureAnalyticsAccess:
		return limits.AnalyticsAccess
	case FeatureAPIAccess:
		return limits.APIAccess
	case FeatureTeamFeatures:
		return limits.TeamFeatures
	default:
		// Unknown keys are a programmer error; deny rather than panic.
		return false
	}
}

// HasFeatureAccess reports whether the given tier includes the feature.
// Unknown tiers are evaluated as free.
func HasFeatureAccess(tier SubscriptionTier, feature FeatureKey) bool {
	return featureFlag(GetTierLimits(tier), feature)
}

// GetMonthlyApplicationLimit returns the tier's monthly application cap,
// with UnlimitedApplications (-1) meaning no cap.
func GetMonthlyApplicationLimit(tier SubscriptionTier) int {
	return GetTierLimits(tier).MonthlyApplications
}

// RequiredTierFor returns the cheapest tier that unlocks the feature.
// If no tier has it, the most expensive tier is returned so upgrade
// messaging still points somewhere sensible.
func RequiredTierFor(feature FeatureKey) SubscriptionTier {
	for _, tier := range tierOrder {
		if featureFlag(tierCatalog[tier], feature) {
			return tier
		}
	}
	return tierOrder[len(tierOrder)-1]
}
