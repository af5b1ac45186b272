package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FeatureInfo carries the display name and description rendered into
// subscription rejection payloads. The front end shows these verbatim in
// its upgrade dialog, so wording changes are user-visible.
type FeatureInfo struct {
	Name        string
	Description string
}

var featureInfo = map[FeatureKey]FeatureInfo{
	FeatureMonthlyApplications:  {"Job Applications", "Submit applications to job postings"},
	FeatureAIResumeBuilder:      {"AI Resume Builder", "Generate tailored resumes with AI assistance"},
	FeatureResumeParsing:        {"Resume Parsing", "Extract structured data from uploaded resumes"},
	FeatureInterviewPrep:        {"Interview Prep", "Practice interviews with role-specific question sets"},
	FeatureJobRecommendations:   {"Job Recommendations", "Personalized job matches based on your profile"},
	FeatureCoverLetterGenerator: {"Cover Letter Generator", "Generate cover letters tailored to each posting"},
	FeatureSkillsGapAnalysis:    {"Skills Gap Analysis", "See which skills you are missing for a target role"},
	FeatureChatAssistant:        {"Career Chat Assistant", "Ask career questions and get instant guidance"},
	FeatureApplicationTips:      {"Application Tips", "Actionable tips to improve each application"},
	FeatureBulkApply:            {"Bulk Apply", "Apply to multiple matched postings in one step"},
	FeaturePrioritySupport:      {"Priority Support", "Faster responses from the support team"},
	FeatureAnalyticsAccess:      {"Application Analytics", "Track response rates across your applications"},
	FeatureAPIAccess:            {"API Access", "Programmatic access to your JobBridge data"},
	FeatureTeamFeatures:         {"Team Features", "Shared workspaces for career coaches and teams"},
}

var titleCaser = cases.Title(language.English)

// GetFeatureInfo returns the display metadata for a feature key. Keys outside
// the catalog get a title-cased fallback derived from the key itself, so a
// missing entry degrades to readable text rather than an empty dialog.
func GetFeatureInfo(feature FeatureKey) FeatureInfo {
	if info, ok := featureInfo[feature]; ok {
		return info
	}
	return FeatureInfo{
		Name:        titleCaser.String(camelToWords(string(feature))),
		Description: "This feature is not included in your current plan",
	}
}

// camelToWords splits a camelCase key into space-separated words.
func camelToWords(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
