package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSubmitApplicationParams_Validate(t *testing.T) {
	valid := SubmitApplicationParams{
		UserID:   uuid.New(),
		JobTitle: "Backend Engineer",
		Company:  "Acme Corp",
	}

	tests := []struct {
		name     string
		mutate   func(*SubmitApplicationParams)
		wantCode string
	}{
		{"valid params", func(p *SubmitApplicationParams) {}, ""},
		{"missing job title", func(p *SubmitApplicationParams) { p.JobTitle = "" }, EINVALID},
		{"missing company", func(p *SubmitApplicationParams) { p.Company = "" }, EINVALID},
		{"job url optional", func(p *SubmitApplicationParams) { p.JobURL = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)

			err := params.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantCode, ErrorCode(err))
			}
		})
	}
}

func TestUser_EffectiveTier(t *testing.T) {
	tests := []struct {
		name string
		tier SubscriptionTier
		want SubscriptionTier
	}{
		{"free", SubscriptionTierFree, SubscriptionTierFree},
		{"pro", SubscriptionTierPro, SubscriptionTierPro},
		{"enterprise", SubscriptionTierEnterprise, SubscriptionTierEnterprise},
		{"empty falls back to free", SubscriptionTier(""), SubscriptionTierFree},
		{"unknown falls back to free", SubscriptionTier("legacy-gold"), SubscriptionTierFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{SubscriptionTier: tt.tier}
			assert.Equal(t, tt.want, u.EffectiveTier())
		})
	}
}
