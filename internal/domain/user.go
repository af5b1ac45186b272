// Package domain contains core business types and interfaces.
//
// This file defines the User domain type. Users are keyed by the identity
// provider's user ID, so a user row can be provisioned directly from a
// verified token without a separate mapping table.
package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role values stored on the user record. Roles can also be granted through
// the user_roles assignment table; the stored column is only one of the
// signals the admin resolver consults.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered JobBridge user.
//
// The subscription fields carry everything the entitlement layer needs:
// the current tier plus the monthly application counter and the timestamp
// of its last reset. The counter is only meaningful for tiers with a cap.
type User struct {
	ID                        uuid.UUID
	Email                     string
	Name                      string
	Role                      string
	SubscriptionTier          SubscriptionTier
	MonthlyApplicationCount   int
	ApplicationCountResetDate time.Time
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// EffectiveTier returns the user's tier, defaulting to free when the stored
// value is empty or unknown. Entitlement lookups must always go through
// this so a bad tier value can never widen access.
func (u *User) EffectiveTier() SubscriptionTier {
	switch u.SubscriptionTier {
	case SubscriptionTierFree, SubscriptionTierPro, SubscriptionTierEnterprise:
		return u.SubscriptionTier
	default:
		return SubscriptionTierFree
	}
}

// HasStoredAdminRole reports whether the role column itself grants admin.
func (u *User) HasStoredAdminRole() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the user's name or email if name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ProvisionParams carries the identity-provider fields used to create a
// user row on first authenticated request.
type ProvisionParams struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// SubscriptionUpdateParams is the patch applied when an operator (or the
// billing system) changes a user's tier.
type SubscriptionUpdateParams struct {
	UserID uuid.UUID
	Tier   SubscriptionTier
}

// =============================================================================
// Conversion helpers from repository types
// =============================================================================

// NullStringValue safely extracts a string from sql.NullString.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullTimeValue safely extracts a time pointer from sql.NullTime.
func NullTimeValue(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// ToNullString converts a string to sql.NullString.
func ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
