// Package domain contains core business types and interfaces.
//
// This file defines quota types for the monthly application limit enforced
// per subscription tier.
package domain

import "time"

// QuotaStatus describes a user's standing against the monthly application
// limit. Remaining and Limit are both -1 on unlimited tiers, and ResetDate
// is nil in that case.
type QuotaStatus struct {
	Allowed   bool       `json:"allowed"`
	Remaining int        `json:"remaining"`
	Limit     int        `json:"limit"`
	ResetDate *time.Time `json:"resetDate"`
}

// UnlimitedQuotaStatus is the status reported for tiers with no cap.
// Counting is skipped entirely for those tiers.
func UnlimitedQuotaStatus() *QuotaStatus {
	return &QuotaStatus{
		Allowed:   true,
		Remaining: UnlimitedApplications,
		Limit:     UnlimitedApplications,
		ResetDate: nil,
	}
}

// SameCalendarMonth reports whether two timestamps fall in the same
// calendar month and year, compared in UTC. The stored counter is stale
// whenever this is false.
func SameCalendarMonth(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// QuotaExceeded creates the error returned when an increment is attempted
// past the monthly limit.
func QuotaExceeded(op string) *Error {
	return &Error{
		Code:    EPAYMENT,
		Op:      op,
		Message: "Monthly application limit reached",
	}
}
