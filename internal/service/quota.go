// Package service contains the business logic layer.
//
// This file implements the quota service enforcing the monthly application
// limit attached to each subscription tier.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// QuotaService defines operations for checking and consuming the monthly
// application quota.
type QuotaService interface {
	// Status reports the user's standing for the current calendar month.
	// A stale counter from a previous month is reset to zero as part of
	// the read, so two reads in the same month always agree.
	Status(ctx context.Context, userID uuid.UUID) (*domain.QuotaStatus, error)

	// Consume counts one application against the limit. Callers invoke
	// this only after the protected action has succeeded; the gate itself
	// never increments. When the limit is exhausted the returned status
	// has Allowed=false and nothing is written.
	Consume(ctx context.Context, userID uuid.UUID) (*domain.QuotaStatus, error)
}

// quotaStore is the slice of the repository the quota service needs.
type quotaStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SyncApplicationUsage(ctx context.Context, userID uuid.UUID, now time.Time) (repository.ApplicationUsage, error)
	ConsumeApplicationSlot(ctx context.Context, userID uuid.UUID, limit int, now time.Time) (repository.ApplicationUsage, bool, error)
}

// =============================================================================
// Implementation
// =============================================================================

type quotaService struct {
	store  quotaStore
	logger *slog.Logger
	now    func() time.Time
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(store quotaStore, logger *slog.Logger) QuotaService {
	return &quotaService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *quotaService) Status(ctx context.Context, userID uuid.UUID) (*domain.QuotaStatus, error) {
	const op = "quota.status"

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to load user")
	}

	limit := domain.GetMonthlyApplicationLimit(user.EffectiveTier())

	// Unlimited tier - no counting, no further database access
	if limit == domain.UnlimitedApplications {
		return domain.UnlimitedQuotaStatus(), nil
	}

	usage, err := s.store.SyncApplicationUsage(ctx, userID, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to read application usage")
	}

	return statusFromUsage(usage, limit), nil
}

func (s *quotaService) Consume(ctx context.Context, userID uuid.UUID) (*domain.QuotaStatus, error) {
	const op = "quota.consume"

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to load user")
	}

	limit := domain.GetMonthlyApplicationLimit(user.EffectiveTier())

	// Unlimited tier - always allow
	if limit == domain.UnlimitedApplications {
		return domain.UnlimitedQuotaStatus(), nil
	}

	usage, allowed, err := s.store.ConsumeApplicationSlot(ctx, userID, limit, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to consume application slot")
	}

	status := statusFromUsage(usage, limit)
	status.Allowed = allowed

	if !allowed {
		s.logger.Info("Application quota exhausted",
			"user_id", userID,
			"tier", user.EffectiveTier(),
			"used", usage.Count,
			"limit", limit,
		)
	}
	return status, nil
}

// statusFromUsage derives the reported status from a synced counter.
func statusFromUsage(usage repository.ApplicationUsage, limit int) *domain.QuotaStatus {
	remaining := limit - usage.Count
	if remaining < 0 {
		remaining = 0
	}
	reset := usage.ResetDate
	return &domain.QuotaStatus{
		Allowed:   usage.Count < limit,
		Remaining: remaining,
		Limit:     limit,
		ResetDate: &reset,
	}
}
