// Package service contains the business logic layer.
//
// Services depend on the repository layer and translate database errors
// into domain errors before they reach the handlers.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// UserService defines operations on user records.
type UserService interface {
	// GetByID returns the user with the given ID, or a not-found error.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail returns the user with the given email, or a not-found
	// error. Lookup is case-insensitive.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Provision creates or refreshes the user row for a verified identity.
	// Called on each authenticated request; existing subscription state is
	// never touched.
	Provision(ctx context.Context, params domain.ProvisionParams) (*domain.User, error)

	// UpdateSubscription writes a new tier and resets the monthly counter.
	// This is the write path behind the billing callback and the admin
	// subscription endpoint.
	UpdateSubscription(ctx context.Context, params domain.SubscriptionUpdateParams) (*domain.User, error)

	// List returns users for the admin surface, newest first.
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int64, error)

	// Roles returns the roles granted to a user through the assignment
	// table. The stored users.role column is separate.
	Roles(ctx context.Context, id uuid.UUID) ([]string, error)

	// GrantRole assigns a role to a user. Granting an already-held role
	// is a no-op.
	GrantRole(ctx context.Context, id uuid.UUID, role string) error

	// RevokeRole removes a role assignment. Revoking a role the user does
	// not hold is a no-op.
	RevokeRole(ctx context.Context, id uuid.UUID, role string) error
}

// =============================================================================
// Implementation
// =============================================================================

type userService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(queries *repository.Queries, logger *slog.Logger) UserService {
	return &userService{
		queries: queries,
		logger:  logger,
	}
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "user.get_by_id"

	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load user")
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "user.get_by_email"

	if email == "" {
		return nil, domain.Invalid(op, "email is required")
	}

	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", email)
		}
		return nil, domain.Internal(err, op, "failed to load user")
	}
	return user, nil
}

func (s *userService) Provision(ctx context.Context, params domain.ProvisionParams) (*domain.User, error) {
	const op = "user.provision"

	if params.ID == uuid.Nil || params.Email == "" {
		return nil, domain.Invalid(op, "identity is missing an ID or email")
	}

	user, err := s.queries.UpsertUser(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to provision user")
	}
	return user, nil
}

func (s *userService) UpdateSubscription(ctx context.Context, params domain.SubscriptionUpdateParams) (*domain.User, error) {
	const op = "user.update_subscription"

	switch params.Tier {
	case domain.SubscriptionTierFree, domain.SubscriptionTierPro, domain.SubscriptionTierEnterprise:
	default:
		return nil, domain.Invalid(op, "unknown subscription tier")
	}

	user, err := s.queries.UpdateUserSubscription(ctx, params, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", params.UserID.String())
		}
		return nil, domain.Internal(err, op, "failed to update subscription")
	}

	s.logger.Info("Subscription updated",
		"user_id", params.UserID,
		"tier", params.Tier,
	)
	return user, nil
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	const op = "user.list"

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.queries.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list users")
	}
	return users, nil
}

func (s *userService) Count(ctx context.Context) (int64, error) {
	const op = "user.count"

	n, err := s.queries.CountUsers(ctx)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to count users")
	}
	return n, nil
}

// roleNamePattern constrains role names to lowercase identifiers so an
// operator typo cannot create a role the resolver would silently never
// match.
var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

func (s *userService) Roles(ctx context.Context, id uuid.UUID) ([]string, error) {
	const op = "user.roles"

	roles, err := s.queries.ListUserRoles(ctx, id)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list roles")
	}
	return roles, nil
}

func (s *userService) GrantRole(ctx context.Context, id uuid.UUID, role string) error {
	const op = "user.grant_role"

	if !roleNamePattern.MatchString(role) {
		return domain.Invalid(op, "invalid role name")
	}

	// Existence check first so a missing user reads as 404, not as an FK
	// violation surfaced as a 500.
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.queries.GrantRole(ctx, id, role); err != nil {
		return domain.Internal(err, op, "failed to grant role")
	}

	s.logger.Info("Role granted", "user_id", id, "role", role)
	return nil
}

func (s *userService) RevokeRole(ctx context.Context, id uuid.UUID, role string) error {
	const op = "user.revoke_role"

	if !roleNamePattern.MatchString(role) {
		return domain.Invalid(op, "invalid role name")
	}

	if err := s.queries.RevokeRole(ctx, id, role); err != nil {
		return domain.Internal(err, op, "failed to revoke role")
	}

	s.logger.Info("Role revoked", "user_id", id, "role", role)
	return nil
}
