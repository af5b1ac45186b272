package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jobbridge/jobbridge/internal/domain"
)

const userColumns = `id, email, name, role, subscription_tier,
	monthly_application_count, application_count_reset_date,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var (
		u    domain.User
		tier string
		name sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&name,
		&u.Role,
		&tier,
		&u.MonthlyApplicationCount,
		&u.ApplicationCountResetDate,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Name = domain.NullStringValue(name)
	u.SubscriptionTier = domain.SubscriptionTier(tier)
	return &u, nil
}

// GetUserByID looks up a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail looks up a user by email (stored lowercased).
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = lower($1)`, email)
	return scanUser(row)
}

// UpsertUser provisions a user row from a verified identity. Existing rows
// keep their subscription state; only email and name are refreshed. The
// returned record is the row as stored.
func (q *Queries) UpsertUser(ctx context.Context, params domain.ProvisionParams) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name)
		VALUES ($1, lower($2), $3)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
		    updated_at = now()
		RETURNING `+userColumns,
		params.ID, params.Email, domain.ToNullString(params.Name))
	return scanUser(row)
}

// UpdateUserSubscription writes a new tier and clears the monthly counter.
// A tier change starts a fresh quota period.
func (q *Queries) UpdateUserSubscription(ctx context.Context, params domain.SubscriptionUpdateParams, now time.Time) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE users
		SET subscription_tier = $2,
		    monthly_application_count = 0,
		    application_count_reset_date = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		params.UserID, string(params.Tier), now.UTC())
	return scanUser(row)
}

// ListUsers returns users ordered by signup date, newest first.
func (q *Queries) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}
