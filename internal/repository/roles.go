package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserHasRole answers whether the role-assignment table grants the named
// role to the user. The stored users.role column is checked separately by
// the admin resolver; this covers roles granted out-of-band.
func (q *Queries) UserHasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles
			WHERE user_id = $1 AND role = $2
		)`, userID, role).Scan(&exists)
	return exists, err
}

// ListUserRoles returns all roles assigned to a user through the
// assignment table.
func (q *Queries) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var roles []string
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(array_agg(role ORDER BY role), '{}')
		FROM user_roles
		WHERE user_id = $1`, userID).Scan(pq.Array(&roles))
	return roles, err
}

// GrantRole assigns a role to a user. Granting an already-held role is a
// no-op.
func (q *Queries) GrantRole(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING`, userID, role)
	return err
}

// RevokeRole removes a role assignment.
func (q *Queries) RevokeRole(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := q.db.ExecContext(ctx, `
		DELETE FROM user_roles
		WHERE user_id = $1 AND role = $2`, userID, role)
	return err
}
