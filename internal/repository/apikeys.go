package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jobbridge/jobbridge/internal/domain"
)

const apiKeyColumns = `id, user_id, name, prefix, key_hash, created_at, revoked_at`

func scanAPIKey(row interface{ Scan(...any) error }) (*domain.APIKey, error) {
	var (
		key       domain.APIKey
		revokedAt sql.NullTime
	)
	err := row.Scan(
		&key.ID,
		&key.UserID,
		&key.Name,
		&key.Prefix,
		&key.KeyHash,
		&key.CreatedAt,
		&revokedAt,
	)
	if err != nil {
		return nil, err
	}
	key.RevokedAt = domain.NullTimeValue(revokedAt)
	return &key, nil
}

// InsertAPIKey stores a new API key record.
func (q *Queries) InsertAPIKey(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO api_keys (id, user_id, name, prefix, key_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+apiKeyColumns,
		key.ID, key.UserID, key.Name, key.Prefix, key.KeyHash)
	return scanAPIKey(row)
}

// GetAPIKeysByPrefix returns the active keys sharing a lookup prefix.
// The prefix is not unique; callers verify the bcrypt hash of each
// candidate.
func (q *Queries) GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys
		WHERE prefix = $1 AND revoked_at IS NULL`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*domain.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// ListAPIKeysByUser returns all of a user's keys, including revoked ones.
func (q *Queries) ListAPIKeysByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIKey, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*domain.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// RevokeAPIKey marks a key revoked if it belongs to the user.
// Returns the number of rows affected so callers can distinguish
// "not yours" from "done".
func (q *Queries) RevokeAPIKey(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE api_keys
		SET revoked_at = now()
		WHERE id = $1 AND user_id = $2 AND revoked_at IS NULL`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
