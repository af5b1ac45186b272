package domain

import (
	"time"

	"github.com/google/uuid"
)

// APIKeyPrefixLen is how many characters of the raw key are stored in the
// clear for lookup. The rest is only ever compared against the bcrypt hash.
const APIKeyPrefixLen = 12

// APIKey is a long-lived credential for the enterprise API access feature.
//
// Security model:
// - Raw key ("jbk_" + 40 hex chars) is shown to the user exactly once
// - Only a bcrypt hash plus a short lookup prefix is stored
// - Keys are revoked by setting RevokedAt, never deleted
type APIKey struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Prefix    string // first APIKeyPrefixLen chars of the raw key
	KeyHash   string // bcrypt hash of the full raw key
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsRevoked reports whether the key has been revoked.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// APIKeyCreateResult carries the one-time raw key alongside the stored record.
type APIKeyCreateResult struct {
	Key *APIKey
	Raw string // only returned once, never stored
}
