// Package identity resolves bearer credentials to a caller identity.
//
// The service does not mint its own sessions: callers present a Supabase
// access token (the SPA's auth session) or a JobBridge API key. This package
// owns the Supabase side; API keys are resolved by the apikey service.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Identity is a resolved caller: who they are according to the identity
// provider, plus the raw token for follow-up provider queries.
type Identity struct {
	ID    uuid.UUID
	Email string
	Name  string

	// Token is the bearer token the identity was resolved from. The admin
	// resolver uses it for its provider metadata probe.
	Token string

	UserMetadata map[string]interface{}
	AppMetadata  map[string]interface{}
}

// Verifier validates an access token and returns the caller's identity.
type Verifier interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// Directory answers whether the identity provider's metadata marks a user
// as an admin. Kept separate from Verifier so the admin resolver can probe
// it independently with its own deadline.
type Directory interface {
	AdminFlag(ctx context.Context, ident *Identity) (bool, error)
}

// metadataGrantsAdmin checks the conventional admin markers in a metadata
// object: a boolean is_admin flag or a role field equal to "admin".
func metadataGrantsAdmin(meta map[string]interface{}) bool {
	if meta == nil {
		return false
	}
	if v, ok := meta["is_admin"].(bool); ok && v {
		return true
	}
	if v, ok := meta["isAdmin"].(bool); ok && v {
		return true
	}
	if v, ok := meta["role"].(string); ok && v == "admin" {
		return true
	}
	return false
}

// GrantsAdmin reports whether either metadata object carries an admin
// marker. App-level metadata wins ties but both are honored.
func (i *Identity) GrantsAdmin() bool {
	return metadataGrantsAdmin(i.AppMetadata) || metadataGrantsAdmin(i.UserMetadata)
}
