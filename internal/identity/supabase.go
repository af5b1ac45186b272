package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/supabase-community/supabase-go"

	"github.com/jobbridge/jobbridge/internal/domain"
)

// SupabaseVerifier resolves Supabase access tokens through the GoTrue API.
// It implements both Verifier and Directory.
type SupabaseVerifier struct {
	client *supabase.Client
	logger *slog.Logger
}

// NewSupabaseVerifier creates a verifier backed by the given project.
func NewSupabaseVerifier(projectURL, anonKey string, logger *slog.Logger) (*SupabaseVerifier, error) {
	if projectURL == "" || anonKey == "" {
		return nil, fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(projectURL, anonKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}

	return &SupabaseVerifier{client: client, logger: logger}, nil
}

// Resolve validates the token against GoTrue and returns the caller.
// An invalid or expired token yields an unauthorized domain error.
func (v *SupabaseVerifier) Resolve(ctx context.Context, token string) (*Identity, error) {
	const op = "identity.resolve"

	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		v.logger.Debug("token rejected by identity provider", "error", err)
		return nil, domain.Unauthorized(op, "Invalid or expired access token")
	}
	if user == nil {
		return nil, domain.Unauthorized(op, "Invalid or expired access token")
	}

	return &Identity{
		ID:           user.ID,
		Email:        strings.ToLower(user.Email),
		Name:         displayNameFromMetadata(user.UserMetadata),
		Token:        token,
		UserMetadata: user.UserMetadata,
		AppMetadata:  user.AppMetadata,
	}, nil
}

// AdminFlag re-fetches the caller's provider record and checks both
// metadata objects for an admin marker. Used by the admin resolver's
// bounded probe, so a provider outage reads as "check failed" upstream.
//
// The gotrue client offers no per-call context, so ctx only gates entry
// here; once the request is in flight it runs to the client's own HTTP
// timeout even after the resolver has stopped waiting.
func (v *SupabaseVerifier) AdminFlag(ctx context.Context, ident *Identity) (bool, error) {
	const op = "identity.admin_flag"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	// API key identities carry no provider session; the provider simply
	// has no vote for them.
	if ident.Token == "" {
		return false, nil
	}

	user, err := v.client.Auth.WithToken(ident.Token).GetUser()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return false, nil
	}

	probe := Identity{UserMetadata: user.UserMetadata, AppMetadata: user.AppMetadata}
	return probe.GrantsAdmin(), nil
}

// displayNameFromMetadata pulls a human name out of user metadata,
// trying the keys Supabase's common OAuth providers populate.
func displayNameFromMetadata(meta map[string]interface{}) string {
	for _, key := range []string{"full_name", "name", "preferred_username"} {
		if v, ok := meta[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
