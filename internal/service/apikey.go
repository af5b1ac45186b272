package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/repository"
)

// rawKeyPrefix marks a JobBridge API key on the wire so bearer tokens and
// API keys can share the Authorization header.
const rawKeyPrefix = "jbk_"

// APIKeyService manages long-lived API credentials for the enterprise tier.
type APIKeyService interface {
	// Create mints a new key for the user. The raw key is returned exactly
	// once; only its bcrypt hash is stored.
	Create(ctx context.Context, userID uuid.UUID, name string) (*domain.APIKeyCreateResult, error)

	// Authenticate resolves a raw "jbk_..." key to its owning user.
	Authenticate(ctx context.Context, rawKey string) (*domain.User, error)

	// List returns all of a user's keys, including revoked ones.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.APIKey, error)

	// Revoke deactivates a key owned by the user.
	Revoke(ctx context.Context, userID, keyID uuid.UUID) error
}

// IsAPIKey reports whether a credential from the Authorization header is a
// JobBridge API key rather than a session token.
func IsAPIKey(credential string) bool {
	return strings.HasPrefix(credential, rawKeyPrefix)
}

type apiKeyService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewAPIKeyService creates an API key service backed by Postgres.
func NewAPIKeyService(queries *repository.Queries, logger *slog.Logger) APIKeyService {
	return &apiKeyService{
		queries: queries,
		logger:  logger.With("service", "apikey"),
	}
}

func (s *apiKeyService) Create(ctx context.Context, userID uuid.UUID, name string) (*domain.APIKeyCreateResult, error) {
	const op = "APIKeyService.Create"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid(op, "Key name is required")
	}
	if len(name) > 100 {
		return nil, domain.Invalid(op, "Key name must be 100 characters or less")
	}

	raw, err := generateRawKey()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate key")
	}

	// bcrypt limits input to 72 bytes; the raw key is 44, so the whole
	// credential is covered by the hash.
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to hash key")
	}

	key, err := s.queries.InsertAPIKey(ctx, &domain.APIKey{
		ID:      uuid.New(),
		UserID:  userID,
		Name:    name,
		Prefix:  raw[:domain.APIKeyPrefixLen],
		KeyHash: string(hash),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to store key")
	}

	s.logger.Info("created api key",
		"user_id", userID,
		"key_id", key.ID,
		"prefix", key.Prefix,
	)

	return &domain.APIKeyCreateResult{Key: key, Raw: raw}, nil
}

func (s *apiKeyService) Authenticate(ctx context.Context, rawKey string) (*domain.User, error) {
	const op = "APIKeyService.Authenticate"

	if len(rawKey) < domain.APIKeyPrefixLen || !IsAPIKey(rawKey) {
		return nil, domain.Unauthorized(op, "Invalid API key")
	}

	candidates, err := s.queries.GetAPIKeysByPrefix(ctx, rawKey[:domain.APIKeyPrefixLen])
	if err != nil {
		return nil, domain.Internal(err, op, "failed to look up key")
	}

	for _, candidate := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidate.KeyHash), []byte(rawKey)) == nil {
			user, err := s.queries.GetUserByID(ctx, candidate.UserID)
			if err != nil {
				return nil, domain.Internal(err, op, "failed to load key owner")
			}
			return user, nil
		}
	}

	return nil, domain.Unauthorized(op, "Invalid API key")
}

func (s *apiKeyService) List(ctx context.Context, userID uuid.UUID) ([]*domain.APIKey, error) {
	const op = "APIKeyService.List"

	keys, err := s.queries.ListAPIKeysByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list keys")
	}
	return keys, nil
}

func (s *apiKeyService) Revoke(ctx context.Context, userID, keyID uuid.UUID) error {
	const op = "APIKeyService.Revoke"

	affected, err := s.queries.RevokeAPIKey(ctx, keyID, userID)
	if err != nil {
		return domain.Internal(err, op, "failed to revoke key")
	}
	if affected == 0 {
		return domain.NotFound(op, "API key", keyID.String())
	}

	s.logger.Info("revoked api key", "user_id", userID, "key_id", keyID)
	return nil
}

// generateRawKey returns "jbk_" followed by 40 hex characters of
// cryptographically random data.
func generateRawKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	return rawKeyPrefix + hex.EncodeToString(buf), nil
}
