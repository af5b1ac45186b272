// This file implements API key management, an enterprise-tier feature.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jobbridge/jobbridge/internal/auth"
	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/metrics"
	"github.com/jobbridge/jobbridge/internal/service"
)

// =============================================================================
// Response Types
// =============================================================================

// APIKeyResponse is the wire shape of an API key record. The key itself
// never appears here; see CreateKeyResponse.
type APIKeyResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Prefix    string     `json:"prefix"`
	CreatedAt time.Time  `json:"createdAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// CreateKeyResponse carries the raw key exactly once, at creation time.
type CreateKeyResponse struct {
	Key APIKeyResponse `json:"key"`
	Raw string         `json:"rawKey"`
}

func apiKeyResponse(key *domain.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:        key.ID,
		Name:      key.Name,
		Prefix:    key.Prefix,
		CreatedAt: key.CreatedAt,
		RevokedAt: key.RevokedAt,
	}
}

// =============================================================================
// Handler Configuration
// =============================================================================

// APIKeyHandler handles API key HTTP requests.
type APIKeyHandler struct {
	keys   service.APIKeyService
	logger *slog.Logger
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(keys service.APIKeyService, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		keys:   keys,
		logger: logger,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers API key routes with the provided mux. All routes
// are gated on the apiAccess feature in addition to authentication.
//
// Routes:
//   - POST   /api/keys      -> Create
//   - GET    /api/keys      -> List
//   - DELETE /api/keys/{id} -> Revoke
func (h *APIKeyHandler) RegisterRoutes(mux *http.ServeMux, requireAPIAccess func(http.Handler) http.Handler) {
	mux.Handle("POST /api/keys", requireAPIAccess(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/keys", requireAPIAccess(http.HandlerFunc(h.List)))
	mux.Handle("DELETE /api/keys/{id}", requireAPIAccess(http.HandlerFunc(h.Revoke)))
}

// =============================================================================
// POST /api/keys - Create Key
// =============================================================================

// createKeyRequest is the body of a key creation.
type createKeyRequest struct {
	Name string `json:"name"`
}

// Create mints a new API key. The raw key appears in this response and
// nowhere else.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("apikey.create", "Invalid request body"))
		return
	}

	result, err := h.keys.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.APIKeysIssued.Inc()

	writeJSON(w, http.StatusCreated, CreateKeyResponse{
		Key: apiKeyResponse(result.Key),
		Raw: result.Raw,
	})
}

// =============================================================================
// GET /api/keys - List Keys
// =============================================================================

// List returns the caller's keys, including revoked ones.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	keys, err := h.keys.List(r.Context(), user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	responses := make([]APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		responses = append(responses, apiKeyResponse(key))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"keys": responses,
	})
}

// =============================================================================
// DELETE /api/keys/{id} - Revoke Key
// =============================================================================

// Revoke deactivates one of the caller's keys.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	keyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("apikey.revoke", "Invalid key ID"))
		return
	}

	if err := h.keys.Revoke(r.Context(), user.ID, keyID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
