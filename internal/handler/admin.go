// This file implements the admin API surface. Every route here sits behind
// the admin resolver middleware.
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

// AdminUserResponse is the admin view of a user, including quota state the
// regular API never exposes directly.
type AdminUserResponse struct {
	ID                        uuid.UUID `json:"id"`
	Email                     string    `json:"email"`
	Name                      string    `json:"name,omitempty"`
	Role                      string    `json:"role"`
	SubscriptionTier          string    `json:"subscriptionTier"`
	MonthlyApplicationCount   int       `json:"monthlyApplicationCount"`
	ApplicationCountResetDate time.Time `json:"applicationCountResetDate"`
	CreatedAt                 time.Time `json:"createdAt"`
	Roles                     []string  `json:"roles,omitempty"` // assignment-table roles, detail view only
}

func adminUserResponse(user *domain.User) AdminUserResponse {
	return AdminUserResponse{
		ID:                        user.ID,
		Email:                     user.Email,
		Name:                      user.Name,
		Role:                      user.Role,
		SubscriptionTier:          string(user.EffectiveTier()),
		MonthlyApplicationCount:   user.MonthlyApplicationCount,
		ApplicationCountResetDate: user.ApplicationCountResetDate,
		CreatedAt:                 user.CreatedAt,
	}
}

// =============================================================================
// Handler Configuration
// =============================================================================

// AdminHandler handles admin HTTP requests.
type AdminHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users service.UserService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:  users,
		logger: logger,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers admin routes with the provided mux.
//
// Routes:
//   - GET    /api/admin/users                     -> ListUsers
//   - GET    /api/admin/users/{id}                -> GetUser
//   - PUT    /api/admin/users/{id}/subscription   -> UpdateSubscription
//   - PUT    /api/admin/users/{id}/roles/{role}   -> GrantRole
//   - DELETE /api/admin/users/{id}/roles/{role}   -> RevokeRole
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, requireAdmin func(http.Handler) http.Handler) {
	mux.Handle("GET /api/admin/users", requireAdmin(http.HandlerFunc(h.ListUsers)))
	mux.Handle("GET /api/admin/users/{id}", requireAdmin(http.HandlerFunc(h.GetUser)))
	mux.Handle("PUT /api/admin/users/{id}/subscription", requireAdmin(http.HandlerFunc(h.UpdateSubscription)))
	mux.Handle("PUT /api/admin/users/{id}/roles/{role}", requireAdmin(http.HandlerFunc(h.GrantRole)))
	mux.Handle("DELETE /api/admin/users/{id}/roles/{role}", requireAdmin(http.HandlerFunc(h.RevokeRole)))
}

// =============================================================================
// GET /api/admin/users - List Users
// =============================================================================

// ListUsers returns a page of users with the total count. An exact email
// lookup via ?email= returns a single-user page.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		user, err := h.users.GetByEmail(r.Context(), email)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"users": []AdminUserResponse{adminUserResponse(user)},
			"total": int64(1),
		})
		return
	}

	limit, offset := paginationParams(r, 50)

	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	total, err := h.users.Count(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	responses := make([]AdminUserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, adminUserResponse(user))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": responses,
		"total": total,
	})
}

// =============================================================================
// GET /api/admin/users/{id} - Get User
// =============================================================================

// GetUser returns one user by ID, including assignment-table roles.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("admin.getUser", "Invalid user ID"))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	roles, err := h.users.Roles(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := adminUserResponse(user)
	resp.Roles = roles
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// PUT /api/admin/users/{id}/subscription - Update Subscription
// =============================================================================

// updateSubscriptionRequest is the body of a tier change.
type updateSubscriptionRequest struct {
	Tier string `json:"tier"`
}

// UpdateSubscription sets a user's subscription tier. Changing the tier
// resets the user's monthly application counter so the new allowance takes
// effect immediately.
func (h *AdminHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("admin.updateSubscription", "Invalid user ID"))
		return
	}

	var req updateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("admin.updateSubscription", "Invalid request body"))
		return
	}

	user, err := h.users.UpdateSubscription(r.Context(), domain.SubscriptionUpdateParams{
		UserID: userID,
		Tier:   domain.SubscriptionTier(req.Tier),
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.SubscriptionChanges.WithLabelValues(req.Tier).Inc()

	admin := auth.GetUserFromRequest(r)
	attrs := []any{
		"user_id", userID,
		"tier", req.Tier,
	}
	if admin != nil {
		attrs = append(attrs, "admin_id", admin.ID)
	}
	h.logger.Info("subscription updated", attrs...)

	writeJSON(w, http.StatusOK, adminUserResponse(user))
}

// =============================================================================
// PUT/DELETE /api/admin/users/{id}/roles/{role} - Role Assignment
// =============================================================================

// GrantRole assigns a role to a user through the assignment table. The
// admin resolver picks up an "admin" grant on the user's next request.
func (h *AdminHandler) GrantRole(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := h.roleParams(w, r, "admin.grantRole")
	if !ok {
		return
	}

	if err := h.users.GrantRole(r.Context(), userID, role); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.logRoleChange(r, "role granted", userID, role)
	w.WriteHeader(http.StatusNoContent)
}

// RevokeRole removes a role assignment.
func (h *AdminHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := h.roleParams(w, r, "admin.revokeRole")
	if !ok {
		return
	}

	if err := h.users.RevokeRole(r.Context(), userID, role); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.logRoleChange(r, "role revoked", userID, role)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) roleParams(w http.ResponseWriter, r *http.Request, op string) (uuid.UUID, string, bool) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Invalid user ID"))
		return uuid.Nil, "", false
	}
	role := r.PathValue("role")
	if role == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Role is required"))
		return uuid.Nil, "", false
	}
	return userID, role, true
}

func (h *AdminHandler) logRoleChange(r *http.Request, msg string, userID uuid.UUID, role string) {
	attrs := []any{
		"user_id", userID,
		"role", role,
	}
	if admin := auth.GetUserFromRequest(r); admin != nil {
		attrs = append(attrs, "admin_id", admin.ID)
	}
	h.logger.Info(msg, attrs...)
}
