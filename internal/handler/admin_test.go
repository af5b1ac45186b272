package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobbridge/jobbridge/internal/auth"
	"github.com/jobbridge/jobbridge/internal/domain"
)

type roleCall struct {
	userID uuid.UUID
	role   string
}

type fakeAdminUserService struct {
	user  *domain.User
	roles []string
	err   error

	granted []roleCall
	revoked []roleCall

	emailLookups []string
}

func (f *fakeAdminUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeAdminUserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.emailLookups = append(f.emailLookups, email)
	return f.user, f.err
}

func (f *fakeAdminUserService) Provision(ctx context.Context, params domain.ProvisionParams) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeAdminUserService) UpdateSubscription(ctx context.Context, params domain.SubscriptionUpdateParams) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeAdminUserService) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if f.user == nil {
		return nil, f.err
	}
	return []*domain.User{f.user}, f.err
}

func (f *fakeAdminUserService) Count(ctx context.Context) (int64, error) {
	return 1, f.err
}

func (f *fakeAdminUserService) Roles(ctx context.Context, id uuid.UUID) ([]string, error) {
	return f.roles, f.err
}

func (f *fakeAdminUserService) GrantRole(ctx context.Context, id uuid.UUID, role string) error {
	f.granted = append(f.granted, roleCall{userID: id, role: role})
	return f.err
}

func (f *fakeAdminUserService) RevokeRole(ctx context.Context, id uuid.UUID, role string) error {
	f.revoked = append(f.revoked, roleCall{userID: id, role: role})
	return f.err
}

func adminRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	admin := &domain.User{ID: uuid.New(), Email: "ops@jobbridge-admin.com", Role: domain.RoleAdmin}
	return req.WithContext(auth.SetUser(req.Context(), admin))
}

func TestAdminHandler_GetUser_IncludesRoles(t *testing.T) {
	userID := uuid.New()
	svc := &fakeAdminUserService{
		user:  &domain.User{ID: userID, Email: "user@example.com", SubscriptionTier: domain.SubscriptionTierPro},
		roles: []string{"admin", "support"},
	}
	h := NewAdminHandler(svc, slog.New(slog.DiscardHandler))

	req := adminRequest("GET", "/api/admin/users/"+userID.String())
	req.SetPathValue("id", userID.String())

	rec := httptest.NewRecorder()
	h.GetUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body AdminUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, userID, body.ID)
	assert.Equal(t, []string{"admin", "support"}, body.Roles)
}

func TestAdminHandler_ListUsers_EmailLookup(t *testing.T) {
	svc := &fakeAdminUserService{
		user: &domain.User{ID: uuid.New(), Email: "target@example.com"},
	}
	h := NewAdminHandler(svc, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.ListUsers(rec, adminRequest("GET", "/api/admin/users?email=target@example.com"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"target@example.com"}, svc.emailLookups)

	var body struct {
		Users []AdminUserResponse `json:"users"`
		Total int64               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Users, 1)
	assert.Equal(t, "target@example.com", body.Users[0].Email)
	assert.Equal(t, int64(1), body.Total)
}

func TestAdminHandler_ListUsers_EmailLookupUnknown(t *testing.T) {
	svc := &fakeAdminUserService{err: domain.NotFound("user.get_by_email", "user", "missing@example.com")}
	h := NewAdminHandler(svc, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.ListUsers(rec, adminRequest("GET", "/api/admin/users?email=missing@example.com"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHandler_GrantRole(t *testing.T) {
	userID := uuid.New()
	svc := &fakeAdminUserService{user: &domain.User{ID: userID}}
	h := NewAdminHandler(svc, slog.New(slog.DiscardHandler))

	req := adminRequest("PUT", "/api/admin/users/"+userID.String()+"/roles/admin")
	req.SetPathValue("id", userID.String())
	req.SetPathValue("role", "admin")

	rec := httptest.NewRecorder()
	h.GrantRole(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, svc.granted, 1)
	assert.Equal(t, userID, svc.granted[0].userID)
	assert.Equal(t, "admin", svc.granted[0].role)
}

func TestAdminHandler_RevokeRole(t *testing.T) {
	userID := uuid.New()
	svc := &fakeAdminUserService{user: &domain.User{ID: userID}}
	h := NewAdminHandler(svc, slog.New(slog.DiscardHandler))

	req := adminRequest("DELETE", "/api/admin/users/"+userID.String()+"/roles/admin")
	req.SetPathValue("id", userID.String())
	req.SetPathValue("role", "admin")

	rec := httptest.NewRecorder()
	h.RevokeRole(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, svc.revoked, 1)
	assert.Equal(t, "admin", svc.revoked[0].role)
}

func TestAdminHandler_GrantRole_InvalidUserID(t *testing.T) {
	svc := &fakeAdminUserService{}
	h := NewAdminHandler(svc, slog.New(slog.DiscardHandler))

	req := adminRequest("PUT", "/api/admin/users/not-a-uuid/roles/admin")
	req.SetPathValue("id", "not-a-uuid")
	req.SetPathValue("role", "admin")

	rec := httptest.NewRecorder()
	h.GrantRole(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.granted)
}
