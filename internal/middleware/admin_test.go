package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jobbridge/jobbridge/internal/auth"
	"github.com/jobbridge/jobbridge/internal/authz"
	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/identity"
)

// adminResolver builds a resolver whose only grant path is the allowlist
// and pattern; there is no store or directory behind it.
func adminResolver(t *testing.T, emails ...string) *authz.Resolver {
	t.Helper()
	return authz.NewResolver(authz.Config{
		AdminEmails: emails,
		Pattern:     regexp.MustCompile(`^[^@]+@jobbridge-admin\.com$`),
		Store:       emptyRoleStore{},
		Logger:      discardLogger(),
	})
}

type emptyRoleStore struct{}

func (emptyRoleStore) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return nil, sql.ErrNoRows
}

func (emptyRoleStore) UserHasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	return false, nil
}

func requestWithIdentity(email string) *http.Request {
	req := httptest.NewRequest("GET", "/api/admin/users", nil)
	ident := &identity.Identity{ID: uuid.New(), Email: email}
	return req.WithContext(auth.SetIdentity(req.Context(), ident))
}

func TestRequireAdmin_NoIdentity(t *testing.T) {
	mw := NewAdminMiddleware(adminResolver(t), discardLogger())

	rec := httptest.NewRecorder()
	mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})).ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/users", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_AllowlistedEmail(t *testing.T) {
	mw := NewAdminMiddleware(adminResolver(t, "ops@jobbridge.com"), discardLogger())

	called := false
	rec := httptest.NewRecorder()
	mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, requestWithIdentity("ops@jobbridge.com"))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_PatternMatch(t *testing.T) {
	mw := NewAdminMiddleware(adminResolver(t), discardLogger())

	called := false
	rec := httptest.NewRecorder()
	mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, requestWithIdentity("oncall@jobbridge-admin.com"))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_NonAdminGetsBare403(t *testing.T) {
	mw := NewAdminMiddleware(adminResolver(t, "ops@jobbridge.com"), discardLogger())

	rec := httptest.NewRecorder()
	mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})).ServeHTTP(rec, requestWithIdentity("user@example.com"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	// The body must not reveal which admin check fell short.
	assert.NotContains(t, rec.Body.String(), "allowlist")
	assert.NotContains(t, rec.Body.String(), "role")
}
