package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/repository"
)

func TestRoleNamePattern(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{"plain role", "admin", true},
		{"underscored with digits", "support_tier_2", true},
		{"single letter", "a", true},
		{"max length", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"uppercase", "Admin", false},
		{"empty", "", false},
		{"leading digit", "2fa_admin", false},
		{"spaces", "site admin", false},
		{"sql-ish", "admin;--", false},
		{"over max length", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roleNamePattern.MatchString(tt.role))
		})
	}
}

// Role name validation runs before any query, so a nil database is safe
// for the rejection paths.
func TestUserService_RoleNameRejectedBeforeStore(t *testing.T) {
	svc := NewUserService(repository.New(nil), slog.New(slog.DiscardHandler))
	userID := uuid.New()

	err := svc.GrantRole(context.Background(), userID, "Not A Role")
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	err = svc.RevokeRole(context.Background(), userID, "admin;--")
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestUserService_GetByEmail_RequiresEmail(t *testing.T) {
	svc := NewUserService(repository.New(nil), slog.New(slog.DiscardHandler))

	_, err := svc.GetByEmail(context.Background(), "")
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}
