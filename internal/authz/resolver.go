// Package authz decides whether an authenticated identity holds admin
// privileges. Admin status can come from several places (a configured
// email allowlist, an email pattern, the users table, a role-assignment
// table, or the identity provider's metadata), so the resolver layers
// those checks in a fixed order and stops at the first grant.
package authz

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/identity"
)

// Probe timing. Config checks are free; the remaining checks hit the
// database and the identity provider, so they run in parallel under a
// deadline. The grace window lets a straggler that finished just after
// the deadline still deliver its answer.
const (
	defaultProbeTimeout = 2 * time.Second
	defaultProbeGrace   = 250 * time.Millisecond
)

// roleStore is the subset of repository.Queries the resolver needs.
type roleStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UserHasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
}

// Config assembles the resolver's inputs. AdminEmails entries are
// normalized to lowercase; Pattern may be nil when no pattern is
// configured.
type Config struct {
	AdminEmails []string
	Pattern     *regexp.Regexp
	Store       roleStore
	Directory   identity.Directory
	Logger      *slog.Logger

	// ProbeTimeout and ProbeGrace override the defaults when positive.
	// Tests use short values.
	ProbeTimeout time.Duration
	ProbeGrace   time.Duration
}

// Resolver answers admin checks for the admin API surface.
type Resolver struct {
	emails       map[string]struct{}
	pattern      *regexp.Regexp
	store        roleStore
	directory    identity.Directory
	logger       *slog.Logger
	probeTimeout time.Duration
	probeGrace   time.Duration
}

// NewResolver builds a resolver from config.
func NewResolver(cfg Config) *Resolver {
	emails := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			emails[email] = struct{}{}
		}
	}

	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	grace := cfg.ProbeGrace
	if grace <= 0 {
		grace = defaultProbeGrace
	}

	return &Resolver{
		emails:       emails,
		pattern:      cfg.Pattern,
		store:        cfg.Store,
		directory:    cfg.Directory,
		logger:       cfg.Logger.With("component", "authz"),
		probeTimeout: timeout,
		probeGrace:   grace,
	}
}

// IsAdmin reports whether the identity holds admin privileges.
//
// Checks run in order and the first grant wins:
//  1. configured admin email allowlist
//  2. configured admin email pattern
//  3. parallel probe of the users table, the role-assignment table,
//     and the identity provider's metadata
//
// A failed probe check is logged and treated as a denial, never an
// error: a broken role table must not lock admins out of returning 403s
// or turn every admin request into a 500. The only error returned is
// EUNAUTHORIZED for a missing identity.
func (r *Resolver) IsAdmin(ctx context.Context, ident *identity.Identity) (bool, error) {
	const op = "authz.Resolver.IsAdmin"

	if ident == nil || ident.ID == uuid.Nil {
		return false, domain.Unauthorized(op, "Authentication required")
	}

	email := strings.ToLower(strings.TrimSpace(ident.Email))
	if email != "" {
		if _, ok := r.emails[email]; ok {
			r.logger.Debug("admin granted by email allowlist", "user_id", ident.ID)
			return true, nil
		}
		if r.pattern != nil && r.pattern.MatchString(email) {
			r.logger.Debug("admin granted by email pattern", "user_id", ident.ID)
			return true, nil
		}
	}

	return r.probe(ctx, ident), nil
}

type probeResult struct {
	check   string
	granted bool
	err     error
}

func (r *Resolver) probe(ctx context.Context, ident *identity.Identity) bool {
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	checks := []struct {
		name string
		fn   func(context.Context) (bool, error)
	}{
		{"role_column", func(ctx context.Context) (bool, error) {
			user, err := r.store.GetUserByID(ctx, ident.ID)
			if errors.Is(err, sql.ErrNoRows) {
				// Not provisioned yet, so no stored role either.
				return false, nil
			}
			if err != nil {
				return false, err
			}
			return user.HasStoredAdminRole(), nil
		}},
		{"role_table", func(ctx context.Context) (bool, error) {
			return r.store.UserHasRole(ctx, ident.ID, domain.RoleAdmin)
		}},
		{"provider_metadata", func(ctx context.Context) (bool, error) {
			if r.directory == nil {
				return false, nil
			}
			return r.directory.AdminFlag(ctx, ident)
		}},
	}

	// Buffered so stragglers can deliver after we stop listening.
	results := make(chan probeResult, len(checks))
	for _, check := range checks {
		go func(name string, fn func(context.Context) (bool, error)) {
			granted, err := fn(probeCtx)
			results <- probeResult{check: name, granted: granted, err: err}
		}(check.name, check.fn)
	}

	pending := len(checks)
	done := probeCtx.Done()
	var graceCh <-chan time.Time

	for pending > 0 {
		select {
		case res := <-results:
			pending--
			if res.err != nil {
				r.logger.Warn("admin check failed",
					"check", res.check,
					"user_id", ident.ID,
					"error", res.err,
				)
				continue
			}
			if res.granted {
				r.logger.Info("admin granted",
					"check", res.check,
					"user_id", ident.ID,
				)
				return true
			}
		case <-done:
			done = nil
			timer := time.NewTimer(r.probeGrace)
			defer timer.Stop()
			graceCh = timer.C
		case <-graceCh:
			r.logger.Warn("admin checks timed out",
				"pending", pending,
				"user_id", ident.ID,
			)
			return false
		}
	}

	return false
}
