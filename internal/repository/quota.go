package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jobbridge/jobbridge/internal/domain"
)

// ApplicationUsage is the quota-relevant slice of a user row.
type ApplicationUsage struct {
	Count     int
	ResetDate time.Time
}

// readUsageForUpdate locks the user row and returns its counter state.
func readUsageForUpdate(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (ApplicationUsage, error) {
	var usage ApplicationUsage
	err := tx.QueryRowContext(ctx, `
		SELECT monthly_application_count, application_count_reset_date
		FROM users
		WHERE id = $1
		FOR UPDATE`, userID).Scan(&usage.Count, &usage.ResetDate)
	return usage, err
}

func writeUsage(ctx context.Context, tx *sql.Tx, userID uuid.UUID, usage ApplicationUsage) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET monthly_application_count = $2,
		    application_count_reset_date = $3,
		    updated_at = now()
		WHERE id = $1`, userID, usage.Count, usage.ResetDate.UTC())
	return err
}

// SyncApplicationUsage returns the user's counter state for the current
// period. If the stored reset date falls in an earlier calendar month the
// counter is reset to zero and the reset date to now before returning, so
// a stale period is never reported.
//
// The lock-read-write runs in a single serializable transaction; two
// concurrent calls cannot both observe the stale counter and double-reset.
func (q *Queries) SyncApplicationUsage(ctx context.Context, userID uuid.UUID, now time.Time) (ApplicationUsage, error) {
	var usage ApplicationUsage
	err := q.withSerializableTx(ctx, func(tx *sql.Tx) error {
		var err error
		usage, err = readUsageForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !domain.SameCalendarMonth(usage.ResetDate, now) {
			usage = ApplicationUsage{Count: 0, ResetDate: now.UTC()}
			return writeUsage(ctx, tx, userID, usage)
		}
		return nil
	})
	return usage, err
}

// ConsumeApplicationSlot atomically counts one application against the
// user's monthly limit. The returned bool reports whether a slot was
// available; when false, nothing was written.
//
// A stale period consumes as the first application of the new period:
// count=1 and a fresh reset date, regardless of the old count.
func (q *Queries) ConsumeApplicationSlot(ctx context.Context, userID uuid.UUID, limit int, now time.Time) (ApplicationUsage, bool, error) {
	var (
		usage   ApplicationUsage
		allowed bool
	)
	err := q.withSerializableTx(ctx, func(tx *sql.Tx) error {
		var err error
		usage, err = readUsageForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		if !domain.SameCalendarMonth(usage.ResetDate, now) {
			usage = ApplicationUsage{Count: 1, ResetDate: now.UTC()}
			allowed = true
			return writeUsage(ctx, tx, userID, usage)
		}

		if usage.Count >= limit {
			allowed = false
			return nil
		}

		usage.Count++
		allowed = true
		return writeUsage(ctx, tx, userID, usage)
	})
	return usage, allowed, err
}
