package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/jobbridge/jobbridge/internal/domain"
)

const applicationColumns = `id, user_id, job_title, company, job_url,
	status, resume_key, resume_filename, answers, created_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (*domain.JobApplication, error) {
	var (
		app            domain.JobApplication
		status         string
		jobURL         sql.NullString
		resumeKey      sql.NullString
		resumeFilename sql.NullString
		answers        pqtype.NullRawMessage
	)
	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.JobTitle,
		&app.Company,
		&jobURL,
		&status,
		&resumeKey,
		&resumeFilename,
		&answers,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.Status = domain.ApplicationStatus(status)
	app.JobURL = domain.NullStringValue(jobURL)
	app.ResumeKey = domain.NullStringValue(resumeKey)
	app.ResumeFilename = domain.NullStringValue(resumeFilename)
	if answers.Valid {
		app.Answers = answers.RawMessage
	}
	return &app, nil
}

// InsertApplication stores a new application in the submitted state.
func (q *Queries) InsertApplication(ctx context.Context, app *domain.JobApplication) (*domain.JobApplication, error) {
	answers := pqtype.NullRawMessage{RawMessage: app.Answers, Valid: len(app.Answers) > 0}
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO applications (id, user_id, job_title, company, job_url, status, resume_key, resume_filename, answers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+applicationColumns,
		app.ID, app.UserID, app.JobTitle, app.Company,
		domain.ToNullString(app.JobURL), string(domain.ApplicationStatusSubmitted),
		domain.ToNullString(app.ResumeKey), domain.ToNullString(app.ResumeFilename), answers)
	return scanApplication(row)
}

// ListApplicationsByUser returns the user's applications, newest first.
func (q *Queries) ListApplicationsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JobApplication, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*domain.JobApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// DeleteApplication removes an application row. Used to compensate when a
// submission loses the quota race after its row was written.
func (q *Queries) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	return err
}

// GetApplicationByID looks up a single application.
func (q *Queries) GetApplicationByID(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE id = $1`, id)
	return scanApplication(row)
}
