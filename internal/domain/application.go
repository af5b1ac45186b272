package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus tracks where a submitted application sits in its
// lifecycle. Only Submitted is set by this service; later states are
// written when the applicant updates the record.
type ApplicationStatus string

const (
	ApplicationStatusSubmitted    ApplicationStatus = "submitted"
	ApplicationStatusInterviewing ApplicationStatus = "interviewing"
	ApplicationStatusOffer        ApplicationStatus = "offer"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn    ApplicationStatus = "withdrawn"
)

// JobApplication represents one submitted application. Submissions are the
// metered action behind the monthly quota: the counter is incremented only
// after a submission succeeds.
type JobApplication struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	JobTitle       string
	Company        string
	JobURL         string
	Status         ApplicationStatus
	ResumeKey      string          // storage key of the attached resume, empty if none
	ResumeFilename string          // sanitized upload name, served in Content-Disposition only
	Answers        json.RawMessage // screening question answers, shape owned by the client
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubmitApplicationParams contains the validated parameters for a submission.
type SubmitApplicationParams struct {
	UserID   uuid.UUID
	JobTitle string
	Company  string
	JobURL   string
	Answers  json.RawMessage
}

// Validate checks the required submission fields.
func (p *SubmitApplicationParams) Validate() error {
	const op = "application.validate"
	if p.JobTitle == "" {
		return Invalid(op, "job title is required")
	}
	if p.Company == "" {
		return Invalid(op, "company is required")
	}
	return nil
}
