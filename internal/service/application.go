// Package service contains the business logic layer.
//
// This file implements application submission, the metered action behind
// the monthly quota. Submissions may carry a resume document, stored
// through the storage provider before the row is written.
package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/repository"
	"github.com/jobbridge/jobbridge/internal/storage"
)

// MaxResumeSize caps uploaded resume documents at 10 MB.
const MaxResumeSize = 10 << 20

// ResumeUpload describes an uploaded resume document.
type ResumeUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// ResumeDownload is an open resume stream plus the metadata needed to
// serve it. The caller must close Body.
type ResumeDownload struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	Filename    string
}

// =============================================================================
// Interface Definition
// =============================================================================

// ApplicationService defines operations on job applications.
type ApplicationService interface {
	// Submit stores an application and counts it against the monthly
	// quota. The quota slot is consumed only after the row is written; if
	// the caller lost a quota race in the meantime, the row is removed
	// again and a payment-required error is returned.
	Submit(ctx context.Context, params domain.SubmitApplicationParams, resume *ResumeUpload) (*domain.JobApplication, *domain.QuotaStatus, error)

	// List returns the user's applications, newest first.
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JobApplication, error)

	// OpenResume streams the resume attached to one of the user's
	// applications. The caller must close the returned body. Applications
	// owned by other users report not-found rather than forbidden.
	OpenResume(ctx context.Context, userID, applicationID uuid.UUID) (*ResumeDownload, error)
}

// =============================================================================
// Implementation
// =============================================================================

type applicationService struct {
	queries *repository.Queries
	quota   QuotaService
	store   storage.Storage
	logger  *slog.Logger
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(queries *repository.Queries, quota QuotaService, store storage.Storage, logger *slog.Logger) ApplicationService {
	return &applicationService{
		queries: queries,
		quota:   quota,
		store:   store,
		logger:  logger,
	}
}

func (s *applicationService) Submit(ctx context.Context, params domain.SubmitApplicationParams, resume *ResumeUpload) (*domain.JobApplication, *domain.QuotaStatus, error) {
	const op = "application.submit"

	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	app := &domain.JobApplication{
		ID:       uuid.New(),
		UserID:   params.UserID,
		JobTitle: params.JobTitle,
		Company:  params.Company,
		JobURL:   params.JobURL,
		Answers:  params.Answers,
	}

	if resume != nil {
		key, err := s.storeResume(ctx, app.ID, params.UserID, resume)
		if err != nil {
			return nil, nil, err
		}
		app.ResumeKey = key
		app.ResumeFilename = storage.SafeFilename(resume.Filename)
	}

	stored, err := s.queries.InsertApplication(ctx, app)
	if err != nil {
		s.cleanupResume(ctx, app.ResumeKey)
		return nil, nil, domain.Internal(err, op, "failed to store application")
	}

	status, err := s.quota.Consume(ctx, params.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !status.Allowed {
		// Lost the race against a concurrent submission. Undo the row so
		// the caller is not charged for an application over the limit.
		if delErr := s.queries.DeleteApplication(ctx, stored.ID); delErr != nil {
			s.logger.Error("Failed to remove over-quota application",
				"application_id", stored.ID,
				"error", delErr,
			)
		}
		s.cleanupResume(ctx, app.ResumeKey)
		return nil, status, domain.QuotaExceeded(op)
	}

	s.logger.Info("Application submitted",
		"application_id", stored.ID,
		"user_id", params.UserID,
		"company", stored.Company,
	)
	return stored, status, nil
}

func (s *applicationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JobApplication, error) {
	const op = "application.list"

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	apps, err := s.queries.ListApplicationsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list applications")
	}
	return apps, nil
}

func (s *applicationService) OpenResume(ctx context.Context, userID, applicationID uuid.UUID) (*ResumeDownload, error) {
	const op = "application.open_resume"

	app, err := s.queries.GetApplicationByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "application", applicationID.String())
		}
		return nil, domain.Internal(err, op, "failed to load application")
	}

	// Ownership is reported as not-found so callers cannot probe for other
	// users' application IDs.
	if app.UserID != userID {
		return nil, domain.NotFound(op, "application", applicationID.String())
	}
	if app.ResumeKey == "" {
		return nil, domain.NotFound(op, "resume", applicationID.String())
	}

	body, info, err := s.store.Get(ctx, app.ResumeKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, domain.NotFound(op, "resume", applicationID.String())
		}
		return nil, domain.Internal(err, op, "failed to read resume")
	}

	return &ResumeDownload{
		Body:        body,
		ContentType: info.ContentType,
		Size:        info.Size,
		Filename:    app.ResumeFilename,
	}, nil
}

// storeResume validates and uploads a resume document, returning its
// storage key.
func (s *applicationService) storeResume(ctx context.Context, appID, userID uuid.UUID, resume *ResumeUpload) (string, error) {
	const op = "application.store_resume"

	if resume.Size > MaxResumeSize {
		return "", domain.Errorf(domain.ETOOLARGE, op, "resume exceeds the %d MB limit", MaxResumeSize>>20)
	}

	contentType := storage.DetectContentType(resume.ContentType, resume.Filename, nil)
	if !storage.IsAllowedResumeType(contentType) {
		return "", domain.Invalid(op, "resume must be a PDF or Word document")
	}

	key := storage.ResumeKey(userID, appID, resume.Filename)
	err := s.store.Put(ctx, key, resume.Data, storage.PutOptions{
		ContentType: contentType,
		MaxSize:     MaxResumeSize,
	})
	if err != nil {
		return "", domain.Internal(err, op, "failed to store resume")
	}
	return key, nil
}

// cleanupResume best-effort deletes an uploaded resume after a failed
// submission.
func (s *applicationService) cleanupResume(ctx context.Context, key string) {
	if key == "" {
		return
	}
	// Use a short detached timeout; the request context may already be done.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.store.Delete(cleanupCtx, key); err != nil {
		s.logger.Warn("Failed to delete orphaned resume", "key", key, "error", err)
	}
}
