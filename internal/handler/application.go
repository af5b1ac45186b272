// Package handler contains HTTP handlers for the JobBridge API.
//
// This file implements the application submission endpoints, the metered
// action behind the monthly quota.
package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
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

// ApplicationResponse is the wire shape of a job application.
type ApplicationResponse struct {
	ID        uuid.UUID       `json:"id"`
	JobTitle  string          `json:"jobTitle"`
	Company   string          `json:"company"`
	JobURL    string          `json:"jobUrl,omitempty"`
	Status    string          `json:"status"`
	HasResume bool            `json:"hasResume"`
	Answers   json.RawMessage `json:"answers,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SubmitResponse wraps a created application with the caller's remaining
// quota so the SPA can update its counter without a second request.
type SubmitResponse struct {
	Application ApplicationResponse `json:"application"`
	Quota       *domain.QuotaStatus `json:"quota"`
}

func applicationResponse(app *domain.JobApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:        app.ID,
		JobTitle:  app.JobTitle,
		Company:   app.Company,
		JobURL:    app.JobURL,
		Status:    string(app.Status),
		HasResume: app.ResumeKey != "",
		Answers:   app.Answers,
		CreatedAt: app.CreatedAt,
	}
}

// =============================================================================
// Handler Configuration
// =============================================================================

// ApplicationHandler handles application-related HTTP requests.
type ApplicationHandler struct {
	applications service.ApplicationService
	logger       *slog.Logger
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(applications service.ApplicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
		logger:       logger,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers application routes with the provided mux.
//
// Routes:
//   - POST /api/applications             -> Submit (quota-gated)
//   - GET  /api/applications             -> List
//   - GET  /api/applications/{id}/resume -> DownloadResume
func (h *ApplicationHandler) RegisterRoutes(mux *http.ServeMux, requireUser, requireQuota func(http.Handler) http.Handler) {
	mux.Handle("POST /api/applications", requireUser(requireQuota(http.HandlerFunc(h.Submit))))
	mux.Handle("GET /api/applications", requireUser(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/applications/{id}/resume", requireUser(http.HandlerFunc(h.DownloadResume)))
}

// =============================================================================
// POST /api/applications - Submit Application
// =============================================================================

// Submit handles application submission.
//
// The request is multipart form data: jobTitle, company, jobUrl and answers
// fields, plus an optional resume file part. The quota gate has already run
// by the time this handler executes, but the slot is consumed here, after
// the submission actually succeeds.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)
	if user == nil {
		h.logger.Error("submit handler called without authenticated user")
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	// Parse multipart form (16MB memory limit)
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("application.submit", "Failed to parse form"))
		return
	}

	params := domain.SubmitApplicationParams{
		UserID:   user.ID,
		JobTitle: r.FormValue("jobTitle"),
		Company:  r.FormValue("company"),
		JobURL:   r.FormValue("jobUrl"),
	}

	if answers := r.FormValue("answers"); answers != "" {
		if !json.Valid([]byte(answers)) {
			ErrorResponse(w, r, h.logger, domain.Invalid("application.submit", "answers must be valid JSON"))
			return
		}
		params.Answers = json.RawMessage(answers)
	}

	var resume *service.ResumeUpload
	if file, header, err := r.FormFile("resume"); err == nil {
		defer file.Close()
		resume = &service.ResumeUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        file,
		}
	}

	app, quota, err := h.applications.Submit(r.Context(), params, resume)
	if err != nil {
		// A submission can lose the quota race after the gate allowed it.
		// That denial carries the same payload the gate emits, so the SPA
		// renders the upgrade dialog on both paths.
		if domain.ErrorCode(err) == domain.EPAYMENT && quota != nil {
			h.logger.Info("quota race lost on submit", "user_id", user.ID)
			metrics.GateDenialsTotal.WithLabelValues("quota", string(domain.FeatureMonthlyApplications)).Inc()
			QuotaDenialResponse(w, quota)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.ApplicationsSubmitted.Inc()
	metrics.QuotaSlotsConsumed.Inc()

	h.logger.Info("application submitted",
		"user_id", user.ID,
		"application_id", app.ID,
		"company", app.Company,
	)

	writeJSON(w, http.StatusCreated, SubmitResponse{
		Application: applicationResponse(app),
		Quota:       quota,
	})
}

// =============================================================================
// GET /api/applications - List Applications
// =============================================================================

// List returns the caller's applications, newest first.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	limit, offset := paginationParams(r, 50)

	apps, err := h.applications.List(r.Context(), user.ID, limit, offset)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	responses := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, applicationResponse(app))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"applications": responses,
	})
}

// =============================================================================
// GET /api/applications/{id}/resume - Download Resume
// =============================================================================

// DownloadResume streams the resume attached to one of the caller's
// applications. Resumes are private objects; this is the only read path.
func (h *ApplicationHandler) DownloadResume(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromRequest(r)
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	appID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("application.download_resume", "invalid application id"))
		return
	}

	dl, err := h.applications.OpenResume(r.Context(), user.ID, appID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	if dl.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.Size, 10))
	}
	disposition := "attachment"
	if dl.Filename != "" {
		disposition = mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename})
	}
	w.Header().Set("Content-Disposition", disposition)

	if _, err := io.Copy(w, dl.Body); err != nil {
		h.logger.Warn("resume download interrupted",
			"application_id", appID,
			"error", err,
		)
	}
}

// =============================================================================
// Helpers
// =============================================================================

// paginationParams reads limit/offset query parameters with sane bounds.
func paginationParams(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
