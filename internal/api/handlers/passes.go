package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fireflyiii-tools/allegro-sync/internal/api/dto"
	"github.com/fireflyiii-tools/allegro-sync/internal/application/service"
)

// PassesHandler handles reconciliation pass job HTTP requests.
type PassesHandler struct {
	*Base
	passService *service.PassService
}

// NewPassesHandler creates a new passes handler.
func NewPassesHandler(passService *service.PassService) *PassesHandler {
	return &PassesHandler{
		Base:        &Base{},
		passService: passService,
	}
}

// Start handles POST /api/passes - starts a new pass job.
func (h *PassesHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req dto.StartPassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	jobID, err := h.passService.StartPass(r.Context(), service.PassRequest{
		DryRun:     req.DryRun,
		FilterText: req.FilterText,
		ExactMatch: req.ExactMatch,
		Verbose:    req.Verbose,
	})
	if err != nil {
		h.WriteError(w, http.StatusConflict, dto.APIError{
			Code:    "pass_conflict",
			Message: err.Error(),
		})
		return
	}

	h.WriteJSON(w, http.StatusAccepted, dto.StartPassResponse{
		JobID:  jobID,
		Status: "pending",
	})
}

// Get handles GET /api/passes/{jobId} - gets pass job status.
func (h *PassesHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("job ID is required"))
		return
	}

	job, err := h.passService.GetPassJob(jobID)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("pass job"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toPassJobResponse(job))
}

// ListActive handles GET /api/passes/active - lists active pass jobs.
func (h *PassesHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, toPassListResponse(h.passService.ListActivePassJobs()))
}

// List handles GET /api/passes - lists all pass jobs.
func (h *PassesHandler) List(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, toPassListResponse(h.passService.ListAllPassJobs()))
}

// Cancel handles DELETE /api/passes/{jobId} - cancels a pass job.
func (h *PassesHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("job ID is required"))
		return
	}

	if err := h.passService.CancelPass(jobID); err != nil {
		h.WriteError(w, http.StatusConflict, dto.APIError{
			Code:    "cancel_failed",
			Message: err.Error(),
		})
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Pass job cancelled successfully",
	})
}

func toPassListResponse(jobs []*service.PassJob) dto.PassListResponse {
	response := dto.PassListResponse{
		Jobs:  make([]dto.PassJobResponse, 0, len(jobs)),
		Count: len(jobs),
	}
	for _, job := range jobs {
		response.Jobs = append(response.Jobs, toPassJobResponse(job))
	}
	return response
}

// toPassJobResponse converts a service model to an API response.
func toPassJobResponse(job *service.PassJob) dto.PassJobResponse {
	response := dto.PassJobResponse{
		JobID:      job.ID,
		Status:     string(job.Status),
		DryRun:     job.Request.DryRun,
		FilterText: job.Request.FilterText,
		StartedAt:  job.StartedAt.Format(time.RFC3339),
		Progress: dto.PassProgressResponse{
			CurrentPhase: job.Progress.CurrentPhase,
			LastUpdate:   job.Progress.LastUpdate.Format(time.RFC3339),
		},
	}

	if job.CompletedAt != nil {
		completedAt := job.CompletedAt.Format(time.RFC3339)
		response.CompletedAt = &completedAt
	}

	if job.Result != nil {
		response.Result = &dto.PassResultResponse{
			TransactionsSeen: job.Result.TransactionsSeen,
			SkippedTagged:    job.Result.SkippedTagged,
			MatchedCount:     job.Result.MatchedCount,
			AppliedCount:     job.Result.AppliedCount,
			NoMatchCount:     job.Result.NoMatchCount,
			AmbiguousCount:   job.Result.AmbiguousCount,
			ErrorCount:       job.Result.ErrorCount,
		}
	}

	if job.Error != nil {
		errMsg := job.Error.Error()
		response.Error = &errMsg
	}

	return response
}
