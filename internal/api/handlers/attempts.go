package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fireflyiii-tools/allegro-sync/internal/api/dto"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/storage"
)

// AttemptsHandler handles audit trail HTTP requests.
type AttemptsHandler struct {
	*Base
}

// NewAttemptsHandler creates a new attempts handler.
func NewAttemptsHandler(repo storage.Repository) *AttemptsHandler {
	return &AttemptsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/attempts - returns recent reconciliation
// attempts.
func (h *AttemptsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 50)

	attempts, err := h.repo.ListAttempts(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, toAttemptListResponse(attempts))
}

// ListByTransaction handles GET /api/transactions/{id}/attempts -
// returns every attempt recorded for one ledger transaction.
func (h *AttemptsHandler) ListByTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "id")
	if transactionID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("transaction ID is required"))
		return
	}

	attempts, err := h.repo.GetAttemptsByTransaction(transactionID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, toAttemptListResponse(attempts))
}

func toAttemptListResponse(attempts []storage.Attempt) dto.AttemptListResponse {
	response := dto.AttemptListResponse{
		Attempts: make([]dto.AttemptResponse, 0, len(attempts)),
		Count:    len(attempts),
	}
	for _, a := range attempts {
		response.Attempts = append(response.Attempts, toAttemptResponse(a))
	}
	return response
}

func toAttemptResponse(a storage.Attempt) dto.AttemptResponse {
	return dto.AttemptResponse{
		ID:                a.ID,
		RunID:             a.RunID,
		TransactionID:     a.TransactionID,
		TransactionDate:   a.TransactionDate.Format("2006-01-02"),
		TransactionAmount: a.TransactionAmount,
		CandidateCount:    a.CandidateCount,
		Applied:           a.Applied,
		DryRun:            a.DryRun,
		ErrorMessage:      a.ErrorMessage,
		AttemptedAt:       a.AttemptedAt.Format(time.RFC3339),
		CandidateDetails:  a.CandidateDetails,
	}
}
