package handlers

import (
	"net/http"

	"github.com/fireflyiii-tools/allegro-sync/internal/api/dto"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/storage"
)

// StatsHandler handles stats HTTP requests.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(repo),
	}
}

// Get handles GET /api/stats - returns aggregate statistics over the
// audit trail.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetStats()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.StatsResponse{
		TotalAttempts:      stats.TotalAttempts,
		AppliedCount:       stats.AppliedCount,
		NoMatchCount:       stats.NoMatchCount,
		AmbiguousCount:     stats.AmbiguousCount,
		ErrorCount:         stats.ErrorCount,
		TotalAppliedAmount: stats.TotalAppliedAmount,
	}

	h.WriteJSON(w, http.StatusOK, response)
}
