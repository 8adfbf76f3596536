package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fireflyiii-tools/allegro-sync/internal/api/dto"
	"github.com/fireflyiii-tools/allegro-sync/internal/api/handlers"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/storage"
)

func TestRunsHandler_List(t *testing.T) {
	t.Run("returns empty list when no runs", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunListResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)

		assert.Empty(t, response.Runs)
		assert.Equal(t, 0, response.Count)
	})

	t.Run("returns runs from repository", func(t *testing.T) {
		repo := storage.NewMockRepository()

		runID1, _ := repo.StartRun("allegro", false, false)
		_ = repo.CompleteRun(runID1, storage.RunTotals{TransactionsSeen: 10, MatchedCount: 8, AppliedCount: 8, ErrorCount: 1})

		runID2, _ := repo.StartRun("allegro", true, true)
		_ = repo.CompleteRun(runID2, storage.RunTotals{TransactionsSeen: 5, MatchedCount: 5, AppliedCount: 0})

		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunListResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, 2, response.Count)
		assert.Len(t, response.Runs, 2)
	})
}

func TestRunsHandler_Get(t *testing.T) {
	t.Run("returns run by ID", func(t *testing.T) {
		repo := storage.NewMockRepository()
		runID, _ := repo.StartRun("allegro", false, false)
		_ = repo.CompleteRun(runID, storage.RunTotals{TransactionsSeen: 10, MatchedCount: 8, AppliedCount: 7, ErrorCount: 1})

		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs/1", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "1"))
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, int64(1), response.ID)
		assert.Equal(t, "allegro", response.FilterText)
		assert.Equal(t, 10, response.TransactionsSeen)
		assert.Equal(t, 7, response.AppliedCount)
		assert.Equal(t, "completed", response.Status)
	})

	t.Run("returns 404 for non-existent run", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs/999", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "999"))
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var response dto.APIError
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, dto.ErrCodeNotFound, response.Code)
	})

	t.Run("returns 400 for invalid ID", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs/invalid", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "invalid"))
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStatsHandler_Get(t *testing.T) {
	repo := storage.NewMockRepository()
	_ = repo.SaveAttempt(&storage.Attempt{TransactionID: "tx-1", CandidateCount: 1, Applied: true, TransactionAmount: 50})
	_ = repo.SaveAttempt(&storage.Attempt{TransactionID: "tx-2", CandidateCount: 0})

	handler := handlers.NewStatsHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.StatsResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, 2, response.TotalAttempts)
	assert.Equal(t, 1, response.AppliedCount)
	assert.Equal(t, 1, response.NoMatchCount)
	assert.InDelta(t, 50.0, response.TotalAppliedAmount, 0.001)
}
