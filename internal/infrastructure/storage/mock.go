package storage

import "sort"

// MockRepository is an in-memory implementation of Repository for
// testing. It stores everything in slices and maps, making tests fast
// and isolated.
type MockRepository struct {
	attempts []Attempt
	runs     map[int64]*Run
	nextID   int64
	nextRun  int64

	// Hooks for test assertions
	SaveAttemptCalled bool
	LastSavedAttempt  *Attempt
	StartRunCalled    bool
	CompleteRunCalled bool

	// Error injection for testing error paths
	SaveAttemptErr error
	StartRunErr    error
	CompleteRunErr error
}

// Compile-time check that MockRepository implements Repository.
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:    make(map[int64]*Run),
		nextID:  1,
		nextRun: 1,
	}
}

// Close does nothing for the mock.
func (m *MockRepository) Close() error {
	return nil
}

// SaveAttempt appends the attempt to the in-memory trail.
func (m *MockRepository) SaveAttempt(attempt *Attempt) error {
	m.SaveAttemptCalled = true
	m.LastSavedAttempt = attempt
	if m.SaveAttemptErr != nil {
		return m.SaveAttemptErr
	}
	copied := *attempt
	copied.ID = m.nextID
	m.nextID++
	m.attempts = append(m.attempts, copied)
	attempt.ID = copied.ID
	return nil
}

// ListAttempts returns recent attempts, newest first.
func (m *MockRepository) ListAttempts(limit int) ([]Attempt, error) {
	result := append([]Attempt{}, m.attempts...)
	sort.SliceStable(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetAttemptsByTransaction returns attempts for one transaction,
// newest first.
func (m *MockRepository) GetAttemptsByTransaction(transactionID string) ([]Attempt, error) {
	var result []Attempt
	for i := len(m.attempts) - 1; i >= 0; i-- {
		if m.attempts[i].TransactionID == transactionID {
			result = append(result, m.attempts[i])
		}
	}
	return result, nil
}

// GetStats aggregates over the in-memory trail.
func (m *MockRepository) GetStats() (*Stats, error) {
	stats := &Stats{}
	for _, a := range m.attempts {
		stats.TotalAttempts++
		switch {
		case a.CandidateCount == 0:
			stats.NoMatchCount++
		case a.CandidateCount > 1:
			stats.AmbiguousCount++
		}
		if a.Applied {
			stats.AppliedCount++
			stats.TotalAppliedAmount += a.TransactionAmount
		}
		if a.ErrorMessage != "" {
			stats.ErrorCount++
		}
	}
	return stats, nil
}

// StartRun records a new pass.
func (m *MockRepository) StartRun(filterText string, exactMatch, dryRun bool) (int64, error) {
	m.StartRunCalled = true
	if m.StartRunErr != nil {
		return 0, m.StartRunErr
	}
	id := m.nextRun
	m.nextRun++
	m.runs[id] = &Run{
		ID:         id,
		FilterText: filterText,
		ExactMatch: exactMatch,
		DryRun:     dryRun,
		Status:     "running",
	}
	return id, nil
}

// CompleteRun marks a pass finished.
func (m *MockRepository) CompleteRun(runID int64, totals RunTotals) error {
	m.CompleteRunCalled = true
	if m.CompleteRunErr != nil {
		return m.CompleteRunErr
	}
	run, ok := m.runs[runID]
	if !ok {
		return nil
	}
	run.TransactionsSeen = totals.TransactionsSeen
	run.MatchedCount = totals.MatchedCount
	run.AppliedCount = totals.AppliedCount
	run.ErrorCount = totals.ErrorCount
	run.Status = "completed"
	return nil
}

// ListRuns returns recorded passes, newest first.
func (m *MockRepository) ListRuns(limit int) ([]Run, error) {
	var result []Run
	for _, run := range m.runs {
		result = append(result, *run)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetRun retrieves a pass by id.
func (m *MockRepository) GetRun(runID int64) (*Run, error) {
	run, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}
