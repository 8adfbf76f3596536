package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAttemptRoundTrip(t *testing.T) {
	// Arrange
	s := newTestStorage(t)
	attempt := &Attempt{
		RunID:             1,
		TransactionID:     "tx-42",
		TransactionDate:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		TransactionAmount: 129.99,
		CandidateCount:    1,
		Applied:           true,
		AttemptedAt:       time.Now().UTC(),
		CandidateDetails:  []string{"Klocki Hamulcowe Przednie (40 PLN)", "Filtr Oleju (12.5 PLN)"},
	}

	// Act
	err := s.SaveAttempt(attempt)

	// Assert
	require.NoError(t, err)
	assert.NotZero(t, attempt.ID)

	attempts, err := s.ListAttempts(10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	got := attempts[0]
	assert.Equal(t, "tx-42", got.TransactionID)
	assert.Equal(t, 129.99, got.TransactionAmount)
	assert.Equal(t, 1, got.CandidateCount)
	assert.True(t, got.Applied)
	assert.Equal(t, attempt.CandidateDetails, got.CandidateDetails)
}

func TestListAttemptsNewestFirst(t *testing.T) {
	// Arrange
	s := newTestStorage(t)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.SaveAttempt(&Attempt{
			TransactionID: "tx-" + string(rune('a'+i)),
			AttemptedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	// Act
	attempts, err := s.ListAttempts(2)

	// Assert
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "tx-c", attempts[0].TransactionID)
	assert.Equal(t, "tx-b", attempts[1].TransactionID)
}

func TestGetAttemptsByTransaction(t *testing.T) {
	// Arrange
	s := newTestStorage(t)
	now := time.Now().UTC()
	require.NoError(t, s.SaveAttempt(&Attempt{TransactionID: "tx-1", AttemptedAt: now}))
	require.NoError(t, s.SaveAttempt(&Attempt{TransactionID: "tx-2", AttemptedAt: now}))
	require.NoError(t, s.SaveAttempt(&Attempt{TransactionID: "tx-1", AttemptedAt: now.Add(time.Minute)}))

	// Act
	attempts, err := s.GetAttemptsByTransaction("tx-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	for _, a := range attempts {
		assert.Equal(t, "tx-1", a.TransactionID)
	}
}

func TestGetStats(t *testing.T) {
	// Arrange
	s := newTestStorage(t)
	now := time.Now().UTC()
	require.NoError(t, s.SaveAttempt(&Attempt{
		TransactionID: "tx-1", CandidateCount: 1, Applied: true,
		TransactionAmount: 50.00, AttemptedAt: now,
	}))
	require.NoError(t, s.SaveAttempt(&Attempt{
		TransactionID: "tx-2", CandidateCount: 0, AttemptedAt: now,
	}))
	require.NoError(t, s.SaveAttempt(&Attempt{
		TransactionID: "tx-3", CandidateCount: 3, AttemptedAt: now,
	}))
	require.NoError(t, s.SaveAttempt(&Attempt{
		TransactionID: "tx-4", CandidateCount: 1,
		ErrorMessage: "ledger update failed", AttemptedAt: now,
	}))

	// Act
	stats, err := s.GetStats()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalAttempts)
	assert.Equal(t, 1, stats.AppliedCount)
	assert.Equal(t, 1, stats.NoMatchCount)
	assert.Equal(t, 1, stats.AmbiguousCount)
	assert.Equal(t, 1, stats.ErrorCount)
	assert.InDelta(t, 50.00, stats.TotalAppliedAmount, 0.001)
}

func TestRunLifecycle(t *testing.T) {
	// Arrange
	s := newTestStorage(t)

	// Act
	runID, err := s.StartRun("allegro", false, true)
	require.NoError(t, err)

	err = s.CompleteRun(runID, RunTotals{
		TransactionsSeen: 12,
		MatchedCount:     7,
		AppliedCount:     0,
		ErrorCount:       1,
	})
	require.NoError(t, err)

	// Assert
	run, err := s.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, "allegro", run.FilterText)
	assert.False(t, run.ExactMatch)
	assert.True(t, run.DryRun)
	assert.Equal(t, 12, run.TransactionsSeen)
	assert.Equal(t, 7, run.MatchedCount)
	assert.Equal(t, 0, run.AppliedCount)
	assert.Equal(t, 1, run.ErrorCount)
	assert.Equal(t, "completed", run.Status)
	assert.NotEmpty(t, run.CompletedAt)

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
}

func TestMigrationsIdempotent(t *testing.T) {
	// Arrange
	s := newTestStorage(t)

	// Act: rerunning migrations on an already-migrated database must be
	// a no-op.
	err := s.runMigrations()

	// Assert
	require.NoError(t, err)
}
