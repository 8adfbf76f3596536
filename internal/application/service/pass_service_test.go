package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fireflyiii-tools/allegro-sync/internal/application/reconcile"
)

// fakeRunner returns a canned result or error, optionally blocking
// until released.
type fakeRunner struct {
	result  *reconcile.Result
	err     error
	block   chan struct{}
	gotOpts reconcile.Options
}

func (f *fakeRunner) Run(ctx context.Context, opts reconcile.Options) (*reconcile.Result, error) {
	f.gotOpts = opts
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

func staticFactory(runner PassRunner) RunnerFactory {
	return func(bool) (PassRunner, error) { return runner, nil }
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitForStatus(t *testing.T, svc *PassService, jobID string, status PassStatus) *PassJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := svc.GetPassJob(jobID)
		require.NoError(t, err)
		if job.Status == status {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, status)
	return nil
}

func TestPassService_StartPass_NoFactory(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	_, err := svc.StartPass(context.Background(), PassRequest{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no runner factory")
}

func TestPassService_StartPass_RunsToCompletion(t *testing.T) {
	runner := &fakeRunner{result: &reconcile.Result{TransactionsSeen: 3, AppliedCount: 2}}
	svc := NewPassService(staticFactory(runner), testLogger())

	jobID, err := svc.StartPass(context.Background(), PassRequest{FilterText: "allegro", DryRun: true})
	require.NoError(t, err)

	job := waitForStatus(t, svc, jobID, StatusCompleted)
	require.NotNil(t, job.Result)
	assert.Equal(t, 3, job.Result.TransactionsSeen)
	assert.Equal(t, 2, job.Result.AppliedCount)
	assert.NotNil(t, job.CompletedAt)

	assert.True(t, runner.gotOpts.DryRun)
	assert.Equal(t, "allegro", runner.gotOpts.FilterText)
}

func TestPassService_StartPass_RejectsConcurrentPass(t *testing.T) {
	runner := &fakeRunner{result: &reconcile.Result{}, block: make(chan struct{})}
	svc := NewPassService(staticFactory(runner), testLogger())

	jobID, err := svc.StartPass(context.Background(), PassRequest{})
	require.NoError(t, err)

	_, err = svc.StartPass(context.Background(), PassRequest{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	close(runner.block)
	waitForStatus(t, svc, jobID, StatusCompleted)

	// Once the first pass finished, a new one may start.
	_, err = svc.StartPass(context.Background(), PassRequest{})
	assert.NoError(t, err)
}

func TestPassService_StartPass_RunnerFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("session expired")}
	svc := NewPassService(staticFactory(runner), testLogger())

	jobID, err := svc.StartPass(context.Background(), PassRequest{})
	require.NoError(t, err)

	job := waitForStatus(t, svc, jobID, StatusFailed)
	require.NotNil(t, job.Error)
	assert.Contains(t, job.Error.Error(), "session expired")
}

func TestPassService_GetPassJob_NotFound(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	_, err := svc.GetPassJob("non-existent")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPassService_ListActivePassJobs_Empty(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	assert.Empty(t, svc.ListActivePassJobs())
	assert.Empty(t, svc.ListAllPassJobs())
}

func TestPassService_CancelPass_NotFound(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	err := svc.CancelPass("non-existent")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPassService_CancelPass_RunningJob(t *testing.T) {
	runner := &fakeRunner{result: &reconcile.Result{}, block: make(chan struct{})}
	svc := NewPassService(staticFactory(runner), testLogger())

	jobID, err := svc.StartPass(context.Background(), PassRequest{})
	require.NoError(t, err)

	waitForStatus(t, svc, jobID, StatusRunning)
	require.NoError(t, svc.CancelPass(jobID))

	job, err := svc.GetPassJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, job.Status)
	assert.NotNil(t, job.CompletedAt)

	// Cancelling twice is an error.
	err = svc.CancelPass(jobID)
	assert.Error(t, err)
}

func TestPassStatus_String(t *testing.T) {
	assert.Equal(t, "pending", string(StatusPending))
	assert.Equal(t, "running", string(StatusRunning))
	assert.Equal(t, "completed", string(StatusCompleted))
	assert.Equal(t, "failed", string(StatusFailed))
	assert.Equal(t, "cancelled", string(StatusCancelled))
}

func TestPassService_IsJobStale_NotFound(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	assert.False(t, svc.IsJobStale("non-existent", 30*time.Minute, 2*time.Hour))
}

func TestPassService_IsJobStale_CompletedJobNotStale(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	svc.jobsMutex.Lock()
	svc.jobs["completed-job"] = &PassJob{
		ID:        "completed-job",
		Status:    StatusCompleted,
		StartedAt: time.Now().Add(-3 * time.Hour),
		Progress:  PassProgress{LastUpdate: time.Now().Add(-2 * time.Hour)},
	}
	svc.jobsMutex.Unlock()

	assert.False(t, svc.IsJobStale("completed-job", 30*time.Minute, 2*time.Hour))
}

func TestPassService_IsJobStale_RunningJob_StaleByProgress(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	svc.jobsMutex.Lock()
	svc.jobs["stale-job"] = &PassJob{
		ID:        "stale-job",
		Status:    StatusRunning,
		StartedAt: time.Now().Add(-10 * time.Minute),
		Progress:  PassProgress{LastUpdate: time.Now().Add(-35 * time.Minute)},
	}
	svc.jobsMutex.Unlock()

	assert.True(t, svc.IsJobStale("stale-job", 30*time.Minute, 2*time.Hour))
}

func TestPassService_IsJobStale_RunningJob_StaleByDuration(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	svc.jobsMutex.Lock()
	svc.jobs["long-job"] = &PassJob{
		ID:        "long-job",
		Status:    StatusRunning,
		StartedAt: time.Now().Add(-3 * time.Hour),
		Progress:  PassProgress{LastUpdate: time.Now()},
	}
	svc.jobsMutex.Unlock()

	assert.True(t, svc.IsJobStale("long-job", 30*time.Minute, 2*time.Hour))
}

func TestPassService_MarkStaleJobsAsFailed_MarksStaleJobs(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.jobsMutex.Lock()
	svc.jobs["stale-job"] = &PassJob{
		ID:         "stale-job",
		Status:     StatusRunning,
		StartedAt:  time.Now().Add(-3 * time.Hour),
		Progress:   PassProgress{LastUpdate: time.Now().Add(-35 * time.Minute)},
		cancelFunc: cancel,
	}
	svc.jobsMutex.Unlock()

	marked := svc.MarkStaleJobsAsFailed(30*time.Minute, 2*time.Hour)

	assert.Equal(t, 1, marked)

	job, err := svc.GetPassJob("stale-job")
	assert.NoError(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.NotNil(t, job.Error)
	assert.Contains(t, job.Error.Error(), "stale")

	select {
	case <-ctx.Done():
		// Expected
	default:
		t.Error("context should have been cancelled")
	}
}

func TestPassService_MarkStaleJobsAsFailed_SkipsHealthyJobs(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	svc.jobsMutex.Lock()
	svc.jobs["healthy-job"] = &PassJob{
		ID:        "healthy-job",
		Status:    StatusRunning,
		StartedAt: time.Now().Add(-10 * time.Minute),
		Progress:  PassProgress{LastUpdate: time.Now().Add(-5 * time.Minute)},
	}
	svc.jobsMutex.Unlock()

	marked := svc.MarkStaleJobsAsFailed(30*time.Minute, 2*time.Hour)

	assert.Equal(t, 0, marked)

	job, err := svc.GetPassJob("healthy-job")
	assert.NoError(t, err)
	assert.Equal(t, StatusRunning, job.Status)
}

func TestPassService_CleanupOldJobs_RemovesOldFinishedJobs(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	oldTime := time.Now().Add(-25 * time.Hour)
	svc.jobsMutex.Lock()
	svc.jobs["old-job"] = &PassJob{
		ID:          "old-job",
		Status:      StatusCompleted,
		CompletedAt: &oldTime,
	}
	svc.jobsMutex.Unlock()

	removed := svc.CleanupOldJobs(24 * time.Hour)

	assert.Equal(t, 1, removed)

	_, err := svc.GetPassJob("old-job")
	assert.Error(t, err)
}

func TestPassService_CleanupOldJobs_KeepsRecentAndRunningJobs(t *testing.T) {
	svc := NewPassService(nil, testLogger())

	recentTime := time.Now().Add(-1 * time.Hour)
	svc.jobsMutex.Lock()
	svc.jobs["recent-job"] = &PassJob{
		ID:          "recent-job",
		Status:      StatusCompleted,
		CompletedAt: &recentTime,
	}
	svc.jobs["running-job"] = &PassJob{
		ID:        "running-job",
		Status:    StatusRunning,
		StartedAt: time.Now().Add(-25 * time.Hour),
	}
	svc.jobsMutex.Unlock()

	removed := svc.CleanupOldJobs(24 * time.Hour)

	assert.Equal(t, 0, removed)
}
