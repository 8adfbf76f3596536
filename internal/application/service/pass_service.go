// Package service manages reconciliation passes as asynchronous jobs:
// one pass at a time, with status, progress, and cleanup of finished
// jobs.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fireflyiii-tools/allegro-sync/internal/application/reconcile"
)

// PassStatus represents the current state of a pass job.
type PassStatus string

const (
	StatusPending   PassStatus = "pending"
	StatusRunning   PassStatus = "running"
	StatusCompleted PassStatus = "completed"
	StatusFailed    PassStatus = "failed"
	StatusCancelled PassStatus = "cancelled"
)

// Job staleness thresholds
const (
	// DefaultJobStaleThreshold is how long a job can go without progress
	// updates before being considered stale.
	DefaultJobStaleThreshold = 30 * time.Minute

	// DefaultJobMaxDuration is the maximum time a job can run before
	// being forcefully marked as failed.
	DefaultJobMaxDuration = 2 * time.Hour
)

// PassRequest holds parameters for starting a reconciliation pass.
type PassRequest struct {
	DryRun     bool
	FilterText string
	ExactMatch bool
	Verbose    bool
}

// PassProgress holds coarse progress information for a pass.
type PassProgress struct {
	CurrentPhase string // "pending", "running", "completed", "failed", "cancelled"
	LastUpdate   time.Time
}

// PassJob represents a running or completed reconciliation pass.
type PassJob struct {
	ID          string
	Status      PassStatus
	Request     PassRequest
	StartedAt   time.Time
	CompletedAt *time.Time
	Progress    PassProgress
	Result      *reconcile.Result
	Error       error
	cancelFunc  context.CancelFunc
}

// PassRunner executes one reconciliation pass.
type PassRunner interface {
	Run(ctx context.Context, opts reconcile.Options) (*reconcile.Result, error)
}

// RunnerFactory builds the pass runner for one job. Verbose requests get
// a runner wired with debug logging.
type RunnerFactory func(verbose bool) (PassRunner, error)

// PassService manages reconciliation pass jobs.
type PassService struct {
	factory RunnerFactory
	logger  *slog.Logger

	jobs      map[string]*PassJob
	jobsMutex sync.RWMutex

	// Only one pass may run at a time: concurrent passes would race on
	// the same untagged ledger transactions.
	passLock sync.Mutex

	cleanupStop chan struct{}
	cleanupDone chan struct{}
}

// NewPassService creates a pass service.
func NewPassService(factory RunnerFactory, logger *slog.Logger) *PassService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PassService{
		factory: factory,
		logger:  logger,
		jobs:    make(map[string]*PassJob),
	}
}

// StartPass starts a new pass job asynchronously.
// Note: the passed context is NOT used as the parent for the background
// job. Background jobs use context.Background() to avoid being cancelled
// when the HTTP request completes. Use CancelPass() to cancel a running
// job.
func (s *PassService) StartPass(_ context.Context, req PassRequest) (string, error) {
	if s.factory == nil {
		return "", fmt.Errorf("no runner factory configured")
	}

	if !s.passLock.TryLock() {
		return "", fmt.Errorf("a reconciliation pass is already running")
	}

	jobID := uuid.NewString()
	jobCtx, cancel := context.WithCancel(context.Background())

	job := &PassJob{
		ID:         jobID,
		Status:     StatusPending,
		Request:    req,
		StartedAt:  time.Now(),
		cancelFunc: cancel,
		Progress:   PassProgress{CurrentPhase: "pending", LastUpdate: time.Now()},
	}

	s.jobsMutex.Lock()
	s.jobs[jobID] = job
	s.jobsMutex.Unlock()

	go s.runPassJob(jobCtx, job)

	s.logger.Info("pass job started",
		"job_id", jobID,
		"dry_run", req.DryRun,
		"filter", req.FilterText,
	)

	return jobID, nil
}

// GetPassJob retrieves a pass job by ID.
func (s *PassService) GetPassJob(jobID string) (*PassJob, error) {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	return job, nil
}

// ListActivePassJobs returns all running or pending jobs.
func (s *PassService) ListActivePassJobs() []*PassJob {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	var active []*PassJob
	for _, job := range s.jobs {
		if job.Status == StatusPending || job.Status == StatusRunning {
			active = append(active, job)
		}
	}
	return active
}

// ListAllPassJobs returns all jobs.
func (s *PassService) ListAllPassJobs() []*PassJob {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	jobs := make([]*PassJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// CancelPass cancels a running pass job.
func (s *PassService) CancelPass(jobID string) error {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if job.Status != StatusPending && job.Status != StatusRunning {
		return fmt.Errorf("job cannot be cancelled: status=%s", job.Status)
	}

	job.cancelFunc()
	job.Status = StatusCancelled
	now := time.Now()
	job.CompletedAt = &now
	job.Progress.CurrentPhase = "cancelled"
	job.Progress.LastUpdate = now

	s.logger.Info("pass job cancelled", "job_id", jobID)
	return nil
}

// runPassJob executes the pass in a background goroutine.
func (s *PassService) runPassJob(ctx context.Context, job *PassJob) {
	defer s.passLock.Unlock()

	s.updateJobStatus(job.ID, StatusRunning, PassProgress{
		CurrentPhase: "running",
		LastUpdate:   time.Now(),
	})

	runner, err := s.factory(job.Request.Verbose)
	if err != nil {
		s.failJob(job.ID, fmt.Errorf("failed to create pass runner: %w", err))
		return
	}

	result, err := runner.Run(ctx, reconcile.Options{
		DryRun:     job.Request.DryRun,
		FilterText: job.Request.FilterText,
		ExactMatch: job.Request.ExactMatch,
		Verbose:    job.Request.Verbose,
	})
	if err != nil {
		if ctx.Err() == context.Canceled {
			// Already marked as cancelled in CancelPass
			return
		}
		s.failJob(job.ID, err)
		return
	}

	s.completeJob(job.ID, result)
}

// updateJobStatus updates a job's status and progress.
func (s *PassService) updateJobStatus(jobID string, status PassStatus, progress PassProgress) {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	if job, exists := s.jobs[jobID]; exists {
		job.Status = status
		job.Progress = progress
	}
}

// completeJob marks a job as completed with results.
func (s *PassService) completeJob(jobID string, result *reconcile.Result) {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	if job, exists := s.jobs[jobID]; exists {
		now := time.Now()
		job.Status = StatusCompleted
		job.CompletedAt = &now
		job.Result = result
		job.Progress.CurrentPhase = "completed"
		job.Progress.LastUpdate = now
		s.logger.Info("pass job completed",
			"job_id", jobID,
			"seen", result.TransactionsSeen,
			"applied", result.AppliedCount,
			"errors", result.ErrorCount,
		)
	}
}

// failJob marks a job as failed with an error.
func (s *PassService) failJob(jobID string, err error) {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	if job, exists := s.jobs[jobID]; exists {
		now := time.Now()
		job.Status = StatusFailed
		job.CompletedAt = &now
		job.Error = err
		job.Progress = PassProgress{
			CurrentPhase: "failed",
			LastUpdate:   now,
		}
		s.logger.Error("pass job failed", "job_id", jobID, "error", err)
	}
}

// CleanupOldJobs removes finished jobs older than maxAge.
func (s *PassService) CleanupOldJobs(maxAge time.Duration) int {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, job := range s.jobs {
		if job.Status == StatusCompleted || job.Status == StatusFailed || job.Status == StatusCancelled {
			if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
				delete(s.jobs, id)
				removed++
			}
		}
	}

	if removed > 0 {
		s.logger.Debug("cleaned up old pass jobs", "removed", removed)
	}

	return removed
}

// MarkStaleJobsAsFailed finds jobs that appear to be stuck and marks
// them as failed. A job is stale if it has been running longer than
// maxDuration, or its Progress.LastUpdate is older than staleThreshold.
// This handles goroutines that panicked without updating job state and
// jobs that are genuinely stuck.
func (s *PassService) MarkStaleJobsAsFailed(staleThreshold, maxDuration time.Duration) int {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	now := time.Now()
	marked := 0

	for id, job := range s.jobs {
		if job.Status != StatusRunning && job.Status != StatusPending {
			continue
		}

		isStale := false
		reason := ""

		if now.Sub(job.StartedAt) > maxDuration {
			isStale = true
			reason = fmt.Sprintf("exceeded max duration of %v (started %v ago)", maxDuration, now.Sub(job.StartedAt).Round(time.Second))
		}

		if !isStale && now.Sub(job.Progress.LastUpdate) > staleThreshold {
			isStale = true
			reason = fmt.Sprintf("no progress update for %v (threshold: %v)", now.Sub(job.Progress.LastUpdate).Round(time.Second), staleThreshold)
		}

		if isStale {
			if job.cancelFunc != nil {
				job.cancelFunc()
			}

			job.Status = StatusFailed
			job.CompletedAt = &now
			job.Error = fmt.Errorf("job marked as stale: %s", reason)
			job.Progress.CurrentPhase = "failed"
			job.Progress.LastUpdate = now

			s.releasePassLockUnsafe()

			s.logger.Warn("marked stale job as failed",
				"job_id", id,
				"reason", reason,
				"started_at", job.StartedAt,
			)

			marked++
		}
	}

	return marked
}

// releasePassLockUnsafe releases the pass lock regardless of which
// goroutine holds it. MUST only be called while holding jobsMutex.
func (s *PassService) releasePassLockUnsafe() {
	if s.passLock.TryLock() {
		s.passLock.Unlock()
	} else {
		s.passLock.Unlock()
	}
}

// IsJobStale checks if a specific job is considered stale.
func (s *PassService) IsJobStale(jobID string, staleThreshold, maxDuration time.Duration) bool {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return false
	}

	if job.Status != StatusRunning && job.Status != StatusPending {
		return false
	}

	now := time.Now()
	return now.Sub(job.StartedAt) > maxDuration || now.Sub(job.Progress.LastUpdate) > staleThreshold
}

// StartBackgroundCleanup starts a background goroutine that periodically
// marks stale jobs as failed and removes old finished jobs. The cleanup
// runs every checkInterval; call StopBackgroundCleanup to stop it.
func (s *PassService) StartBackgroundCleanup(checkInterval time.Duration) {
	s.cleanupStop = make(chan struct{})
	s.cleanupDone = make(chan struct{})

	go func() {
		defer close(s.cleanupDone)

		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		s.logger.Info("background job cleanup started",
			"check_interval", checkInterval,
			"stale_threshold", DefaultJobStaleThreshold,
			"max_duration", DefaultJobMaxDuration,
		)

		for {
			select {
			case <-s.cleanupStop:
				s.logger.Info("background job cleanup stopped")
				return
			case <-ticker.C:
				staleMarked := s.MarkStaleJobsAsFailed(DefaultJobStaleThreshold, DefaultJobMaxDuration)
				if staleMarked > 0 {
					s.logger.Info("marked stale jobs as failed", "count", staleMarked)
				}

				cleaned := s.CleanupOldJobs(24 * time.Hour)
				if cleaned > 0 {
					s.logger.Debug("cleaned up old jobs", "count", cleaned)
				}
			}
		}
	}()
}

// StopBackgroundCleanup stops the background cleanup goroutine. Blocks
// until the goroutine has fully stopped.
func (s *PassService) StopBackgroundCleanup() {
	if s.cleanupStop == nil {
		return
	}

	close(s.cleanupStop)
	<-s.cleanupDone
}
