package partner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/pricelist"
	"github.com/shopfront/backend/internal/infrastructure/scheduler"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var (
	errImportInProgress = shared.NewDomainError("IMPORT_IN_PROGRESS", "Price list update is already running")
	errImportQueueFull  = shared.NewDomainError("SERVICE_UNAVAILABLE", "Too many price list updates, try again later")
	errJobNotFound      = shared.NewDomainError("NOT_FOUND", "Update job not found")
)

// JobQueue accepts update jobs and reports their state
type JobQueue interface {
	Submit(job *scheduler.Job) error
	Get(id uuid.UUID) (scheduler.Job, bool)
}

// UpdateService accepts partner update requests. One update runs per
// partner at a time; the lock is released when the job finishes.
type UpdateService struct {
	userRepo identity.UserRepository
	locker   cache.Locker
	jobs     JobQueue
	cfg      config.ImportConfig
	logger   *zap.Logger

	mu         sync.Mutex
	lockTokens map[uuid.UUID]string

	businessMetrics *telemetry.BusinessMetrics
}

// NewUpdateService creates a new update service
func NewUpdateService(userRepo identity.UserRepository, locker cache.Locker, cfg config.ImportConfig, logger *zap.Logger) *UpdateService {
	return &UpdateService{
		userRepo:   userRepo,
		locker:     locker,
		cfg:        cfg,
		logger:     logger,
		lockTokens: make(map[uuid.UUID]string),
	}
}

// SetJobQueue sets the scheduler jobs are submitted to.
// The scheduler reports back through JobFinished.
func (s *UpdateService) SetJobQueue(jobs JobQueue) {
	s.jobs = jobs
}

// SetBusinessMetrics sets the business metrics collector
func (s *UpdateService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// RequestUpdate validates the URL and queues an import for the partner
func (s *UpdateService) RequestUpdate(ctx context.Context, userID uuid.UUID, url string) (*UpdateJobResponse, error) {
	if url == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "All necessary arguments are not specified")
	}
	if _, err := requirePartner(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	if err := pricelist.ValidateURL(url); err != nil {
		return nil, shared.NewDomainError("INVALID_URL", "Invalid price list URL")
	}
	if s.jobs == nil {
		return nil, errors.New("update job queue is not configured")
	}

	lockKey := importLockKey(userID)
	token, ok, err := s.locker.Acquire(ctx, lockKey, s.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire import lock: %w", err)
	}
	if !ok {
		return nil, errImportInProgress
	}

	job := scheduler.NewJob(userID, url, s.cfg.RetryAttempts)
	s.mu.Lock()
	s.lockTokens[job.ID] = token
	s.mu.Unlock()

	if err := s.jobs.Submit(job); err != nil {
		s.forgetLock(ctx, job.ID, lockKey)
		if errors.Is(err, scheduler.ErrJobQueueFull) {
			return nil, errImportQueueFull
		}
		return nil, fmt.Errorf("submit update job: %w", err)
	}

	s.logger.Info("Price list update queued",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("url", url))

	resp := ToUpdateJobResponse(*job)
	return &resp, nil
}

// GetUpdateStatus returns a job of the partner. Jobs of other users are
// reported as not found.
func (s *UpdateService) GetUpdateStatus(ctx context.Context, userID, jobID uuid.UUID) (*UpdateJobResponse, error) {
	if _, err := requirePartner(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	if s.jobs == nil {
		return nil, errJobNotFound
	}
	job, ok := s.jobs.Get(jobID)
	if !ok || job.UserID != userID {
		return nil, errJobNotFound
	}
	resp := ToUpdateJobResponse(job)
	return &resp, nil
}

// JobFinished releases the partner's import lock
func (s *UpdateService) JobFinished(ctx context.Context, job scheduler.Job) {
	s.forgetLock(ctx, job.ID, importLockKey(job.UserID))

	if s.businessMetrics != nil {
		s.businessMetrics.RecordImport(ctx, string(job.Status), job.Result.Offers)
	}

	if job.Status == scheduler.JobStatusFailed {
		s.logger.Warn("Price list update failed",
			zap.String("job_id", job.ID.String()),
			zap.String("user_id", job.UserID.String()),
			zap.Int("retries", job.RetryCount),
			zap.String("error", job.Error))
		return
	}
	s.logger.Info("Price list update finished",
		zap.String("job_id", job.ID.String()),
		zap.String("status", string(job.Status)))
}

func (s *UpdateService) forgetLock(ctx context.Context, jobID uuid.UUID, lockKey string) {
	s.mu.Lock()
	token, ok := s.lockTokens[jobID]
	delete(s.lockTokens, jobID)
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
		s.logger.Warn("Failed to release import lock", zap.String("key", lockKey), zap.Error(err))
	}
}

func importLockKey(userID uuid.UUID) string {
	return "pricelist-import:" + userID.String()
}

var _ scheduler.JobListener = (*UpdateService)(nil)
