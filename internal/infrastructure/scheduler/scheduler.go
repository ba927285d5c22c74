package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// JobStatus represents the status of a price-list import job
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusSuccess JobStatus = "success"
	JobStatusFailed  JobStatus = "failed"
)

// IsTerminal reports whether the job will not run again
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSuccess || s == JobStatusFailed
}

// Job is one partner update: fetch URL and load it into the catalog of the
// partner's shop
type Job struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	URL         string
	Status      JobStatus
	Error       string
	Result      catalog.ImportResult
	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a pending job
func NewJob(userID uuid.UUID, url string, maxRetries int) *Job {
	return &Job{
		ID:          uuid.New(),
		UserID:      userID,
		URL:         url,
		Status:      JobStatusPending,
		SubmittedAt: time.Now(),
		MaxRetries:  maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.NextRetryAt = nil
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete(result catalog.ImportResult) {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.Result = result
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry puts the job back to pending with exponential backoff
func (j *Job) ScheduleRetry(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	j.Status = JobStatusPending
	j.CompletedAt = nil
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	next := time.Now().Add(delay)
	j.NextRetryAt = &next
	return delay
}

// JobExecutor runs a job and returns what it imported
type JobExecutor interface {
	Execute(ctx context.Context, job Job) (catalog.ImportResult, error)
}

// JobListener is told once a job reaches a terminal status
type JobListener interface {
	JobFinished(ctx context.Context, job Job)
}

// Config holds scheduler configuration
type Config struct {
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	HistorySize   int
}

// ConfigFromImport maps the [import] config section
func ConfigFromImport(cfg config.ImportConfig) Config {
	return Config{
		Workers:       cfg.Workers,
		QueueSize:     cfg.QueueSize,
		JobTimeout:    cfg.JobTimeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		HistorySize:   cfg.HistorySize,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers <= 0 || c.QueueSize <= 0 || c.HistorySize <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 || c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Scheduler runs import jobs on a fixed worker pool and keeps a bounded
// history of finished jobs for status queries
type Scheduler struct {
	config   Config
	executor JobExecutor
	listener JobListener
	logger   *zap.Logger

	queue     chan uuid.UUID
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	jobs      map[uuid.UUID]*Job
	finished  []uuid.UUID
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg Config, executor JobExecutor, listener JobListener, logger *zap.Logger) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		config:   cfg,
		executor: executor,
		listener: listener,
		logger:   logger,
		jobs:     make(map[uuid.UUID]*Job),
	}, nil
}

// Start launches the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true
	s.queue = make(chan uuid.UUID, s.config.QueueSize)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i, s.queue)
	}

	s.logger.Info("Import scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs, fails the pending ones and waits for workers
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Import scheduler stop timed out")
		return ctx.Err()
	}

	for _, job := range s.abandonPending() {
		s.notify(ctx, job)
	}
	s.logger.Info("Import scheduler stopped gracefully")
	return nil
}

// Submit queues a job for execution
func (s *Scheduler) Submit(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	select {
	case s.queue <- job.ID:
	default:
		return ErrJobQueueFull
	}
	stored := *job
	s.jobs[job.ID] = &stored

	s.logger.Debug("Import job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.String("url", job.URL),
	)
	return nil
}

// Get returns a snapshot of a job
func (s *Scheduler) Get(id uuid.UUID) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Stats returns the number of jobs per status
func (s *Scheduler) Stats() map[JobStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := make(map[JobStatus]int, 4)
	for _, job := range s.jobs {
		stats[job.Status]++
	}
	return stats
}

func (s *Scheduler) worker(ctx context.Context, workerID int, queue <-chan uuid.UUID) {
	defer s.wg.Done()

	for id := range queue {
		if ctx.Err() != nil {
			return
		}
		s.processJob(ctx, id, workerID)
	}
}

func (s *Scheduler) processJob(ctx context.Context, id uuid.UUID, workerID int) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok || job.Status != JobStatusPending {
		s.mu.Unlock()
		return
	}
	job.Start()
	snapshot := *job
	s.mu.Unlock()

	s.logger.Info("Processing import job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", id.String()),
		zap.String("url", snapshot.URL),
		zap.Int("attempt", snapshot.RetryCount+1),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	jobCtx, span := telemetry.StartSpan(jobCtx, "pricelist.import",
		telemetry.AttrImportJobID.String(id.String()),
		telemetry.AttrUserID.String(snapshot.UserID.String()),
		telemetry.AttrImportAttempt.Int(snapshot.RetryCount+1),
	)
	var (
		result catalog.ImportResult
		err    error
	)
	telemetry.WithLabels(jobCtx, map[string]string{"job": "pricelist_import"}, func(ctx context.Context) {
		result, err = s.executor.Execute(ctx, snapshot)
	})
	telemetry.EndSpan(span, err)
	cancel()

	s.mu.Lock()
	if err == nil {
		job.Complete(result)
		s.markFinished(id)
		snapshot = *job
		s.mu.Unlock()

		s.logger.Info("Import job completed",
			zap.String("job_id", id.String()),
			zap.Int("categories", result.Categories),
			zap.Int("products", result.Products),
			zap.Int("offers", result.Offers),
		)
		s.notify(ctx, snapshot)
		return
	}

	job.Fail(err.Error())
	retry := !IsPermanent(err) && ctx.Err() == nil && job.ShouldRetry()
	if retry {
		delay := job.ScheduleRetry(s.config.RetryDelay)
		s.mu.Unlock()

		s.logger.Warn("Import job failed, scheduled for retry",
			zap.String("job_id", id.String()),
			zap.Int("retry_count", snapshot.RetryCount+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		time.AfterFunc(delay, func() { s.requeue(id) })
		return
	}
	s.markFinished(id)
	snapshot = *job
	s.mu.Unlock()

	s.logger.Error("Import job failed",
		zap.String("job_id", id.String()),
		zap.Int("attempts", snapshot.RetryCount+1),
		zap.Error(err),
	)
	s.notify(ctx, snapshot)
}

func (s *Scheduler) requeue(id uuid.UUID) {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	select {
	case s.queue <- id:
		s.mu.Unlock()
		return
	default:
	}
	job, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	job.Fail(ErrJobQueueFull.Error())
	s.markFinished(id)
	snapshot := *job
	s.mu.Unlock()

	s.logger.Warn("Failed to re-queue import job for retry", zap.String("job_id", id.String()))
	s.notify(context.Background(), snapshot)
}

// abandonPending fails jobs that will never run because the scheduler stopped
func (s *Scheduler) abandonPending() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	abandoned := make([]Job, 0)
	for id, job := range s.jobs {
		if job.Status.IsTerminal() {
			continue
		}
		job.Fail(ErrSchedulerNotRunning.Error())
		s.markFinished(id)
		abandoned = append(abandoned, *job)
	}
	return abandoned
}

// markFinished records a terminal job and evicts the oldest beyond the
// history size. Callers hold s.mu.
func (s *Scheduler) markFinished(id uuid.UUID) {
	s.finished = append(s.finished, id)
	for len(s.finished) > s.config.HistorySize {
		delete(s.jobs, s.finished[0])
		s.finished = s.finished[1:]
	}
}

func (s *Scheduler) notify(ctx context.Context, job Job) {
	if s.listener == nil {
		return
	}
	s.listener.JobFinished(context.WithoutCancel(ctx), job)
}
