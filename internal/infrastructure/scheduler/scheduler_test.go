package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		Workers:       2,
		QueueSize:     10,
		JobTimeout:    time.Second,
		RetryAttempts: 2,
		RetryDelay:    10 * time.Millisecond,
		HistorySize:   10,
	}
}

type stubExecutor struct {
	mu      sync.Mutex
	calls   int
	results []error
	result  catalog.ImportResult
}

func (e *stubExecutor) Execute(_ context.Context, _ Job) (catalog.ImportResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	if e.calls < len(e.results) {
		err = e.results[e.calls]
	}
	e.calls++
	return e.result, err
}

func (e *stubExecutor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type recordingListener struct {
	mu       sync.Mutex
	finished []Job
}

func (l *recordingListener) JobFinished(_ context.Context, job Job) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finished = append(l.finished, job)
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.finished)
}

func startScheduler(t *testing.T, cfg Config, exec JobExecutor, listener JobListener) *Scheduler {
	t.Helper()
	s, err := NewScheduler(cfg, exec, listener, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob(uuid.New(), "https://example.com/shop1.yaml", 2)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	assert.NotNil(t, job.StartedAt)

	job.Fail("boom")
	assert.True(t, job.ShouldRetry())

	first := job.ScheduleRetry(time.Second)
	assert.Equal(t, time.Second, first)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Fail("boom")
	second := job.ScheduleRetry(time.Second)
	assert.Equal(t, 2*time.Second, second)

	job.Fail("boom")
	assert.False(t, job.ShouldRetry())
	assert.True(t, job.Status.IsTerminal())
}

func TestJob_RetryDelayCapped(t *testing.T) {
	job := NewJob(uuid.New(), "u", 20)
	job.RetryCount = 10
	assert.Equal(t, 30*time.Minute, job.ScheduleRetry(time.Minute))
}

func TestConfig_Validate(t *testing.T) {
	cfg := testConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Workers = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = cfg
	bad.JobTimeout = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	_, err := NewScheduler(bad, &stubExecutor{}, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigFromImport(t *testing.T) {
	cfg := ConfigFromImport(config.ImportConfig{
		Workers:       3,
		QueueSize:     50,
		JobTimeout:    time.Minute,
		RetryAttempts: 1,
		RetryDelay:    time.Second,
		HistorySize:   20,
	})
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 50, cfg.QueueSize)
	assert.Equal(t, 20, cfg.HistorySize)
}

func TestScheduler_SubmitNotRunning(t *testing.T) {
	s, err := NewScheduler(testConfig(), &stubExecutor{}, nil, zap.NewNop())
	require.NoError(t, err)

	err = s.Submit(NewJob(uuid.New(), "u", 0))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_RunsJobToSuccess(t *testing.T) {
	exec := &stubExecutor{result: catalog.ImportResult{Categories: 2, Products: 3, Offers: 3, Parameters: 6}}
	listener := &recordingListener{}
	s := startScheduler(t, testConfig(), exec, listener)

	job := NewJob(uuid.New(), "https://example.com/price.yaml", 2)
	require.NoError(t, s.Submit(job))

	require.Eventually(t, func() bool { return listener.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	got, ok := s.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, JobStatusSuccess, got.Status)
	assert.Equal(t, 3, got.Result.Offers)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, 1, s.Stats()[JobStatusSuccess])
}

func TestScheduler_RetriesTransientFailures(t *testing.T) {
	exec := &stubExecutor{results: []error{errors.New("connection reset"), nil}}
	listener := &recordingListener{}
	s := startScheduler(t, testConfig(), exec, listener)

	job := NewJob(uuid.New(), "u", 2)
	require.NoError(t, s.Submit(job))

	require.Eventually(t, func() bool { return listener.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	got, _ := s.Get(job.ID)
	assert.Equal(t, JobStatusSuccess, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, 2, exec.callCount())
}

func TestScheduler_PermanentFailureIsNotRetried(t *testing.T) {
	exec := &stubExecutor{results: []error{Permanent(errors.New("invalid yaml"))}}
	listener := &recordingListener{}
	s := startScheduler(t, testConfig(), exec, listener)

	job := NewJob(uuid.New(), "u", 2)
	require.NoError(t, s.Submit(job))

	require.Eventually(t, func() bool { return listener.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	got, _ := s.Get(job.ID)
	assert.Equal(t, JobStatusFailed, got.Status)
	assert.Equal(t, "invalid yaml", got.Error)
	assert.Equal(t, 1, exec.callCount())
}

func TestScheduler_GivesUpAfterMaxRetries(t *testing.T) {
	fail := errors.New("503 Service Unavailable")
	exec := &stubExecutor{results: []error{fail, fail, fail}}
	listener := &recordingListener{}
	s := startScheduler(t, testConfig(), exec, listener)

	job := NewJob(uuid.New(), "u", 2)
	require.NoError(t, s.Submit(job))

	require.Eventually(t, func() bool { return listener.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	got, _ := s.Get(job.ID)
	assert.Equal(t, JobStatusFailed, got.Status)
	assert.Equal(t, 3, exec.callCount())
}

func TestScheduler_HistoryIsBounded(t *testing.T) {
	cfg := testConfig()
	cfg.HistorySize = 2
	listener := &recordingListener{}
	s := startScheduler(t, cfg, &stubExecutor{}, listener)

	ids := make([]uuid.UUID, 0, 4)
	for i := 0; i < 4; i++ {
		job := NewJob(uuid.New(), "u", 0)
		ids = append(ids, job.ID)
		require.NoError(t, s.Submit(job))
		require.Eventually(t, func() bool { return listener.count() == i+1 }, 2*time.Second, 5*time.Millisecond)
	}

	_, ok := s.Get(ids[0])
	assert.False(t, ok)
	_, ok = s.Get(ids[3])
	assert.True(t, ok)
}

func TestScheduler_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 1
	cfg.QueueSize = 1

	block := make(chan struct{})
	exec := &blockingExecutor{release: block}
	s := startScheduler(t, cfg, exec, nil)
	defer close(block)

	require.NoError(t, s.Submit(NewJob(uuid.New(), "u", 0)))
	require.Eventually(t, func() bool { return exec.started.Load() }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Submit(NewJob(uuid.New(), "u", 0)))
	assert.ErrorIs(t, s.Submit(NewJob(uuid.New(), "u", 0)), ErrJobQueueFull)
}

type blockingExecutor struct {
	started atomic.Bool
	release chan struct{}
}

func (e *blockingExecutor) Execute(ctx context.Context, _ Job) (catalog.ImportResult, error) {
	e.started.Store(true)
	select {
	case <-e.release:
	case <-ctx.Done():
	}
	return catalog.ImportResult{}, nil
}

func TestScheduler_StopFailsPendingJobs(t *testing.T) {
	cfg := testConfig()
	cfg.RetryDelay = time.Hour
	exec := &stubExecutor{results: []error{errors.New("timeout")}}
	listener := &recordingListener{}

	s, err := NewScheduler(cfg, exec, listener, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	job := NewJob(uuid.New(), "u", 2)
	require.NoError(t, s.Submit(job))
	require.Eventually(t, func() bool {
		got, _ := s.Get(job.ID)
		return got.Status == JobStatusPending && got.RetryCount == 1
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	got, _ := s.Get(job.ID)
	assert.Equal(t, JobStatusFailed, got.Status)
	assert.Equal(t, 1, listener.count())
}

// ctxExecutor blocks until released and fails when its context was canceled
type ctxExecutor struct {
	started atomic.Bool
	release chan struct{}
}

func (e *ctxExecutor) Execute(ctx context.Context, _ Job) (catalog.ImportResult, error) {
	e.started.Store(true)
	<-e.release
	return catalog.ImportResult{Offers: 1}, ctx.Err()
}

func TestScheduler_DetachedFromStartContext(t *testing.T) {
	cfg := testConfig()
	cfg.RetryAttempts = 0
	exec := &ctxExecutor{release: make(chan struct{})}
	listener := &recordingListener{}

	s, err := NewScheduler(cfg, exec, listener, zap.NewNop())
	require.NoError(t, err)
	parent, cancelParent := context.WithCancel(context.Background())
	require.NoError(t, s.Start(context.WithoutCancel(parent)))

	job := NewJob(uuid.New(), "u", 0)
	require.NoError(t, s.Submit(job))
	require.Eventually(t, exec.started.Load, time.Second, 5*time.Millisecond)

	cancelParent()
	close(exec.release)
	require.Eventually(t, func() bool { return listener.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	got, _ := s.Get(job.ID)
	assert.Equal(t, JobStatusSuccess, got.Status)
	require.NoError(t, s.Submit(NewJob(uuid.New(), "u", 0)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.ErrorIs(t, s.Submit(NewJob(uuid.New(), "u", 0)), ErrSchedulerNotRunning)
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, Permanent(nil))
	err := Permanent(errors.New("bad"))
	assert.True(t, IsPermanent(err))
	assert.False(t, IsPermanent(errors.New("bad")))
	assert.Equal(t, "bad", err.Error())
}

func TestCronTrigger_RunsTasks(t *testing.T) {
	var runs atomic.Int32
	trigger := NewCronTrigger(zap.NewNop(),
		Task{Name: "purge", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
			runs.Add(1)
			return nil
		}},
		Task{Name: "broken", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
			panic("boom")
		}},
		Task{Name: "disabled", Run: func(context.Context) error { return nil }},
	)

	require.NoError(t, trigger.Start(context.Background()))
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(ctx))
	require.NoError(t, trigger.Stop(ctx))
}
