package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a maintenance job run on a fixed interval
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// CronTrigger runs maintenance tasks, such as purging expired verification
// tokens, on their own tickers
type CronTrigger struct {
	tasks  []Task
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(logger *zap.Logger, tasks ...Task) *CronTrigger {
	return &CronTrigger{
		tasks:  tasks,
		logger: logger,
	}
}

// Start starts one loop per task
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	for _, task := range c.tasks {
		if task.Interval <= 0 {
			c.logger.Warn("Skipping task without interval", zap.String("task", task.Name))
			continue
		}
		c.wg.Add(1)
		go c.runLoop(ctx, task)
	}

	c.logger.Info("Cron trigger started", zap.Int("tasks", len(c.tasks)))
	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context, task Task) {
	defer c.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runTask(ctx, task)
		}
	}
}

func (c *CronTrigger) runTask(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Task panicked", zap.String("task", task.Name), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := task.Run(ctx); err != nil {
		c.logger.Error("Task failed", zap.String("task", task.Name), zap.Error(err))
		return
	}
	c.logger.Debug("Task finished",
		zap.String("task", task.Name),
		zap.Duration("duration", time.Since(start)),
	)
}
