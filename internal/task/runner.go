package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks.
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// PeriodicJob is work the runner repeats on a fixed interval. Periodic jobs
// are not persisted; a missed tick simply runs at the next one.
type PeriodicJob struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store      TaskStore
	registry   *Registry
	queue      *TaskQueue
	jobs       []PeriodicJob
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)
	started    bool
	stopOnce   sync.Once
}

// NewTaskRunner creates a new TaskRunner. The registry is used to rebuild
// tasks recovered from the store.
func NewTaskRunner(store TaskStore, registry *Registry, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "task_runner"))

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      store,
		registry:   registry,
		queue:      NewTaskQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				slog.String("task_id", task.ID().String()),
				slog.String("task_type", task.Type()),
				slog.String("error", err.Error()))
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// AddPeriodicJob registers a job to run every job.Interval once the runner
// has started. It must be called before Start.
func (r *TaskRunner) AddPeriodicJob(job PeriodicJob) error {
	if r.started {
		return errors.New("cannot add periodic job after start")
	}
	if job.Interval <= 0 || job.Run == nil {
		return fmt.Errorf("invalid periodic job %q", job.Name)
	}
	r.jobs = append(r.jobs, job)
	return nil
}

// Submit persists a task and adds it to the queue
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		// The task stays pending in the store and is picked up on recovery.
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Start recovers unfinished tasks and starts the workers, the stuck task
// monitor and the periodic jobs.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}
	r.started = true

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.runPeriodic(job)
	}

	return nil
}

// Stop gracefully shuts down the task runner. In-flight tasks finish first.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.wg.Wait()
		r.queue.Close()
	})
}

// Recover loads unfinished tasks from the store and queues them again.
// Tasks left in processing state were interrupted and are reset to pending.
func (r *TaskRunner) Recover() error {
	ctx := r.ctx

	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		slog.Int("pending_count", len(pending)),
		slog.Int("processing_count", len(processing)))

	for _, rec := range processing {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, "reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				slog.String("task_id", rec.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		pending = append(pending, rec)
	}

	for _, rec := range pending {
		r.requeue(ctx, rec)
	}
	return nil
}

func (r *TaskRunner) requeue(ctx context.Context, rec Record) {
	log := r.logger.With(slog.String("task_id", rec.ID.String()), slog.String("task_type", rec.Type))

	task, err := r.registry.Rebuild(rec)
	if err != nil {
		log.Error("failed to rebuild task", slog.String("error", err.Error()))
		if updateErr := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark task as failed", slog.String("error", updateErr.Error()))
		}
		return
	}

	if err := r.queue.Enqueue(task); err != nil {
		log.Error("failed to requeue task", slog.String("error", err.Error()))
	}
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return

		case task, ok := <-r.queue.Channel():
			if !ok {
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(task Task, workerID int) {
	// Status updates use a detached context so that a task finishing during
	// shutdown is still recorded.
	ctx := context.WithoutCancel(r.ctx)
	log := r.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID),
	)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing", slog.String("error", err.Error()))
		return
	}

	log.Info("processing task")

	if err := task.Execute(ctx); err != nil {
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update task status to failed", slog.String("error", updateErr.Error()))
		}
		r.errHandler(task, err)
		return
	}

	log.Info("task completed successfully")
	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""); err != nil {
		log.Error("failed to update task status to completed", slog.String("error", err.Error()))
	}
}

// stuckTaskMonitor periodically resets tasks that have been in processing
// state for longer than StuckTaskAge and queues them again.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			stuck, err := r.store.GetProcessingTasks(r.ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", slog.String("error", err.Error()))
				continue
			}
			if len(stuck) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", slog.Int("count", len(stuck)))
			for _, rec := range stuck {
				if err := r.store.UpdateTaskStatus(r.ctx, rec.ID, TaskStatusPending,
					"reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task status",
						slog.String("task_id", rec.ID.String()),
						slog.String("error", err.Error()))
					continue
				}
				r.requeue(r.ctx, rec)
			}
		}
	}
}

func (r *TaskRunner) runPeriodic(job PeriodicJob) {
	defer r.wg.Done()

	log := r.logger.With(slog.String("job", job.Name))
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := job.Run(r.ctx); err != nil {
				log.Error("periodic job failed", slog.String("error", err.Error()))
				continue
			}
			log.Debug("periodic job finished", slog.Duration("elapsed", time.Since(start)))
		}
	}
}
