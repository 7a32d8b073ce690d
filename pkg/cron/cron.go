package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/handybase/handy/pkg/logger"
)

// RunFunc is one scheduled unit of work. A nil return marks the run
// successful and advances the job's last-run timestamp; any error leaves the
// timestamp untouched so the job is retried on the next tick.
type RunFunc func(ctx context.Context) error

// Task is a recurring job to register: its name, run frequency and run
// function.
type Task struct {
	Name string
	Freq time.Duration
	Run  RunFunc
}

// ScheduleRecord is the persisted view of one job's schedule.
type ScheduleRecord struct {
	Freq    int64 `json:"freq"`    // seconds between runs
	LastRun int64 `json:"lastrun"` // unix milliseconds of the last successful run
}

// ScheduleStore persists the full set of schedule records as one shared
// document. Updates are read-modify-write; the store does not arbitrate
// concurrent writers.
type ScheduleStore interface {
	CronRecords(ctx context.Context) (map[string]ScheduleRecord, error)
	SetCronRecords(ctx context.Context, records map[string]ScheduleRecord) error
}

// Runner owns the in-memory registry of run functions and executes due jobs
// on every invocation. The registry is rebuilt at each process start via
// AddTasks; the schedule records outlive the process.
type Runner struct {
	store  ScheduleStore
	mu     sync.RWMutex
	tasks  map[string]RunFunc
	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.logger = log
		}
	}
}

// NewRunner creates a Runner backed by the given schedule store.
func NewRunner(store ScheduleStore, opts ...RunnerOption) (*Runner, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	r := &Runner{
		store:  store,
		tasks:  make(map[string]RunFunc),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// AddTasks registers recurring jobs. Tasks are processed strictly in list
// order and each schedule record is fully persisted before the next task is
// touched, so an interruption mid-registration leaves a consistent prefix.
// Re-registering an existing name updates its frequency but preserves its
// last-run timestamp; re-registration never resets a job's due time.
func (r *Runner) AddTasks(ctx context.Context, tasks ...Task) error {
	if len(tasks) == 0 {
		return ErrNoTasks
	}
	for _, task := range tasks {
		if task.Name == "" || task.Run == nil || task.Freq <= 0 {
			return ErrInvalidTask
		}
	}

	for _, task := range tasks {
		records, err := r.store.CronRecords(ctx)
		if err != nil {
			return fmt.Errorf("add task %q: %w", task.Name, err)
		}

		rec := ScheduleRecord{Freq: int64(task.Freq / time.Second)}
		if existing, ok := records[task.Name]; ok {
			rec.LastRun = existing.LastRun
		}
		records[task.Name] = rec

		if err := r.store.SetCronRecords(ctx, records); err != nil {
			return fmt.Errorf("add task %q: %w", task.Name, err)
		}

		r.mu.Lock()
		r.tasks[task.Name] = task.Run
		r.mu.Unlock()

		r.logger.Info("registered cron task",
			logger.TaskName(task.Name),
			slog.Duration("freq", task.Freq))
	}
	return nil
}

// RemoveTasks removes jobs from both the registry and the persisted
// schedule, keeping the two views in step.
func (r *Runner) RemoveTasks(ctx context.Context, names ...string) error {
	records, err := r.store.CronRecords(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		delete(records, name)
	}
	if err := r.store.SetCronRecords(ctx, records); err != nil {
		return err
	}

	r.mu.Lock()
	for _, name := range names {
		delete(r.tasks, name)
	}
	r.mu.Unlock()
	return nil
}

// Due returns the names of jobs whose elapsed time since their last
// successful run exceeds their frequency at the given instant.
func (r *Runner) Due(ctx context.Context, now time.Time) ([]string, error) {
	records, err := r.store.CronRecords(ctx)
	if err != nil {
		return nil, err
	}

	var due []string
	nowMs := now.UnixMilli()
	for name, rec := range records {
		if nowMs-rec.LastRun > rec.Freq*1000 {
			due = append(due, name)
		}
	}
	return due, nil
}

// Run executes every due job that has a registered run function, each in its
// own goroutine, and returns without waiting for them. Completion is observed
// asynchronously: a successful job writes lastrun = now back to the schedule,
// a failed or unregistered job leaves its record untouched and is picked up
// again on the next invocation. Distinct jobs run concurrently with no
// ordering between them.
func (r *Runner) Run(ctx context.Context, now time.Time) error {
	due, err := r.Due(ctx, now)
	if err != nil {
		return err
	}

	for _, name := range due {
		r.mu.RLock()
		run, ok := r.tasks[name]
		r.mu.RUnlock()
		if !ok {
			r.logger.Warn("due cron task has no registered run function",
				logger.TaskName(name))
			continue
		}

		go func(name string, run RunFunc) {
			if err := run(ctx); err != nil {
				r.logger.Error("cron task failed",
					logger.TaskName(name),
					logger.Error(err))
				return
			}
			r.markSuccess(ctx, name, now)
		}(name, run)
	}
	return nil
}

// markSuccess advances a job's last-run timestamp. Read-modify-write on the
// shared document: a concurrent writer can lose an update.
func (r *Runner) markSuccess(ctx context.Context, name string, now time.Time) {
	records, err := r.store.CronRecords(ctx)
	if err != nil {
		r.logger.Error("failed to read cron schedule after task run",
			logger.TaskName(name),
			logger.Error(err))
		return
	}

	rec, ok := records[name]
	if !ok {
		return
	}
	rec.LastRun = now.UnixMilli()
	records[name] = rec

	if err := r.store.SetCronRecords(ctx, records); err != nil {
		r.logger.Error("failed to persist cron schedule after task run",
			logger.TaskName(name),
			logger.Error(err))
		return
	}

	r.logger.Info("cron task completed", logger.TaskName(name))
}

// Registered returns the names currently present in the in-memory registry.
func (r *Runner) Registered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	return names
}
