package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mobinasri/terra-scripts/internal/plan"
	"github.com/mobinasri/terra-scripts/internal/progress"
	"github.com/mobinasri/terra-scripts/internal/storage"
)

// DefaultWorkers is the pool size used when Options.Workers is not set.
const DefaultWorkers = 4

// Options configures the fetcher.
type Options struct {
	// Workers is the number of parallel fetch workers.
	// Default: 4
	Workers int

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// Logger receives one error record per failed task.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Outcome is the result of one task: the object name on success, or Err.
type Outcome struct {
	Task   plan.Task
	Object string
	Err    error
}

// OK reports whether the task succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Result summarizes a fetch run. Outcomes are in completion order.
type Result struct {
	Submitted int
	Succeeded int
	Failed    int
	Bytes     int64
	Outcomes  []Outcome
	Duration  time.Duration
}

// Failures returns the failed outcomes.
func (r *Result) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Fetch runs every task on a pool of workers and waits for all of them.
// A failing task never stops the others; its error is logged with the
// locator and returned as a failed Outcome. Fetch has no early exit: a
// cancelled ctx makes the remaining backend calls fail, and they are
// reported like any other failure.
func Fetch(ctx context.Context, backend storage.Backend, tasks []plan.Task, opts Options) *Result {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	startTime := time.Now()
	result := &Result{
		Submitted: len(tasks),
		Outcomes:  make([]Outcome, 0, len(tasks)),
	}

	workCh := make(chan plan.Task)
	resultCh := make(chan Outcome)

	// Start workers
	for w := 0; w < opts.Workers; w++ {
		go func() {
			for task := range workCh {
				resultCh <- fetchTask(ctx, backend, task, opts)
			}
		}()
	}

	// Send work
	go func() {
		for _, task := range tasks {
			workCh <- task
		}
		close(workCh)
	}()

	// Collect results
	for i := 0; i < len(tasks); i++ {
		o := <-resultCh
		if o.OK() {
			result.Succeeded++
			result.Bytes += o.Task.Size
		} else {
			result.Failed++
		}
		result.Outcomes = append(result.Outcomes, o)
	}

	result.Duration = time.Since(startTime)
	return result
}

// fetchTask fetches a single task. A panic in the backend is turned into a
// failed outcome so the worker keeps running.
func fetchTask(ctx context.Context, backend storage.Backend, task plan.Task, opts Options) (o Outcome) {
	o.Task = task
	if opts.Progress != nil {
		opts.Progress.ObjectStarted()
	}

	defer func() {
		if r := recover(); r != nil {
			o.Object = ""
			o.Err = fmt.Errorf("fetch %s: panic: %v", task.Locator, r)
		}
		if o.Err != nil {
			opts.Logger.Error("fetch failed", "locator", task.Locator.String(), "dir", task.Dir, "error", o.Err)
			if opts.Progress != nil {
				opts.Progress.ObjectFailed(task.Locator.String(), o.Err)
			}
			return
		}
		if opts.Progress != nil {
			opts.Progress.ObjectCompleted(filepath.Join(task.Dir, o.Object), task.Size)
		}
	}()

	if err := os.MkdirAll(task.Dir, 0755); err != nil {
		o.Err = fmt.Errorf("create %s: %w", task.Dir, err)
		return o
	}

	name, err := backend.Fetch(ctx, task.Locator, task.Dir)
	if err != nil {
		o.Err = err
		return o
	}
	o.Object = name
	return o
}
