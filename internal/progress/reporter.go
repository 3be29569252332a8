package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Options configures the progress reporter.
type Options struct {
	// TotalObjects is the number of objects submitted.
	TotalObjects int

	// TotalSize is the planned size in bytes.
	TotalSize int64

	// Workers is the number of parallel workers (for display).
	Workers int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer
}

// Reporter prints one line per finished object with a running count, and a
// final status line. It is safe for concurrent use.
type Reporter struct {
	opts Options

	mu             sync.Mutex
	completed      atomic.Int32
	failed         atomic.Int32
	inProgress     atomic.Int32
	completedBytes atomic.Int64
	startTime      time.Time
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return &Reporter{opts: opts}
}

// Start prints the header and starts the clock.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	r.printf("[pull] Downloading %d objects (%s) with %d workers\n",
		r.opts.TotalObjects,
		humanize.Bytes(uint64(r.opts.TotalSize)),
		r.opts.Workers,
	)
}

// ObjectStarted marks an object as in progress.
func (r *Reporter) ObjectStarted() {
	r.inProgress.Add(1)
}

// ObjectCompleted records a successful fetch of path.
func (r *Reporter) ObjectCompleted(path string, size int64) {
	r.inProgress.Add(-1)
	r.completedBytes.Add(size)
	n := r.completed.Add(1) + r.failed.Load()
	r.printf("[pull] (%d/%d) %s\n", n, r.opts.TotalObjects, path)
}

// ObjectFailed records a failed fetch of locator.
func (r *Reporter) ObjectFailed(locator string, err error) {
	r.inProgress.Add(-1)
	n := r.failed.Add(1) + r.completed.Load()
	r.printf("[pull] (%d/%d) FAILED %s: %v\n", n, r.opts.TotalObjects, locator, err)
}

// Counts returns the number of completed and failed objects so far.
func (r *Reporter) Counts() (completed, failed int) {
	return int(r.completed.Load()), int(r.failed.Load())
}

// Stop prints the final status.
func (r *Reporter) Stop() {
	completed, failed := r.Counts()
	bytes := r.completedBytes.Load()
	duration := time.Since(r.startTime)

	var avg float64
	if s := duration.Seconds(); s > 0 {
		avg = float64(bytes) / s
	}

	r.printf("[pull] Done: %d succeeded, %d failed of %d | %s in %s | Average speed: %s/s\n",
		completed,
		failed,
		r.opts.TotalObjects,
		humanize.Bytes(uint64(bytes)),
		formatDuration(duration),
		humanize.Bytes(uint64(avg)),
	)
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.opts.Output, format, args...)
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
