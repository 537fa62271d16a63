package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// TotalJobs is the number of images in the run.
	TotalJobs int

	// Workers is the number of concurrent batches.
	Workers int

	// Source is the endpoint URL being fetched (for display).
	Source string

	// Target is where images are saved (for display).
	Target string

	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer
}

// Reporter prints one line per finished image and a final summary.
// It is safe for concurrent use.
type Reporter struct {
	opts Options

	mu        sync.Mutex
	completed atomic.Int32
	failed    atomic.Int32
	bytes     atomic.Int64
	startTime time.Time
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Reporter{opts: opts}
}

// Start prints the run header and starts the clock.
func (r *Reporter) Start() {
	r.startTime = time.Now()

	r.printf("[picsum] Downloading %d images from %s\n", r.opts.TotalJobs, r.opts.Source)
	r.printf("[picsum] Saving to %s | Workers: %d\n", r.opts.Target, r.opts.Workers)
}

// JobCompleted records a saved image.
func (r *Reporter) JobCompleted(location string, size int64) {
	r.completed.Add(1)
	r.bytes.Add(size)
	r.printf("[picsum] Downloaded image to %s\n", location)
}

// JobFailed records an image that could not be fetched or saved.
func (r *Reporter) JobFailed(name string, err error) {
	r.failed.Add(1)
	r.printf("[picsum] Failed %s: %v\n", name, err)
}

// Counts returns the number of completed and failed images so far.
func (r *Reporter) Counts() (completed, failed int) {
	return int(r.completed.Load()), int(r.failed.Load())
}

// Finish prints the final summary. Images neither completed nor failed are
// reported as skipped.
func (r *Reporter) Finish() {
	completed, failed := r.Counts()
	skipped := r.opts.TotalJobs - completed - failed
	if skipped < 0 {
		skipped = 0
	}

	var duration time.Duration
	if !r.startTime.IsZero() {
		duration = time.Since(r.startTime)
	}

	line := fmt.Sprintf("[picsum] Done: %d succeeded, %d failed", completed, failed)
	if skipped > 0 {
		line += fmt.Sprintf(", %d skipped", skipped)
	}
	r.printf("%s | %s in %s\n", line, formatBytes(r.bytes.Load()), formatDuration(duration))
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.opts.Output, format, args...)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
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
