package downloader

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ligustah/picsum/internal/job"
)

// ErrNoWorkers is returned when the worker count is not positive.
var ErrNoWorkers = errors.New("downloader: worker count must be at least 1")

// Executor runs a single job. *Fetcher satisfies it.
type Executor interface {
	Execute(ctx context.Context, j job.Job) job.Result
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, j job.Job) job.Result

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, j job.Job) job.Result {
	return f(ctx, j)
}

// Options configures a run.
type Options struct {
	// Workers is the number of batches, and therefore the maximum number
	// of images downloaded at the same time.
	Workers int

	// Logger receives batch-level debug output.
	Logger zerolog.Logger
}

// BatchError reports a batch that stopped before running all of its jobs
// because the context was cancelled.
type BatchError struct {
	Batch   int
	Skipped int
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d stopped with %d jobs remaining: %v", e.Batch, e.Skipped, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// BatchResult is the outcome of one batch. Results holds one entry per job
// that was attempted, in index order. Err is a *BatchError if the batch
// stopped early; individual job failures live in Results.
type BatchResult struct {
	Index   int
	Results []job.Result
	Err     error
}

// Partition splits jobs into exactly workers contiguous batches. Every batch
// but the last holds len(jobs)/workers jobs; the last also takes the
// remainder. When workers exceeds len(jobs) the leading batches are empty.
//
// Each batch is an independent copy, so batches never share backing storage.
func Partition(jobs []job.Job, workers int) ([][]job.Job, error) {
	if workers <= 0 {
		return nil, ErrNoWorkers
	}

	size := len(jobs) / workers
	batches := make([][]job.Job, workers)
	for i := 0; i < workers; i++ {
		start := i * size
		end := start + size
		if i == workers-1 {
			end = len(jobs)
		}
		batches[i] = slices.Clone(jobs[start:end])
		if batches[i] == nil {
			batches[i] = []job.Job{}
		}
	}
	return batches, nil
}

// Run partitions jobs into opts.Workers batches, starts every batch at once
// and waits for all of them. Inside a batch, jobs run one after another in
// index order.
//
// A failed job does not stop its batch or any other. Cancelling ctx stops
// each batch before its next job; Run still waits for every batch to return.
// The returned slice is indexed by batch.
func Run(ctx context.Context, jobs []job.Job, exec Executor, opts Options) ([]BatchResult, error) {
	batches, err := Partition(jobs, opts.Workers)
	if err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(batches))
	var wg sync.WaitGroup

	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []job.Job) {
			defer wg.Done()
			results[i] = runBatch(ctx, i, batch, exec, opts.Logger)
		}(i, batch)
	}

	wg.Wait()
	return results, nil
}

// runBatch executes a batch sequentially. It owns batch exclusively.
func runBatch(ctx context.Context, idx int, batch []job.Job, exec Executor, logger zerolog.Logger) BatchResult {
	log := logger.With().Int("batch", idx).Logger()
	log.Debug().Int("jobs", len(batch)).Msg("batch started")

	res := BatchResult{
		Index:   idx,
		Results: make([]job.Result, 0, len(batch)),
	}

	for k, j := range batch {
		if err := ctx.Err(); err != nil {
			res.Err = &BatchError{Batch: idx, Skipped: len(batch) - k, Err: err}
			log.Debug().Int("skipped", len(batch)-k).Msg("batch cancelled")
			return res
		}
		res.Results = append(res.Results, executeSafely(ctx, j, exec))
	}

	log.Debug().Msg("batch finished")
	return res
}

// executeSafely turns a panic in exec into a failed result for that job.
func executeSafely(ctx context.Context, j job.Job, exec Executor) (res job.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = job.Result{Job: j, Err: fmt.Errorf("panic while processing %s: %v", j.Name, r)}
		}
	}()
	return exec.Execute(ctx, j)
}

// Summary aggregates the results of a run.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Bytes     int64

	// Failures lists every failed job in batch order.
	Failures []job.Result
}

// Total returns the number of jobs the run was given.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// Summarize counts successes, failures and skipped jobs across batches.
func Summarize(batches []BatchResult) Summary {
	var s Summary
	for _, b := range batches {
		for _, r := range b.Results {
			if r.OK() {
				s.Succeeded++
				s.Bytes += r.Bytes
				continue
			}
			s.Failed++
			s.Failures = append(s.Failures, r)
		}

		var be *BatchError
		if errors.As(b.Err, &be) {
			s.Skipped += be.Skipped
		}
	}
	return s
}
