// Package downloader runs a list of image jobs across a fixed number of
// concurrent workers.
//
// # Usage
//
//	fetcher := downloader.NewFetcher(client, store, reporter, logger)
//	batches, err := downloader.Run(ctx, jobs, fetcher, downloader.Options{
//	    Workers: 4,
//	    Logger:  logger,
//	})
//	summary := downloader.Summarize(batches)
//
// # Batches
//
// [Partition] splits N jobs into T contiguous batches of N/T jobs, with the
// last batch taking the remainder (17 jobs over 4 workers gives 4, 4, 4, 5).
// [Run] starts one goroutine per batch, all at once, and waits for every
// one of them. A batch runs its jobs sequentially in index order, so at most
// T requests are in flight.
//
// # Failures
//
// [Fetcher.Execute] returns a failed [job.Result] wrapping a [FetchError]
// or [WriteError]; the batch moves on to its next job. Nothing a single job
// does can stop its siblings.
//
// # Cancellation
//
// When the context is cancelled, the in-flight request is aborted, its
// partial output is discarded by the store, and each batch stops before its
// next job, recording a [BatchError] with the number of skipped jobs.
package downloader
