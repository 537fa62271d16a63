package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/ligustah/picsum/internal/config"
	"github.com/ligustah/picsum/internal/downloader"
	picsumhttp "github.com/ligustah/picsum/internal/http"
	"github.com/ligustah/picsum/internal/job"
	"github.com/ligustah/picsum/internal/progress"
	"github.com/ligustah/picsum/internal/storage"
)

// download runs a validated configuration to completion and maps the
// outcome to an exit code.
func (c *cli) download(ctx context.Context, cfg config.Config) int {
	runID := uuid.NewString()
	logger := newLogger(c.stderr, cfg.Verbose).With().Str("run_id", runID).Logger()

	dim := cfg.Dimension()
	source := dim.URL(cfg.BaseURL)

	store, target, closeStore, err := c.openStore(ctx, cfg, dim, runID, logger)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}()

	jobs := job.Build(cfg.Count, dim, cfg.BaseURL)

	client := picsumhttp.NewClient(picsumhttp.Options{
		MaxIdleConnsPerHost: int(cfg.Threads),
		Timeout:             cfg.Timeout,
		UserAgent:           picsumhttp.DefaultOptions().UserAgent,
	})

	reporter := progress.NewReporter(progress.Options{
		TotalJobs: len(jobs),
		Workers:   int(cfg.Threads),
		Source:    source,
		Target:    target,
		Output:    c.stdout,
	})
	fetcher := downloader.NewFetcher(client, store, reporter, logger)

	logger.Debug().
		Int("count", len(jobs)).
		Int("threads", int(cfg.Threads)).
		Str("dimension", dim.String()).
		Str("target", target).
		Msg("starting run")

	reporter.Start()
	batches, err := downloader.Run(ctx, jobs, fetcher, downloader.Options{
		Workers: int(cfg.Threads),
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	reporter.Finish()

	summary := downloader.Summarize(batches)
	logger.Debug().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Int64("bytes", summary.Bytes).
		Msg("run finished")

	// Failed jobs are reported in the summary and do not fail the run.
	if ctx.Err() != nil {
		return ExitInterrupted
	}
	return ExitSuccess
}

// openStore picks the bucket store when a bucket URL is configured and the
// local directory store otherwise. target describes the destination for
// display.
func (c *cli) openStore(ctx context.Context, cfg config.Config, dim job.Dimension, runID string, logger zerolog.Logger) (store downloader.Store, target string, closeFn func() error, err error) {
	if cfg.Bucket != "" {
		bkt, err := blob.OpenBucket(ctx, cfg.Bucket)
		if err != nil {
			return nil, "", nil, &config.Error{Field: "bucket", Err: err}
		}
		bs := storage.NewBucketStore(bkt, "", map[string]string{
			"run_id": runID,
			"source": dim.URL(cfg.BaseURL),
		})
		return bs, redactBucketURL(cfg.Bucket) + " " + dim.DirName() + "/", bkt.Close, nil
	}

	base := cfg.Dir
	if base == "" {
		base, err = storage.DefaultBase(c.home)
		if err != nil {
			return nil, "", nil, &config.Error{Field: "dir", Err: err}
		}
	}
	dir, err := storage.ResolveDirectory(dim, base, c.home)
	if err != nil {
		return nil, "", nil, &config.Error{Field: "dir", Err: err}
	}

	ls := storage.NewLocalStore(base, logger)
	return ls, dir, func() error { return nil }, nil
}

// redactBucketURL drops the query string, which may carry endpoints or
// credentials.
func redactBucketURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	return u.String()
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: zerolog.SyncWriter(w), TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
