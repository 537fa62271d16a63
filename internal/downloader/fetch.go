package downloader

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	picsumhttp "github.com/ligustah/picsum/internal/http"
	"github.com/ligustah/picsum/internal/job"
)

// Getter issues GET requests. *http.Client from internal/http satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*picsumhttp.Response, error)
}

// Store persists an image body and returns where it ended up.
type Store interface {
	Write(ctx context.Context, dim job.Dimension, name string, body io.Reader) (location string, n int64, err error)
}

// Observer is notified as jobs progress. *progress.Reporter satisfies it.
type Observer interface {
	JobCompleted(location string, size int64)
	JobFailed(name string, err error)
}

// FetchError is returned when the image could not be fetched: a transport
// failure, a non-2xx status or a broken response body.
type FetchError struct {
	Name string
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Name, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// WriteError is returned when a fetched image could not be saved.
type WriteError struct {
	Name string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Name, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Fetcher downloads one image and hands it to a Store. It holds only
// read-only references and may be shared by every batch.
type Fetcher struct {
	client   Getter
	store    Store
	observer Observer
	logger   zerolog.Logger
}

// NewFetcher creates a Fetcher. observer may be nil.
func NewFetcher(client Getter, store Store, observer Observer, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:   client,
		store:    store,
		observer: observer,
		logger:   logger,
	}
}

// Execute fetches j.URL and writes the body to the store. Failures are
// returned in the Result, never as a panic, so the caller can carry on
// with the next job.
func (f *Fetcher) Execute(ctx context.Context, j job.Job) job.Result {
	res := f.execute(ctx, j)

	if f.observer != nil {
		if res.Err != nil {
			f.observer.JobFailed(j.Name, res.Err)
		} else {
			f.observer.JobCompleted(res.Location, res.Bytes)
		}
	}
	return res
}

func (f *Fetcher) execute(ctx context.Context, j job.Job) job.Result {
	res := job.Result{Job: j}
	log := f.logger.With().Int("index", j.Index).Str("name", j.Name).Logger()

	resp, err := f.client.Get(ctx, j.URL)
	if err != nil {
		log.Debug().Err(err).Str("url", j.URL).Msg("fetch failed")
		res.Err = &FetchError{Name: j.Name, URL: j.URL, Err: err}
		return res
	}
	defer resp.Body.Close()

	log.Debug().
		Str("content_type", resp.ContentType).
		Int64("content_length", resp.ContentLength).
		Msg("response received")

	body := &bodyReader{r: resp.Body}
	location, n, err := f.store.Write(ctx, j.Dimension, j.Name, body)
	res.Bytes = n
	if body.err != nil {
		log.Debug().Err(body.err).Msg("read body failed")
		res.Err = &FetchError{Name: j.Name, URL: j.URL, Err: body.err}
		return res
	}
	if err != nil {
		log.Debug().Err(err).Msg("save failed")
		res.Err = &WriteError{Name: j.Name, Err: err}
		return res
	}

	res.Location = location
	log.Debug().Str("location", location).Int64("bytes", n).Msg("image saved")
	return res
}

// bodyReader records the first error the response body returns, so a
// connection dropped mid-download is told apart from a store failure.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF && b.err == nil {
		b.err = err
	}
	return n, err
}
