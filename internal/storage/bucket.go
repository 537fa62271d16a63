package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gocloud.dev/blob"

	"github.com/ligustah/picsum/internal/job"
)

// BucketStore saves images as objects in a gocloud bucket.
type BucketStore struct {
	bucket   *blob.Bucket
	prefix   string
	metadata map[string]string
}

// NewBucketStore creates a store writing to bucket. Keys are
// {prefix}{width}x{height}/{name}; a non-empty prefix gets a trailing slash.
// metadata is attached to every object written.
func NewBucketStore(bucket *blob.Bucket, prefix string, metadata map[string]string) *BucketStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &BucketStore{
		bucket:   bucket,
		prefix:   prefix,
		metadata: metadata,
	}
}

// Key returns the object key for an image.
func (s *BucketStore) Key(dim job.Dimension, name string) string {
	return s.prefix + dim.DirName() + "/" + name
}

// Write uploads body and returns the object key. A failed copy aborts the
// upload, so no partial object is committed.
func (s *BucketStore) Write(ctx context.Context, dim job.Dimension, name string, body io.Reader) (string, int64, error) {
	key := s.Key(dim, name)

	// Cancelling the writer's context before Close discards the upload.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(wctx, key, &blob.WriterOptions{
		ContentType: "image/jpeg",
		Metadata:    s.metadata,
	})
	if err != nil {
		return "", 0, fmt.Errorf("open writer %s: %w", key, err)
	}

	n, err := io.Copy(w, &contextReader{ctx: ctx, r: body})
	if err != nil {
		cancel()
		w.Close()
		return "", n, fmt.Errorf("write %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return "", n, fmt.Errorf("commit %s: %w", key, err)
	}

	return key, n, nil
}
