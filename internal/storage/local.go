package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ligustah/picsum/internal/job"
)

// LocalStore saves images under a base directory on the local filesystem.
type LocalStore struct {
	base   string
	home   HomeFunc
	logger zerolog.Logger
}

// NewLocalStore creates a store rooted at base. An empty base resolves to
// <home>/Downloads on every write.
func NewLocalStore(base string, logger zerolog.Logger) *LocalStore {
	return &LocalStore{
		base:   base,
		home:   DefaultHome,
		logger: logger,
	}
}

// Write saves body to {base}/{width}x{height}/{name} and returns the path.
// The file is written in place. If reading or writing fails, or ctx is
// cancelled mid-copy, the partial file is removed.
func (s *LocalStore) Write(ctx context.Context, dim job.Dimension, name string, body io.Reader) (string, int64, error) {
	dir, err := ResolveDirectory(dim, s.base, s.home)
	if err != nil {
		return "", 0, err
	}
	EnsureDirectory(dir, s.logger)

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(f, &contextReader{ctx: ctx, r: body})
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close file: %w", closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn().Err(rmErr).Str("path", path).Msg("could not remove partial file")
		}
		return "", n, fmt.Errorf("write %s: %w", path, err)
	}

	return path, n, nil
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
