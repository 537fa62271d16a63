package storage

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"k8s.io/client-go/util/homedir"

	"github.com/ligustah/picsum/internal/job"
)

// ErrHomeDirectoryUnresolved is returned when no base directory is given and
// the user's home directory cannot be determined.
var ErrHomeDirectoryUnresolved = errors.New("storage: could not resolve home directory, pass -dir with a save location")

// HomeFunc returns the user's home directory, or "" if it is unknown.
type HomeFunc func() string

// DefaultHome resolves the platform home directory.
var DefaultHome HomeFunc = homedir.HomeDir

// DefaultBase returns <home>/Downloads.
func DefaultBase(home HomeFunc) (string, error) {
	if home == nil {
		home = DefaultHome
	}
	h := home()
	if h == "" {
		return "", ErrHomeDirectoryUnresolved
	}
	return filepath.Join(h, "Downloads"), nil
}

// ResolveDirectory returns the directory images of size dim are saved to:
// base/{width}x{height}, or <home>/Downloads/{width}x{height} when base is
// empty. It performs no I/O.
func ResolveDirectory(dim job.Dimension, base string, home HomeFunc) (string, error) {
	if base == "" {
		var err error
		base, err = DefaultBase(home)
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(base, dim.DirName()), nil
}

// EnsureDirectory creates path and any missing parents if it is not already
// a directory. Failures are logged and otherwise ignored; the subsequent
// file write reports them per job.
//
// Concurrent calls for the same path are safe.
func EnsureDirectory(path string, logger zerolog.Logger) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("could not create download directory")
		return
	}
	logger.Debug().Str("path", path).Msg("created download directory")
}
