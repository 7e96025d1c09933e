package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNotFound indicates the requested file does not exist inside the storage root.
var ErrNotFound = errors.New("file not found")

// Local stores files in a directory on the local filesystem.
type Local struct {
	dir    string
	root   string
	logger zerolog.Logger
}

// NewLocal prepares a storage rooted at dir, creating it when absent.
func NewLocal(dir string, logger zerolog.Logger) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage directory must not be empty")
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Local{
		dir:    filepath.Clean(dir),
		root:   root,
		logger: logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Upload writes reader to name inside the storage directory and returns the
// stored path relative to the configured directory. Existing files are replaced.
func (s *Local) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := s.path(name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	s.logger.Debug().Str("file", name).Msg("file stored")

	return filepath.Join(s.dir, name), nil
}

// Resolve returns the absolute path of a stored regular file.
func (s *Local) Resolve(name string) (string, error) {
	target, err := s.path(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotFound
	}

	return target, nil
}

// path joins name onto the root and rejects anything escaping it.
func (s *Local) path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNotFound
	}

	target := filepath.Join(s.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrNotFound
	}

	return target, nil
}
