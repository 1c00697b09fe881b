package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrNotDirectory is returned when a folder is requested at a path
	// already taken by a file.
	ErrNotDirectory = errors.New("path exists and is not a directory")

	// ErrNotFound is returned by Stat for missing paths.
	ErrNotFound = errors.New("path not found")
)

// FileInfo contains metadata about a file or directory in the sink
type FileInfo struct {
	Name       string
	Path       string
	IsDir      bool
	Size       int64
	ModifiedAt time.Time
}

// FileSink is a user's file tree. Paths are slash separated and relative
// to the root of that tree.
type FileSink interface {
	// Exists reports whether anything is stored at path
	Exists(ctx context.Context, path string) (bool, error)

	// IsDir reports whether path is an existing directory
	IsDir(ctx context.Context, path string) (bool, error)

	// CreateFolder creates path and any missing parents. It fails with
	// ErrNotDirectory when a file is in the way.
	CreateFolder(ctx context.Context, path string) error

	// Create opens a new or truncated file for writing. The parent folder
	// must exist.
	Create(ctx context.Context, path string) (io.WriteCloser, error)

	// Stat returns metadata without reading content
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// List returns entries in the specified directory path
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Delete removes a file or empty directory
	Delete(ctx context.Context, path string) error
}

// Provider hands out the file tree of each user.
type Provider interface {
	ForUser(userID string) (FileSink, error)
}

// WriteFile creates path and fills it by calling fill. A partially written
// file is removed when fill fails, so a later run does not mistake it for
// a finished import.
func WriteFile(ctx context.Context, sink FileSink, path string, fill func(w io.Writer) (int64, error)) (int64, error) {
	w, err := sink.Create(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := fill(w)
	closeErr := w.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	if err != nil {
		_ = sink.Delete(ctx, path)
		return n, err
	}
	return n, nil
}

// Usage walks path and sums the number and size of the files below it.
func Usage(ctx context.Context, sink FileSink, path string) (files int, bytes int64, err error) {
	entries, err := sink.List(ctx, path)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if entry.IsDir {
			n, b, err := Usage(ctx, sink, entry.Path)
			if err != nil {
				return 0, 0, err
			}
			files += n
			bytes += b
		} else {
			files++
			bytes += entry.Size
		}
	}

	return files, bytes, nil
}
