// Package local stores each user's imported files under a directory on an
// afero filesystem: <root>/<user>/files.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/mrlokans/google-importer/internal/storage"
)

const filesDir = "files"

// Provider implements storage.Provider on top of an afero filesystem.
type Provider struct {
	fs   afero.Fs
	root string
}

// NewProvider returns a provider rooted at root on fs.
func NewProvider(fs afero.Fs, root string) *Provider {
	return &Provider{fs: fs, root: root}
}

// NewOSProvider returns a provider on the real filesystem.
func NewOSProvider(root string) *Provider {
	return NewProvider(afero.NewOsFs(), root)
}

func (p *Provider) ForUser(userID string) (storage.FileSink, error) {
	if userID == "" || userID == "." || userID == ".." || strings.ContainsAny(userID, `/\`) {
		return nil, fmt.Errorf("invalid user id %q", userID)
	}

	dir := filepath.Join(p.root, userID, filesDir)
	if err := p.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage for %s: %w", userID, err)
	}
	return &Sink{fs: afero.NewBasePathFs(p.fs, dir)}, nil
}

// Sink implements storage.FileSink for one user.
type Sink struct {
	fs afero.Fs
}

func clean(p string) string {
	return path.Clean("/" + p)
}

func (s *Sink) Exists(ctx context.Context, p string) (bool, error) {
	return afero.Exists(s.fs, clean(p))
}

func (s *Sink) IsDir(ctx context.Context, p string) (bool, error) {
	ok, err := afero.IsDir(s.fs, clean(p))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return ok, err
}

func (s *Sink) CreateFolder(ctx context.Context, p string) error {
	p = clean(p)
	info, err := s.fs.Stat(p)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s: %w", p, storage.ErrNotDirectory)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := s.fs.MkdirAll(p, 0o755); err != nil {
		// MkdirAll fails when one of the parents is a file
		return fmt.Errorf("%s: %w: %v", p, storage.ErrNotDirectory, err)
	}
	return nil
}

func (s *Sink) Create(ctx context.Context, p string) (io.WriteCloser, error) {
	return s.fs.OpenFile(clean(p), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

func (s *Sink) Stat(ctx context.Context, p string) (*storage.FileInfo, error) {
	p = clean(p)
	info, err := s.fs.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return toFileInfo(p, info), nil
}

func (s *Sink) List(ctx context.Context, p string) ([]storage.FileInfo, error) {
	p = clean(p)
	infos, err := afero.ReadDir(s.fs, p)
	if err != nil {
		return nil, err
	}

	entries := make([]storage.FileInfo, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, *toFileInfo(path.Join(p, info.Name()), info))
	}
	return entries, nil
}

func (s *Sink) Delete(ctx context.Context, p string) error {
	return s.fs.Remove(clean(p))
}

func toFileInfo(p string, info fs.FileInfo) *storage.FileInfo {
	return &storage.FileInfo{
		Name:       info.Name(),
		Path:       p,
		IsDir:      info.IsDir(),
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}
}
