// Package fs implements the local-filesystem storage backend: hierarchical
// scope paths, collision-free filenames, and the recursive cleanup and stats
// operations over the storage tree.
package fs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atelierflow/media-stash/internal/media"
)

// Storage implements media.Backend on a local directory tree rooted at root.
type Storage struct {
	root           string
	autoCreateDirs bool
	logger         *slog.Logger
}

// NewStorage creates a filesystem storage rooted at root. When
// autoCreateDirs is set, missing scope directories are created on demand.
func NewStorage(log *slog.Logger, root string, autoCreateDirs bool) *Storage {
	if log == nil {
		log = slog.Default()
	}
	return &Storage{
		root:           root,
		autoCreateDirs: autoCreateDirs,
		logger:         log.With(slog.String("service", "fs")),
	}
}

// Save writes the bytes under the scope's directory with a unique filename
// and returns a payload referencing the relative path. No size ceiling is
// enforced.
func (s *Storage) Save(data []byte, meta media.FileMetadata, scope media.ScopeContext, checksum string) (media.MediaPayload, error) {
	dir := ScopeDir(scope, time.Now().UTC())
	absDir := filepath.Join(s.root, filepath.FromSlash(dir))

	if s.autoCreateDirs {
		// MkdirAll is idempotent; concurrent creation of the same path by
		// two callers does not fail either of them.
		if err := os.MkdirAll(absDir, 0o755); err != nil {
			return media.MediaPayload{}, &media.WriteError{Path: dir, Err: err}
		}
	}

	name := UniqueFileName(meta.OriginalName)
	relPath := dir + "/" + name
	if err := os.WriteFile(filepath.Join(absDir, name), data, 0o644); err != nil {
		return media.MediaPayload{}, &media.WriteError{Path: relPath, Err: err}
	}

	return media.NewLocalPayload(name, meta, int64(len(data)), relPath, checksum), nil
}

// Read returns the full content of the file at the given relative path.
// A missing file fails with media.ErrFileNotFound; any other I/O failure
// fails with media.ReadError.
func (s *Storage) Read(relPath string) ([]byte, error) {
	abs, err := s.resolve(relPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, media.ErrFileNotFound)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", relPath, media.ErrFileNotFound)
		}
		return nil, &media.ReadError{Path: relPath, Err: err}
	}
	return data, nil
}

// Exists reports whether a file exists at the given relative path.
func (s *Storage) Exists(relPath string) bool {
	abs, err := s.resolve(relPath)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// DeleteFile removes the file at the given relative path. It is best-effort:
// it never returns an error and reports false when nothing was deleted.
func (s *Storage) DeleteFile(relPath string) bool {
	abs, err := s.resolve(relPath)
	if err != nil {
		return false
	}
	if err := os.Remove(abs); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("delete file failed", "path", relPath, "error", err)
		}
		return false
	}
	return true
}

// resolve maps a relative storage path to an absolute path under the root,
// rejecting traversal outside the root.
func (s *Storage) resolve(relPath string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(relPath))
	root := filepath.Clean(s.root)
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", relPath)
	}
	return abs, nil
}
