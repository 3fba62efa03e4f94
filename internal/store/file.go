// Package store persists notes and transcripts as local files. Writers take a
// cross-process lock beside the target and replace it atomically, so readers
// and watchers never observe a partial file.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another writer holds the file lock past the
// caller's deadline.
var ErrLocked = errors.New("file is locked by another writer")

const lockRetryDelay = 25 * time.Millisecond

// FileStore loads and saves a single text file.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore returns a store for path. A nil logger discards output.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the file as text. A missing file reads as empty content.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.path, err)
	}
	text, err := decodeText(data)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.path, err)
	}
	return text, nil
}

// Save writes content under the file lock.
func (s *FileStore) Save(ctx context.Context, content string) error {
	if err := writeLocked(ctx, s.path, []byte(content)); err != nil {
		return err
	}
	s.logger.Debug("file saved", "path", s.path, "bytes", len(content))
	return nil
}

func lockPath(path string) string {
	return path + ".lock"
}

// writeLocked acquires <path>.lock, then writes data to a temp file in the
// same directory and renames it over path.
func writeLocked(ctx context.Context, path string, data []byte) error {
	return withLock(ctx, path, func() error {
		return writeAtomic(path, data)
	})
}

// withLock runs fn while holding <path>.lock.
func withLock(ctx context.Context, path string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := flock.New(lockPath(path))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %w", ErrLocked, path, ctxErr)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, path)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
