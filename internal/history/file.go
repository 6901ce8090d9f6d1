package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"phishguard/internal/models"
)

const (
	lockRetryInterval = 10 * time.Millisecond
	// A lock file older than this is left over from a crashed process.
	lockStaleAfter = 30 * time.Second
)

// FileBackend stores the history as a JSON array on local disk. Writes go to
// a temp file that is renamed over the target, so a failed write leaves the
// previous history untouched. Update holds a lock file next to Path, so
// processes sharing the file do not lose each other's appends.
type FileBackend struct {
	Path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

func (f *FileBackend) Get(_ context.Context) ([]models.Report, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return decode(data)
}

func (f *FileBackend) Set(_ context.Context, reports []models.Report) error {
	data, err := encode(reports)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}
	return nil
}

// Update runs fn between a read and a write while holding Path's lock file.
func (f *FileBackend) Update(ctx context.Context, fn UpdateFunc) error {
	unlock, err := f.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := f.Get(ctx)
	if err != nil {
		return err
	}
	next, changed := fn(current)
	if !changed {
		return nil
	}
	return f.Set(ctx, next)
}

func (f *FileBackend) lockPath() string {
	return f.Path + ".lock"
}

// lock creates the lock file exclusively, polling until it is free or ctx
// ends.
func (f *FileBackend) lock(ctx context.Context) (func(), error) {
	path := f.lockPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}

	for {
		fh, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(fh, "%d\n", os.Getpid())
			fh.Close()
			return func() { os.Remove(path) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}

		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
			os.Remove(path)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: %w", path, ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}
