package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const tempPrefix = ".tmp-"

// LocalStore keeps artifacts in one flat directory served under publicBase.
type LocalStore struct {
	dir        string
	publicBase string
	now        func() time.Time
}

func NewLocalStore(dir, publicBase string) *LocalStore {
	return &LocalStore{dir: dir, publicBase: publicBase, now: time.Now}
}

func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes into a temp file beside the target and renames it into place.
func (s *LocalStore) Save(ctx context.Context, ownerID string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create dir: %v", ErrWriteFailure, err)
	}

	filename := NewFilename(ownerID, s.now())

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp: %v", ErrWriteFailure, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("%w: write: %v", ErrWriteFailure, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("%w: sync: %v", ErrWriteFailure, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: close: %v", ErrWriteFailure, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: chmod: %v", ErrWriteFailure, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, filename)); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: rename: %v", ErrWriteFailure, err)
	}

	return filename, nil
}

func (s *LocalStore) Delete(_ context.Context, filename string) error {
	if err := validateFilename(filename); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete artifact %s: %w", filename, err)
	}
	return nil
}

func (s *LocalStore) PublicURL(filename string) string {
	return joinURL(s.publicBase, filename)
}

// List skips directories and in-progress temp files.
func (s *LocalStore) List(_ context.Context) ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat artifact %s: %w", entry.Name(), err)
		}
		artifacts = append(artifacts, Artifact{Name: entry.Name(), ModTime: info.ModTime()})
	}
	return artifacts, nil
}

// RemoveStaleTemp deletes temp files left by interrupted saves that were last
// modified before olderThan.
func (s *LocalStore) RemoveStaleTemp(_ context.Context, olderThan time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list temp files: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(olderThan) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove temp file %s: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}
