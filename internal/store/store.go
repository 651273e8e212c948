package store

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind tags a temporary file by its role in the pipeline. It only
// affects the generated filename, which makes the scratch directory
// readable when debugging.
type Kind string

const (
	KindInput     Kind = "input"
	KindReference Kind = "reference"
	KindResponse  Kind = "response"
)

const audioExt = ".wav"

// FileStore writes and serves ephemeral audio files out of a single
// scratch directory. It keeps no in-memory index; liveness tracking is
// the caller's job.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

func New(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Dir returns the scratch directory path.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes the reader's content to a uniquely named file and returns
// its absolute path. Names never collide within a process lifetime.
func (s *FileStore) Save(kind Kind, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s_%s%s", kind, strings.ReplaceAll(uuid.NewString(), "-", ""), audioExt)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return path, nil
}

// Delete removes a file. A missing file is not an error; deletion is
// best-effort and callers only ever log the returned error.
func (s *FileStore) Delete(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// Open opens a stored file by bare filename for serving. Anything that
// is not a plain filename inside the scratch directory reports
// fs.ErrNotExist so callers can treat traversal attempts as absent.
func (s *FileStore) Open(name string) (*os.File, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fs.ErrNotExist
	}
	return os.Open(filepath.Join(s.dir, name))
}

// ReapResponses deletes retained response audio older than ttl and
// returns the number of files removed. Input and reference files are
// never touched here; they have their own owners.
func (s *FileStore) ReapResponses(ttl time.Duration) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("failed to scan scratch directory", zap.Error(err))
		return 0
	}

	cutoff := time.Now().Add(-ttl)
	reaped := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), string(KindResponse)+"_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to reap response audio", zap.String("path", path), zap.Error(err))
			continue
		}
		reaped++
	}
	return reaped
}

// StartJanitor periodically reaps expired response audio until the
// context is cancelled.
func (s *FileStore) StartJanitor(ctx context.Context, ttl, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.ReapResponses(ttl); n > 0 {
					s.logger.Info("reaped expired response audio", zap.Int("count", n))
				}
			}
		}
	}()
}
