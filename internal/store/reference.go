package store

import (
	"sync"

	"go.uber.org/zap"
)

// ReferenceSlot holds the single process-wide reference voice sample
// used to condition synthesis. Setting a new sample deletes the
// previous one, so at most one reference file exists at a time.
type ReferenceSlot struct {
	mu    sync.Mutex
	path  string
	store *FileStore
}

func NewReferenceSlot(store *FileStore) *ReferenceSlot {
	return &ReferenceSlot{store: store}
}

// Set replaces the current reference sample with the file at path.
func (r *ReferenceSlot) Set(path string) {
	r.mu.Lock()
	previous := r.path
	r.path = path
	r.mu.Unlock()

	if previous != "" && previous != path {
		if err := r.store.Delete(previous); err != nil {
			r.store.logger.Warn("failed to delete replaced reference sample", zap.Error(err))
		}
	}
}

// Path returns the current reference sample path, or "" if none is set.
func (r *ReferenceSlot) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}
