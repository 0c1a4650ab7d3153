// Package storagetest provides storage doubles for tests.
package storagetest

import (
	"context"
	"sync"

	"github.com/kazz187/agentregistry/pkg/storage"
)

// Recorder wraps a Storage and counts reads and writes.
type Recorder struct {
	storage.Storage

	mu     sync.Mutex
	reads  int
	writes int
}

func NewRecorder(s storage.Storage) *Recorder {
	return &Recorder{Storage: s}
}

func (r *Recorder) Read(ctx context.Context, path string) ([]byte, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return r.Storage.Read(ctx, path)
}

func (r *Recorder) Write(ctx context.Context, path string, data []byte) error {
	r.mu.Lock()
	r.writes++
	r.mu.Unlock()
	return r.Storage.Write(ctx, path, data)
}

func (r *Recorder) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func (r *Recorder) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// Failing is a Storage whose operations return the configured errors.
type Failing struct {
	ReadErr  error
	WriteErr error
}

func (f *Failing) Read(_ context.Context, path string) ([]byte, error) {
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return nil, storage.ErrNotFound
}

func (f *Failing) Write(_ context.Context, _ string, _ []byte) error {
	return f.WriteErr
}
