// Package document persists a registry's whole table as one JSON document.
//
// Every request opens the document, mutates it in memory and saves it back in
// full. There is no version check: when two requests interleave, the later
// save wins and the earlier change is lost.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kazz187/agentregistry/pkg/cerr"
	"github.com/kazz187/agentregistry/pkg/clog"
	"github.com/kazz187/agentregistry/pkg/storage"
)

// Document is implemented by every stored document type. Stamp records the
// time of the write that is about to happen.
type Document interface {
	Stamp(t time.Time)
}

// Header carries the fields shared by all documents.
type Header struct {
	LastUpdated Timestamp `json:"last_updated"`
}

func (h *Header) Stamp(t time.Time) {
	h.LastUpdated = NewTimestamp(t)
}

// State tells whether Open found a stored document or created one.
type State int

const (
	Existed State = iota
	Initialized
)

func (s State) String() string {
	switch s {
	case Existed:
		return "existed"
	case Initialized:
		return "initialized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Config struct {
	// Name is the storage path of the document, e.g. "permissions.json".
	Name string
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now as the source of write timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Store reads and writes a single named document.
type Store[D Document] struct {
	storage     storage.Storage
	name        string
	newDocument func() D
	now         func() time.Time
}

// NewStore creates a Store. newDocument must return a fresh document with
// empty collections; it is used both as the decode target and as the default
// document written when none exists yet.
func NewStore[D Document](s storage.Storage, cfg Config, newDocument func() D, opts ...Option) *Store[D] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[D]{
		storage:     s,
		name:        cfg.Name,
		newDocument: newDocument,
		now:         o.now,
	}
}

func (s *Store[D]) Name() string {
	return s.name
}

// Open returns the stored document, creating and persisting the default
// document first if the storage has none.
func (s *Store[D]) Open(ctx context.Context) (D, State, error) {
	var zero D
	clog.AddDocument(ctx, s.name)

	data, err := s.storage.Read(ctx, s.name)
	if errors.Is(err, storage.ErrNotFound) {
		doc := s.newDocument()
		if err := s.Save(ctx, doc); err != nil {
			return zero, Initialized, err
		}
		slog.InfoContext(ctx, "initialized document", "name", s.name)
		return doc, Initialized, nil
	}
	if err != nil {
		return zero, Existed, cerr.WrapStorageReadError(s.name, err)
	}

	doc := s.newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return zero, Existed, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal %s: %w", s.name, err))
	}
	return doc, Existed, nil
}

// Save stamps the document and overwrites the stored copy in one write.
func (s *Store[D]) Save(ctx context.Context, doc D) error {
	doc.Stamp(s.now())
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal %s: %w", s.name, err))
	}
	if err := s.storage.Write(ctx, s.name, data); err != nil {
		return cerr.WrapStorageWriteError(s.name, err)
	}
	return nil
}
