package permission

import (
	"context"

	"github.com/kazz187/agentregistry/internal/document"
	"github.com/kazz187/agentregistry/pkg/storage"
)

// Repository loads and stores the permissions document.
type Repository interface {
	// Open returns the document, creating an empty one if none is stored.
	Open(ctx context.Context) (*Document, document.State, error)

	// Save replaces the stored document.
	Save(ctx context.Context, doc *Document) error
}

var _ Repository = (*document.Store[*Document])(nil)

// NewRepository returns a Repository keeping the document at name.
func NewRepository(s storage.Storage, name string, opts ...document.Option) *document.Store[*Document] {
	return document.NewStore(s, document.Config{Name: name}, NewDocument, opts...)
}
