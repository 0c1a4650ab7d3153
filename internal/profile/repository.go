package profile

import (
	"context"

	"github.com/kazz187/agentregistry/internal/document"
	"github.com/kazz187/agentregistry/pkg/storage"
)

// Repository loads and stores the profiles document.
type Repository interface {
	Open(ctx context.Context) (*Document, document.State, error)
	Save(ctx context.Context, doc *Document) error
}

var _ Repository = (*document.Store[*Document])(nil)

func NewRepository(s storage.Storage, name string, opts ...document.Option) *document.Store[*Document] {
	return document.NewStore(s, document.Config{Name: name}, NewDocument, opts...)
}
