package profile

import (
	"context"
	"time"

	"github.com/kazz187/agentregistry/internal/document"
	"github.com/kazz187/agentregistry/pkg/cerr"
)

const (
	ReasonProfileNotFound      = "PROFILE_NOT_FOUND"
	ReasonProfileAlreadyExists = "PROFILE_ALREADY_EXISTS"
)

func errProfileNotFound(userID string) error {
	return cerr.NewError(cerr.NotFound, "User profile was not found", nil).
		WithReason(ReasonProfileNotFound).
		WithUserID(userID)
}

func errProfileAlreadyExists(userID string) error {
	return cerr.NewError(cerr.AlreadyExists, "User profile already exists", nil).
		WithReason(ReasonProfileAlreadyExists).
		WithUserID(userID)
}

type Option func(*Registry)

// WithClock replaces time.Now as the source of created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Registry manages user profiles keyed by the lowercase first name.
type Registry struct {
	repo Repository
	now  func() time.Time
}

func NewRegistry(repo Repository, opts ...Option) *Registry {
	r := &Registry{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UserID returns the key a profile with the given first name is stored under.
func UserID(firstName string) string {
	return document.NormalizeUserID(firstName)
}

func (r *Registry) Get(ctx context.Context, userID string) (*Profile, error) {
	userID = document.NormalizeUserID(userID)
	doc, _, err := r.repo.Open(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := doc.Profiles.Get(userID)
	if !ok {
		return nil, errProfileNotFound(userID)
	}
	return &p, nil
}

// List returns a summary of every profile in creation order.
func (r *Registry) List(ctx context.Context) ([]*Summary, error) {
	doc, _, err := r.repo.Open(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]*Summary, 0, doc.Profiles.Len())
	for userID, p := range doc.Profiles.All() {
		summaries = append(summaries, &Summary{
			UserID:    userID,
			Email:     p.Email,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Company:   p.Company,
			CreatedAt: p.CreatedAt,
		})
	}
	return summaries, nil
}

// Create validates the supplied fields and stores a new profile under the
// lowercase first name.
func (r *Registry) Create(ctx context.Context, fields *Fields) (*Profile, error) {
	var p Profile
	fields.MergeInto(&p)
	if err := Validate(&p); err != nil {
		return nil, err
	}
	userID := UserID(p.FirstName)

	doc, _, err := r.repo.Open(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Profiles.Has(userID) {
		return nil, errProfileAlreadyExists(userID)
	}
	now := document.NewTimestamp(r.now())
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := doc.Profiles.Insert(userID, p); err != nil {
		return nil, errProfileAlreadyExists(userID)
	}
	if err := r.repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update overwrites the supplied fields of an existing profile. The key never
// changes, even when first_name does. The merged profile is validated before
// anything is written.
func (r *Registry) Update(ctx context.Context, userID string, fields *Fields) (*Profile, error) {
	userID = document.NormalizeUserID(userID)
	doc, _, err := r.repo.Open(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := doc.Profiles.Get(userID)
	if !ok {
		return nil, errProfileNotFound(userID)
	}

	merged := current
	fields.MergeInto(&merged)
	if err := Validate(&merged); err != nil {
		return nil, err
	}
	merged.CreatedAt = current.CreatedAt
	merged.UpdatedAt = document.NewTimestamp(r.now())
	if err := doc.Profiles.Update(userID, merged); err != nil {
		return nil, errProfileNotFound(userID)
	}
	if err := r.repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Delete removes a profile. Permissions granted to the same user id are kept.
func (r *Registry) Delete(ctx context.Context, userID string) error {
	userID = document.NormalizeUserID(userID)
	doc, _, err := r.repo.Open(ctx)
	if err != nil {
		return err
	}
	if err := doc.Profiles.Remove(userID); err != nil {
		return errProfileNotFound(userID)
	}
	return r.repo.Save(ctx, doc)
}
