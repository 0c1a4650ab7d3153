package profile

import (
	"github.com/kazz187/agentregistry/internal/document"
)

// Profile is the stored record for one user. The user id is the lowercase
// first name given at creation and is the key of the record, not a field.
type Profile struct {
	Email     string             `json:"email" validate:"required,profile_email"`
	FirstName string             `json:"first_name" validate:"required,profile_user_id"`
	LastName  string             `json:"last_name" validate:"required"`
	Phone     string             `json:"phone"`
	Company   string             `json:"company"`
	Role      string             `json:"role"`
	Bio       string             `json:"bio"`
	CreatedAt document.Timestamp `json:"created_at"`
	UpdatedAt document.Timestamp `json:"updated_at"`
}

// Fields carries the profile fields supplied by a caller. Nil means the
// field was not supplied.
type Fields struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
	Role      *string `json:"role"`
	Bio       *string `json:"bio"`
}

// MergeInto overwrites the fields of p that were supplied.
func (f *Fields) MergeInto(p *Profile) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Email, f.Email)
	set(&p.FirstName, f.FirstName)
	set(&p.LastName, f.LastName)
	set(&p.Phone, f.Phone)
	set(&p.Company, f.Company)
	set(&p.Role, f.Role)
	set(&p.Bio, f.Bio)
}

// Summary is the list view of a profile.
type Summary struct {
	UserID    string             `json:"user_id"`
	Email     string             `json:"email"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Company   string             `json:"company"`
	CreatedAt document.Timestamp `json:"created_at"`
}

// Document is the stored profiles table keyed by user id.
type Document struct {
	document.Header
	Profiles document.Collection[Profile] `json:"profiles"`
}

func NewDocument() *Document {
	return &Document{Profiles: document.NewCollection[Profile]()}
}
