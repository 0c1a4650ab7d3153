package permission

import (
	"context"
	"slices"
	"time"

	"github.com/kazz187/agentregistry/internal/document"
	"github.com/kazz187/agentregistry/pkg/cerr"
)

const (
	ReasonUserNotFound      = "USER_NOT_FOUND"
	ReasonUserAlreadyExists = "USER_ALREADY_EXISTS"
)

func errUserNotFound(userID string) error {
	return cerr.NewError(cerr.NotFound, "User was not found in the system", nil).
		WithReason(ReasonUserNotFound).
		WithUserID(userID)
}

func errUserAlreadyExists(userID string) error {
	return cerr.NewError(cerr.AlreadyExists, "User already exists in the system", nil).
		WithReason(ReasonUserAlreadyExists).
		WithUserID(userID)
}

func errRequired(field string) error {
	return cerr.NewError(cerr.InvalidArgument, field+" is required", nil).
		WithReason(cerr.ReasonInvalidRequest)
}

// Registry manages which agents each user is permitted to use.
// It keeps no state between calls; every call round-trips through the repository.
type Registry struct {
	repo Repository
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

// UserExists returns a NotFound error unless the user has an entry.
func (r *Registry) UserExists(ctx context.Context, userID string) error {
	_, err := r.GetPermissions(ctx, userID)
	return err
}

// GetPermissions returns the agents granted to the user, possibly none.
func (r *Registry) GetPermissions(ctx context.Context, userID string) ([]string, error) {
	userID = document.NormalizeUserID(userID)
	doc, _, err := r.repo.Open(ctx)
	if err != nil {
		return nil, err
	}
	agents, ok := doc.Permissions.Get(userID)
	if !ok {
		return nil, errUserNotFound(userID)
	}
	return nonNil(agents), nil
}

// AddPermission grants agentName to the user, creating the user when needed.
// Granting an agent the user already has changes nothing and writes nothing.
func (r *Registry) AddPermission(ctx context.Context, userID, agentName string) (*Grant, error) {
	if agentName == "" {
		return nil, errRequired("agent_name")
	}
	userID = document.NormalizeUserID(userID)
	doc, _, err := r.repo.Open(ctx)
	if err != nil {
		return nil, err
	}

	grant := &Grant{UserID: userID, AgentName: agentName}
	agents, ok := doc.Permissions.Get(userID)
	switch {
	case !ok:
		agents = []string{agentName}
		if err := doc.Permissions.Insert(userID, agents); err != nil {
			return nil, cerr.NewError(cerr.Internal, "server error", err)
		}
		grant.Outcome = UserCreated
	case slices.Contains(agents, agentName):
		grant.PermittedAgents = agents
		grant.Outcome = AlreadyGranted
		return grant, nil
	default:
		agents = append(agents, agentName)
		if err := doc.Permissions.Update(userID, agents); err != nil {
			return nil, cerr.NewError(cerr.Internal, "server error", err)
		}
		grant.Outcome = Added
	}

	if err := r.repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	grant.PermittedAgents = agents
	return grant, nil
}

// CreateUser adds a user with no permitted agents.
func (r *Registry) CreateUser(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, errRequired("user_id")
	}
	userID = document.NormalizeUserID(userID)
	doc, _, err := r.repo.Open(ctx)
	if err != nil {
		return nil, err
	}
	if err := doc.Permissions.Insert(userID, []string{}); err != nil {
		return nil, errUserAlreadyExists(userID)
	}
	if err := r.repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	return &User{
		UserID:          userID,
		PermittedAgents: []string{},
		CreatedAt:       time.Now(),
	}, nil
}

func nonNil(agents []string) []string {
	if agents == nil {
		return []string{}
	}
	return agents
}
