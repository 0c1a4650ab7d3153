package permission

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/agentregistry/internal/document"
	"github.com/kazz187/agentregistry/pkg/cerr"
)

const (
	msgRetrieveUnavailable = "Unable to retrieve permissions at this time"
	msgUpdateUnavailable   = "Unable to update permissions at this time"
	msgCreateUnavailable   = "Unable to create user at this time"
)

// Server exposes the Registry over HTTP.
type Server struct {
	registry *Registry
}

func NewServer(registry *Registry) *Server {
	return &Server{registry: registry}
}

func (s *Server) Name() string {
	return "permissions"
}

func (s *Server) AllowedMethods() []string {
	return []string{http.MethodGet, http.MethodPost, http.MethodOptions}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/users/{user_id}", s.UserExists)
	r.Post("/users", s.CreateUser)
	r.Get("/permissions/{user_id}", s.GetPermissions)
	r.Post("/permissions/{user_id}/agents", s.AddPermission)
}

type userExistsResponse struct {
	UserID string `json:"user_id"`
	Exists bool   `json:"exists"`
}

// UserExists handles GET /users/{user_id}.
func (s *Server) UserExists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "user_id")
	if err := s.registry.UserExists(ctx, userID); err != nil {
		cerr.SetJSONError(ctx, cerr.OrUnavailable(err, msgRetrieveUnavailable))
		return
	}
	cerr.SetJSONResponse(ctx, &userExistsResponse{
		UserID: document.NormalizeUserID(userID),
		Exists: true,
	}, "User exists in the system")
}

type createUserRequest struct {
	UserID string `json:"user_id"`
}

type createUserResponse struct {
	UserID          string    `json:"user_id"`
	PermittedAgents []string  `json:"permitted_agents"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateUser handles POST /users.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createUserRequest
	if err := cerr.DecodeJSONBody(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	user, err := s.registry.CreateUser(ctx, req.UserID)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.OrUnavailable(err, msgCreateUnavailable))
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, &createUserResponse{
		UserID:          user.UserID,
		PermittedAgents: user.PermittedAgents,
		CreatedAt:       user.CreatedAt.UTC(),
	}, "User created successfully")
}

type permissionsResponse struct {
	UserID          string   `json:"user_id"`
	PermittedAgents []string `json:"permitted_agents"`
}

// GetPermissions handles GET /permissions/{user_id}.
func (s *Server) GetPermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "user_id")
	agents, err := s.registry.GetPermissions(ctx, userID)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.OrUnavailable(err, msgRetrieveUnavailable))
		return
	}
	cerr.SetJSONResponse(ctx, &permissionsResponse{
		UserID:          document.NormalizeUserID(userID),
		PermittedAgents: agents,
	}, "")
}

type addPermissionRequest struct {
	AgentName string `json:"agent_name"`
}

type addPermissionResponse struct {
	UserID          string   `json:"user_id"`
	AgentAdded      string   `json:"agent_added"`
	PermittedAgents []string `json:"permitted_agents"`
}

// AddPermission handles POST /permissions/{user_id}/agents.
func (s *Server) AddPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req addPermissionRequest
	if err := cerr.DecodeJSONBody(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	grant, err := s.registry.AddPermission(ctx, chi.URLParam(r, "user_id"), req.AgentName)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.OrUnavailable(err, msgUpdateUnavailable))
		return
	}
	cerr.SetJSONResponse(ctx, &addPermissionResponse{
		UserID:          grant.UserID,
		AgentAdded:      grant.AgentName,
		PermittedAgents: grant.PermittedAgents,
	}, grant.Outcome.Message())
}
