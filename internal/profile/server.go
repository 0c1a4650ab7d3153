package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/agentregistry/internal/document"
	"github.com/kazz187/agentregistry/pkg/cerr"
)

const (
	msgRetrieveUnavailable = "Unable to retrieve profile at this time"
	msgListUnavailable     = "Unable to retrieve profiles at this time"
	msgCreateUnavailable   = "Unable to create profile at this time"
	msgUpdateUnavailable   = "Unable to update profile at this time"
	msgDeleteUnavailable   = "Unable to delete profile at this time"
)

type Server struct {
	registry *Registry
}

func NewServer(registry *Registry) *Server {
	return &Server{registry: registry}
}

func (s *Server) Name() string {
	return "profiles"
}

func (s *Server) AllowedMethods() []string {
	return []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
}

func (s *Server) Routes(r chi.Router) {
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", s.List)
		r.Post("/", s.Create)
		r.Get("/{user_id}", s.Get)
		r.Put("/{user_id}", s.Update)
		r.Delete("/{user_id}", s.Delete)
	})
}

type profileResponse struct {
	UserID  string   `json:"user_id"`
	Profile *Profile `json:"profile"`
}

type listResponse struct {
	Profiles   []*Summary `json:"profiles"`
	TotalCount int        `json:"total_count"`
}

type deleteResponse struct {
	UserID string `json:"user_id"`
}

func (s *Server) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summaries, err := s.registry.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.OrUnavailable(err, msgListUnavailable))
		return
	}
	cerr.SetJSONResponse(ctx, &listResponse{
		Profiles:   summaries,
		TotalCount: len(summaries),
	}, "")
}

func (s *Server) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := document.NormalizeUserID(chi.URLParam(r, "user_id"))
	p, err := s.registry.Get(ctx, userID)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.OrUnavailable(err, msgRetrieveUnavailable))
		return
	}
	cerr.SetJSONResponse(ctx, &profileResponse{UserID: userID, Profile: p}, "")
}

func (s *Server) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var fields Fields
	if err := cerr.DecodeJSONBody(r, &fields); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	p, err := s.registry.Create(ctx, &fields)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.OrUnavailable(err, msgCreateUnavailable))
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, &profileResponse{
		UserID:  UserID(p.FirstName),
		Profile: p,
	}, "Profile created successfully")
}

func (s *Server) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := document.NormalizeUserID(chi.URLParam(r, "user_id"))
	var fields Fields
	if err := cerr.DecodeJSONBody(r, &fields); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	p, err := s.registry.Update(ctx, userID, &fields)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.OrUnavailable(err, msgUpdateUnavailable))
		return
	}
	cerr.SetJSONResponse(ctx, &profileResponse{UserID: userID, Profile: p}, "Profile updated successfully")
}

func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := document.NormalizeUserID(chi.URLParam(r, "user_id"))
	if err := s.registry.Delete(ctx, userID); err != nil {
		cerr.SetJSONError(ctx, cerr.OrUnavailable(err, msgDeleteUnavailable))
		return
	}
	cerr.SetJSONResponse(ctx, &deleteResponse{UserID: userID}, "Profile deleted successfully")
}
