package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/agentregistry/internal/config"
	"github.com/kazz187/agentregistry/pkg/cerr"
	"github.com/kazz187/agentregistry/pkg/clog"
)

var allowedHeaders = []string{
	"Content-Type",
	"X-Amz-Date",
	"Authorization",
	"X-Api-Key",
	"X-Amz-Security-Token",
}

// Service is a registry exposed over HTTP. One process serves one Service.
type Service interface {
	Name() string
	Routes(r chi.Router)
	AllowedMethods() []string
}

type Server struct {
	server  *http.Server
	env     *config.Env
	service Service
}

func NewServer(env *config.Env, service Service) *Server {
	return &Server{
		env:     env,
		service: service,
	}
}

// Handler returns the complete handler tree: the service routes behind the
// logging, CORS and envelope middlewares, plus the health endpoints.
func (s *Server) Handler() http.Handler {
	methods := s.service.AllowedMethods()

	r := chi.NewRouter()
	r.Use(
		clog.SlogChiMiddleware(),
		corsHeaders(methods),
		cerr.NewEnvelopeChiMiddleware(),
		cerr.NewRecoverChiMiddleware(),
		preflight,
	)
	r.NotFound(endpointNotFound)
	r.MethodNotAllowed(endpointNotFound)
	s.service.Routes(r)

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker(s.service.Name())))
	mux.Handle("/", r)

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       methods,
		AllowedHeaders:       allowedHeaders,
		OptionsPassthrough:   true,
		OptionsSuccessStatus: http.StatusOK,
	}).Handler(mux), &http2.Server{})
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of
// every request.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "service", s.service.Name(), "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// corsHeaders sets the same CORS headers on every response, errors included.
func corsHeaders(methods []string) func(http.Handler) http.Handler {
	allowMethods := strings.Join(methods, ",")
	allowHeaders := strings.Join(allowedHeaders, ",")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			next.ServeHTTP(w, r)
		})
	}
}

// preflight answers every OPTIONS request without reaching a handler.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			cerr.SetJSONResponse(r.Context(), nil, "CORS preflight")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func endpointNotFound(w http.ResponseWriter, r *http.Request) {
	cerr.SetNewJSONError(r.Context(), cerr.NotFound, "Endpoint not found", nil)
}
