// Package server is the dashboard's HTTP front end: the login page, the
// role-gated pages, and the session introspection and metrics endpoints. All
// authorization decisions flow through the guards in guards.go, which read the
// session manager's state and nothing else.
package server

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/sarusarang/crm-extexhnology/apiclient"
	"github.com/sarusarang/crm-extexhnology/internal/config"
	"github.com/sarusarang/crm-extexhnology/session"
)

// RouteAuth is the login route guards redirect to on failure.
const RouteAuth = "/auth"

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	sessions *session.Manager
	api      *apiclient.Client
	notices  *Notices
}

// New creates the dashboard server. The session manager and API client are
// owned by the caller (the composition root); the server only consumes them.
func New(cfg config.Config, sessions *session.Manager, api *apiclient.Client, notices *Notices) (*Server, error) {
	if sessions == nil {
		return nil, errors.New("[Server New] session manager is required")
	}
	if api == nil {
		return nil, errors.New("[Server New] api client is required")
	}
	if notices == nil {
		notices = NewNotices()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: sessions,
		api:      api,
		notices:  notices,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Str("method", method).Str("path", path).Msg("route")
}
