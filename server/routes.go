package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sarusarang/crm-extexhnology/session"
)

func (s *Server) initRoutes() {
	// LOGIN
	s.RegisterRouteFunc("GET "+RouteAuth, s.AuthPageHandler())
	s.RegisterRouteFunc("POST "+RouteAuth, s.LoginSubmissionHandler())
	s.RegisterRouteFunc("GET /logout", s.LogoutHandler())

	// Role-gated pages. An unauthenticated user hitting a role-gated route is
	// caught by the outer RequireAuth first.
	s.RegisterRouteFunc("GET /{$}",
		ChainMiddleware(s.OverviewHandler(), s.PageMiddleware(s.RequireAuth, s.RequireRole(session.UserTypeSuperAdmin))...))
	s.RegisterRouteFunc("GET /projects",
		ChainMiddleware(s.ProjectsHandler(), s.PageMiddleware(s.RequireAuth, s.RequireRole(session.UserTypeSuperAdmin, session.UserTypeAdmin))...))
	s.RegisterRouteFunc("GET /developer",
		ChainMiddleware(s.DeveloperHandler(), s.PageMiddleware(s.RequireAuth, s.RequireRole(session.UserTypeSuperAdmin, session.UserTypeDeveloper))...))

	// API routes
	s.RegisterRouteFunc("GET /api/session",
		ChainMiddleware(s.SessionInfoHandler(), s.SessionMiddleware))

	// Operational endpoints
	s.RegisterRouteFunc("GET /healthz", s.HealthHandler())
	s.RegisterRouteHandler("GET /metrics", promhttp.Handler())
}
