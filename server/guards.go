package server

import (
	"net/http"
	"net/url"

	"github.com/sarusarang/crm-extexhnology/internal/metrics"
	"github.com/sarusarang/crm-extexhnology/session"
)

// RequireAuth admits any authenticated session. On failure it surfaces an
// "unauthenticated" notice and redirects to the login route, carrying the
// attempted location for post-login return.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := session.FromContext(r.Context())
		if !sessions.IsAuthenticated() {
			s.notices.Error("Oops..!", "You are not logged in.")
			metrics.GuardRejectionsTotal.WithLabelValues("require_auth").Inc()
			target := RouteAuth + "?from=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// RequireRole admits sessions whose role is in the allowed set. On failure it
// surfaces an "unauthorized" notice and sends the user back where they came
// from, or to the default route when the referrer is unknown. Guards compose
// by nesting; mount RequireAuth outside RequireRole.
func (s *Server) RequireRole(allowedRoles ...session.UserType) func(http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[session.UserType]bool, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sessions := session.FromContext(r.Context())
			userType := sessions.UserType()
			if userType == "" || !allowed[userType] {
				s.notices.Error("Oops..!", "You are not authorized to access this page.")
				metrics.GuardRejectionsTotal.WithLabelValues("require_role").Inc()
				http.Redirect(w, r, fallbackLocation(r), http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}

// fallbackLocation picks where an unauthorized user gets sent back to: the
// referring page when it is local, the default route otherwise.
func fallbackLocation(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	parsed, err := url.Parse(ref)
	if err != nil || parsed.Host != r.Host {
		return "/"
	}
	if parsed.Path == "" || parsed.Path == r.URL.Path {
		return "/"
	}
	return parsed.Path
}
