package server

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sarusarang/crm-extexhnology/apiclient"
	"github.com/sarusarang/crm-extexhnology/internal/apperrors"
	"github.com/sarusarang/crm-extexhnology/session"
)

const contentTypeHTML = "text/html; charset=utf-8"
const contentTypeJSON = "application/json"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}} - {{.AppName}}</title></head>
<body>
{{range .Notices}}<p class="notice notice-{{.Type}}"><strong>{{.Title}}</strong> {{.Description}}</p>
{{end}}
{{if .UserName}}<p>Signed in as {{.UserName}} ({{.UserType}}) &middot; <a href="/logout">Logout</a></p>{{end}}
<h1>{{.Title}}</h1>
{{block "content" .}}{{end}}
</body>
</html>`))

var authTmpl = template.Must(template.Must(pageTmpl.Clone()).Parse(`{{define "content"}}
<form method="post" action="/auth">
<input type="hidden" name="from" value="{{.From}}">
<label>Username <input name="username" value="{{.Username}}" autofocus></label>
<label>Password <input name="password" type="password"></label>
<button type="submit">Login</button>
</form>
{{end}}`))

var projectsTmpl = template.Must(template.Must(pageTmpl.Clone()).Parse(`{{define "content"}}
<p>{{.Page.Count}} projects ({{.Page.TotalPages}} pages)</p>
<table>
<tr><th>Project</th><th>Client</th><th>Status</th><th>Domain</th><th>Domain Status</th></tr>
{{range .Page.Results}}<tr><td>{{.ProjectName}}</td><td>{{.ClientName}}</td><td>{{.ProjectStatus}}</td><td>{{.DomainName}}</td><td>{{.DomainStatus}}</td></tr>
{{end}}
</table>
{{end}}`))

type pageData struct {
	AppName  string
	Title    string
	Notices  []Notice
	UserName string
	UserType session.UserType

	// Auth page
	From     string
	Username string

	// Projects page
	Page *apiclient.ProjectPage
}

func (s *Server) newPageData(title string) pageData {
	return pageData{
		AppName:  s.config.GetAppName(),
		Title:    title,
		Notices:  s.notices.Pop(),
		UserName: s.sessions.UserName(),
		UserType: s.sessions.UserType(),
	}
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data pageData) {
	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("page", data.Title).Msg("failed to render page")
	}
}

// AuthPageHandler displays the login page (GET /auth)
func (s *Server) AuthPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.newPageData("Login")
		data.From = r.URL.Query().Get("from")
		data.Username = r.URL.Query().Get("username")
		s.render(w, authTmpl, data)
	}
}

// LoginSubmissionHandler processes the login form (POST /auth): it exchanges
// the credentials with the remote API and hands the resulting token bundle to
// the session manager, which decides whether it is acceptable.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		username := r.FormValue("username")
		password := r.FormValue("password")
		from := r.FormValue("from")

		tokens, err := s.api.Login(r.Context(), username, password)
		if err != nil {
			var apiErr *apiclient.APIError
			if apperrors.As(err, &apiErr) && apiErr.Status != 0 {
				s.notices.Error("Ops..!", apiErr.Message)
			} else {
				s.notices.Error("Ops..!", "Something went wrong Please try again.")
			}
			log.Warn().Err(err).Str("username", username).Msg("login request failed")
			// The form retains the entered username for correction.
			http.Redirect(w, r, RouteAuth+"?username="+url.QueryEscape(username), http.StatusSeeOther)
			return
		}

		redirect, err := s.sessions.Login(*tokens)
		if err != nil {
			// Invalid token bundle: the manager already surfaced the notice.
			http.Redirect(w, r, RouteAuth+"?username="+url.QueryEscape(username), http.StatusSeeOther)
			return
		}

		// Only local paths; "//host" would be a protocol-relative redirect.
		if strings.HasPrefix(from, "/") && !strings.HasPrefix(from, "//") {
			redirect = from
		}
		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}

// LogoutHandler ends the session (GET /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Logout()
		http.Redirect(w, r, RouteAuth, http.StatusSeeOther)
	}
}

// OverviewHandler is the superadmin landing page (GET /)
func (s *Server) OverviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.newPageData("Overview")
		page, err := s.api.Projects(r.Context(), apiclient.ProjectFilter{})
		if err != nil {
			log.Warn().Err(err).Msg("overview: project fetch failed")
			page = &apiclient.ProjectPage{}
		}
		data.Page = page
		s.render(w, projectsTmpl, data)
	}
}

// ProjectsHandler lists projects with the standard filters (GET /projects)
func (s *Server) ProjectsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		filter := apiclient.ProjectFilter{
			Search:       q.Get("search"),
			ApproachDate: q.Get("approach_date"),
			Status:       q.Get("status"),
			DomainStatus: q.Get("domain_status"),
			Page:         page,
		}

		data := s.newPageData("Projects")
		result, err := s.api.Projects(r.Context(), filter)
		if err != nil {
			log.Warn().Err(err).Msg("projects: fetch failed")
			result = &apiclient.ProjectPage{}
		}
		data.Page = result
		s.render(w, projectsTmpl, data)
	}
}

// DeveloperHandler is the developer landing page (GET /developer)
func (s *Server) DeveloperHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, pageTmpl, s.newPageData("Developer"))
	}
}

// SessionInfoHandler reports the current session as JSON (GET /api/session)
func (s *Server) SessionInfoHandler() http.HandlerFunc {
	type sessionInfo struct {
		IsAuthenticated bool             `json:"is_authenticated"`
		UserName        string           `json:"user_name,omitempty"`
		UserType        session.UserType `json:"user_type,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sessions := session.FromContext(r.Context())
		info := sessionInfo{
			IsAuthenticated: sessions.IsAuthenticated(),
			UserName:        sessions.UserName(),
			UserType:        sessions.UserType(),
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		if err := json.NewEncoder(w).Encode(info); err != nil {
			log.Err(err).Msg("failed to encode session info")
		}
	}
}

// HealthHandler reports process liveness (GET /healthz)
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
