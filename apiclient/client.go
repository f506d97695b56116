// Package apiclient talks to the remote CRM REST API. It is a consumer of the
// session layer: every authenticated call sources its bearer token from a
// TokenSource, typically the session manager, and therefore never sends an
// expired credential.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sarusarang/crm-extexhnology/internal/apperrors"
	"github.com/sarusarang/crm-extexhnology/session"
)

// TokenSource supplies the current bearer token, or "" when no live session
// is held. *session.Manager satisfies it.
type TokenSource interface {
	GetToken() string
}

// APIError is the error shape surfaced for remote failures: the response
// status plus the backend's message. Network errors carry status 0.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return apperrors.ErrRemoteAPI
}

// Client is a typed client for the CRM backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

// ClientOption modifies a Client at construction.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTokenSource sets the bearer token source for authenticated calls.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client rooted at baseURL (e.g.
// "http://localhost:8000/api/").
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &RetryRoundTripper{MaxRetries: 2},
		},
		log: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Login exchanges credentials for a token bundle at POST token/. The bundle
// is returned untouched; deciding whether it is acceptable is the session
// manager's job.
func (c *Client) Login(ctx context.Context, username, password string) (*session.TokensResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"token/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "apiclient.Login")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tokens session.TokensResponse
	if err := c.do(req, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Projects lists projects matching the filter at GET client/project-filters/.
func (c *Client) Projects(ctx context.Context, filter ProjectFilter) (*ProjectPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("search", filter.Search)
	params.Set("approach_date", filter.ApproachDate)
	params.Set("status", filter.Status)
	params.Set("domain_status", filter.DomainStatus)
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"client/project-filters/?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "apiclient.Projects")
	}

	var projects ProjectPage
	if err := c.doAuthenticated(req, &projects); err != nil {
		return nil, err
	}
	return &projects, nil
}

// AddProject creates a project at POST client/.
func (c *Client) AddProject(ctx context.Context, project *Project) (*Project, error) {
	return c.writeProject(ctx, http.MethodPost, c.baseURL+"client/", project)
}

// UpdateProject updates a project at PATCH client/{id}/.
func (c *Client) UpdateProject(ctx context.Context, id string, project *Project) (*Project, error) {
	return c.writeProject(ctx, http.MethodPatch, c.baseURL+"client/"+url.PathEscape(id)+"/", project)
}

// DeleteProject removes a project at DELETE client/{id}/.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"client/"+url.PathEscape(id)+"/", nil)
	if err != nil {
		return errors.Wrap(err, "apiclient.DeleteProject")
	}
	return c.doAuthenticated(req, nil)
}

func (c *Client) writeProject(ctx context.Context, method, endpoint string, project *Project) (*Project, error) {
	body, err := json.Marshal(project)
	if err != nil {
		return nil, errors.Wrap(err, "apiclient: encode project")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, errors.Wrap(err, "apiclient: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	var saved Project
	if err := c.doAuthenticated(req, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// doAuthenticated attaches the bearer token and executes the request. A
// missing token fails fast with ErrTokenMissing rather than producing a
// guaranteed 401 round trip.
func (c *Client) doAuthenticated(req *http.Request, out any) error {
	if c.tokens == nil {
		return errors.New("apiclient: no token source configured")
	}
	tok := c.tokens.GetToken()
	if tok == "" {
		return apperrors.ErrTokenMissing
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("url", req.URL.String()).Msg("request failed")
		return &APIError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "apiclient: decode %s response", req.URL.Path)
	}
	return nil
}

// errorMessage pulls the backend's human-readable message out of an error
// body, trying the shapes the API actually uses.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	return "Something went wrong"
}
