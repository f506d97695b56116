package apiclient

import (
	"net/http"
	"time"
)

// RetryRoundTripper retries idempotent requests that failed transiently:
// network errors and 5xx responses, GET/HEAD only. Bodies are never replayed.
type RetryRoundTripper struct {
	Base       http.RoundTripper
	MaxRetries int
	Backoff    func(attempt int) time.Duration
	Sleep      func(time.Duration)
}

// RoundTrip executes the request, retrying per the policy above.
func (r *RetryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	base := r.Base
	if base == nil {
		base = http.DefaultTransport
	}
	backoff := r.Backoff
	if backoff == nil {
		backoff = defaultBackoff
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var resp *http.Response
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = base.RoundTrip(req)
		if attempt >= r.MaxRetries || !shouldRetry(req, resp, err) {
			return resp, err
		}
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}

		wait := backoff(attempt + 1)
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		default:
		}
		if wait > 0 {
			sleep(wait)
		}
	}
}

func shouldRetry(req *http.Request, resp *http.Response, err error) bool {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return false
	}
	if err != nil {
		return true
	}
	return resp != nil && resp.StatusCode >= 500
}

func defaultBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 250 * time.Millisecond
}
