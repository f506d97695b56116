package session

import "context"

type contextKey struct{}

// NewContext returns ctx carrying the manager. The dashboard's session
// middleware attaches it to every request.
func NewContext(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

// FromContext returns the manager carried by ctx. Calling it from a handler
// mounted outside the session middleware is a wiring defect, so it fails
// loudly rather than degrading to a logged-out session.
func FromContext(ctx context.Context) *Manager {
	m, ok := ctx.Value(contextKey{}).(*Manager)
	if !ok {
		panic("session.FromContext must be used within the session middleware")
	}
	return m
}
