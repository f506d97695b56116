// Package session owns the dashboard's client-held authentication state: the
// persisted token record, the in-memory session, and the expiry lifecycle.
package session

// UserType is the role carried by a logged-in session.
type UserType string

// Roles recognised by the dashboard.
const (
	UserTypeSuperAdmin UserType = "superadmin"
	UserTypeAdmin      UserType = "admin"
	UserTypeDeveloper  UserType = "developer"
)

// RedirectPath returns the landing route for a freshly logged-in role.
func (u UserType) RedirectPath() string {
	switch u {
	case UserTypeSuperAdmin:
		return "/"
	case UserTypeAdmin:
		return "/projects"
	case UserTypeDeveloper:
		return "/developer"
	default:
		return "/"
	}
}

// TokensResponse is the bundle handed over by the login form after the remote
// API issues credentials. Refresh is accepted but ignored by this layer.
type TokensResponse struct {
	Access   string   `json:"access"`
	Refresh  string   `json:"refresh,omitempty"`
	Name     string   `json:"name"`
	UserType UserType `json:"user_type"`
}

// Record is the persisted token record: three independent string-valued keys
// shared by every manager instance watching the same store. Any subset may be
// empty; validity is the token package's responsibility, not the store's.
type Record struct {
	Token string
	Name  string
	Role  string
}

// Empty reports whether no credential is present at all.
func (r Record) Empty() bool {
	return r.Token == "" && r.Name == "" && r.Role == ""
}

// Store persists the token record durably. Write and Clear act on all three
// keys as one logical group.
type Store interface {
	// Read returns the current record. Missing keys come back as empty
	// strings, never as an error.
	Read() (Record, error)

	// Write sets all three keys.
	Write(rec Record) error

	// Clear removes all three keys. Clearing an already-empty store is not
	// an error.
	Clear() error
}
