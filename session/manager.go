package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sarusarang/crm-extexhnology/internal/apperrors"
	"github.com/sarusarang/crm-extexhnology/internal/metrics"
	"github.com/sarusarang/crm-extexhnology/session/notify"
	"github.com/sarusarang/crm-extexhnology/token"
)

// Manager owns the authoritative in-memory session for one execution context.
// It is the only writer of the persisted token record; every other instance
// sharing the same store learns about changes through the notifier and
// re-derives its state from storage.
//
// State machine: LoggedOut and LoggedIn(role). Login with a live token moves
// to LoggedIn; Logout, the expiry watchdog, and a broadcast showing the token
// gone or dead all move back to LoggedOut. The initial state is derived
// synchronously from the store at construction.
type Manager struct {
	id        string
	store     Store
	notifier  notify.Notifier
	sources   []notify.Source
	alerts    Alerter
	log       zerolog.Logger
	nowFunc   func() time.Time
	afterFunc func(d time.Duration, f func()) *time.Timer

	mu            sync.RWMutex
	authenticated bool
	userName      string
	userType      UserType
	watchTimer    *time.Timer
	cancels       []func()
	closed        bool
}

// Option modifies a Manager at construction.
type Option func(*Manager)

// WithNotifier sets the broadcast mechanism shared with other instances.
// Without it the manager gets a private in-process hub.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithSource subscribes the manager to an additional change source, such as a
// store watcher. May be given more than once.
func WithSource(src notify.Source) Option {
	return func(m *Manager) {
		m.sources = append(m.sources, src)
	}
}

// WithAlerter sets the sink for user-visible notifications.
func WithAlerter(a Alerter) Option {
	return func(m *Manager) {
		m.alerts = a
	}
}

// WithLogger sets the manager's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowFunc = nowFunc
	}
}

// WithAfterFunc sets the timer factory used by the expiry watchdog
// (primarily for testing)
func WithAfterFunc(afterFunc func(time.Duration, func()) *time.Timer) Option {
	return func(m *Manager) {
		m.afterFunc = afterFunc
	}
}

// NewManager creates a session manager over the given store. The initial
// state is derived synchronously from the store's current contents, and the
// expiry watchdog is armed if a live token is already present.
func NewManager(store Store, options ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}

	m := &Manager{
		id:        uuid.New().String(),
		store:     store,
		log:       zerolog.Nop(),
		nowFunc:   time.Now,
		afterFunc: time.AfterFunc,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.notifier == nil {
		m.notifier = notify.NewHub()
	}
	if m.alerts == nil {
		m.alerts = NewLogAlerter(m.log)
	}

	m.Sync()

	m.cancels = append(m.cancels, m.notifier.Subscribe(m.Sync))
	for _, src := range m.sources {
		m.cancels = append(m.cancels, src.Subscribe(m.Sync))
	}

	return m, nil
}

// Login validates the access token in resp, persists the token record, moves
// the session to LoggedIn, broadcasts the change, and returns the role's
// landing route. A token that fails to decode or is already expired is a
// recovered failure: one error notification, state unchanged, nothing
// persisted, apperrors.ErrInvalidLoginToken returned.
func (m *Manager) Login(resp TokensResponse) (string, error) {
	claims, err := token.Decode(resp.Access)
	if err != nil || !claims.LiveAt(m.nowFunc()) {
		m.alerts.Error("Invalid login token. Try again.", "")
		m.log.Warn().Err(err).Str("manager", m.id).Msg("login rejected")
		metrics.LoginFailuresTotal.Inc()
		if err != nil {
			return "", apperrors.Wrapf(apperrors.ErrInvalidLoginToken, "session.Login: %v", err)
		}
		return "", apperrors.Wrapf(apperrors.ErrInvalidLoginToken, "session.Login: %v", apperrors.ErrTokenExpired)
	}

	rec := Record{Token: resp.Access, Name: resp.Name, Role: string(resp.UserType)}
	if err := m.store.Write(rec); err != nil {
		return "", errors.Wrap(err, "session.Login: persist token record")
	}

	expiry, _ := claims.ExpiresAt()

	m.mu.Lock()
	m.authenticated = true
	m.userName = resp.Name
	m.userType = resp.UserType
	m.armWatchdogLocked(expiry)
	m.mu.Unlock()

	m.notifier.Broadcast()
	m.alerts.Success("Login Success",
		fmt.Sprintf("You have successfully logged in as %s", strings.ToUpper(string(resp.UserType))))
	metrics.LoginsTotal.WithLabelValues(string(resp.UserType)).Inc()
	m.log.Info().Str("manager", m.id).Str("user", resp.Name).Str("role", string(resp.UserType)).Msg("logged in")

	return resp.UserType.RedirectPath(), nil
}

// Logout clears the persisted record and moves the session to LoggedOut.
// Calling it while already logged out changes nothing but still surfaces an
// informational prompt.
func (m *Manager) Logout() {
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Str("manager", m.id).Msg("session store clear failed")
	}

	m.mu.Lock()
	if !m.authenticated {
		m.mu.Unlock()
		m.alerts.Info("You are already logged out. Click to Login", "")
		return
	}
	m.authenticated = false
	m.userName = ""
	m.userType = ""
	m.stopWatchdogLocked()
	m.mu.Unlock()

	m.notifier.Broadcast()
	m.alerts.Success("Logout Success", "You have successfully logged out")
	metrics.LogoutsTotal.Inc()
	m.log.Info().Str("manager", m.id).Msg("logged out")
}

// GetToken returns the persisted token iff it is currently live. Expired or
// malformed tokens still physically present in storage are never returned.
func (m *Manager) GetToken() string {
	rec, err := m.store.Read()
	if err != nil {
		m.log.Warn().Err(err).Str("manager", m.id).Msg("session store read failed")
		return ""
	}
	claims, err := token.Decode(rec.Token)
	if err != nil || !claims.LiveAt(m.nowFunc()) {
		return ""
	}
	return rec.Token
}

// Sync re-derives the in-memory session from the store. It runs on every
// notifier broadcast and watcher tick, and is idempotent so duplicate or
// out-of-order delivery is harmless.
func (m *Manager) Sync() {
	rec, err := m.store.Read()
	if err != nil {
		m.log.Warn().Err(err).Str("manager", m.id).Msg("session store read failed")
		rec = Record{}
	}

	claims, decodeErr := token.Decode(rec.Token)
	live := decodeErr == nil && claims.LiveAt(m.nowFunc())

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if live {
		m.authenticated = true
		m.userName = rec.Name
		m.userType = UserType(rec.Role)
		expiry, _ := claims.ExpiresAt()
		m.armWatchdogLocked(expiry)
	} else {
		m.authenticated = false
		m.userName = ""
		m.userType = ""
		m.stopWatchdogLocked()
	}
}

// IsAuthenticated reports whether a live session is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// UserName returns the display name of the logged-in user, or "".
func (m *Manager) UserName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userName
}

// UserType returns the role of the logged-in user, or "".
func (m *Manager) UserType() UserType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userType
}

// Close cancels the watchdog and all subscriptions. The manager must not be
// used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.stopWatchdogLocked()
	cancels := m.cancels
	m.cancels = nil
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// armWatchdogLocked replaces any pending expiry timer with one armed for the
// given expiry instant. A past instant expires on the next tick rather than
// re-entering under the lock. Callers hold m.mu.
func (m *Manager) armWatchdogLocked(expiry time.Time) {
	m.stopWatchdogLocked()
	if m.closed {
		return
	}
	timeLeft := expiry.Sub(m.nowFunc())
	if timeLeft <= 0 {
		timeLeft = 0
	}
	m.watchTimer = m.afterFunc(timeLeft, m.expire)
}

func (m *Manager) stopWatchdogLocked() {
	if m.watchTimer != nil {
		m.watchTimer.Stop()
		m.watchTimer = nil
	}
}

// expire is the watchdog callback. A timer superseded by a newer login must
// be a no-op, so liveness is re-checked against storage before acting.
func (m *Manager) expire() {
	rec, err := m.store.Read()
	if err == nil && rec.Token != "" {
		if claims, decodeErr := token.Decode(rec.Token); decodeErr == nil && claims.LiveAt(m.nowFunc()) {
			return
		}
	}

	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Str("manager", m.id).Msg("session store clear failed")
	}

	m.mu.Lock()
	if m.closed || !m.authenticated {
		m.mu.Unlock()
		return
	}
	m.authenticated = false
	m.userName = ""
	m.userType = ""
	m.stopWatchdogLocked()
	m.mu.Unlock()

	m.notifier.Broadcast()
	m.alerts.Info("Session expired. Please log in again.", "")
	metrics.SessionExpiriesTotal.Inc()
	m.log.Info().Str("manager", m.id).Msg("session expired")
}
