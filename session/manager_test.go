package session_test

import (
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/sarusarang/crm-extexhnology/internal/apperrors"
	"github.com/sarusarang/crm-extexhnology/session"
	"github.com/sarusarang/crm-extexhnology/session/notify"
	"github.com/sarusarang/crm-extexhnology/session/storefakes"
	"github.com/stretchr/testify/require"
)

const signingSecret = "test-secret-1234"

var startTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is an injectable clock the tests advance by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// timerRecorder captures watchdog timers instead of letting them run, so
// tests fire them deterministically.
type timerRecorder struct {
	mu        sync.Mutex
	durations []time.Duration
	callbacks []func()
}

func (tr *timerRecorder) AfterFunc(d time.Duration, f func()) *time.Timer {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.durations = append(tr.durations, d)
	tr.callbacks = append(tr.callbacks, f)
	// Parked far enough out that it never fires during a test run.
	return time.AfterFunc(time.Hour, func() {})
}

// fire invokes the i-th captured callback in the test goroutine.
func (tr *timerRecorder) fire(i int) {
	tr.mu.Lock()
	cb := tr.callbacks[i]
	tr.mu.Unlock()
	cb()
}

func (tr *timerRecorder) count() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.callbacks)
}

// alertRecorder collects user-visible notifications.
type alertRecorder struct {
	mu      sync.Mutex
	notices []recordedAlert
}

type recordedAlert struct {
	Level string
	Title string
}

func (a *alertRecorder) Success(title, _ string) { a.record("success", title) }
func (a *alertRecorder) Error(title, _ string)   { a.record("error", title) }
func (a *alertRecorder) Info(title, _ string)    { a.record("info", title) }

func (a *alertRecorder) record(level, title string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = append(a.notices, recordedAlert{Level: level, Title: title})
}

func (a *alertRecorder) byLevel(level string) []recordedAlert {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []recordedAlert
	for _, n := range a.notices {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}

// testFixture holds a manager and its injected dependencies.
type testFixture struct {
	store   *storefakes.FakeStore
	hub     *notify.Hub
	alerts  *alertRecorder
	clock   *fakeClock
	timers  *timerRecorder
	manager *session.Manager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		store:  storefakes.NewFakeStore(),
		hub:    notify.NewHub(),
		alerts: &alertRecorder{},
		clock:  &fakeClock{now: startTime},
		timers: &timerRecorder{},
	}

	manager, err := session.NewManager(f.store,
		session.WithNotifier(f.hub),
		session.WithAlerter(f.alerts),
		session.WithNowTime(f.clock.Now),
		session.WithAfterFunc(f.timers.AfterFunc),
	)
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	f.manager = manager
	return f
}

func mintToken(t *testing.T, exp time.Time, extra jwtlib.MapClaims) string {
	t.Helper()

	claims := jwtlib.MapClaims{"exp": exp.Unix()}
	for k, v := range extra {
		claims[k] = v
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(signingSecret))
	require.NoError(t, err)
	return signed
}

func TestNewManagerRequiresStore(t *testing.T) {
	_, err := session.NewManager(nil)
	require.Error(t, err)
}

func TestLoginSuccess(t *testing.T) {
	f := setupTestFixture(t)
	access := mintToken(t, startTime.Add(time.Hour), nil)

	redirect, err := f.manager.Login(session.TokensResponse{
		Access:   access,
		Name:     "Alice",
		UserType: session.UserTypeAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, "/projects", redirect)

	require.True(t, f.manager.IsAuthenticated())
	require.Equal(t, "Alice", f.manager.UserName())
	require.Equal(t, session.UserTypeAdmin, f.manager.UserType())

	rec, err := f.store.Read()
	require.NoError(t, err)
	require.Equal(t, access, rec.Token)
	require.Equal(t, "Alice", rec.Name)
	require.Equal(t, "admin", rec.Role)

	// Login followed immediately by GetToken returns the same token string.
	require.Equal(t, access, f.manager.GetToken())

	require.Len(t, f.alerts.byLevel("success"), 1)
	require.Empty(t, f.alerts.byLevel("error"))
}

func TestLoginRedirectsByRole(t *testing.T) {
	tests := []struct {
		role session.UserType
		want string
	}{
		{session.UserTypeSuperAdmin, "/"},
		{session.UserTypeAdmin, "/projects"},
		{session.UserTypeDeveloper, "/developer"},
		{session.UserType("intern"), "/"},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			f := setupTestFixture(t)
			redirect, err := f.manager.Login(session.TokensResponse{
				Access:   mintToken(t, startTime.Add(time.Hour), nil),
				Name:     "Bob",
				UserType: tc.role,
			})
			require.NoError(t, err)
			require.Equal(t, tc.want, redirect)
		})
	}
}

func TestLoginRejectsExpiredToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Login(session.TokensResponse{
		Access:   mintToken(t, startTime.Add(-time.Minute), nil),
		Name:     "Alice",
		UserType: session.UserTypeAdmin,
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidLoginToken)

	// No transition, no persistence, exactly one error notification.
	require.False(t, f.manager.IsAuthenticated())
	require.Zero(t, f.store.Writes)
	require.Len(t, f.alerts.byLevel("error"), 1)
}

func TestLoginRejectsMalformedToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Login(session.TokensResponse{
		Access:   "not-a-jwt",
		Name:     "Alice",
		UserType: session.UserTypeAdmin,
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidLoginToken)
	require.False(t, f.manager.IsAuthenticated())
	require.Zero(t, f.store.Writes)
	require.Len(t, f.alerts.byLevel("error"), 1)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.manager.Login(session.TokensResponse{
		Access:   mintToken(t, startTime.Add(time.Hour), nil),
		Name:     "Alice",
		UserType: session.UserTypeAdmin,
	})
	require.NoError(t, err)

	f.manager.Logout()
	require.False(t, f.manager.IsAuthenticated())
	require.Empty(t, f.manager.UserName())
	require.Empty(t, f.manager.UserType())

	rec, err := f.store.Read()
	require.NoError(t, err)
	require.True(t, rec.Empty())
	require.Len(t, f.alerts.byLevel("success"), 2) // login + logout

	// Idempotent with respect to state, but still observable.
	f.manager.Logout()
	require.False(t, f.manager.IsAuthenticated())
	require.Len(t, f.alerts.byLevel("info"), 1)
}

func TestGetTokenNeverReturnsStaleToken(t *testing.T) {
	f := setupTestFixture(t)

	// A physically present but expired token reads back as absent.
	f.store.Seed(session.Record{
		Token: mintToken(t, startTime.Add(-time.Hour), nil),
		Name:  "Alice",
		Role:  "admin",
	})
	require.Empty(t, f.manager.GetToken())

	f.store.Seed(session.Record{Token: "garbage", Name: "Alice", Role: "admin"})
	require.Empty(t, f.manager.GetToken())
}

func TestInitialStateDerivedFromStore(t *testing.T) {
	store := storefakes.NewFakeStore()
	clock := &fakeClock{now: startTime}
	store.Seed(session.Record{
		Token: mintToken(t, startTime.Add(time.Hour), nil),
		Name:  "Carol",
		Role:  "developer",
	})

	manager, err := session.NewManager(store, session.WithNowTime(clock.Now))
	require.NoError(t, err)
	defer manager.Close()

	require.True(t, manager.IsAuthenticated())
	require.Equal(t, "Carol", manager.UserName())
	require.Equal(t, session.UserTypeDeveloper, manager.UserType())
}

func TestInitialStateToleratesPartialRecord(t *testing.T) {
	store := storefakes.NewFakeStore()
	store.Seed(session.Record{Name: "Carol", Role: "developer"}) // token absent

	manager, err := session.NewManager(store)
	require.NoError(t, err)
	defer manager.Close()

	require.False(t, manager.IsAuthenticated())
	require.Empty(t, manager.UserName())
	require.Empty(t, manager.UserType())
}

func TestWatchdogExpiresSession(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Login(session.TokensResponse{
		Access:   mintToken(t, startTime.Add(2*time.Second), nil),
		Name:     "Alice",
		UserType: session.UserTypeAdmin,
	})
	require.NoError(t, err)
	require.True(t, f.manager.IsAuthenticated())

	// The watchdog was armed for the token's remaining lifetime.
	last := f.timers.count() - 1
	f.timers.mu.Lock()
	armed := f.timers.durations[last]
	f.timers.mu.Unlock()
	require.Equal(t, 2*time.Second, armed)

	// Advance past expiry and fire: authenticated flips without any Logout.
	f.clock.Advance(2 * time.Second)
	f.timers.fire(last)

	require.False(t, f.manager.IsAuthenticated())
	rec, err := f.store.Read()
	require.NoError(t, err)
	require.True(t, rec.Empty())

	infos := f.alerts.byLevel("info")
	require.Len(t, infos, 1)
	require.Equal(t, "Session expired. Please log in again.", infos[0].Title)
}

func TestSupersededWatchdogIsNoOp(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Login(session.TokensResponse{
		Access:   mintToken(t, startTime.Add(time.Second), nil),
		Name:     "Alice",
		UserType: session.UserTypeAdmin,
	})
	require.NoError(t, err)
	staleTimer := f.timers.count() - 1

	// A second login replaces the token before the first timer fires.
	_, err = f.manager.Login(session.TokensResponse{
		Access:   mintToken(t, startTime.Add(time.Hour), nil),
		Name:     "Alice",
		UserType: session.UserTypeAdmin,
	})
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	f.timers.fire(staleTimer)

	// The dangling timer re-checked liveness and did nothing.
	require.True(t, f.manager.IsAuthenticated())
	require.NotEmpty(t, f.manager.GetToken())
	require.Empty(t, f.alerts.byLevel("info"))
}

func TestCrossInstanceSync(t *testing.T) {
	store := storefakes.NewFakeStore()
	hub := notify.NewHub()
	clock := &fakeClock{now: startTime}

	newInstance := func() *session.Manager {
		m, err := session.NewManager(store,
			session.WithNotifier(hub),
			session.WithAlerter(&alertRecorder{}),
			session.WithNowTime(clock.Now),
			session.WithAfterFunc((&timerRecorder{}).AfterFunc),
		)
		require.NoError(t, err)
		t.Cleanup(m.Close)
		return m
	}

	tabA := newInstance()
	tabB := newInstance()

	_, err := tabA.Login(session.TokensResponse{
		Access:   mintToken(t, startTime.Add(time.Hour), nil),
		Name:     "Alice",
		UserType: session.UserTypeSuperAdmin,
	})
	require.NoError(t, err)

	// The other instance observed the broadcast and re-derived from storage.
	require.True(t, tabB.IsAuthenticated())
	require.Equal(t, "Alice", tabB.UserName())
	require.Equal(t, session.UserTypeSuperAdmin, tabB.UserType())

	tabB.Logout()
	require.False(t, tabA.IsAuthenticated())
	require.Empty(t, tabA.GetToken())
}

func TestSyncWithoutBroadcast(t *testing.T) {
	// Instances with no shared notifier still converge on their next sync
	// tick, the storage-watch path.
	store := storefakes.NewFakeStore()
	clock := &fakeClock{now: startTime}

	tabA, err := session.NewManager(store, session.WithNowTime(clock.Now),
		session.WithAlerter(&alertRecorder{}), session.WithAfterFunc((&timerRecorder{}).AfterFunc))
	require.NoError(t, err)
	defer tabA.Close()

	tabB, err := session.NewManager(store, session.WithNowTime(clock.Now),
		session.WithAlerter(&alertRecorder{}), session.WithAfterFunc((&timerRecorder{}).AfterFunc))
	require.NoError(t, err)
	defer tabB.Close()

	_, err = tabA.Login(session.TokensResponse{
		Access:   mintToken(t, startTime.Add(time.Hour), nil),
		Name:     "Alice",
		UserType: session.UserTypeAdmin,
	})
	require.NoError(t, err)
	require.False(t, tabB.IsAuthenticated())

	tabB.Sync()
	require.True(t, tabB.IsAuthenticated())

	tabA.Logout()
	tabB.Sync()
	require.False(t, tabB.IsAuthenticated())
}

func TestFromContextOutsideMiddlewarePanics(t *testing.T) {
	require.Panics(t, func() {
		session.FromContext(t.Context())
	})
}

func TestFromContextRoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	ctx := session.NewContext(t.Context(), f.manager)
	require.Same(t, f.manager, session.FromContext(ctx))
}
