package filestore_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sarusarang/crm-extexhnology/session"
	"github.com/sarusarang/crm-extexhnology/session/filestore"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *filestore.Store {
	t.Helper()

	store, err := filestore.New(filepath.Join(t.TempDir(), "session"))
	require.NoError(t, err)
	return store
}

func TestNewRequiresDir(t *testing.T) {
	_, err := filestore.New("")
	require.Error(t, err)
}

func TestReadEmptyStore(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Read()
	require.NoError(t, err)
	require.True(t, rec.Empty())
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := session.Record{Token: "tok-123", Name: "Alice", Role: "admin"}
	require.NoError(t, store.Write(want))

	got, err := store.Read()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Write(session.Record{Token: "tok", Name: "A", Role: "admin"}))
	require.NoError(t, store.Clear())

	rec, err := store.Read()
	require.NoError(t, err)
	require.True(t, rec.Empty())

	// Clearing an already-empty store is fine.
	require.NoError(t, store.Clear())
}

func TestPartialRecordTolerated(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Write(session.Record{Token: "tok", Name: "Alice", Role: "admin"}))

	// Simulate a torn group: the token key vanished but the others remain.
	require.NoError(t, os.Remove(filepath.Join(store.Dir(), "token")))

	rec, err := store.Read()
	require.NoError(t, err)
	require.Empty(t, rec.Token)
	require.Equal(t, "Alice", rec.Name)
	require.Equal(t, "admin", rec.Role)
}

func TestWatcherDeliversTickOnWrite(t *testing.T) {
	store := newTestStore(t)

	watcher, err := store.Watch(filestore.WithDebounce(10 * time.Millisecond))
	require.NoError(t, err)
	defer watcher.Close()

	var ticks atomic.Int64
	watcher.Subscribe(func() { ticks.Add(1) })

	require.NoError(t, store.Write(session.Record{Token: "tok", Name: "A", Role: "admin"}))

	require.Eventually(t, func() bool {
		return ticks.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherDeliversTickOnClear(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Write(session.Record{Token: "tok", Name: "A", Role: "admin"}))

	watcher, err := store.Watch(filestore.WithDebounce(10 * time.Millisecond))
	require.NoError(t, err)
	defer watcher.Close()

	var ticks atomic.Int64
	watcher.Subscribe(func() { ticks.Add(1) })

	require.NoError(t, store.Clear())

	require.Eventually(t, func() bool {
		return ticks.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	watcher, err := store.Watch()
	require.NoError(t, err)

	require.NoError(t, watcher.Close())
	require.NotPanics(t, func() { watcher.Close() })
}

func TestWatcherCancelStopsDelivery(t *testing.T) {
	store := newTestStore(t)

	watcher, err := store.Watch(filestore.WithDebounce(10 * time.Millisecond))
	require.NoError(t, err)
	defer watcher.Close()

	var ticks atomic.Int64
	cancel := watcher.Subscribe(func() { ticks.Add(1) })
	cancel()

	require.NoError(t, store.Write(session.Record{Token: "tok", Name: "A", Role: "admin"}))
	time.Sleep(100 * time.Millisecond)
	require.Zero(t, ticks.Load())
}
