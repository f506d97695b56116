package storefakes

import (
	"sync"

	"github.com/sarusarang/crm-extexhnology/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session.Store for tests. Multiple managers may
// share one instance to exercise the cross-instance contract.
type FakeStore struct {
	lock   sync.RWMutex
	record session.Record

	Writes int
	Clears int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (fs *FakeStore) Read() (session.Record, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.record, nil
}

func (fs *FakeStore) Write(rec session.Record) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.record = rec
	fs.Writes++
	return nil
}

func (fs *FakeStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.record = session.Record{}
	fs.Clears++
	return nil
}

// Seed sets the record directly, bypassing the write counter. Useful for
// arranging pre-existing storage state.
func (fs *FakeStore) Seed(rec session.Record) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.record = rec
}
