package filestore

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sarusarang/crm-extexhnology/session/notify"
)

// defaultDebounce is how long the watcher waits for further file events
// before delivering a single sync tick. Write+Clear touch three files; one
// tick covers the group.
const defaultDebounce = 100 * time.Millisecond

// Watcher turns session-directory mutations made by other processes into
// notify ticks. It is a notify.Source: it only observes, the manager's own
// notifier does the broadcasting.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	subs   map[int]notify.Handler
	nextID int

	done      chan struct{}
	closeOnce sync.Once
}

var _ notify.Source = (*Watcher)(nil)

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce overrides the event debounce delay.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatchLogger sets the watcher's logger.
func WithWatchLogger(log zerolog.Logger) WatchOption {
	return func(w *Watcher) {
		w.log = log
	}
}

// Watch starts watching the store's directory for record changes.
func (s *Store) Watch(options ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "filestore.Watch: create watcher")
	}
	if err := fsw.Add(s.dir); err != nil {
		fsw.Close()
		return nil, errors.Wrap(err, "filestore.Watch: add session dir")
	}

	w := &Watcher{
		dir:      s.dir,
		watcher:  fsw,
		debounce: defaultDebounce,
		log:      zerolog.Nop(),
		subs:     make(map[int]notify.Handler),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	go w.run()
	return w, nil
}

// Subscribe registers handler for sync ticks.
func (w *Watcher) Subscribe(handler notify.Handler) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.subs[id] = handler

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs, id)
	}
}

// Close stops watching. Pending debounced ticks are dropped. Safe to call
// more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isRecordEvent(event) {
				continue
			}
			// Collapse the burst of per-key events into one tick.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.deliver()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("dir", w.dir).Msg("session dir watch error")
		}
	}
}

func (w *Watcher) deliver() {
	w.mu.Lock()
	handlers := make([]notify.Handler, 0, len(w.subs))
	for _, handler := range w.subs {
		handlers = append(handlers, handler)
	}
	w.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

// isRecordEvent reports whether the event touches one of the record keys
// (directly, or via the temp-file rename Write uses).
func isRecordEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	for _, file := range []string{tokenFile, nameFile, userTypeFile} {
		if base == file {
			return true
		}
	}
	return false
}
