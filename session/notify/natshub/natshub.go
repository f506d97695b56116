// Package natshub is a NATS-backed notify.Notifier for deployments where
// dashboard instances on different hosts share one session store (e.g. an NFS
// mount) and file watching cannot be relied on across machines.
package natshub

import (
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sarusarang/crm-extexhnology/session/notify"
)

// DefaultSubject is the subject session-changed signals are published on.
const DefaultSubject = "crmdash.session.changed"

// Hub broadcasts session-changed signals over a NATS subject.
type Hub struct {
	conn    *nats.Conn
	subject string
	log     zerolog.Logger
}

var _ notify.Notifier = (*Hub)(nil)

// Option configures a Hub.
type Option func(*Hub)

// WithSubject overrides the broadcast subject.
func WithSubject(subject string) Option {
	return func(h *Hub) {
		h.subject = subject
	}
}

// WithLogger sets the hub's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Hub) {
		h.log = log
	}
}

// New connects to the NATS server at url and returns a hub publishing on
// DefaultSubject unless overridden.
func New(url string, options ...Option) (*Hub, error) {
	conn, err := nats.Connect(url, nats.Name("crmdash-session"))
	if err != nil {
		return nil, errors.Wrap(err, "natshub.New: connect")
	}

	h := &Hub{
		conn:    conn,
		subject: DefaultSubject,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(h)
	}
	return h, nil
}

// Broadcast publishes a session-changed signal. Publish failures are logged,
// not returned: delivery is best-effort by contract.
func (h *Hub) Broadcast() {
	if err := h.conn.Publish(h.subject, nil); err != nil {
		h.log.Warn().Err(err).Str("subject", h.subject).Msg("session broadcast failed")
	}
}

// Subscribe registers handler for signals published by any instance, this one
// included.
func (h *Hub) Subscribe(handler notify.Handler) (cancel func()) {
	sub, err := h.conn.Subscribe(h.subject, func(*nats.Msg) {
		handler()
	})
	if err != nil {
		h.log.Warn().Err(err).Str("subject", h.subject).Msg("session subscribe failed")
		return func() {}
	}
	return func() {
		_ = sub.Unsubscribe()
	}
}

// Close drains the connection.
func (h *Hub) Close() error {
	return h.conn.Drain()
}
