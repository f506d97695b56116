package server

import (
	"sync"

	"github.com/sarusarang/crm-extexhnology/session"
)

// Notice is a user-visible notification queued for the next rendered page.
type Notice struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Notices queues notifications until a page render pops them, the flash
// message pattern. It implements session.Alerter, so the session manager's
// login/logout/expiry notifications land here. The dashboard is single-tenant
// and single-user, so one process-wide queue is the whole story.
type Notices struct {
	lock    sync.Mutex
	pending []Notice
}

var _ session.Alerter = (*Notices)(nil)

// NewNotices creates an empty notice queue.
func NewNotices() *Notices {
	return &Notices{}
}

func (n *Notices) Success(title, description string) {
	n.add(Notice{Type: "success", Title: title, Description: description})
}

func (n *Notices) Error(title, description string) {
	n.add(Notice{Type: "error", Title: title, Description: description})
}

func (n *Notices) Info(title, description string) {
	n.add(Notice{Type: "info", Title: title, Description: description})
}

func (n *Notices) add(notice Notice) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.pending = append(n.pending, notice)
}

// Pop returns the queued notices and clears the queue.
func (n *Notices) Pop() []Notice {
	n.lock.Lock()
	defer n.lock.Unlock()
	popped := n.pending
	n.pending = nil
	return popped
}

// Peek returns the queued notices without clearing them.
func (n *Notices) Peek() []Notice {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]Notice(nil), n.pending...)
}
