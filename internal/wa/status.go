package wa

import (
	"sync"
	"time"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateQRPending    State = "qr_pending"
	StateError        State = "error"
)

type Status struct {
	Connected      bool       `json:"connected"`
	PhoneNumber    string     `json:"phoneNumber"`
	ConnectedSince *time.Time `json:"connectedSince"`
	State          State      `json:"status"`
}

// StatusHolder keeps the current session status. Subscribers get a copy on
// every change; a slow subscriber misses updates instead of blocking.
type StatusHolder struct {
	mu     sync.Mutex
	status Status
	subs   map[chan Status]struct{}
}

func NewStatusHolder() *StatusHolder {
	return &StatusHolder{
		status: Status{State: StateDisconnected},
		subs:   make(map[chan Status]struct{}),
	}
}

func (h *StatusHolder) Get() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status.copy()
}

func (h *StatusHolder) Set(s Status) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.status = s.copy()
	for ch := range h.subs {
		select {
		case ch <- h.status.copy():
		default:
		}
	}
}

// Subscribe returns a channel of status updates and a func to stop them.
func (h *StatusHolder) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 8)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *StatusHolder) setConnected(phone string, since time.Time) {
	h.Set(Status{Connected: true, PhoneNumber: phone, ConnectedSince: &since, State: StateConnected})
}

func (h *StatusHolder) setState(st State) {
	h.Set(Status{State: st})
}

func (s Status) copy() Status {
	if s.ConnectedSince != nil {
		t := *s.ConnectedSince
		s.ConnectedSince = &t
	}
	return s
}
