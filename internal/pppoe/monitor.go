package pppoe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/frans1705/genieacs-mikrotik/internal/logger"
	"github.com/frans1705/genieacs-mikrotik/internal/mikrotik"
)

type SessionLister interface {
	ActiveSessions(ctx context.Context) ([]mikrotik.Session, error)
}

type Messenger interface {
	SendText(ctx context.Context, number, text string) error
}

// Observer receives the session count and every login/logout.
type Observer interface {
	SetPPPoEActive(n int)
	PPPoEEvent(event string)
}

const (
	EventLogin  = "login"
	EventLogout = "logout"
)

type Change struct {
	Event   string
	Session mikrotik.Session
}

// Monitor polls the router and reports session changes to staff.
type Monitor struct {
	Sessions   SessionLister
	Interval   time.Duration
	Recipients func() []string
	Header     string
	Footer     string
	Observer   Observer

	log zerolog.Logger
	now func() time.Time

	mu        sync.Mutex
	messenger Messenger
	notify    bool
	known     map[string]mikrotik.Session
	seeded    bool
	lastCheck time.Time
}

func NewMonitor(sessions SessionLister, interval time.Duration, recipients func() []string) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		Sessions:   sessions,
		Interval:   interval,
		Recipients: recipients,
		log:        logger.ComponentLogger("pppoe-monitor"),
		now:        time.Now,
		notify:     true,
		known:      map[string]mikrotik.Session{},
	}
}

// SetMessenger attaches the outbound channel once WhatsApp is up.
func (m *Monitor) SetMessenger(msg Messenger) {
	m.mu.Lock()
	m.messenger = msg
	m.mu.Unlock()
}

func (m *Monitor) SetNotifications(on bool) {
	m.mu.Lock()
	m.notify = on
	m.mu.Unlock()
	m.log.Info().Bool("enabled", on).Msg("notifications toggled")
}

type State struct {
	Notifications bool      `json:"notifications"`
	Active        int       `json:"active"`
	LastCheck     time.Time `json:"last_check"`
	Interval      string    `json:"interval"`
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		Notifications: m.notify,
		Active:        len(m.known),
		LastCheck:     m.lastCheck,
		Interval:      m.Interval.String(),
	}
}

func (m *Monitor) ActiveSessions(ctx context.Context) ([]mikrotik.Session, error) {
	return m.Sessions.ActiveSessions(ctx)
}

// Run polls until ctx is cancelled. Errors are logged and the loop goes on.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info().Dur("interval", m.Interval).Msg("started")
	t := time.NewTicker(m.Interval)
	defer t.Stop()

	for {
		if _, err := m.Tick(ctx); err != nil {
			m.log.Error().Err(err).Msg("poll failed")
		}
		select {
		case <-ctx.Done():
			m.log.Info().Msg("stopped")
			return
		case <-t.C:
		}
	}
}

// Tick runs one poll. The first successful poll only records state.
func (m *Monitor) Tick(ctx context.Context) ([]Change, error) {
	sessions, err := m.Sessions.ActiveSessions(ctx)
	if err != nil {
		return nil, err
	}

	current := make(map[string]mikrotik.Session, len(sessions))
	for _, s := range sessions {
		current[s.Name] = s
	}

	m.mu.Lock()
	var changes []Change
	if m.seeded {
		changes = diff(m.known, current)
	}
	m.known = current
	m.seeded = true
	m.lastCheck = m.now()
	messenger := m.messenger
	notify := m.notify
	m.mu.Unlock()

	if m.Observer != nil {
		m.Observer.SetPPPoEActive(len(current))
		for _, ch := range changes {
			m.Observer.PPPoEEvent(ch.Event)
		}
	}

	if len(changes) > 0 {
		m.log.Info().Int("changes", len(changes)).Int("active", len(current)).Msg("sessions changed")
	}
	if messenger == nil || !notify || m.Recipients == nil {
		return changes, nil
	}
	for _, ch := range changes {
		text := m.Format(ch)
		for _, to := range m.Recipients() {
			if err := messenger.SendText(ctx, to, text); err != nil {
				m.log.Warn().Err(err).Str("to", to).Msg("notify failed")
			}
		}
	}
	return changes, nil
}

func diff(prev, cur map[string]mikrotik.Session) []Change {
	var out []Change
	for name, s := range cur {
		if _, ok := prev[name]; !ok {
			out = append(out, Change{Event: EventLogin, Session: s})
		}
	}
	for name, s := range prev {
		if _, ok := cur[name]; !ok {
			out = append(out, Change{Event: EventLogout, Session: s})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Event != out[j].Event {
			return out[i].Event == EventLogin
		}
		return out[i].Session.Name < out[j].Session.Name
	})
	return out
}

func (m *Monitor) Format(ch Change) string {
	var b strings.Builder
	if m.Header != "" {
		b.WriteString("*" + m.Header + "*\n\n")
	}
	s := ch.Session
	switch ch.Event {
	case EventLogin:
		b.WriteString("🟢 *PPPoE LOGIN*\n\n")
	default:
		b.WriteString("🔴 *PPPoE LOGOUT*\n\n")
	}
	fmt.Fprintf(&b, "👤 User: %s\n", s.Name)
	if s.Address != "" {
		fmt.Fprintf(&b, "🌐 IP: %s\n", s.Address)
	}
	if s.CallerID != "" {
		fmt.Fprintf(&b, "📟 Caller ID: %s\n", s.CallerID)
	}
	if ch.Event == EventLogout && s.Uptime != "" {
		fmt.Fprintf(&b, "⏱ Uptime terakhir: %s\n", s.Uptime)
	}
	fmt.Fprintf(&b, "🕒 Waktu: %s", m.now().Format("02/01/2006 15:04:05"))
	if m.Footer != "" {
		b.WriteString("\n\n" + m.Footer)
	}
	return b.String()
}
