package commands

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/frans1705/genieacs-mikrotik/internal/cfg"
	"github.com/frans1705/genieacs-mikrotik/internal/genieacs"
	"github.com/frans1705/genieacs-mikrotik/internal/logger"
	"github.com/frans1705/genieacs-mikrotik/internal/mikrotik"
	"github.com/frans1705/genieacs-mikrotik/internal/pppoe"
)

type DeviceGateway interface {
	FindDeviceByPhoneNumber(ctx context.Context, number string) genieacs.Device
	SetWiFi(ctx context.Context, id string, change genieacs.WiFiChange) (*genieacs.TaskResult, error)
	RestartDevice(ctx context.Context, id string) (*genieacs.TaskResult, error)
	FactoryResetDevice(ctx context.Context, id string) (*genieacs.TaskResult, error)
}

type PPPoEControl interface {
	ActiveSessions(ctx context.Context) ([]mikrotik.Session, error)
	SetNotifications(on bool)
	State() pppoe.State
}

type RouterInfo interface {
	Identity(ctx context.Context) (string, error)
	SecretsCount(ctx context.Context) (int, error)
}

type Observer interface {
	CommandHandled(command string)
}

type handlerFunc func(ctx context.Context, args []string) string

// Dispatcher answers WhatsApp text commands from staff numbers.
type Dispatcher struct {
	Devices  DeviceGateway
	PPPoE    PPPoEControl
	Router   RouterInfo
	Settings func() cfg.Settings
	Observer Observer

	log      zerolog.Logger
	handlers map[string]handlerFunc
}

func NewDispatcher(devices DeviceGateway, settings func() cfg.Settings) *Dispatcher {
	d := &Dispatcher{
		Devices:  devices,
		Settings: settings,
		log:      logger.ComponentLogger("commands"),
	}
	d.handlers = map[string]handlerFunc{
		"menu":         d.menu,
		"help":         d.menu,
		"cek":          d.cek,
		"reboot":       d.reboot,
		"factoryreset": d.factoryReset,
		"gantissid":    d.gantiSSID,
		"gantipass":    d.gantiPass,
		"pppoe":        d.pppoe,
		"mikrotik":     d.router,
	}
	return d
}

// Handle returns the reply for one message; unknown senders get nothing.
func (d *Dispatcher) Handle(ctx context.Context, from, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	if !d.isStaff(from) {
		d.log.Debug().Str("from", from).Msg("ignored message from non-staff number")
		return ""
	}

	name := strings.ToLower(fields[0])
	h, ok := d.handlers[name]
	if !ok {
		return d.wrap("❓ Perintah tidak dikenal. Ketik *menu* untuk melihat daftar perintah.")
	}

	d.log.Info().Str("from", from).Str("command", name).Msg("command received")
	if d.Observer != nil {
		d.Observer.CommandHandled(name)
	}
	return d.wrap(h(ctx, fields[1:]))
}

// isStaff requires an exact match after canonicalization. The fuzzy tag
// matcher is not used here: suffix matches would admit foreign numbers.
func (d *Dispatcher) isStaff(from string) bool {
	sender := genieacs.CanonicalPhone(from)
	if sender == "" {
		return false
	}
	for _, n := range d.Settings().StaffNumbers() {
		if genieacs.CanonicalPhone(n) == sender {
			return true
		}
	}
	return false
}

func (d *Dispatcher) wrap(body string) string {
	s := d.Settings()
	var b strings.Builder
	if s.CompanyHeader != "" {
		b.WriteString("*" + s.CompanyHeader + "*\n\n")
	}
	b.WriteString(body)
	if s.FooterInfo != "" {
		b.WriteString("\n\n" + s.FooterInfo)
	}
	return b.String()
}
