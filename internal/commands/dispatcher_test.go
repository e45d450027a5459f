package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frans1705/genieacs-mikrotik/internal/cfg"
	"github.com/frans1705/genieacs-mikrotik/internal/genieacs"
	"github.com/frans1705/genieacs-mikrotik/internal/mikrotik"
	"github.com/frans1705/genieacs-mikrotik/internal/pppoe"
)

type fakeGateway struct {
	devices  map[string]genieacs.Device
	wifi     []genieacs.WiFiChange
	restarts []string
	resets   []string
	err      error
}

func (f *fakeGateway) FindDeviceByPhoneNumber(_ context.Context, number string) genieacs.Device {
	return f.devices[number]
}

func (f *fakeGateway) SetWiFi(_ context.Context, id string, c genieacs.WiFiChange) (*genieacs.TaskResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.wifi = append(f.wifi, c)
	return &genieacs.TaskResult{Success: true}, nil
}

func (f *fakeGateway) RestartDevice(_ context.Context, id string) (*genieacs.TaskResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.restarts = append(f.restarts, id)
	return &genieacs.TaskResult{Success: true}, nil
}

func (f *fakeGateway) FactoryResetDevice(_ context.Context, id string) (*genieacs.TaskResult, error) {
	f.resets = append(f.resets, id)
	return &genieacs.TaskResult{Success: true}, nil
}

type fakePPPoE struct {
	sessions []mikrotik.Session
	notify   bool
	err      error
}

func (f *fakePPPoE) ActiveSessions(context.Context) ([]mikrotik.Session, error) {
	return f.sessions, f.err
}

func (f *fakePPPoE) SetNotifications(on bool) { f.notify = on }

func (f *fakePPPoE) State() pppoe.State {
	return pppoe.State{Notifications: f.notify, Active: len(f.sessions), LastCheck: time.Now().Add(-90 * time.Second), Interval: "1m0s"}
}

type fakeRouter struct {
	identity string
	secrets  int
	err      error
}

func (f fakeRouter) Identity(context.Context) (string, error) { return f.identity, f.err }
func (f fakeRouter) SecretsCount(context.Context) (int, error) { return f.secrets, f.err }

type countObserver map[string]int

func (c countObserver) CommandHandled(cmd string) { c[cmd]++ }

const admin = "6281200000001"

func newTestDispatcher(gw *fakeGateway) *Dispatcher {
	settings := cfg.Settings{
		AdminNumber:       "081200000001",
		TechnicianNumbers: "6281300000002, 6281300000003",
		RxPowerWarning:    "-25",
		RxPowerCritical:   "-27",
	}
	return NewDispatcher(gw, func() cfg.Settings { return settings })
}

func onlineDevice(id string) genieacs.Device {
	return genieacs.Device{
		"_id":         id,
		"_lastInform": time.Now().UTC().Format(time.RFC3339),
		"VirtualParameters": map[string]any{
			"RXPower": map[string]any{"_value": "-26.10"},
		},
	}
}

func TestHandleIgnoresNonStaff(t *testing.T) {
	d := newTestDispatcher(&fakeGateway{})
	assert.Empty(t, d.Handle(context.Background(), "6289999999999", "menu"))
	assert.Empty(t, d.Handle(context.Background(), admin, "   "))
}

func TestIsStaffRequiresExactNumber(t *testing.T) {
	d := newTestDispatcher(&fakeGateway{})

	for _, from := range []string{admin, "081200000001", "+62 812-0000-0001", "6281300000003"} {
		assert.True(t, d.isStaff(from), from)
	}
	for _, from := range []string{
		"496281200000001", // foreign number ending with the admin digits
		"581200000001",
		"1200000001",
		"81200000001",
		"",
	} {
		assert.False(t, d.isStaff(from), from)
	}
	assert.Empty(t, d.Handle(context.Background(), "496281200000001", "reboot 081234567890"))
}

func TestHandleMenuAndUnknown(t *testing.T) {
	d := newTestDispatcher(&fakeGateway{})
	obs := countObserver{}
	d.Observer = obs

	assert.Contains(t, d.Handle(context.Background(), admin, "MENU"), "DAFTAR PERINTAH")
	assert.Contains(t, d.Handle(context.Background(), "6281300000003", "halo"), "Perintah tidak dikenal")
	assert.Equal(t, 1, obs["menu"])
}

func TestHandleWrapsHeaderAndFooter(t *testing.T) {
	settings := cfg.Settings{AdminNumber: admin, CompanyHeader: "ALIJAYA NET", FooterInfo: "CS: 0812"}
	d := NewDispatcher(&fakeGateway{}, func() cfg.Settings { return settings })

	got := d.Handle(context.Background(), admin, "menu")
	assert.Contains(t, got, "*ALIJAYA NET*\n\n")
	assert.Contains(t, got, "\n\nCS: 0812")
}

func TestCek(t *testing.T) {
	gw := &fakeGateway{devices: map[string]genieacs.Device{"0812555": onlineDevice("DEV-1")}}
	d := newTestDispatcher(gw)

	got := d.Handle(context.Background(), admin, "cek 0812555")
	assert.Contains(t, got, "ID: DEV-1")
	assert.Contains(t, got, "RX Power: -26.10 dBm (warning)")
	assert.Contains(t, got, "🟢 Online")

	assert.Contains(t, d.Handle(context.Background(), admin, "cek 0812000"), "tidak ditemukan")
	assert.Contains(t, d.Handle(context.Background(), admin, "cek"), "Format salah")
}

func TestRebootAndFactoryReset(t *testing.T) {
	gw := &fakeGateway{devices: map[string]genieacs.Device{"0812555": onlineDevice("DEV-1")}}
	d := newTestDispatcher(gw)

	assert.Contains(t, d.Handle(context.Background(), admin, "reboot 0812555"), "restart dikirim")
	assert.Contains(t, d.Handle(context.Background(), admin, "factoryreset 0812555"), "factory reset dikirim")
	assert.Equal(t, []string{"DEV-1"}, gw.restarts)
	assert.Equal(t, []string{"DEV-1"}, gw.resets)

	gw.err = errors.New("acs down")
	assert.Contains(t, d.Handle(context.Background(), admin, "reboot 0812555"), "Gagal")
}

func TestGantiSSID(t *testing.T) {
	gw := &fakeGateway{devices: map[string]genieacs.Device{"0812555": onlineDevice("DEV-1")}}
	d := newTestDispatcher(gw)

	assert.Contains(t, d.Handle(context.Background(), admin, "gantissid 0812555 Rumah Budi"), "*Rumah Budi*")
	assert.Contains(t, d.Handle(context.Background(), admin, "gantissid 0812555 Rumah-5G"), "Rumah-5G")
	require.Len(t, gw.wifi, 2)
	assert.Equal(t, genieacs.WiFiChange{SSID24: "Rumah Budi"}, gw.wifi[0])
	assert.Equal(t, genieacs.WiFiChange{SSID5: "Rumah-5G"}, gw.wifi[1])

	assert.Contains(t, d.Handle(context.Background(), admin, "gantissid 0812555"), "Format salah")
}

func TestGantiPass(t *testing.T) {
	gw := &fakeGateway{devices: map[string]genieacs.Device{"0812555": onlineDevice("DEV-1")}}
	d := newTestDispatcher(gw)

	assert.Contains(t, d.Handle(context.Background(), admin, "gantipass 0812555 pendek"), "minimal 8")
	assert.Empty(t, gw.wifi)

	assert.Contains(t, d.Handle(context.Background(), admin, "gantipass 0812555 rahasia123"), "berhasil")
	require.Len(t, gw.wifi, 1)
	assert.Equal(t, "rahasia123", gw.wifi[0].Passphrase)
}

func TestPPPoECommands(t *testing.T) {
	d := newTestDispatcher(&fakeGateway{})
	assert.Contains(t, d.Handle(context.Background(), admin, "pppoe"), "belum dikonfigurasi")

	ctl := &fakePPPoE{sessions: []mikrotik.Session{
		{Name: "ani", Address: "10.0.0.8", Uptime: "5m"},
		{Name: "budi"},
	}}
	d.PPPoE = ctl

	list := d.Handle(context.Background(), admin, "pppoe")
	assert.Contains(t, list, "PPPoE AKTIF* (2)")
	assert.Contains(t, list, "1. ani - 10.0.0.8 (5m)")
	assert.Contains(t, list, "2. budi")

	assert.Contains(t, d.Handle(context.Background(), admin, "pppoe on"), "diaktifkan")
	assert.True(t, ctl.notify)
	assert.Contains(t, d.Handle(context.Background(), admin, "pppoe status"), "Notifikasi: aktif")
	assert.Contains(t, d.Handle(context.Background(), admin, "pppoe off"), "dinonaktifkan")
	assert.False(t, ctl.notify)

	ctl.err = errors.New("timeout")
	assert.Contains(t, d.Handle(context.Background(), admin, "pppoe"), "Gagal")
}

func TestMikrotikCommand(t *testing.T) {
	d := newTestDispatcher(&fakeGateway{})
	assert.Contains(t, d.Handle(context.Background(), admin, "mikrotik"), "belum dikonfigurasi")

	d.Router = fakeRouter{identity: "BRAS-01", secrets: 120}
	d.PPPoE = &fakePPPoE{sessions: []mikrotik.Session{{Name: "ani"}}}
	reply := d.Handle(context.Background(), admin, "MIKROTIK")
	assert.Contains(t, reply, "Identity: BRAS-01")
	assert.Contains(t, reply, "PPP secret: 120")
	assert.Contains(t, reply, "PPPoE aktif: 1")

	d.Router = fakeRouter{err: errors.New("dial tcp: refused")}
	assert.Contains(t, d.Handle(context.Background(), admin, "mikrotik"), "Gagal terhubung")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45 detik", formatDuration(45*time.Second))
	assert.Equal(t, "1 menit 30 detik", formatDuration(90*time.Second))
	assert.Equal(t, "2 jam 5 menit", formatDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "1 hari 1 jam 1 menit", formatDuration(25*time.Hour+time.Minute+3*time.Second))
}
