package commands

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func (d *Dispatcher) pppoe(ctx context.Context, args []string) string {
	if d.PPPoE == nil {
		return "⚠️ Mikrotik belum dikonfigurasi."
	}
	sub := ""
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}

	switch sub {
	case "":
		return d.pppoeList(ctx)
	case "on":
		d.PPPoE.SetNotifications(true)
		return "🔔 Notifikasi PPPoE diaktifkan."
	case "off":
		d.PPPoE.SetNotifications(false)
		return "🔕 Notifikasi PPPoE dinonaktifkan."
	case "status":
		st := d.PPPoE.State()
		notif := "nonaktif"
		if st.Notifications {
			notif = "aktif"
		}
		last := "belum pernah"
		if !st.LastCheck.IsZero() {
			last = formatDuration(time.Since(st.LastCheck)) + " yang lalu"
		}
		return fmt.Sprintf("📊 *STATUS MONITOR PPPoE*\n\nNotifikasi: %s\nSesi aktif: %d\nInterval: %s\nPengecekan terakhir: %s",
			notif, st.Active, st.Interval, last)
	default:
		return "⚠️ Gunakan: pppoe, pppoe on, pppoe off, pppoe status"
	}
}

func (d *Dispatcher) pppoeList(ctx context.Context) string {
	sessions, err := d.PPPoE.ActiveSessions(ctx)
	if err != nil {
		return "❌ Gagal mengambil sesi PPPoE: " + err.Error()
	}
	if len(sessions) == 0 {
		return "📭 Tidak ada sesi PPPoE aktif."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🌐 *PPPoE AKTIF* (%d)\n", len(sessions))
	for i, s := range sessions {
		fmt.Fprintf(&b, "\n%d. %s", i+1, s.Name)
		if s.Address != "" {
			fmt.Fprintf(&b, " - %s", s.Address)
		}
		if s.Uptime != "" {
			fmt.Fprintf(&b, " (%s)", s.Uptime)
		}
	}
	return b.String()
}

// router summarizes the Mikrotik identity with session and secret counts.
func (d *Dispatcher) router(ctx context.Context, _ []string) string {
	if d.Router == nil {
		return "⚠️ Mikrotik belum dikonfigurasi."
	}
	identity, err := d.Router.Identity(ctx)
	if err != nil {
		return "❌ Gagal terhubung ke Mikrotik: " + err.Error()
	}
	secrets, err := d.Router.SecretsCount(ctx)
	if err != nil {
		return "❌ Gagal mengambil PPP secret: " + err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🖧 *MIKROTIK*\n\nIdentity: %s\nPPP secret: %d", identity, secrets)
	if d.PPPoE != nil {
		if sessions, err := d.PPPoE.ActiveSessions(ctx); err == nil {
			fmt.Fprintf(&b, "\nPPPoE aktif: %d", len(sessions))
		}
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	sec := int64(d.Seconds())

	days := sec / 86400
	sec %= 86400
	hours := sec / 3600
	sec %= 3600
	mins := sec / 60
	sec %= 60

	switch {
	case days > 0:
		return fmt.Sprintf("%d hari %d jam %d menit", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%d jam %d menit", hours, mins)
	case mins > 0:
		return fmt.Sprintf("%d menit %d detik", mins, sec)
	default:
		return fmt.Sprintf("%d detik", sec)
	}
}
