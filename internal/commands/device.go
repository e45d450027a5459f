package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/frans1705/genieacs-mikrotik/internal/genieacs"
)

const minPassphrase = 8

func (d *Dispatcher) menu(context.Context, []string) string {
	var b strings.Builder
	b.WriteString("📋 *DAFTAR PERINTAH*\n\n")
	b.WriteString("*Perangkat pelanggan*\n")
	b.WriteString("• cek [nomor]\n")
	b.WriteString("• reboot [nomor]\n")
	b.WriteString("• factoryreset [nomor]\n")
	b.WriteString("• gantissid [nomor] [ssid baru]\n")
	b.WriteString("• gantipass [nomor] [password baru]\n")
	b.WriteString("\n*PPPoE*\n")
	b.WriteString("• pppoe\n")
	b.WriteString("• pppoe on | pppoe off\n")
	b.WriteString("• pppoe status\n")
	b.WriteString("• mikrotik")
	return b.String()
}

// findDevice resolves the customer number argument to a device.
func (d *Dispatcher) findDevice(ctx context.Context, args []string, usage string) (genieacs.Device, string) {
	if len(args) == 0 {
		return nil, "⚠️ Format salah. Gunakan: " + usage
	}
	dev := d.Devices.FindDeviceByPhoneNumber(ctx, args[0])
	if dev == nil {
		return nil, fmt.Sprintf("❌ Perangkat dengan nomor %s tidak ditemukan.", args[0])
	}
	return dev, ""
}

func (d *Dispatcher) cek(ctx context.Context, args []string) string {
	dev, msg := d.findDevice(ctx, args, "cek [nomor]")
	if dev == nil {
		return msg
	}
	warning, critical := d.Settings().RxThresholds()
	info := genieacs.GetDeviceBasicInfo(dev).ClassifyRX(warning, critical)

	status := "🔴 " + info.Status.Status
	if info.IsOnline {
		status = "🟢 " + info.Status.Status
	}
	rx := info.RXPower
	if rx != genieacs.NotAvailable {
		rx += " dBm"
		if info.RXPowerLevel != "" {
			rx += " (" + info.RXPowerLevel + ")"
		}
	}

	var b strings.Builder
	b.WriteString("📡 *INFO PERANGKAT*\n\n")
	fmt.Fprintf(&b, "Nomor: %s\n", args[0])
	fmt.Fprintf(&b, "ID: %s\n", info.ID)
	fmt.Fprintf(&b, "Serial: %s\n", info.SerialNumber)
	fmt.Fprintf(&b, "Model: %s\n", info.Model)
	fmt.Fprintf(&b, "Pabrikan: %s\n", info.Manufacturer)
	fmt.Fprintf(&b, "Firmware: %s\n", info.Firmware)
	fmt.Fprintf(&b, "RX Power: %s\n", rx)
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Last Inform: %s", info.LastInform)
	return b.String()
}

func (d *Dispatcher) reboot(ctx context.Context, args []string) string {
	dev, msg := d.findDevice(ctx, args, "reboot [nomor]")
	if dev == nil {
		return msg
	}
	if _, err := d.Devices.RestartDevice(ctx, dev.ID()); err != nil {
		return "❌ Gagal me-restart perangkat: " + err.Error()
	}
	return fmt.Sprintf("🔄 Perintah restart dikirim ke perangkat %s.", args[0])
}

func (d *Dispatcher) factoryReset(ctx context.Context, args []string) string {
	dev, msg := d.findDevice(ctx, args, "factoryreset [nomor]")
	if dev == nil {
		return msg
	}
	if _, err := d.Devices.FactoryResetDevice(ctx, dev.ID()); err != nil {
		return "❌ Gagal factory reset perangkat: " + err.Error()
	}
	return fmt.Sprintf("⚠️ Perintah factory reset dikirim ke perangkat %s.", args[0])
}

func (d *Dispatcher) gantiSSID(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return "⚠️ Format salah. Gunakan: gantissid [nomor] [ssid baru]"
	}
	dev, msg := d.findDevice(ctx, args, "")
	if dev == nil {
		return msg
	}
	ssid := strings.Join(args[1:], " ")
	change := genieacs.WiFiChange{SSID24: ssid}
	if strings.HasSuffix(ssid, "-5G") {
		change = genieacs.WiFiChange{SSID5: ssid}
	}
	if _, err := d.Devices.SetWiFi(ctx, dev.ID(), change); err != nil {
		return "❌ Gagal mengganti SSID: " + err.Error()
	}
	return fmt.Sprintf("✅ SSID perangkat %s diganti menjadi *%s*.", args[0], ssid)
}

func (d *Dispatcher) gantiPass(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return "⚠️ Format salah. Gunakan: gantipass [nomor] [password baru]"
	}
	pass := strings.Join(args[1:], " ")
	if len(pass) < minPassphrase {
		return fmt.Sprintf("⚠️ Password minimal %d karakter.", minPassphrase)
	}
	dev, msg := d.findDevice(ctx, args, "")
	if dev == nil {
		return msg
	}
	if _, err := d.Devices.SetWiFi(ctx, dev.ID(), genieacs.WiFiChange{Passphrase: pass}); err != nil {
		return "❌ Gagal mengganti password: " + err.Error()
	}
	return fmt.Sprintf("✅ Password WiFi perangkat %s berhasil diganti.", args[0])
}
