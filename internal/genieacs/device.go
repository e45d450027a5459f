package genieacs

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/frans1705/genieacs-mikrotik/internal/optical"
)

// Device is a GenieACS device document as returned by /devices.
type Device map[string]any

const (
	NotAvailable    = "N/A"
	onlineThreshold = 15 // minutes
	timeLayout      = "2006-01-02 15:04:05"
)

var (
	serialPaths = []string{
		"VirtualParameters.getSerialNumber",
		"InternetGatewayDevice.DeviceInfo.SerialNumber",
		"Device.DeviceInfo.SerialNumber",
	}
	modelPaths = []string{
		"InternetGatewayDevice.DeviceInfo.ModelName",
		"Device.DeviceInfo.ModelName",
	}
	manufacturerPaths = []string{
		"InternetGatewayDevice.DeviceInfo.Manufacturer",
		"Device.DeviceInfo.Manufacturer",
	}
	firmwarePaths = []string{
		"InternetGatewayDevice.DeviceInfo.SoftwareVersion",
		"Device.DeviceInfo.SoftwareVersion",
	}
	rxPowerPaths = []string{
		"VirtualParameters.RXPower",
		"VirtualParameters.redaman",
		"InternetGatewayDevice.WANDevice.1.X_GponInterafceConfig.RXPower",
		"InternetGatewayDevice.WANDevice.1.X_ZTE-COM_WANPONInterfaceConfig.RXPower",
		"Device.Optical.Interface.1.OpticalSignalLevel",
	}
)

func (d Device) ID() string {
	s, _ := d["_id"].(string)
	return s
}

func (d Device) Tags() []string {
	raw, _ := d["_tags"].([]any)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if s, ok := t.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (d Device) LastInform() (time.Time, bool) {
	s, _ := d["_lastInform"].(string)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d Device) lookup(path string) (any, bool) {
	var cur any = map[string]any(d)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetParameterValue walks candidate paths in order and returns the first
// non-blank string leaf, either {"_value": "..."} or a bare string.
func GetParameterValue(d Device, paths []string) (string, bool) {
	if d == nil {
		return "", false
	}
	for _, p := range paths {
		leaf, ok := d.lookup(p)
		if !ok {
			continue
		}
		if m, ok := leaf.(map[string]any); ok {
			leaf = m["_value"]
		}
		if s, ok := leaf.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func getParameterNumber(d Device, paths []string) (float64, bool) {
	for _, p := range paths {
		leaf, ok := d.lookup(p)
		if !ok {
			continue
		}
		if m, ok := leaf.(map[string]any); ok {
			leaf = m["_value"]
		}
		switch v := leaf.(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// RXPower is the optical receive level in dBm, if the CPE reports one.
func (d Device) RXPower() (float64, bool) {
	return getParameterNumber(d, rxPowerPaths)
}

type Status struct {
	IsOnline   bool   `json:"isOnline"`
	Status     string `json:"status"`
	LastInform string `json:"lastInform"`
	MinutesAgo int    `json:"minutesAgo"`
}

func GetDeviceStatus(d Device) Status {
	return deviceStatusAt(d, time.Now())
}

func deviceStatusAt(d Device, now time.Time) Status {
	if d == nil {
		return Status{Status: "Unknown", LastInform: NotAvailable, MinutesAgo: -1}
	}
	last, ok := d.LastInform()
	if !ok {
		return Status{Status: "Offline", LastInform: NotAvailable, MinutesAgo: -1}
	}

	mins := int(math.Floor(now.Sub(last).Minutes()))
	online := mins < onlineThreshold
	st := Status{
		IsOnline:   online,
		Status:     "Offline",
		LastInform: last.Local().Format(timeLayout),
		MinutesAgo: mins,
	}
	if online {
		st.Status = "Online"
	}
	return st
}

type BasicInfo struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serialNumber"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	Firmware     string `json:"firmware"`
	RXPower      string `json:"rxPower"`
	RXPowerLevel string `json:"rxPowerLevel,omitempty"`
	Status

	rx    float64
	hasRX bool
}

func GetDeviceBasicInfo(d Device) *BasicInfo {
	if d == nil {
		return nil
	}
	orNA := func(paths []string) string {
		if v, ok := GetParameterValue(d, paths); ok {
			return v
		}
		return NotAvailable
	}

	info := &BasicInfo{
		ID:           d.ID(),
		SerialNumber: orNA(serialPaths),
		Model:        orNA(modelPaths),
		Manufacturer: orNA(manufacturerPaths),
		Firmware:     orNA(firmwarePaths),
		RXPower:      NotAvailable,
		Status:       GetDeviceStatus(d),
	}
	if rx, ok := d.RXPower(); ok {
		info.RXPower = strconv.FormatFloat(rx, 'f', 2, 64)
		info.rx, info.hasRX = rx, true
	}
	return info
}

// ClassifyRX fills RXPowerLevel against the configured thresholds.
func (b *BasicInfo) ClassifyRX(warning, critical float64) *BasicInfo {
	if b != nil && b.hasRX {
		b.RXPowerLevel = string(optical.Classify(b.rx, warning, critical))
	}
	return b
}
