package cfg

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Settings is the resolved process-wide snapshot. Numeric values stay
// strings the way they appear in settings.json; typed accessors below.
type Settings struct {
	Port string
	Host string

	AdminUsername string
	AdminPassword string

	GenieACSHost     string
	GenieACSPort     string
	GenieACSURL      string
	GenieACSUsername string
	GenieACSPassword string
	GenieAPIURL      string

	MikrotikHost     string
	MikrotikPort     string
	MikrotikUser     string
	MikrotikPassword string

	AdminNumber            string
	TechnicianNumbers      string
	ReconnectInterval      string
	MaxReconnectRetries    string
	WhatsAppSessionPath    string
	WhatsAppKeepAlive      bool
	WhatsAppRestartOnError bool

	PPPoEMonitorInterval string
	RxPowerWarning       string
	RxPowerCritical      string

	CompanyHeader string
	FooterInfo    string

	Environment       string
	LogLevel          string
	OLTConfigPath     string
	SettingsHotReload bool

	// mikrotikSet is true only when host, user and password come from the
	// file or env rather than defaults.
	mikrotikSet bool
}

const (
	defaultGenieACSHost = "192.168.99.103"
	defaultGenieACSPort = "7557"
)

// Pick returns the first non-empty value in priority order file > env > default.
func Pick(file, env, def string) string {
	if file != "" {
		return file
	}
	if env != "" {
		return env
	}
	return def
}

// PickBool resolves a boolean key with presence checks, so an explicit
// false in the file is not mistaken for "unset".
func PickBool(file map[string]any, key, env string, def bool) bool {
	if v, ok := file[key]; ok && v != nil {
		switch x := v.(type) {
		case bool:
			return x
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
				return b
			}
		case float64:
			return x != 0
		}
	}
	if env != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(env)); err == nil {
			return b
		}
	}
	return def
}

// str flattens a decoded JSON value into its settings string form.
func str(file map[string]any, key string) string {
	v, ok := file[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Resolve builds a snapshot from the decoded settings file and an env lookup.
func Resolve(file map[string]any, getenv func(string) string) Settings {
	if file == nil {
		file = map[string]any{}
	}
	fs := func(key string) string { return str(file, key) }

	s := Settings{
		Port: Pick(Pick(fs("main_port"), fs("web_port"), ""), getenv("PORT"), "3501"),
		Host: Pick(fs("web_host"), getenv("HOST"), "localhost"),

		AdminUsername: Pick(fs("admin_username"), getenv("ADMIN_USERNAME"), "admin"),
		AdminPassword: Pick(fs("admin_password"), getenv("ADMIN_PASSWORD"), "admin"),

		GenieACSHost:     Pick(fs("genieacs_host"), getenv("GENIEACS_HOST"), defaultGenieACSHost),
		GenieACSPort:     Pick(fs("genieacs_port"), getenv("GENIEACS_PORT"), defaultGenieACSPort),
		GenieACSUsername: Pick(fs("genieacs_username"), getenv("GENIEACS_USERNAME"), ""),
		GenieACSPassword: Pick(fs("genieacs_password"), getenv("GENIEACS_PASSWORD"), ""),
		GenieAPIURL:      Pick(fs("genie_api_url"), getenv("GENIE_API_URL"), ""),

		MikrotikHost:     Pick(fs("mikrotik_host"), getenv("MIKROTIK_HOST"), "192.168.99.1"),
		MikrotikPort:     Pick(fs("mikrotik_port"), getenv("MIKROTIK_PORT"), "8728"),
		MikrotikUser:     Pick(fs("mikrotik_user"), getenv("MIKROTIK_USER"), "genieacs"),
		MikrotikPassword: Pick(fs("mikrotik_password"), getenv("MIKROTIK_PASSWORD"), "12345678"),

		AdminNumber:            Pick(fs("admin_number"), getenv("ADMIN_NUMBER"), ""),
		TechnicianNumbers:      Pick(fs("technician_numbers"), getenv("TECHNICIAN_NUMBERS"), ""),
		ReconnectInterval:      Pick(fs("reconnect_interval"), getenv("RECONNECT_INTERVAL"), "5000"),
		MaxReconnectRetries:    Pick(fs("max_reconnect_retries"), getenv("MAX_RECONNECT_RETRIES"), "5"),
		WhatsAppSessionPath:    Pick(fs("whatsapp_session_path"), getenv("WHATSAPP_SESSION_PATH"), "./whatsapp-session"),
		WhatsAppKeepAlive:      PickBool(file, "whatsapp_keep_alive", getenv("WHATSAPP_KEEP_ALIVE"), false),
		WhatsAppRestartOnError: PickBool(file, "whatsapp_restart_on_error", getenv("WHATSAPP_RESTART_ON_ERROR"), false),

		PPPoEMonitorInterval: Pick(fs("pppoe_monitor_interval"), getenv("PPPOE_MONITOR_INTERVAL"), "60000"),
		RxPowerWarning:       Pick(fs("rx_power_warning"), getenv("RX_POWER_WARNING"), "-25"),
		RxPowerCritical:      Pick(fs("rx_power_critical"), getenv("RX_POWER_CRITICAL"), "-27"),

		CompanyHeader: Pick(fs("company_header"), getenv("COMPANY_HEADER"), "ISP Monitor"),
		FooterInfo:    Pick(fs("footer_info"), getenv("FOOTER_INFO"), ""),

		Environment:       Pick("", getenv("NODE_ENV"), "development"),
		LogLevel:          Pick(fs("log_level"), getenv("LOG_LEVEL"), "info"),
		OLTConfigPath:     Pick(fs("olt_config_path"), getenv("OLT_CONFIG_PATH"), "olt.yaml"),
		SettingsHotReload: PickBool(file, "settings_hot_reload", getenv("SETTINGS_HOT_RELOAD"), false),
	}

	s.mikrotikSet = Pick(fs("mikrotik_host"), getenv("MIKROTIK_HOST"), "") != "" &&
		Pick(fs("mikrotik_user"), getenv("MIKROTIK_USER"), "") != "" &&
		Pick(fs("mikrotik_password"), getenv("MIKROTIK_PASSWORD"), "") != ""

	s.GenieACSURL = Pick(fs("genieacs_url"), getenv("GENIEACS_URL"),
		fmt.Sprintf("http://%s:%s", s.GenieACSHost, s.GenieACSPort))
	if !strings.Contains(s.GenieACSURL, "://") {
		s.GenieACSURL = "http://" + s.GenieACSURL
	}
	return s
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func msOr(s string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Millisecond
}

func (s Settings) PortNumber() int { return atoiOr(s.Port, 3501) }

func (s Settings) ReconnectDelay() time.Duration { return msOr(s.ReconnectInterval, 5*time.Second) }

func (s Settings) ReconnectRetries() int { return atoiOr(s.MaxReconnectRetries, 5) }

func (s Settings) PPPoEInterval() time.Duration { return msOr(s.PPPoEMonitorInterval, time.Minute) }

func (s Settings) RxThresholds() (warning, critical float64) {
	warning, err := strconv.ParseFloat(strings.TrimSpace(s.RxPowerWarning), 64)
	if err != nil {
		warning = -25
	}
	critical, err = strconv.ParseFloat(strings.TrimSpace(s.RxPowerCritical), 64)
	if err != nil {
		critical = -27
	}
	return warning, critical
}

// MikrotikConfigured reports whether host, user and password were all given
// explicitly. Defaults alone do not enable the router.
func (s Settings) MikrotikConfigured() bool {
	return s.mikrotikSet
}

// Technicians splits the comma separated technician list.
func (s Settings) Technicians() []string {
	var out []string
	for _, n := range strings.Split(s.TechnicianNumbers, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// StaffNumbers is the admin number followed by every technician.
func (s Settings) StaffNumbers() []string {
	var out []string
	if n := strings.TrimSpace(s.AdminNumber); n != "" {
		out = append(out, n)
	}
	return append(out, s.Technicians()...)
}
