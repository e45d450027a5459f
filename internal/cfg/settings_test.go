package cfg

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestPickPriority(t *testing.T) {
	tests := []struct {
		name           string
		file, env, def string
		want           string
	}{
		{"file wins", "file", "env", "def", "file"},
		{"env when file empty", "", "env", "def", "env"},
		{"default when both empty", "", "", "def", "def"},
		{"all empty", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pick(tt.file, tt.env, tt.def))
		})
	}
}

func TestPickBoolExplicitFalseInFile(t *testing.T) {
	var file map[string]any
	assert.NoError(t, json.Unmarshal([]byte(`{"whatsapp_keep_alive": false, "whatsapp_restart_on_error": "false"}`), &file))

	assert.False(t, PickBool(file, "whatsapp_keep_alive", "true", true))
	assert.False(t, PickBool(file, "whatsapp_restart_on_error", "true", true))
}

func TestPickBoolFallbacks(t *testing.T) {
	assert.True(t, PickBool(map[string]any{}, "k", "true", false))
	assert.False(t, PickBool(map[string]any{}, "k", "false", true))
	assert.True(t, PickBool(map[string]any{}, "k", "", true))
	assert.True(t, PickBool(map[string]any{"k": nil}, "k", "", true))
	assert.True(t, PickBool(map[string]any{"k": "garbage"}, "k", "yes-ish", true))
}

func TestResolvePrecedence(t *testing.T) {
	file := map[string]any{
		"web_port":      "4000",
		"genieacs_host": "10.0.0.5",
	}
	env := envOf(map[string]string{
		"PORT":          "5000",
		"GENIEACS_HOST": "10.0.0.9",
		"MIKROTIK_HOST": "10.0.0.1",
		"NODE_ENV":      "production",
	})

	s := Resolve(file, env)

	assert.Equal(t, "4000", s.Port)
	assert.Equal(t, "10.0.0.5", s.GenieACSHost)
	assert.Equal(t, "10.0.0.1", s.MikrotikHost)
	assert.Equal(t, "admin", s.AdminUsername)
	assert.Equal(t, "http://10.0.0.5:7557", s.GenieACSURL)
	assert.Equal(t, "production", s.Environment)
}

func TestResolveMainPortBeatsWebPort(t *testing.T) {
	s := Resolve(map[string]any{"main_port": float64(3100), "web_port": "4000"}, envOf(nil))
	assert.Equal(t, "3100", s.Port)
	assert.Equal(t, 3100, s.PortNumber())
}

func TestResolveDefaults(t *testing.T) {
	s := Resolve(nil, envOf(nil))

	assert.Equal(t, "3501", s.Port)
	assert.Equal(t, "localhost", s.Host)
	assert.Equal(t, "./whatsapp-session", s.WhatsAppSessionPath)
	assert.False(t, s.WhatsAppKeepAlive)
	assert.False(t, s.WhatsAppRestartOnError)
	assert.Equal(t, time.Minute, s.PPPoEInterval())
	assert.Equal(t, 5*time.Second, s.ReconnectDelay())
	assert.Equal(t, 5, s.ReconnectRetries())
	assert.Equal(t, "ISP Monitor", s.CompanyHeader)
	assert.Equal(t, "development", s.Environment)

	w, c := s.RxThresholds()
	assert.Equal(t, -25.0, w)
	assert.Equal(t, -27.0, c)
}

func TestMikrotikConfiguredNeedsExplicitValues(t *testing.T) {
	assert.False(t, Resolve(nil, envOf(nil)).MikrotikConfigured(), "defaults alone")

	blank := map[string]any{"mikrotik_host": "", "mikrotik_user": "", "mikrotik_password": ""}
	assert.False(t, Resolve(blank, envOf(nil)).MikrotikConfigured())

	partial := envOf(map[string]string{"MIKROTIK_HOST": "10.0.0.1", "MIKROTIK_USER": "api"})
	assert.False(t, Resolve(nil, partial).MikrotikConfigured())

	mixed := map[string]any{"mikrotik_password": "secret"}
	assert.True(t, Resolve(mixed, partial).MikrotikConfigured())
}

func TestResolveGenieACSURLWithoutScheme(t *testing.T) {
	s := Resolve(map[string]any{"genieacs_url": "acs.local:7557"}, envOf(nil))
	assert.Equal(t, "http://acs.local:7557", s.GenieACSURL)
}

func TestStaffNumbers(t *testing.T) {
	s := Settings{AdminNumber: "62811", TechnicianNumbers: " 62822 , ,62833"}
	assert.Equal(t, []string{"62811", "62822", "62833"}, s.StaffNumbers())
	assert.Equal(t, []string{"62822", "62833"}, s.Technicians())
}
