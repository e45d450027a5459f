package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGateway(t *testing.T) {
	c := New()
	c.ObserveGateway("reboot", nil)
	c.ObserveGateway("reboot", nil)
	c.ObserveGateway("reboot", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.gatewayRequests.WithLabelValues("reboot", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gatewayRequests.WithLabelValues("reboot", "error")))
}

func TestGauges(t *testing.T) {
	c := New()
	c.SetPPPoEActive(12)
	c.SetWhatsAppConnected(true)
	assert.Equal(t, 12.0, testutil.ToFloat64(c.pppoeActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.whatsappConnected))

	c.SetWhatsAppConnected(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.whatsappConnected))

	c.PPPoEEvent("login")
	c.CommandHandled("cek")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pppoeEvents.WithLabelValues("login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.commands.WithLabelValues("cek")))
}

func TestHandlerExposition(t *testing.T) {
	c := New()
	c.SetPPPoEActive(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pppoe_active_sessions 3")
	assert.Contains(t, rec.Body.String(), MetricServiceInfo)
}
