package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frans1705/genieacs-mikrotik/internal/version"
)

const (
	MetricGatewayRequests   = "genieacs_requests_total"
	MetricPPPoEActive       = "pppoe_active_sessions"
	MetricPPPoEEvents       = "pppoe_events_total"
	MetricWhatsAppConnected = "whatsapp_connected"
	MetricCommandsTotal     = "whatsapp_commands_total"
	MetricServiceInfo       = "gateway_info"
)

type Collector struct {
	registry *prometheus.Registry

	gatewayRequests   *prometheus.CounterVec
	pppoeActive       prometheus.Gauge
	pppoeEvents       *prometheus.CounterVec
	whatsappConnected prometheus.Gauge
	commands          *prometheus.CounterVec
	serviceInfo       *prometheus.GaugeVec
}

func New() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: MetricGatewayRequests, Help: "GenieACS API calls by operation and result"},
		[]string{"op", "result"})
	c.pppoeActive = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: MetricPPPoEActive, Help: "Active PPPoE sessions on the router"})
	c.pppoeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: MetricPPPoEEvents, Help: "PPPoE login/logout transitions"},
		[]string{"event"})
	c.whatsappConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: MetricWhatsAppConnected, Help: "1 when the WhatsApp session is connected"})
	c.commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: MetricCommandsTotal, Help: "Handled WhatsApp commands"},
		[]string{"command"})
	c.serviceInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: MetricServiceInfo, Help: "Service information"},
		[]string{"version", "git_commit", "build_date"})

	c.registry.MustRegister(
		c.gatewayRequests, c.pppoeActive, c.pppoeEvents,
		c.whatsappConnected, c.commands, c.serviceInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.serviceInfo.WithLabelValues(version.Version, version.GitCommit, version.BuildDate).Set(1)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveGateway matches genieacs.Client.OnRequest.
func (c *Collector) ObserveGateway(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.gatewayRequests.WithLabelValues(op, result).Inc()
}

func (c *Collector) SetPPPoEActive(n int) { c.pppoeActive.Set(float64(n)) }

func (c *Collector) PPPoEEvent(event string) { c.pppoeEvents.WithLabelValues(event).Inc() }

func (c *Collector) SetWhatsAppConnected(connected bool) {
	if connected {
		c.whatsappConnected.Set(1)
		return
	}
	c.whatsappConnected.Set(0)
}

func (c *Collector) CommandHandled(command string) { c.commands.WithLabelValues(command).Inc() }
