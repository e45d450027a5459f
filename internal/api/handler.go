package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
	"github.com/frans1705/genieacs-mikrotik/internal/cfg"
	"github.com/frans1705/genieacs-mikrotik/internal/genieacs"
	"github.com/frans1705/genieacs-mikrotik/internal/mikrotik"
	"github.com/frans1705/genieacs-mikrotik/internal/optical"
	"github.com/frans1705/genieacs-mikrotik/internal/version"
	"github.com/frans1705/genieacs-mikrotik/internal/wa"
)

type DeviceGateway interface {
	GetAllDevices(ctx context.Context) ([]genieacs.Device, error)
	GetDeviceByID(ctx context.Context, id string) (genieacs.Device, error)
	FindDeviceByPhoneNumber(ctx context.Context, number string) genieacs.Device
	SetWiFi(ctx context.Context, id string, change genieacs.WiFiChange) (*genieacs.TaskResult, error)
	RestartDevice(ctx context.Context, id string) (*genieacs.TaskResult, error)
	FactoryResetDevice(ctx context.Context, id string) (*genieacs.TaskResult, error)
}

type WhatsApp interface {
	QRPath() string
	RefreshQR(ctx context.Context) error
	DeleteSession(ctx context.Context) error
}

type SessionLister interface {
	ActiveSessions(ctx context.Context) ([]mikrotik.Session, error)
}

type OnuProber interface {
	OnuPower(ctx context.Context, name string, slot, pon int, onuID uint32) (*optical.OnuPower, error)
}

// Handlers carries every collaborator the routes need. Optional ones
// (WhatsApp, PPPoE, Optical, Metrics) may be nil.
type Handlers struct {
	Settings *cfg.Loader
	Devices  DeviceGateway
	Status   *wa.StatusHolder
	WhatsApp WhatsApp
	PPPoE    SessionLister
	Optical  OnuProber
	Metrics  http.Handler

	log zerolog.Logger
}

/*
=========================
RESPONSE WRAPPER
=========================
*/

func okResp(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":   200,
		"status": "OK",
		"data":   data,
	})
}

func errResp(c *gin.Context, httpCode int, msg string) {
	c.JSON(httpCode, gin.H{
		"code":   httpCode,
		"status": msg,
		"data":   nil,
	})
}

// appErrResp maps the error taxonomy onto HTTP codes.
func appErrResp(c *gin.Context, err error) {
	switch {
	case apperr.IsType(err, apperr.NotFoundError):
		errResp(c, http.StatusNotFound, err.Error())
	case apperr.IsType(err, apperr.ValidationError):
		errResp(c, http.StatusBadRequest, err.Error())
	case apperr.IsType(err, apperr.GatewayError), apperr.IsType(err, apperr.CollaboratorError):
		errResp(c, http.StatusBadGateway, err.Error())
	default:
		errResp(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handlers) settings() cfg.Settings {
	return h.Settings.Get()
}

/*
=========================
BASIC
=========================
*/

func (h *Handlers) Health(c *gin.Context) {
	s := h.settings()
	out := gin.H{
		"status":   "ok",
		"version":  version.Version,
		"whatsapp": h.Status.Get().State,
	}
	if s.MikrotikConfigured() {
		out["mikrotik"] = gin.H{"host": s.MikrotikHost, "port": s.MikrotikPort}
	}
	if h.Devices != nil {
		out["genieacs"] = gin.H{"url": s.GenieACSURL}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) WhatsAppStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Status.Get())
}
