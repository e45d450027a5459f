package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frans1705/genieacs-mikrotik/internal/genieacs"
)

func (h *Handlers) basicInfo(d genieacs.Device) *genieacs.BasicInfo {
	warning, critical := h.settings().RxThresholds()
	return genieacs.GetDeviceBasicInfo(d).ClassifyRX(warning, critical)
}

func (h *Handlers) ListDevices(c *gin.Context) {
	devices, err := h.Devices.GetAllDevices(c.Request.Context())
	if err != nil {
		appErrResp(c, err)
		return
	}
	out := make([]*genieacs.BasicInfo, 0, len(devices))
	for _, d := range devices {
		out = append(out, h.basicInfo(d))
	}
	okResp(c, out)
}

func (h *Handlers) GetDevice(c *gin.Context) {
	d, err := h.Devices.GetDeviceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErrResp(c, err)
		return
	}
	okResp(c, h.basicInfo(d))
}

func (h *Handlers) GetDeviceByPhone(c *gin.Context) {
	d := h.Devices.FindDeviceByPhoneNumber(c.Request.Context(), c.Param("number"))
	if d == nil {
		errResp(c, http.StatusNotFound, "Device not found")
		return
	}
	okResp(c, h.basicInfo(d))
}

func (h *Handlers) SetWiFi(c *gin.Context) {
	var change genieacs.WiFiChange
	if err := c.ShouldBindJSON(&change); err != nil {
		errResp(c, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if change.Passphrase != "" && len(change.Passphrase) < 8 {
		errResp(c, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	res, err := h.Devices.SetWiFi(c.Request.Context(), c.Param("id"), change)
	if err != nil {
		appErrResp(c, err)
		return
	}
	okResp(c, res)
}

func (h *Handlers) RebootDevice(c *gin.Context) {
	res, err := h.Devices.RestartDevice(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErrResp(c, err)
		return
	}
	okResp(c, res)
}

func (h *Handlers) FactoryResetDevice(c *gin.Context) {
	res, err := h.Devices.FactoryResetDevice(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErrResp(c, err)
		return
	}
	okResp(c, res)
}
