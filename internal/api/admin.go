package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) AdminStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": h.Status.Get()})
}

func (h *Handlers) AdminQRCode(c *gin.Context) {
	if h.WhatsApp == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "WhatsApp not started"})
		return
	}
	path := h.WhatsApp.QRPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "QR code not available"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.File(path)
}

func (h *Handlers) AdminRefreshQRCode(c *gin.Context) {
	if h.WhatsApp == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "WhatsApp not started"})
		return
	}
	if err := h.WhatsApp.RefreshQR(c.Request.Context()); err != nil {
		h.log.Warn().Err(err).Msg("refresh qr")
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) AdminDeleteSession(c *gin.Context) {
	if h.WhatsApp == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "WhatsApp not started"})
		return
	}
	if err := h.WhatsApp.DeleteSession(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("delete session")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
