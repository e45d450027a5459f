package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
	"github.com/frans1705/genieacs-mikrotik/internal/cfg"
)

// GetSettings returns the settings file as stored, {} when absent.
func (h *Handlers) GetSettings(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", cfg.ReadRaw(h.Settings.Path()))
}

// PostSettings replaces the whole file. The running snapshot is untouched
// until an explicit reload.
func (h *Handlers) PostSettings(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err := cfg.WriteRaw(h.Settings.Path(), body); err != nil {
		code := http.StatusInternalServerError
		if apperr.IsType(err, apperr.ValidationError) {
			code = http.StatusBadRequest
		}
		h.log.Error().Err(err).Msg("save settings failed")
		c.JSON(code, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.log.Info().Str("path", h.Settings.Path()).Msg("settings file saved")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) ReloadSettings(c *gin.Context) {
	s := h.Settings.Reload()
	h.log.Info().Str("port", s.Port).Msg("settings reloaded")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
