package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ActivePPPoE(c *gin.Context) {
	if h.PPPoE == nil {
		errResp(c, http.StatusServiceUnavailable, "Mikrotik not configured")
		return
	}
	sessions, err := h.PPPoE.ActiveSessions(c.Request.Context())
	if err != nil {
		appErrResp(c, err)
		return
	}
	okResp(c, gin.H{"total": len(sessions), "sessions": sessions})
}

func (h *Handlers) OnuPower(c *gin.Context) {
	if h.Optical == nil {
		errResp(c, http.StatusServiceUnavailable, "OLT config not loaded")
		return
	}

	slot, err1 := strconv.Atoi(c.Param("slot"))
	ponID, err2 := strconv.Atoi(c.Param("pon"))
	onuID64, err3 := strconv.ParseUint(c.Param("onuId"), 10, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		errResp(c, http.StatusBadRequest, "invalid slot/pon/onuId")
		return
	}

	out, err := h.Optical.OnuPower(c.Request.Context(), c.Param("name"), slot, ponID, uint32(onuID64))
	if err != nil {
		appErrResp(c, err)
		return
	}
	okResp(c, out)
}
