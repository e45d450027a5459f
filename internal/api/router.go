package api

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frans1705/genieacs-mikrotik/internal/logger"
	"github.com/frans1705/genieacs-mikrotik/web"
)

func NewRouter(h *Handlers, hub *StatusHub) *gin.Engine {
	h.log = logger.ComponentLogger("api")

	r := gin.New()
	r.Use(RecoveryMiddleware(h.log), RequestLogger(h.log), CORSMiddleware())

	r.GET("/health", h.Health)
	r.GET("/whatsapp/status", h.WhatsAppStatus)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := r.Group("/api", AdminAuth(h.Settings))
	{
		api.GET("/settings", h.GetSettings)
		api.POST("/settings", h.PostSettings)
		api.POST("/settings/reload", h.ReloadSettings)

		if h.Devices != nil {
			api.GET("/devices", h.ListDevices)
			api.GET("/devices/phone/:number", h.GetDeviceByPhone)
			api.GET("/devices/:id", h.GetDevice)
			api.POST("/devices/:id/wifi", h.SetWiFi)
			api.POST("/devices/:id/reboot", h.RebootDevice)
			api.POST("/devices/:id/factory-reset", h.FactoryResetDevice)
		}

		api.GET("/pppoe/active", h.ActivePPPoE)
		api.GET("/olt/:name/board/:slot/pon/:pon/onu/:onuId/power", h.OnuPower)
	}

	static, _ := fs.Sub(web.Assets, "static")
	admin := r.Group("/admin", AdminAuth(h.Settings))
	{
		admin.GET("/", func(c *gin.Context) {
			page, err := web.Assets.ReadFile("admin.html")
			if err != nil {
				errResp(c, http.StatusInternalServerError, err.Error())
				return
			}
			c.Data(http.StatusOK, "text/html; charset=utf-8", page)
		})
		admin.StaticFS("/static", http.FS(static))

		admin.GET("/api/wa/status", h.AdminStatus)
		admin.GET("/api/wa/qrcode", h.AdminQRCode)
		admin.POST("/api/wa/refresh-qrcode", h.AdminRefreshQRCode)
		admin.POST("/api/wa/delete-session", h.AdminDeleteSession)
		if hub != nil {
			admin.GET("/api/wa/ws", hub.Handle)
		}
	}

	return r
}
