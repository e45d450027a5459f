package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/frans1705/genieacs-mikrotik/internal/cfg"
)

// RequestLogger logs one line per request through zerolog.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Debug()
		if c.Writer.Status() >= 500 {
			ev = log.Error()
		} else if c.Writer.Status() >= 400 {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("request")
	}
}

// RecoveryMiddleware turns a handler panic into a 500 and a log line.
func RecoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("panic recovered")
		errResp(c, 500, "Internal Server Error")
	})
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// AdminAuth checks basic auth against the current snapshot, so a reload
// changes credentials without rebuilding the router.
func AdminAuth(loader *cfg.Loader) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := loader.Get()
		gin.BasicAuth(gin.Accounts{s.AdminUsername: s.AdminPassword})(c)
	}
}
