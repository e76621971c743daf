package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mailsplit-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		companyID, _ := c.Get("companyId")
		emailID, _ := c.Get("emailId")
		teamName, _ := c.Get("teamName")
		fileName, _ := c.Get("fileName")
		fileSHA, _ := c.Get("fileSha256")

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"company_id":  companyID,
			"email_id":    emailID,
			"team_name":   teamName,
			"file_name":   fileName,
			"file_sha256": fileSHA,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
