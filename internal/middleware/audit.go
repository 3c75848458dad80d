package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

type auditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// Audit records an audit entry after requests that completed successfully.
// The resource id is taken from the :id route parameter when present.
func Audit(recorder auditRecorder, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if user := CurrentAccount(c); user != nil {
			userID = &user.ID
		}
		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"path":       c.FullPath(),
			"method":     c.Request.Method,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.GetHeader("User-Agent"),
		})

		recorder.Record(c.Request.Context(), &models.AuditLog{
			UserID:     userID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			Details:    details,
		})
	}
}
