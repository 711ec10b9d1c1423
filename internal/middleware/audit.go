package middleware

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const auditResourceKey = "audit_resource_id"

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// SetAuditResource names the record a mutation touched, for routes without an :id parameter.
func SetAuditResource(c *gin.Context, id int64) {
	c.Set(auditResourceKey, strconv.FormatInt(id, 10))
}

// Audit writes an audit entry after each successful mutation. Failures to record are logged only.
func Audit(recorder AuditRecorder, logger *zap.Logger, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		action := auditAction(c.Request.Method)
		if recorder == nil || action == "" || c.Writer.Status() >= 400 {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		if claims := Claims(c); claims != nil {
			userID := claims.UserID
			entry.UserID = &userID
		}
		if id := c.GetString(auditResourceKey); id != "" {
			entry.ResourceID = &id
		} else if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}
		entry.NewValues, _ = json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		if err := recorder.Create(c.Request.Context(), entry); err != nil {
			logger.Warn("audit log write failed", zap.String("resource", resource), zap.Error(err))
		}
	}
}

func auditAction(method string) string {
	switch method {
	case "POST":
		return models.AuditActionCreate
	case "PUT", "PATCH":
		return models.AuditActionUpdate
	case "DELETE":
		return models.AuditActionDelete
	}
	return ""
}
