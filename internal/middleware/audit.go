package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-matriculas/internal/utils"
)

// AuditContext attaches the caller's IP, user agent and request ID to the
// context of write requests, so audit entries written downstream carry them.
// It must run after RequestID.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			ctx := utils.WithAuditContext(c.Request.Context(), utils.GetAuditContextFromGin(c))
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
