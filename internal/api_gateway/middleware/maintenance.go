package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deducta-loan-ledger/internal/domain/settings"
)

// Maintenance rejects requests with 503 while the platform-wide maintenance
// flag is set. Admin routes are mounted without it so the flag can be cleared.
func Maintenance(store settings.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		enabled, err := store.Bool(c.Request.Context(), settings.KeyMaintenanceMode)
		if err != nil {
			// The flag is advisory. If it cannot be read, let the request
			// through rather than taking the whole API down.
			logger.Warn("Failed to read maintenance flag", "error", err)
			c.Next()
			return
		}

		if enabled {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{
					"code":    "MAINTENANCE",
					"message": "The platform is under maintenance, try again later",
				},
				"correlation_id": GetCorrelationID(c),
			})
			return
		}

		c.Next()
	}
}
