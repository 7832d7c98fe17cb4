package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dcastillo-uci/carga-docente-backend/models"
	"github.com/dcastillo-uci/carga-docente-backend/permissions"
)

// RequireCapability corta con 403 si el rol del usuario autenticado no
// tiene la capacidad. Debe ir después de AuthMiddleware.
func RequireCapability(cap permissions.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetString("role"))
		if !permissions.Allowed(role, cap) {
			c.JSON(http.StatusForbidden, gin.H{"error": permissions.Message(cap)})
			c.Abort()
			return
		}
		c.Next()
	}
}
