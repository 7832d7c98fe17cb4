package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dcastillo-uci/carga-docente-backend/config"
	"github.com/dcastillo-uci/carga-docente-backend/models"
	"github.com/dcastillo-uci/carga-docente-backend/permissions"
	"github.com/dcastillo-uci/carga-docente-backend/utils"
)

// AuthMiddleware valida el token Bearer y recarga el usuario en cada
// petición: el estado bloqueado/inactivo se evalúa siempre fresco y corta
// antes de cualquier chequeo de permisos sobre recursos.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Falta el header Authorization"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Header Authorization inválido"})
			c.Abort()
			return
		}

		claims, err := utils.VerifyToken(parts[1])
		if err != nil || claims.TokenType != utils.TokenAccess {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token inválido o expirado"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token inválido o expirado"})
			c.Abort()
			return
		}

		var user models.User
		if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no encontrado"})
			c.Abort()
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "Esta cuenta ha sido desactivada."})
			c.Abort()
			return
		}
		if user.IsBlocked {
			c.JSON(http.StatusForbidden, gin.H{"error": permissions.BlockedMessage})
			c.Abort()
			return
		}

		c.Set("user", &user)
		c.Set("user_id", user.ID.String())
		c.Set("role", string(user.Role))
		c.Next()
	}
}

// CurrentUser devuelve el usuario cargado por AuthMiddleware, o nil si la
// ruta no pasó por él.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
