package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/dcastillo-uci/carga-docente-backend/config"
	"github.com/dcastillo-uci/carga-docente-backend/middleware"
	"github.com/dcastillo-uci/carga-docente-backend/models"
)

// ====== INPUT STRUCTS ======
type CreateUserInput struct {
	Username  string      `json:"username" binding:"required"`
	Email     string      `json:"email" binding:"required,email"`
	Password  string      `json:"password" binding:"required,min=6"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      models.Role `json:"role" binding:"required"`
	Phone     *string     `json:"phone"`
}

type UpdateUserInput struct {
	Username  *string      `json:"username"`
	Email     *string      `json:"email"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Role      *models.Role `json:"role"`
	Phone     *string      `json:"phone"`
	IsActive  *bool        `json:"is_active"`
}

type AdminPasswordInput struct {
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ====== HANDLERS ======

func ListUsers(c *gin.Context) {
	query := config.DB.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if isActive, ok := parseBoolQuery(c, "is_active"); ok {
		query = query.Where("is_active = ?", isActive)
	}
	if isBlocked, ok := parseBoolQuery(c, "is_blocked"); ok {
		query = query.Where("is_blocked = ?", isBlocked)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var users []models.User
	if err := query.Order("username").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al listar los usuarios"})
		return
	}

	results := make([]gin.H, 0, len(users))
	for i := range users {
		results = append(results, userPayload(&users[i]))
	}
	c.JSON(http.StatusOK, results)
}

func GetUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}
	c.JSON(http.StatusOK, userPayload(&user))
}

func CreateUser(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"role": "Rol no válido."})
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ? OR username = ?", input.Email, input.Username).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ya existe un usuario con ese correo o nombre de usuario."})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo procesar la contraseña"})
		return
	}

	user := models.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hashed),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      input.Role,
		Phone:     input.Phone,
		IsActive:  true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear el usuario"})
		return
	}
	c.JSON(http.StatusCreated, userPayload(&user))
}

func UpdateUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"role": "Rol no válido."})
			return
		}
		user.Role = *input.Role
	}
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el usuario"})
		return
	}
	c.JSON(http.StatusOK, userPayload(&user))
}

func DeleteUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}
	if err := config.DB.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar el usuario"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado correctamente."})
}

// BlockUser marca la cuenta como bloqueada. Un administrador no puede
// bloquearse a sí mismo.
func BlockUser(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var user models.User
	if err := config.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}
	if user.ID == actor.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No puede bloquearse a sí mismo."})
		return
	}

	user.IsBlocked = true
	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al bloquear el usuario"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Usuario %s bloqueado correctamente.", user.Username), "user": userPayload(&user)})
}

func UnblockUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	user.IsBlocked = false
	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al desbloquear el usuario"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Usuario %s desbloqueado correctamente.", user.Username), "user": userPayload(&user)})
}

// AdminChangePassword reestablece la contraseña de otro usuario sin pedir
// la actual.
func AdminChangePassword(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	var input AdminPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo procesar la contraseña"})
		return
	}
	user.Password = string(hashed)
	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cambiar la contraseña"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contraseña cambiada correctamente."})
}

func GetRoles(c *gin.Context) {
	c.JSON(http.StatusOK, models.RoleChoices())
}

// ====== HELPERS ======

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"full_name":    user.FullName(),
		"phone":        user.Phone,
		"role":         user.Role,
		"role_display": user.Role.Display(),
		"is_active":    user.IsActive,
		"is_blocked":   user.IsBlocked,
		"date_joined":  user.CreatedAt,
	}
}
