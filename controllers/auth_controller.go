package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"

	"github.com/dcastillo-uci/carga-docente-backend/config"
	"github.com/dcastillo-uci/carga-docente-backend/middleware"
	"github.com/dcastillo-uci/carga-docente-backend/models"
	"github.com/dcastillo-uci/carga-docente-backend/permissions"
	"github.com/dcastillo-uci/carga-docente-backend/utils"
)

// ====== INPUT STRUCTS ======
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterInput struct {
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=6"`
	PasswordConfirm string  `json:"password_confirm" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Cargo           string  `json:"cargo"`
	Phone           *string `json:"telefono"`
}

type RefreshInput struct {
	Refresh string `json:"refresh" binding:"required"`
}

type ProfileUpdateInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// cargoRoles traduce el cargo declarado en el registro al rol interno.
// Las claves son sensibles a mayúsculas; cualquier otro cargo cae en
// JEFE_DISCIPLINA.
var cargoRoles = map[string]models.Role{
	"jefe de disciplina":   models.RoleJefeDisciplina,
	"jefe de departamento": models.RoleJefeDepartamento,
	"Vicedecano":           models.RoleVicedecano,
	"Director":             models.RoleDirector,
}

// ====== HANDLERS ======

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas"})
		return
	}
	if user.IsBlocked {
		c.JSON(http.StatusForbidden, gin.H{"error": permissions.BlockedMessage})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Esta cuenta ha sido desactivada."})
		return
	}

	issueTokens(c, &user, http.StatusOK)
}

func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Password != input.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"password_confirm": "Las contraseñas no coinciden."})
		return
	}

	role, ok := cargoRoles[input.Cargo]
	if !ok {
		role = models.RoleJefeDisciplina
	}

	var existing models.User
	if err := config.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"email": "Ya existe un usuario con este correo."})
		return
	}

	firstName := strings.TrimSpace(input.Name)
	lastName := ""
	if idx := strings.Index(firstName, " "); idx > 0 {
		lastName = strings.TrimSpace(firstName[idx+1:])
		firstName = firstName[:idx]
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo procesar la contraseña"})
		return
	}

	user := models.User{
		Username:  uniqueUsername(input.Email),
		Email:     input.Email,
		Password:  string(hashed),
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		Phone:     input.Phone,
		IsActive:  true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear el usuario"})
		return
	}

	issueTokens(c, &user, http.StatusCreated)
}

func Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := utils.VerifyRefreshToken(input.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token de actualización inválido"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no encontrado"})
		return
	}
	if user.IsBlocked {
		c.JSON(http.StatusForbidden, gin.H{"error": permissions.BlockedMessage})
		return
	}

	access, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar el token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, profilePayload(user))
}

func UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input ProfileUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Email != nil && *input.Email != user.Email {
		var other models.User
		if err := config.DB.Where("email = ? AND id <> ?", *input.Email, user.ID).First(&other).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"email": "Ya existe un usuario con este correo."})
			return
		}
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

	if err := config.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el perfil"})
		return
	}
	c.JSON(http.StatusOK, profilePayload(user))
}

func ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"old_password": "La contraseña actual es incorrecta."})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo procesar la contraseña"})
		return
	}
	user.Password = string(hashed)
	if err := config.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cambiar la contraseña"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contraseña cambiada correctamente."})
}

// ====== HELPERS ======

func issueTokens(c *gin.Context, user *models.User, status int) {
	access, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar el token"})
		return
	}
	refresh, err := utils.GenerateRefreshToken(user.ID.String(), string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar el token"})
		return
	}

	c.JSON(status, gin.H{
		"access":  access,
		"refresh": refresh,
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"name":       user.FullName(),
			"role":       user.Role.Frontend(),
			"department": nil,
		},
	})
}

func profilePayload(user *models.User) gin.H {
	payload := gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"phone":        user.Phone,
		"role":         user.Role,
		"role_display": user.Role.Display(),
		"is_active":    user.IsActive,
		"is_blocked":   user.IsBlocked,
		"date_joined":  user.CreatedAt,
	}
	for cap, allowed := range permissions.Set(user.Role) {
		payload[cap] = allowed
	}
	return payload
}

// uniqueUsername deriva el nombre de usuario de la parte local del correo y
// le añade un sufijo numérico si ya está tomado.
func uniqueUsername(email string) string {
	base := slug.Make(strings.SplitN(email, "@", 2)[0])
	if base == "" {
		base = "usuario"
	}

	username := base
	for i := 1; ; i++ {
		var count int64
		config.DB.Model(&models.User{}).Where("username = ?", username).Count(&count)
		if count == 0 {
			return username
		}
		username = fmt.Sprintf("%s%d", base, i)
	}
}
