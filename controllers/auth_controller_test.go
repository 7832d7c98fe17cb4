package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo-uci/carga-docente-backend/models"
)

func TestRegisterMapsCargoToRole(t *testing.T) {
	router, db := setupTest(t)

	w := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":            "director@uni.cu",
		"password":         "secreto123",
		"password_confirm": "secreto123",
		"name":             "Carlos Ruiz",
		"cargo":            "Director",
	})
	requireStatus(t, w, http.StatusCreated)

	var resp map[string]any
	decodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp["access"])
	assert.NotEmpty(t, resp["refresh"])

	user := resp["user"].(map[string]any)
	assert.Equal(t, "Carlos Ruiz", user["name"])
	assert.Equal(t, "director", user["role"])
	assert.Nil(t, user["department"])

	var stored models.User
	require.NoError(t, db.First(&stored, "email = ?", "director@uni.cu").Error)
	assert.Equal(t, models.RoleDirector, stored.Role)
	assert.Equal(t, "director", stored.Username)
}

func TestRegisterUniquifiesUsername(t *testing.T) {
	router, db := setupTest(t)

	body := func(email string) map[string]any {
		return map[string]any{
			"email":            email,
			"password":         "secreto123",
			"password_confirm": "secreto123",
			"name":             "Ana Díaz",
			"cargo":            "jefe de disciplina",
		}
	}

	w := doRequest(t, router, http.MethodPost, "/api/auth/register", "", body("ana@uni.cu"))
	requireStatus(t, w, http.StatusCreated)
	w = doRequest(t, router, http.MethodPost, "/api/auth/register", "", body("ana@otra.cu"))
	requireStatus(t, w, http.StatusCreated)

	var usernames []string
	require.NoError(t, db.Model(&models.User{}).Pluck("username", &usernames).Error)
	assert.ElementsMatch(t, []string{"ana", "ana1"}, usernames)
}

func TestRegisterRejectsMismatchedPasswords(t *testing.T) {
	router, _ := setupTest(t)

	w := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":            "nuevo@uni.cu",
		"password":         "secreto123",
		"password_confirm": "otra-cosa",
		"name":             "Ana Díaz",
	})
	requireStatus(t, w, http.StatusBadRequest)

	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Las contraseñas no coinciden.", resp["password_confirm"])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	router, db := setupTest(t)
	createUser(t, db, "repetido@uni.cu", models.RoleDirector)

	w := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":            "repetido@uni.cu",
		"password":         "secreto123",
		"password_confirm": "secreto123",
		"name":             "Otro Usuario",
		"cargo":            "Director",
	})
	requireStatus(t, w, http.StatusBadRequest)
}

func TestLoginAndProfile(t *testing.T) {
	router, db := setupTest(t)
	createUser(t, db, "admin@uni.cu", models.RoleAdmin)

	w := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "admin@uni.cu",
		"password": "secreto123",
	})
	requireStatus(t, w, http.StatusOK)

	var resp map[string]any
	decodeJSON(t, w, &resp)
	access := resp["access"].(string)

	w = doRequest(t, router, http.MethodGet, "/api/auth/profile", access, nil)
	requireStatus(t, w, http.StatusOK)

	var profile map[string]any
	decodeJSON(t, w, &profile)
	assert.Equal(t, "ADMIN", profile["role"])
	assert.Equal(t, true, profile["can_manage_users"])
	assert.Equal(t, false, profile["can_view_comments"])
}

func TestLoginWrongPassword(t *testing.T) {
	router, db := setupTest(t)
	createUser(t, db, "admin@uni.cu", models.RoleAdmin)

	w := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "admin@uni.cu",
		"password": "incorrecta",
	})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestBlockedUserCannotLoginNorUseToken(t *testing.T) {
	router, db := setupTest(t)
	user := createUser(t, db, "bloqueado@uni.cu", models.RoleDirector)
	token := tokenFor(t, user)

	require.NoError(t, db.Model(user).Update("is_blocked", true).Error)

	w := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "bloqueado@uni.cu",
		"password": "secreto123",
	})
	requireStatus(t, w, http.StatusForbidden)

	// El bloqueo corta también los tokens ya emitidos
	w = doRequest(t, router, http.MethodGet, "/api/auth/profile", token, nil)
	requireStatus(t, w, http.StatusForbidden)

	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Su cuenta está bloqueada. Contacte al administrador.", resp["error"])
}

func TestRefreshToken(t *testing.T) {
	router, db := setupTest(t)
	createUser(t, db, "admin@uni.cu", models.RoleAdmin)

	w := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "admin@uni.cu",
		"password": "secreto123",
	})
	requireStatus(t, w, http.StatusOK)

	var login map[string]any
	decodeJSON(t, w, &login)

	w = doRequest(t, router, http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refresh": login["refresh"],
	})
	requireStatus(t, w, http.StatusOK)

	var refreshed map[string]any
	decodeJSON(t, w, &refreshed)
	assert.NotEmpty(t, refreshed["access"])

	// Un token de acceso no sirve como refresh
	w = doRequest(t, router, http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refresh": login["access"],
	})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestChangePassword(t *testing.T) {
	router, db := setupTest(t)
	user := createUser(t, db, "admin@uni.cu", models.RoleAdmin)
	token := tokenFor(t, user)

	w := doRequest(t, router, http.MethodPut, "/api/auth/change-password", token, map[string]any{
		"old_password": "incorrecta",
		"new_password": "nuevaclave1",
	})
	requireStatus(t, w, http.StatusBadRequest)

	w = doRequest(t, router, http.MethodPut, "/api/auth/change-password", token, map[string]any{
		"old_password": "secreto123",
		"new_password": "nuevaclave1",
	})
	requireStatus(t, w, http.StatusOK)

	w = doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "admin@uni.cu",
		"password": "nuevaclave1",
	})
	requireStatus(t, w, http.StatusOK)
}
