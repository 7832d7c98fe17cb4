package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo-uci/carga-docente-backend/models"
)

func TestUserManagementRequiresAdmin(t *testing.T) {
	router, db := setupTest(t)
	director := createUser(t, db, "director@uni.cu", models.RoleDirector)

	w := doRequest(t, router, http.MethodGet, "/api/users", tokenFor(t, director), nil)
	requireStatus(t, w, http.StatusForbidden)

	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.Equal(t, "No tiene permisos para gestionar usuarios.", resp["error"])
}

func TestAdminCannotBlockSelf(t *testing.T) {
	router, db := setupTest(t)
	admin := createUser(t, db, "admin@uni.cu", models.RoleAdmin)
	token := tokenFor(t, admin)

	w := doRequest(t, router, http.MethodPost, "/api/users/"+admin.ID.String()+"/block", token, nil)
	requireStatus(t, w, http.StatusBadRequest)

	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.Equal(t, "No puede bloquearse a sí mismo.", resp["error"])
}

func TestBlockAndUnblockUser(t *testing.T) {
	router, db := setupTest(t)
	admin := createUser(t, db, "admin@uni.cu", models.RoleAdmin)
	jefe := createUser(t, db, "jefe@uni.cu", models.RoleJefeDisciplina)
	token := tokenFor(t, admin)

	w := doRequest(t, router, http.MethodPost, "/api/users/"+jefe.ID.String()+"/block", token, nil)
	requireStatus(t, w, http.StatusOK)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", jefe.ID).Error)
	assert.True(t, stored.IsBlocked)

	w = doRequest(t, router, http.MethodPost, "/api/users/"+jefe.ID.String()+"/unblock", token, nil)
	requireStatus(t, w, http.StatusOK)

	require.NoError(t, db.First(&stored, "id = ?", jefe.ID).Error)
	assert.False(t, stored.IsBlocked)
}

func TestAdminCreatesAndResetsPassword(t *testing.T) {
	router, db := setupTest(t)
	admin := createUser(t, db, "admin@uni.cu", models.RoleAdmin)
	token := tokenFor(t, admin)

	w := doRequest(t, router, http.MethodPost, "/api/users", token, map[string]any{
		"username":   "nuevo",
		"email":      "nuevo@uni.cu",
		"password":   "clave12345",
		"first_name": "Nuevo",
		"last_name":  "Usuario",
		"role":       "DIRECTOR",
	})
	requireStatus(t, w, http.StatusCreated)

	var created map[string]any
	decodeJSON(t, w, &created)
	id := created["id"].(string)
	assert.Equal(t, "Director de Formación", created["role_display"])

	w = doRequest(t, router, http.MethodPost, "/api/users/"+id+"/change_password", token, map[string]any{
		"new_password": "otraclave1",
	})
	requireStatus(t, w, http.StatusOK)

	w = doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "nuevo@uni.cu",
		"password": "otraclave1",
	})
	requireStatus(t, w, http.StatusOK)
}

func TestListUsersWithFilters(t *testing.T) {
	router, db := setupTest(t)
	admin := createUser(t, db, "admin@uni.cu", models.RoleAdmin)
	createUser(t, db, "director@uni.cu", models.RoleDirector)
	createUser(t, db, "jefe@uni.cu", models.RoleJefeDisciplina)
	token := tokenFor(t, admin)

	w := doRequest(t, router, http.MethodGet, "/api/users?role=DIRECTOR", token, nil)
	requireStatus(t, w, http.StatusOK)

	var results []map[string]any
	decodeJSON(t, w, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "director@uni.cu", results[0]["email"])

	w = doRequest(t, router, http.MethodGet, "/api/users?search=JEFE", token, nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "jefe@uni.cu", results[0]["email"])
}

func TestGetRolesCatalog(t *testing.T) {
	router, db := setupTest(t)
	admin := createUser(t, db, "admin@uni.cu", models.RoleAdmin)

	w := doRequest(t, router, http.MethodGet, "/api/roles", tokenFor(t, admin), nil)
	requireStatus(t, w, http.StatusOK)

	var choices []map[string]string
	decodeJSON(t, w, &choices)
	assert.Len(t, choices, 5)

	values := make([]string, 0, len(choices))
	for _, choice := range choices {
		values = append(values, choice["value"])
	}
	assert.Contains(t, values, "JEFE_DISCIPLINA")
}
