package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcastillo-uci/carga-docente-backend/models"
)

func TestProfessorCreateAndDefaults(t *testing.T) {
	router, db := setupTest(t)
	jefe := createUser(t, db, "jefe@uni.cu", models.RoleJefeDisciplina)
	token := tokenFor(t, jefe)

	w := doRequest(t, router, http.MethodPost, "/api/professors", token, map[string]any{
		"first_name":     "Luis",
		"last_name":      "García",
		"email":          "luis@uni.cu",
		"identification": "90010198765",
	})
	requireStatus(t, w, http.StatusCreated)

	var created map[string]any
	decodeJSON(t, w, &created)
	assert.Equal(t, "Luis García", created["full_name"])
	assert.Equal(t, "INSTRUCTOR", created["category"])
	assert.Equal(t, jefe.ID.String(), created["created_by"])

	// Identificación duplicada
	w = doRequest(t, router, http.MethodPost, "/api/professors", token, map[string]any{
		"first_name":     "Otro",
		"last_name":      "García",
		"email":          "otro@uni.cu",
		"identification": "90010198765",
	})
	requireStatus(t, w, http.StatusBadRequest)
}

func TestProfessorWriteRequiresCapability(t *testing.T) {
	router, db := setupTest(t)
	director := createUser(t, db, "director@uni.cu", models.RoleDirector)
	token := tokenFor(t, director)

	w := doRequest(t, router, http.MethodGet, "/api/professors", token, nil)
	requireStatus(t, w, http.StatusOK)

	w = doRequest(t, router, http.MethodPost, "/api/professors", token, map[string]any{
		"first_name":     "Luis",
		"last_name":      "García",
		"email":          "luis@uni.cu",
		"identification": "90010198765",
	})
	requireStatus(t, w, http.StatusForbidden)

	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.Equal(t, "No tiene permisos para agregar profesores.", resp["error"])
}

func TestProfessorDeleteBlockedByAssignments(t *testing.T) {
	router, db := setupTest(t)
	vicedecano := createUser(t, db, "vice@uni.cu", models.RoleVicedecano)
	token := tokenFor(t, vicedecano)
	fx := seedAcademics(t, db)

	w := doRequest(t, router, http.MethodPost, "/api/assignments", token, assignmentBody(fx, nil))
	requireStatus(t, w, http.StatusCreated)

	w = doRequest(t, router, http.MethodDelete, "/api/professors/"+fx.Professor.ID.String(), token, nil)
	requireStatus(t, w, http.StatusBadRequest)

	var count int64
	db.Model(&models.Professor{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestProfessorExportCSV(t *testing.T) {
	router, db := setupTest(t)
	director := createUser(t, db, "director@uni.cu", models.RoleDirector)
	token := tokenFor(t, director)
	seedAcademics(t, db)

	w := doRequest(t, router, http.MethodGet, "/api/professors/export_csv", token, nil)
	requireStatus(t, w, http.StatusOK)

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	assert.Contains(t, body, "Nombre,Apellidos,Email")
	assert.Contains(t, body, "ana@uni.cu")
}

func TestProfessorChoicesCatalogs(t *testing.T) {
	router, db := setupTest(t)
	jefe := createUser(t, db, "jefe@uni.cu", models.RoleJefeDisciplina)
	token := tokenFor(t, jefe)

	w := doRequest(t, router, http.MethodGet, "/api/professors/categories", token, nil)
	requireStatus(t, w, http.StatusOK)

	var choices []map[string]string
	decodeJSON(t, w, &choices)
	assert.NotEmpty(t, choices)

	w = doRequest(t, router, http.MethodGet, "/api/professors/contract_types", token, nil)
	requireStatus(t, w, http.StatusOK)
}
