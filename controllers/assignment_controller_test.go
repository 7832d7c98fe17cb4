package controllers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo-uci/carga-docente-backend/models"
)

func assignmentBody(fx academicFixture, overrides map[string]any) map[string]any {
	body := map[string]any{
		"professor":       fx.Professor.ID,
		"subject":         fx.Subject.ID,
		"faculty":         fx.Faculty.ID,
		"assignment_type": "LECTURE",
		"hours_per_week":  0,
		"academic_year":   "2025-2026",
		"semester":        1,
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}

func TestAssignmentLifecycle(t *testing.T) {
	router, db := setupTest(t)
	vicedecano := createUser(t, db, "vice@uni.cu", models.RoleVicedecano)
	token := tokenFor(t, vicedecano)
	fx := seedAcademics(t, db)

	// Crear
	w := doRequest(t, router, http.MethodPost, "/api/assignments", token, assignmentBody(fx, nil))
	requireStatus(t, w, http.StatusCreated)

	var created map[string]any
	decodeJSON(t, w, &created)
	assert.Equal(t, "Ana Pérez", created["professor_name"])
	assert.Equal(t, "Ingeniería de Software", created["discipline_name"])
	id := created["id"].(string)

	// El alta deja una entrada CREATE en el historial
	w = doRequest(t, router, http.MethodGet, "/api/assignments/"+id+"/history", token, nil)
	requireStatus(t, w, http.StatusOK)

	var history []map[string]any
	decodeJSON(t, w, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "CREATE", history[0]["action"])

	// Actualizar horas deja una entrada UPDATE con old/new
	w = doRequest(t, router, http.MethodPatch, "/api/assignments/"+id, token,
		map[string]any{"hours_per_week": 4})
	requireStatus(t, w, http.StatusOK)

	w = doRequest(t, router, http.MethodGet, "/api/assignments/"+id+"/history", token, nil)
	decodeJSON(t, w, &history)
	require.Len(t, history, 2)
	assert.Equal(t, "UPDATE", history[0]["action"])

	changes := history[0]["changes"].(map[string]any)
	hours := changes["hours_per_week"].(map[string]any)
	assert.Equal(t, float64(0), hours["old"])
	assert.Equal(t, float64(4), hours["new"])

	// Una actualización sin cambios no escribe historial
	w = doRequest(t, router, http.MethodPatch, "/api/assignments/"+id, token,
		map[string]any{"hours_per_week": 4})
	requireStatus(t, w, http.StatusOK)

	w = doRequest(t, router, http.MethodGet, "/api/assignments/"+id+"/history", token, nil)
	decodeJSON(t, w, &history)
	assert.Len(t, history, 2)

	// Eliminar arrastra el historial
	w = doRequest(t, router, http.MethodDelete, "/api/assignments/"+id, token, nil)
	requireStatus(t, w, http.StatusOK)

	var count int64
	db.Model(&models.AssignmentHistory{}).Where("assignment_id = ?", id).Count(&count)
	assert.Zero(t, count)
}

func TestAssignmentUpdateReplacesProfessorAndSubject(t *testing.T) {
	router, db := setupTest(t)
	vicedecano := createUser(t, db, "vice@uni.cu", models.RoleVicedecano)
	token := tokenFor(t, vicedecano)
	fx := seedAcademics(t, db)

	otherProfessor := models.Professor{
		FirstName: "Luis", LastName: "García", Email: "luis@uni.cu",
		Identification: "90010198765", IsActive: true,
	}
	require.NoError(t, db.Create(&otherProfessor).Error)
	otherSubject := models.Subject{
		Name: "Bases de Datos", Code: "BD1", DisciplineID: fx.Discipline.ID,
		HoursPerWeek: 4, Semester: 1, Year: 2, IsActive: true,
	}
	require.NoError(t, db.Create(&otherSubject).Error)

	w := doRequest(t, router, http.MethodPost, "/api/assignments", token, assignmentBody(fx, nil))
	requireStatus(t, w, http.StatusCreated)

	var created map[string]any
	decodeJSON(t, w, &created)
	id := created["id"].(string)

	w = doRequest(t, router, http.MethodPatch, "/api/assignments/"+id, token,
		map[string]any{"professor": otherProfessor.ID})
	requireStatus(t, w, http.StatusOK)

	var updated map[string]any
	decodeJSON(t, w, &updated)
	assert.Equal(t, otherProfessor.ID.String(), updated["professor"])
	assert.Equal(t, "Luis García", updated["professor_name"])

	var stored models.Assignment
	require.NoError(t, db.First(&stored, "id = ?", id).Error)
	assert.Equal(t, otherProfessor.ID, stored.ProfessorID)

	w = doRequest(t, router, http.MethodGet, "/api/assignments/"+id+"/history", token, nil)
	requireStatus(t, w, http.StatusOK)

	var history []map[string]any
	decodeJSON(t, w, &history)
	require.NotEmpty(t, history)
	assert.Equal(t, "UPDATE", history[0]["action"])

	changes := history[0]["changes"].(map[string]any)
	professorDiff := changes["professor"].(map[string]any)
	assert.Equal(t, fx.Professor.ID.String(), professorDiff["old"])
	assert.Equal(t, otherProfessor.ID.String(), professorDiff["new"])
	nameDiff := changes["professor_name"].(map[string]any)
	assert.Equal(t, "Ana Pérez", nameDiff["old"])
	assert.Equal(t, "Luis García", nameDiff["new"])

	w = doRequest(t, router, http.MethodPatch, "/api/assignments/"+id, token,
		map[string]any{"subject": otherSubject.ID})
	requireStatus(t, w, http.StatusOK)

	decodeJSON(t, w, &updated)
	assert.Equal(t, otherSubject.ID.String(), updated["subject"])
	assert.Equal(t, "Bases de Datos", updated["subject_name"])

	require.NoError(t, db.First(&stored, "id = ?", id).Error)
	assert.Equal(t, otherSubject.ID, stored.SubjectID)
}

func TestAssignmentDuplicateRejected(t *testing.T) {
	router, db := setupTest(t)
	vicedecano := createUser(t, db, "vice@uni.cu", models.RoleVicedecano)
	token := tokenFor(t, vicedecano)
	fx := seedAcademics(t, db)

	w := doRequest(t, router, http.MethodPost, "/api/assignments", token, assignmentBody(fx, nil))
	requireStatus(t, w, http.StatusCreated)

	// Tupla idéntica (sin grupo)
	w = doRequest(t, router, http.MethodPost, "/api/assignments", token, assignmentBody(fx, nil))
	requireStatus(t, w, http.StatusBadRequest)

	var resp map[string]any
	decodeJSON(t, w, &resp)
	assert.Contains(t, resp, "non_field_errors")

	// El grupo vacío explícito es la misma tupla que el grupo omitido
	w = doRequest(t, router, http.MethodPost, "/api/assignments", token,
		assignmentBody(fx, map[string]any{"group": ""}))
	requireStatus(t, w, http.StatusBadRequest)

	// Con un grupo distinto sí entra
	w = doRequest(t, router, http.MethodPost, "/api/assignments", token,
		assignmentBody(fx, map[string]any{"group": "C-301"}))
	requireStatus(t, w, http.StatusCreated)
}

func TestAssignmentUnknownReferences(t *testing.T) {
	router, db := setupTest(t)
	vicedecano := createUser(t, db, "vice@uni.cu", models.RoleVicedecano)
	token := tokenFor(t, vicedecano)
	fx := seedAcademics(t, db)

	w := doRequest(t, router, http.MethodPost, "/api/assignments", token,
		assignmentBody(fx, map[string]any{"professor": uuid.New()}))
	requireStatus(t, w, http.StatusBadRequest)

	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.Contains(t, resp, "professor")
}

func TestAssignmentListScopedForDisciplineHead(t *testing.T) {
	router, db := setupTest(t)
	vicedecano := createUser(t, db, "vice@uni.cu", models.RoleVicedecano)
	head := createUser(t, db, "jefe@uni.cu", models.RoleJefeDisciplina)
	viceToken := tokenFor(t, vicedecano)
	fx := seedAcademics(t, db)

	// Segunda disciplina dirigida por el jefe, con su propia asignatura
	otherDiscipline := models.Discipline{Name: "Matemática", Code: "MAT", HeadID: &head.ID, IsActive: true}
	require.NoError(t, db.Create(&otherDiscipline).Error)
	otherSubject := models.Subject{
		Name: "Álgebra", Code: "ALG1", DisciplineID: otherDiscipline.ID,
		Semester: 1, Year: 1, IsActive: true,
	}
	require.NoError(t, db.Create(&otherSubject).Error)

	w := doRequest(t, router, http.MethodPost, "/api/assignments", viceToken, assignmentBody(fx, nil))
	requireStatus(t, w, http.StatusCreated)
	w = doRequest(t, router, http.MethodPost, "/api/assignments", viceToken,
		assignmentBody(fx, map[string]any{"subject": otherSubject.ID}))
	requireStatus(t, w, http.StatusCreated)

	// El vicedecano ve las dos
	w = doRequest(t, router, http.MethodGet, "/api/assignments", viceToken, nil)
	requireStatus(t, w, http.StatusOK)
	var all []map[string]any
	decodeJSON(t, w, &all)
	assert.Len(t, all, 2)

	// El jefe de disciplina solo ve la de su disciplina
	w = doRequest(t, router, http.MethodGet, "/api/assignments", tokenFor(t, head), nil)
	requireStatus(t, w, http.StatusOK)
	var scoped []map[string]any
	decodeJSON(t, w, &scoped)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Álgebra", scoped[0]["subject_name"])
}

func TestAssignmentExportCSV(t *testing.T) {
	router, db := setupTest(t)
	vicedecano := createUser(t, db, "vice@uni.cu", models.RoleVicedecano)
	token := tokenFor(t, vicedecano)
	fx := seedAcademics(t, db)

	w := doRequest(t, router, http.MethodPost, "/api/assignments", token, assignmentBody(fx, nil))
	requireStatus(t, w, http.StatusCreated)

	w = doRequest(t, router, http.MethodGet, "/api/assignments/export_csv", token, nil)
	requireStatus(t, w, http.StatusOK)

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"), "el CSV debe empezar con BOM")
	assert.Contains(t, body, "Profesor")
	assert.Contains(t, body, "Ana Pérez")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "asignaciones.csv")

	// La exportación por facultad exige el parámetro
	w = doRequest(t, router, http.MethodGet, "/api/assignments/export_by_faculty", token, nil)
	requireStatus(t, w, http.StatusBadRequest)
	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Debe especificar una facultad.", resp["error"])

	w = doRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/assignments/export_by_faculty?faculty=%s", fx.Faculty.ID), token, nil)
	requireStatus(t, w, http.StatusOK)
}

func TestAssignmentCapabilityBoundaries(t *testing.T) {
	router, db := setupTest(t)
	director := createUser(t, db, "director@uni.cu", models.RoleDirector)
	admin := createUser(t, db, "admin@uni.cu", models.RoleAdmin)
	fx := seedAcademics(t, db)

	// El director consulta y exporta, pero no modifica asignaciones
	directorToken := tokenFor(t, director)
	w := doRequest(t, router, http.MethodGet, "/api/assignments", directorToken, nil)
	requireStatus(t, w, http.StatusOK)

	w = doRequest(t, router, http.MethodPost, "/api/assignments", directorToken, assignmentBody(fx, nil))
	requireStatus(t, w, http.StatusForbidden)

	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.Equal(t, "No tiene permisos para modificar asignaciones.", resp["error"])

	// El administrador tampoco modifica ni exporta
	adminToken := tokenFor(t, admin)
	w = doRequest(t, router, http.MethodPost, "/api/assignments", adminToken, assignmentBody(fx, nil))
	requireStatus(t, w, http.StatusForbidden)

	w = doRequest(t, router, http.MethodGet, "/api/assignments/export_csv", adminToken, nil)
	requireStatus(t, w, http.StatusForbidden)
}
