package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dcastillo-uci/carga-docente-backend/config"
	"github.com/dcastillo-uci/carga-docente-backend/models"
	"github.com/dcastillo-uci/carga-docente-backend/routes"
	"github.com/dcastillo-uci/carga-docente-backend/utils"
)

// setupTest levanta una base SQLite en memoria propia de la prueba y el
// router completo sobre ella.
func setupTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	config.DB = db
	router := routes.SetupRouter(gin.New(), db)
	return router, db
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:  email,
		Email:     email,
		Password:  string(hashed),
		FirstName: "Usuario",
		LastName:  "De Prueba",
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target),
		"respuesta no decodificable: %s", w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	require.Equal(t, expected, w.Code, "cuerpo: %s", w.Body.String())
}

// seedAcademics crea la estructura mínima para trabajar con asignaciones.
type academicFixture struct {
	Faculty    models.Faculty
	Discipline models.Discipline
	Subject    models.Subject
	Professor  models.Professor
}

func seedAcademics(t *testing.T, db *gorm.DB) academicFixture {
	t.Helper()

	faculty := models.Faculty{Name: "Facultad 1", Code: "F1", IsActive: true}
	require.NoError(t, db.Create(&faculty).Error)

	discipline := models.Discipline{Name: "Ingeniería de Software", Code: "ISW", IsActive: true}
	require.NoError(t, db.Create(&discipline).Error)

	subject := models.Subject{
		Name: "Programación", Code: "PRG1", DisciplineID: discipline.ID,
		HoursPerWeek: 4, Semester: 1, Year: 1, IsActive: true,
	}
	require.NoError(t, db.Create(&subject).Error)

	professor := models.Professor{
		FirstName: "Ana", LastName: "Pérez", Email: "ana@uni.cu",
		Identification: "85010112345", IsActive: true,
	}
	require.NoError(t, db.Create(&professor).Error)

	return academicFixture{Faculty: faculty, Discipline: discipline, Subject: subject, Professor: professor}
}
