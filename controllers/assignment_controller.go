package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastillo-uci/carga-docente-backend/middleware"
	"github.com/dcastillo-uci/carga-docente-backend/models"
	"github.com/dcastillo-uci/carga-docente-backend/repository"
	"github.com/dcastillo-uci/carga-docente-backend/serializers"
	"github.com/dcastillo-uci/carga-docente-backend/services"
)

// ====== INPUT STRUCTS ======
type AssignmentCreateInput struct {
	Professor      uuid.UUID             `json:"professor" binding:"required"`
	Subject        uuid.UUID             `json:"subject" binding:"required"`
	Faculty        uuid.UUID             `json:"faculty" binding:"required"`
	AssignmentType models.AssignmentType `json:"assignment_type" binding:"required"`
	HoursPerWeek   int                   `json:"hours_per_week"`
	Group          *string               `json:"group"`
	AcademicYear   string                `json:"academic_year" binding:"required"`
	Semester       int                   `json:"semester" binding:"required"`
	Order          int                   `json:"order"`
	IsActive       *bool                 `json:"is_active"`
}

// AssignmentController encapsula los handlers de asignaciones sobre el
// repositorio transaccional.
type AssignmentController struct {
	Repo repository.AssignmentRepository
}

func NewAssignmentController(repo repository.AssignmentRepository) *AssignmentController {
	return &AssignmentController{Repo: repo}
}

// ====== HANDLERS ======

func (ac *AssignmentController) List(c *gin.Context) {
	filters, err := ac.listFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignments, err := ac.Repo.List(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al listar las asignaciones"})
		return
	}

	results := make([]serializers.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		results = append(results, serializers.NewAssignmentResponse(&assignments[i]))
	}
	c.JSON(http.StatusOK, results)
}

func (ac *AssignmentController) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asignación no encontrada"})
		return
	}

	assignment, err := ac.Repo.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asignación no encontrada"})
		return
	}
	c.JSON(http.StatusOK, serializers.NewAssignmentResponse(assignment))
}

func (ac *AssignmentController) Create(c *gin.Context) {
	var input AssignmentCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.AssignmentType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"assignment_type": "Tipo de actividad no válido."})
		return
	}

	actor := middleware.CurrentUser(c)
	assignment, err := ac.Repo.Create(repository.CreateInput{
		ProfessorID:    input.Professor,
		SubjectID:      input.Subject,
		FacultyID:      input.Faculty,
		AssignmentType: input.AssignmentType,
		HoursPerWeek:   input.HoursPerWeek,
		Group:          input.Group,
		AcademicYear:   input.AcademicYear,
		Semester:       input.Semester,
		Order:          input.Order,
		IsActive:       input.IsActive,
	}, actor)
	if err != nil {
		ac.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializers.NewAssignmentResponse(assignment))
}

func (ac *AssignmentController) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asignación no encontrada"})
		return
	}

	// El grupo se lee del cuerpo crudo para distinguir ausencia de null.
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update, err := buildUpdateInput(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	assignment, err := ac.Repo.Update(id, update, actor)
	if err != nil {
		ac.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializers.NewAssignmentResponse(assignment))
}

func (ac *AssignmentController) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asignación no encontrada"})
		return
	}

	actor := middleware.CurrentUser(c)
	if err := ac.Repo.Delete(id, actor); err != nil {
		ac.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Asignación eliminada correctamente."})
}

func (ac *AssignmentController) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asignación no encontrada"})
		return
	}
	if _, err := ac.Repo.Get(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asignación no encontrada"})
		return
	}

	entries, err := ac.Repo.History(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar el historial"})
		return
	}
	c.JSON(http.StatusOK, historyResults(entries))
}

// AllHistory lista todo el historial de cambios, el más reciente primero.
func (ac *AssignmentController) AllHistory(c *gin.Context) {
	entries, err := ac.Repo.AllHistory()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar el historial"})
		return
	}
	c.JSON(http.StatusOK, historyResults(entries))
}

func (ac *AssignmentController) AssignmentTypes(c *gin.Context) {
	c.JSON(http.StatusOK, models.AssignmentTypeChoices())
}

func (ac *AssignmentController) ExportCSV(c *gin.Context) {
	assignments, ok := ac.exportRows(c, nil)
	if !ok {
		return
	}

	rows := make([][]string, 0, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		rows = append(rows, []string{
			a.Professor.FullName(), a.Professor.Email, a.Professor.Category.Display(),
			a.Subject.Name, a.Subject.Code, a.Faculty.Name, a.Subject.Discipline.Name,
			a.AssignmentType.Display(), fmt.Sprintf("%d", a.HoursPerWeek),
			a.Group, a.AcademicYear, fmt.Sprintf("%d", a.Semester),
		})
	}
	services.WriteCSV(c, "asignaciones.csv", assignmentExportHeader, rows)
}

// ExportByFaculty exige el parámetro faculty y exporta solo esa facultad.
func (ac *AssignmentController) ExportByFaculty(c *gin.Context) {
	facultyParam := c.Query("faculty")
	if facultyParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Debe especificar una facultad."})
		return
	}
	facultyID, err := uuid.Parse(facultyParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Debe especificar una facultad."})
		return
	}

	assignments, ok := ac.exportRows(c, func(f *repository.ListFilters) {
		f.FacultyID = &facultyID
	})
	if !ok {
		return
	}

	header := []string{"Profesor", "Email", "Asignatura", "Disciplina", "Tipo", "Horas/Semana", "Grupo", "Semestre"}
	rows := make([][]string, 0, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		rows = append(rows, []string{
			a.Professor.FullName(), a.Professor.Email, a.Subject.Name, a.Subject.Discipline.Name,
			a.AssignmentType.Display(), fmt.Sprintf("%d", a.HoursPerWeek),
			a.Group, fmt.Sprintf("%d", a.Semester),
		})
	}
	services.WriteCSV(c, fmt.Sprintf("asignaciones_facultad_%s.csv", facultyID), header, rows)
}

// ExportByDiscipline exige el parámetro discipline.
func (ac *AssignmentController) ExportByDiscipline(c *gin.Context) {
	disciplineParam := c.Query("discipline")
	if disciplineParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Debe especificar una disciplina."})
		return
	}
	disciplineID, err := uuid.Parse(disciplineParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Debe especificar una disciplina."})
		return
	}

	assignments, ok := ac.exportRows(c, func(f *repository.ListFilters) {
		f.DisciplineID = &disciplineID
	})
	if !ok {
		return
	}

	header := []string{"Profesor", "Email", "Asignatura", "Facultad", "Tipo", "Horas/Semana", "Grupo", "Semestre"}
	rows := make([][]string, 0, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		rows = append(rows, []string{
			a.Professor.FullName(), a.Professor.Email, a.Subject.Name, a.Faculty.Name,
			a.AssignmentType.Display(), fmt.Sprintf("%d", a.HoursPerWeek),
			a.Group, fmt.Sprintf("%d", a.Semester),
		})
	}
	services.WriteCSV(c, fmt.Sprintf("asignaciones_disciplina_%s.csv", disciplineID), header, rows)
}

func (ac *AssignmentController) ExportExcel(c *gin.Context) {
	assignments, ok := ac.exportRows(c, nil)
	if !ok {
		return
	}

	rows := make([][]any, 0, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		rows = append(rows, []any{
			a.Professor.FullName(), a.Professor.Email, a.Professor.Category.Display(),
			a.Subject.Name, a.Subject.Code, a.Faculty.Name, a.Subject.Discipline.Name,
			a.AssignmentType.Display(), a.HoursPerWeek,
			a.Group, a.AcademicYear, a.Semester,
		})
	}
	services.WriteExcel(c, "asignaciones.xlsx", "Asignaciones", assignmentExportHeader, rows)
}

// ====== HELPERS ======

var assignmentExportHeader = []string{
	"Profesor", "Email Profesor", "Categoría",
	"Asignatura", "Código Asignatura", "Facultad",
	"Disciplina", "Tipo de Actividad", "Horas/Semana",
	"Grupo", "Año Académico", "Semestre",
}

func (ac *AssignmentController) exportRows(c *gin.Context, extra func(*repository.ListFilters)) ([]models.Assignment, bool) {
	filters, err := ac.listFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if extra != nil {
		extra(&filters)
	}

	assignments, err := ac.Repo.List(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al exportar las asignaciones"})
		return nil, false
	}
	return assignments, true
}

// listFilters arma los filtros del listado. Los jefes de disciplina solo
// ven las asignaciones de sus disciplinas.
func (ac *AssignmentController) listFilters(c *gin.Context) (repository.ListFilters, error) {
	filters := repository.ListFilters{
		AcademicYear:   c.Query("academic_year"),
		AssignmentType: c.Query("assignment_type"),
		Search:         c.Query("search"),
	}

	if isActive, ok := parseBoolQuery(c, "is_active"); ok {
		filters.IsActive = &isActive
	}
	for param, target := range map[string]**uuid.UUID{
		"faculty":    &filters.FacultyID,
		"subject":    &filters.SubjectID,
		"professor":  &filters.ProfessorID,
		"discipline": &filters.DisciplineID,
	} {
		if raw := c.Query(param); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return filters, fmt.Errorf("el parámetro %s no es válido", param)
			}
			*target = &id
		}
	}
	if raw := c.Query("semester"); raw != "" {
		var semester int
		if _, err := fmt.Sscanf(raw, "%d", &semester); err != nil {
			return filters, errors.New("el parámetro semester no es válido")
		}
		filters.Semester = &semester
	}

	if user := middleware.CurrentUser(c); user != nil && user.Role == models.RoleJefeDisciplina {
		filters.ScopeHeadID = &user.ID
	}
	return filters, nil
}

func (ac *AssignmentController) writeError(c *gin.Context, err error) {
	var validation repository.ValidationError
	switch {
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{
			"non_field_errors": []string{"Ya existe una asignación idéntica para este profesor."},
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, validation)
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Asignación no encontrada"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al guardar la asignación"})
	}
}

func buildUpdateInput(raw map[string]any) (repository.UpdateInput, error) {
	var input repository.UpdateInput

	parseID := func(key string) (*uuid.UUID, error) {
		value, present := raw[key]
		if !present {
			return nil, nil
		}
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("el campo %s no es válido", key)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("el campo %s no es válido", key)
		}
		return &id, nil
	}
	parseInt := func(key string) (*int, error) {
		value, present := raw[key]
		if !present {
			return nil, nil
		}
		f, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("el campo %s no es válido", key)
		}
		n := int(f)
		return &n, nil
	}

	var err error
	if input.ProfessorID, err = parseID("professor"); err != nil {
		return input, err
	}
	if input.SubjectID, err = parseID("subject"); err != nil {
		return input, err
	}
	if input.FacultyID, err = parseID("faculty"); err != nil {
		return input, err
	}
	if value, present := raw["assignment_type"]; present {
		s, ok := value.(string)
		if !ok || !models.AssignmentType(s).Valid() {
			return input, errors.New("Tipo de actividad no válido.")
		}
		at := models.AssignmentType(s)
		input.AssignmentType = &at
	}
	if input.HoursPerWeek, err = parseInt("hours_per_week"); err != nil {
		return input, err
	}
	if input.Semester, err = parseInt("semester"); err != nil {
		return input, err
	}
	if input.Order, err = parseInt("order"); err != nil {
		return input, err
	}
	if value, present := raw["group"]; present {
		input.GroupSet = true
		if s, ok := value.(string); ok {
			input.Group = &s
		}
	}
	if value, present := raw["academic_year"]; present {
		s, ok := value.(string)
		if !ok {
			return input, errors.New("el campo academic_year no es válido")
		}
		input.AcademicYear = &s
	}
	if value, present := raw["is_active"]; present {
		b, ok := value.(bool)
		if !ok {
			return input, errors.New("el campo is_active no es válido")
		}
		input.IsActive = &b
	}
	return input, nil
}

func historyResults(entries []models.AssignmentHistory) []serializers.HistoryResponse {
	results := make([]serializers.HistoryResponse, 0, len(entries))
	for i := range entries {
		results = append(results, serializers.NewHistoryResponse(&entries[i]))
	}
	return results
}
