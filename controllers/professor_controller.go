package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dcastillo-uci/carga-docente-backend/config"
	"github.com/dcastillo-uci/carga-docente-backend/middleware"
	"github.com/dcastillo-uci/carga-docente-backend/models"
	"github.com/dcastillo-uci/carga-docente-backend/services"
)

// ====== INPUT STRUCTS ======
type ProfessorInput struct {
	FirstName         string                  `json:"first_name" binding:"required"`
	LastName          string                  `json:"last_name" binding:"required"`
	Email             string                  `json:"email" binding:"required,email"`
	Phone             *string                 `json:"phone"`
	Identification    string                  `json:"identification" binding:"required"`
	Category          models.Category         `json:"category"`
	ScientificDegree  models.ScientificDegree `json:"scientific_degree"`
	ContractType      models.ContractType     `json:"contract_type"`
	Specialty         *string                 `json:"specialty"`
	YearsOfExperience int                     `json:"years_of_experience"`
	IsActive          *bool                   `json:"is_active"`
}

type ProfessorUpdateInput struct {
	FirstName         *string                  `json:"first_name"`
	LastName          *string                  `json:"last_name"`
	Email             *string                  `json:"email"`
	Phone             *string                  `json:"phone"`
	Identification    *string                  `json:"identification"`
	Category          *models.Category         `json:"category"`
	ScientificDegree  *models.ScientificDegree `json:"scientific_degree"`
	ContractType      *models.ContractType     `json:"contract_type"`
	Specialty         *string                  `json:"specialty"`
	YearsOfExperience *int                     `json:"years_of_experience"`
	IsActive          *bool                    `json:"is_active"`
}

// ====== HANDLERS ======

func ListProfessors(c *gin.Context) {
	professors, err := filteredProfessors(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al listar los profesores"})
		return
	}

	results := make([]gin.H, 0, len(professors))
	for i := range professors {
		results = append(results, professorPayload(&professors[i]))
	}
	c.JSON(http.StatusOK, results)
}

func GetProfessor(c *gin.Context) {
	var professor models.Professor
	if err := config.DB.First(&professor, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profesor no encontrado"})
		return
	}
	c.JSON(http.StatusOK, professorPayload(&professor))
}

func CreateProfessor(c *gin.Context) {
	var input ProfessorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Category != "" && !input.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"category": "Categoría docente no válida."})
		return
	}
	if input.ScientificDegree != "" && !input.ScientificDegree.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"scientific_degree": "Grado científico no válido."})
		return
	}
	if input.ContractType != "" && !input.ContractType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"contract_type": "Tipo de contrato no válido."})
		return
	}

	var existing models.Professor
	if err := config.DB.Where("email = ? OR identification = ?", input.Email, input.Identification).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ya existe un profesor con ese correo o identificación."})
		return
	}

	actor := middleware.CurrentUser(c)
	professor := models.Professor{
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Email:             input.Email,
		Phone:             input.Phone,
		Identification:    input.Identification,
		Category:          models.CategoryInstructor,
		ScientificDegree:  models.DegreeNone,
		ContractType:      models.ContractFullTime,
		Specialty:         input.Specialty,
		YearsOfExperience: input.YearsOfExperience,
		IsActive:          true,
	}
	if input.Category != "" {
		professor.Category = input.Category
	}
	if input.ScientificDegree != "" {
		professor.ScientificDegree = input.ScientificDegree
	}
	if input.ContractType != "" {
		professor.ContractType = input.ContractType
	}
	if input.IsActive != nil {
		professor.IsActive = *input.IsActive
	}
	if actor != nil {
		professor.CreatedByID = &actor.ID
	}

	if err := config.DB.Create(&professor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear el profesor"})
		return
	}
	c.JSON(http.StatusCreated, professorPayload(&professor))
}

func UpdateProfessor(c *gin.Context) {
	var professor models.Professor
	if err := config.DB.First(&professor, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profesor no encontrado"})
		return
	}

	var input ProfessorUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Category != nil {
		if !input.Category.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"category": "Categoría docente no válida."})
			return
		}
		professor.Category = *input.Category
	}
	if input.ScientificDegree != nil {
		if !input.ScientificDegree.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"scientific_degree": "Grado científico no válido."})
			return
		}
		professor.ScientificDegree = *input.ScientificDegree
	}
	if input.ContractType != nil {
		if !input.ContractType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"contract_type": "Tipo de contrato no válido."})
			return
		}
		professor.ContractType = *input.ContractType
	}
	if input.FirstName != nil {
		professor.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		professor.LastName = *input.LastName
	}
	if input.Email != nil {
		professor.Email = *input.Email
	}
	if input.Phone != nil {
		professor.Phone = input.Phone
	}
	if input.Identification != nil {
		professor.Identification = *input.Identification
	}
	if input.Specialty != nil {
		professor.Specialty = input.Specialty
	}
	if input.YearsOfExperience != nil {
		professor.YearsOfExperience = *input.YearsOfExperience
	}
	if input.IsActive != nil {
		professor.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&professor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el profesor"})
		return
	}
	c.JSON(http.StatusOK, professorPayload(&professor))
}

func DeleteProfessor(c *gin.Context) {
	var professor models.Professor
	if err := config.DB.First(&professor, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profesor no encontrado"})
		return
	}

	var count int64
	config.DB.Model(&models.Assignment{}).Where("professor_id = ?", professor.ID).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No se puede eliminar un profesor con asignaciones. Elimine primero sus asignaciones.",
		})
		return
	}

	if err := config.DB.Delete(&professor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar el profesor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profesor eliminado correctamente."})
}

func ExportProfessorsCSV(c *gin.Context) {
	professors, err := filteredProfessors(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al exportar los profesores"})
		return
	}
	services.WriteCSV(c, "profesores.csv", professorExportHeader, professorCSVRows(professors))
}

func ExportProfessorsExcel(c *gin.Context) {
	professors, err := filteredProfessors(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al exportar los profesores"})
		return
	}

	rows := make([][]any, 0, len(professors))
	for i := range professors {
		p := &professors[i]
		rows = append(rows, []any{
			p.FirstName, p.LastName, p.Email, stringOrEmpty(p.Phone), p.Identification,
			p.Category.Display(), p.ScientificDegree.Display(), p.ContractType.Display(),
			stringOrEmpty(p.Specialty), p.YearsOfExperience,
		})
	}
	services.WriteExcel(c, "profesores.xlsx", "Profesores", professorExportHeader, rows)
}

func GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.CategoryChoices())
}

func GetScientificDegrees(c *gin.Context) {
	c.JSON(http.StatusOK, models.ScientificDegreeChoices())
}

func GetContractTypes(c *gin.Context) {
	c.JSON(http.StatusOK, models.ContractTypeChoices())
}

// ====== HELPERS ======

var professorExportHeader = []string{
	"Nombre", "Apellidos", "Email", "Teléfono", "CI",
	"Categoría", "Grado Científico", "Tipo de Contrato",
	"Especialidad", "Años de Experiencia",
}

func filteredProfessors(c *gin.Context) ([]models.Professor, error) {
	query := config.DB.Model(&models.Professor{})

	if isActive, ok := parseBoolQuery(c, "is_active"); ok {
		query = query.Where("is_active = ?", isActive)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if degree := c.Query("scientific_degree"); degree != "" {
		query = query.Where("scientific_degree = ?", degree)
	}
	if contract := c.Query("contract_type"); contract != "" {
		query = query.Where("contract_type = ?", contract)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(identification) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	ordering := orderingClause(c, map[string]string{
		"last_name":           "last_name",
		"first_name":          "first_name",
		"years_of_experience": "years_of_experience",
		"created_at":          "created_at",
	}, "last_name, first_name")

	var professors []models.Professor
	err := query.Order(ordering).Find(&professors).Error
	return professors, err
}

func professorCSVRows(professors []models.Professor) [][]string {
	rows := make([][]string, 0, len(professors))
	for i := range professors {
		p := &professors[i]
		rows = append(rows, []string{
			p.FirstName, p.LastName, p.Email, stringOrEmpty(p.Phone), p.Identification,
			p.Category.Display(), p.ScientificDegree.Display(), p.ContractType.Display(),
			stringOrEmpty(p.Specialty), fmt.Sprintf("%d", p.YearsOfExperience),
		})
	}
	return rows
}

func professorPayload(p *models.Professor) gin.H {
	return gin.H{
		"id":                        p.ID,
		"first_name":                p.FirstName,
		"last_name":                 p.LastName,
		"full_name":                 p.FullName(),
		"email":                     p.Email,
		"phone":                     p.Phone,
		"identification":            p.Identification,
		"category":                  p.Category,
		"category_display":          p.Category.Display(),
		"scientific_degree":         p.ScientificDegree,
		"scientific_degree_display": p.ScientificDegree.Display(),
		"contract_type":             p.ContractType,
		"contract_type_display":     p.ContractType.Display(),
		"specialty":                 p.Specialty,
		"years_of_experience":       p.YearsOfExperience,
		"is_active":                 p.IsActive,
		"created_by":                p.CreatedByID,
		"created_at":                p.CreatedAt,
		"updated_at":                p.UpdatedAt,
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
