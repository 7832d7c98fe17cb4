package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastillo-uci/carga-docente-backend/config"
	"github.com/dcastillo-uci/carga-docente-backend/models"
)

// ====== INPUT STRUCTS ======
type SubjectInput struct {
	Name         string    `json:"name" binding:"required"`
	Code         string    `json:"code" binding:"required"`
	Discipline   uuid.UUID `json:"discipline" binding:"required"`
	HoursPerWeek int       `json:"hours_per_week"`
	Semester     int       `json:"semester"`
	Year         int       `json:"year"`
	Description  *string   `json:"description"`
	IsActive     *bool     `json:"is_active"`
}

type SubjectUpdateInput struct {
	Name         *string    `json:"name"`
	Code         *string    `json:"code"`
	Discipline   *uuid.UUID `json:"discipline"`
	HoursPerWeek *int       `json:"hours_per_week"`
	Semester     *int       `json:"semester"`
	Year         *int       `json:"year"`
	Description  *string    `json:"description"`
	IsActive     *bool      `json:"is_active"`
}

// ====== HANDLERS ======

func ListSubjects(c *gin.Context) {
	query := config.DB.Model(&models.Subject{}).Preload("Discipline")

	if isActive, ok := parseBoolQuery(c, "is_active"); ok {
		query = query.Where("is_active = ?", isActive)
	}
	if discipline := c.Query("discipline"); discipline != "" {
		query = query.Where("discipline_id = ?", discipline)
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}
	if year := c.Query("year"); year != "" {
		query = query.Where("year = ?", year)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}

	ordering := orderingClause(c, map[string]string{
		"name":     "name",
		"code":     "code",
		"semester": "semester",
		"year":     "year",
	}, "name")

	var subjects []models.Subject
	if err := query.Order(ordering).Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al listar las asignaturas"})
		return
	}

	results := make([]gin.H, 0, len(subjects))
	for i := range subjects {
		results = append(results, subjectPayload(&subjects[i]))
	}
	c.JSON(http.StatusOK, results)
}

func GetSubject(c *gin.Context) {
	var subject models.Subject
	if err := config.DB.Preload("Discipline").
		First(&subject, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asignatura no encontrada"})
		return
	}
	c.JSON(http.StatusOK, subjectPayload(&subject))
}

func CreateSubject(c *gin.Context) {
	var input SubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var discipline models.Discipline
	if err := config.DB.First(&discipline, "id = ?", input.Discipline).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"discipline": "La disciplina indicada no existe."})
		return
	}

	var existing models.Subject
	if err := config.DB.Where("code = ?", input.Code).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ya existe una asignatura con ese código."})
		return
	}

	subject := models.Subject{
		Name:         input.Name,
		Code:         input.Code,
		DisciplineID: input.Discipline,
		HoursPerWeek: input.HoursPerWeek,
		Semester:     input.Semester,
		Year:         input.Year,
		Description:  input.Description,
		IsActive:     true,
	}
	if input.IsActive != nil {
		subject.IsActive = *input.IsActive
	}
	if err := config.DB.Create(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear la asignatura"})
		return
	}

	config.DB.Preload("Discipline").First(&subject, "id = ?", subject.ID)
	c.JSON(http.StatusCreated, subjectPayload(&subject))
}

func UpdateSubject(c *gin.Context) {
	var subject models.Subject
	if err := config.DB.First(&subject, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asignatura no encontrada"})
		return
	}

	var input SubjectUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Discipline != nil {
		var discipline models.Discipline
		if err := config.DB.First(&discipline, "id = ?", *input.Discipline).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"discipline": "La disciplina indicada no existe."})
			return
		}
		subject.DisciplineID = *input.Discipline
	}
	if input.Name != nil {
		subject.Name = *input.Name
	}
	if input.Code != nil {
		subject.Code = *input.Code
	}
	if input.HoursPerWeek != nil {
		subject.HoursPerWeek = *input.HoursPerWeek
	}
	if input.Semester != nil {
		subject.Semester = *input.Semester
	}
	if input.Year != nil {
		subject.Year = *input.Year
	}
	if input.Description != nil {
		subject.Description = input.Description
	}
	if input.IsActive != nil {
		subject.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar la asignatura"})
		return
	}

	config.DB.Preload("Discipline").First(&subject, "id = ?", subject.ID)
	c.JSON(http.StatusOK, subjectPayload(&subject))
}

// DeleteSubject elimina la asignatura junto a sus asignaciones y el
// historial de estas.
func DeleteSubject(c *gin.Context) {
	var subject models.Subject
	if err := config.DB.First(&subject, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asignatura no encontrada"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteAssignmentsForSubjects(tx, []string{subject.ID.String()}); err != nil {
			return err
		}
		return tx.Delete(&subject).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar la asignatura"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Asignatura eliminada correctamente."})
}

// ====== HELPERS ======

func subjectPayload(s *models.Subject) gin.H {
	return gin.H{
		"id":              s.ID,
		"name":            s.Name,
		"code":            s.Code,
		"discipline":      s.DisciplineID,
		"discipline_name": s.Discipline.Name,
		"hours_per_week":  s.HoursPerWeek,
		"semester":        s.Semester,
		"year":            s.Year,
		"description":     s.Description,
		"is_active":       s.IsActive,
		"created_at":      s.CreatedAt,
		"updated_at":      s.UpdatedAt,
	}
}
