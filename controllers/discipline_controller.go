package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastillo-uci/carga-docente-backend/config"
	"github.com/dcastillo-uci/carga-docente-backend/models"
)

// ====== INPUT STRUCTS ======
type DisciplineInput struct {
	Name        string  `json:"name" binding:"required"`
	Code        string  `json:"code" binding:"required"`
	Description *string `json:"description"`
	Head        *string `json:"head"`
	IsActive    *bool   `json:"is_active"`
}

// ====== HANDLERS ======

func ListDisciplines(c *gin.Context) {
	query := config.DB.Model(&models.Discipline{}).Preload("Head")

	if isActive, ok := parseBoolQuery(c, "is_active"); ok {
		query = query.Where("is_active = ?", isActive)
	}
	if head := c.Query("head"); head != "" {
		query = query.Where("head_id = ?", head)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}

	ordering := orderingClause(c, map[string]string{
		"name":       "name",
		"code":       "code",
		"created_at": "created_at",
	}, "name")

	var disciplines []models.Discipline
	if err := query.Order(ordering).Find(&disciplines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al listar las disciplinas"})
		return
	}

	results := make([]gin.H, 0, len(disciplines))
	for i := range disciplines {
		results = append(results, disciplinePayload(&disciplines[i]))
	}
	c.JSON(http.StatusOK, results)
}

func GetDiscipline(c *gin.Context) {
	var discipline models.Discipline
	if err := config.DB.Preload("Head").Preload("Subjects").
		First(&discipline, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Disciplina no encontrada"})
		return
	}

	payload := disciplinePayload(&discipline)
	payload["subjects"] = discipline.Subjects
	c.JSON(http.StatusOK, payload)
}

func CreateDiscipline(c *gin.Context) {
	var input DisciplineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	headID, err := resolveHead(input.Head)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"head": err.Error()})
		return
	}

	var existing models.Discipline
	if err := config.DB.Where("code = ?", input.Code).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ya existe una disciplina con ese código."})
		return
	}

	discipline := models.Discipline{
		Name:        input.Name,
		Code:        input.Code,
		Description: input.Description,
		HeadID:      headID,
		IsActive:    true,
	}
	if input.IsActive != nil {
		discipline.IsActive = *input.IsActive
	}
	if err := config.DB.Create(&discipline).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear la disciplina"})
		return
	}

	config.DB.Preload("Head").First(&discipline, "id = ?", discipline.ID)
	c.JSON(http.StatusCreated, disciplinePayload(&discipline))
}

func UpdateDiscipline(c *gin.Context) {
	var discipline models.Discipline
	if err := config.DB.First(&discipline, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Disciplina no encontrada"})
		return
	}

	// Se decodifica a mano para distinguir "head ausente" de "head: null".
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if name, ok := raw["name"].(string); ok {
		discipline.Name = name
	}
	if code, ok := raw["code"].(string); ok {
		discipline.Code = code
	}
	if _, present := raw["description"]; present {
		if desc, ok := raw["description"].(string); ok {
			discipline.Description = &desc
		} else {
			discipline.Description = nil
		}
	}
	if isActive, ok := raw["is_active"].(bool); ok {
		discipline.IsActive = isActive
	}
	if _, present := raw["head"]; present {
		var headStr *string
		if s, ok := raw["head"].(string); ok {
			headStr = &s
		}
		headID, err := resolveHead(headStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"head": err.Error()})
			return
		}
		discipline.HeadID = headID
	}

	if err := config.DB.Save(&discipline).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar la disciplina"})
		return
	}

	config.DB.Preload("Head").First(&discipline, "id = ?", discipline.ID)
	c.JSON(http.StatusOK, disciplinePayload(&discipline))
}

// DeleteDiscipline elimina la disciplina arrastrando sus asignaturas y las
// asignaciones de estas.
func DeleteDiscipline(c *gin.Context) {
	var discipline models.Discipline
	if err := config.DB.First(&discipline, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Disciplina no encontrada"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var subjectIDs []string
		if err := tx.Model(&models.Subject{}).Where("discipline_id = ?", discipline.ID).
			Pluck("id", &subjectIDs).Error; err != nil {
			return err
		}
		if len(subjectIDs) > 0 {
			if err := deleteAssignmentsForSubjects(tx, subjectIDs); err != nil {
				return err
			}
			if err := tx.Where("discipline_id = ?", discipline.ID).
				Delete(&models.Subject{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&discipline).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar la disciplina"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Disciplina eliminada correctamente."})
}

// ====== HELPERS ======

// resolveHead valida que el jefe exista y tenga un rol habilitado para
// dirigir una disciplina.
func resolveHead(head *string) (*uuid.UUID, error) {
	if head == nil || *head == "" {
		return nil, nil
	}

	id, err := uuid.Parse(*head)
	if err != nil {
		return nil, errInvalidHead
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		return nil, errInvalidHead
	}
	for _, role := range models.HeadEligibleRoles() {
		if user.Role == role {
			return &id, nil
		}
	}
	return nil, errInvalidHead
}

var errInvalidHead = errors.New("El usuario seleccionado no puede ser jefe de disciplina.")

func disciplinePayload(d *models.Discipline) gin.H {
	payload := gin.H{
		"id":          d.ID,
		"name":        d.Name,
		"code":        d.Code,
		"description": d.Description,
		"head":        d.HeadID,
		"head_name":   nil,
		"is_active":   d.IsActive,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	}
	if d.Head != nil {
		payload["head_name"] = d.Head.FullName()
	}
	return payload
}

func deleteAssignmentsForSubjects(tx *gorm.DB, subjectIDs []string) error {
	var assignmentIDs []string
	if err := tx.Model(&models.Assignment{}).Where("subject_id IN ?", subjectIDs).
		Pluck("id", &assignmentIDs).Error; err != nil {
		return err
	}
	if len(assignmentIDs) == 0 {
		return nil
	}
	if err := tx.Where("assignment_id IN ?", assignmentIDs).
		Delete(&models.AssignmentHistory{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Comment{}).Where("assignment_id IN ?", assignmentIDs).
		Update("assignment_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("subject_id IN ?", subjectIDs).Delete(&models.Assignment{}).Error
}
