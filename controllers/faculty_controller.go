package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dcastillo-uci/carga-docente-backend/config"
	"github.com/dcastillo-uci/carga-docente-backend/models"
)

// ====== INPUT STRUCTS ======
type FacultyInput struct {
	Name        string  `json:"name" binding:"required"`
	Code        string  `json:"code" binding:"required"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type FacultyUpdateInput struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// ====== HANDLERS ======

func ListFaculties(c *gin.Context) {
	query := config.DB.Model(&models.Faculty{})

	if isActive, ok := parseBoolQuery(c, "is_active"); ok {
		query = query.Where("is_active = ?", isActive)
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

	var faculties []models.Faculty
	if err := query.Order(ordering).Find(&faculties).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al listar las facultades"})
		return
	}
	c.JSON(http.StatusOK, faculties)
}

func GetFaculty(c *gin.Context) {
	var faculty models.Faculty
	if err := config.DB.First(&faculty, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facultad no encontrada"})
		return
	}
	c.JSON(http.StatusOK, faculty)
}

func CreateFaculty(c *gin.Context) {
	var input FacultyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Faculty
	if err := config.DB.Where("name = ? OR code = ?", input.Name, input.Code).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ya existe una facultad con ese nombre o código."})
		return
	}

	faculty := models.Faculty{
		Name:        input.Name,
		Code:        input.Code,
		Description: input.Description,
		IsActive:    true,
	}
	if input.IsActive != nil {
		faculty.IsActive = *input.IsActive
	}
	if err := config.DB.Create(&faculty).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear la facultad"})
		return
	}
	c.JSON(http.StatusCreated, faculty)
}

func UpdateFaculty(c *gin.Context) {
	var faculty models.Faculty
	if err := config.DB.First(&faculty, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facultad no encontrada"})
		return
	}

	var input FacultyUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		faculty.Name = *input.Name
	}
	if input.Code != nil {
		faculty.Code = *input.Code
	}
	if input.Description != nil {
		faculty.Description = input.Description
	}
	if input.IsActive != nil {
		faculty.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&faculty).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar la facultad"})
		return
	}
	c.JSON(http.StatusOK, faculty)
}

// DeleteFaculty elimina la facultad y, en la misma transacción, las
// asignaciones que la referencian con su historial.
func DeleteFaculty(c *gin.Context) {
	var faculty models.Faculty
	if err := config.DB.First(&faculty, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facultad no encontrada"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var assignmentIDs []string
		if err := tx.Model(&models.Assignment{}).Where("faculty_id = ?", faculty.ID).
			Pluck("id", &assignmentIDs).Error; err != nil {
			return err
		}
		if len(assignmentIDs) > 0 {
			if err := tx.Where("assignment_id IN ?", assignmentIDs).
				Delete(&models.AssignmentHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Comment{}).Where("assignment_id IN ?", assignmentIDs).
				Update("assignment_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("faculty_id = ?", faculty.ID).
				Delete(&models.Assignment{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&faculty).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar la facultad"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Facultad eliminada correctamente."})
}
