// Package repository concentra el acceso a datos de las asignaciones. Las
// escrituras acoplan asignación e historial en una misma transacción para
// que nunca quede una sin la otra.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dcastillo-uci/carga-docente-backend/models"
	"github.com/dcastillo-uci/carga-docente-backend/serializers"
)

// ErrConflict indica que ya existe una asignación con la misma tupla
// (profesor, asignatura, facultad, tipo, grupo, curso, semestre).
var ErrConflict = errors.New("ya existe una asignación idéntica")

// ValidationError acumula errores por campo, con el nombre del campo como
// clave.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// CreateInput son los campos aceptados al crear una asignación.
type CreateInput struct {
	ProfessorID    uuid.UUID
	SubjectID      uuid.UUID
	FacultyID      uuid.UUID
	AssignmentType models.AssignmentType
	HoursPerWeek   int
	Group          *string
	AcademicYear   string
	Semester       int
	Order          int
	IsActive       *bool
}

// UpdateInput usa punteros para distinguir "no enviado" de "poner en cero".
type UpdateInput struct {
	ProfessorID    *uuid.UUID
	SubjectID      *uuid.UUID
	FacultyID      *uuid.UUID
	AssignmentType *models.AssignmentType
	HoursPerWeek   *int
	Group          *string
	GroupSet       bool
	AcademicYear   *string
	Semester       *int
	Order          *int
	IsActive       *bool
}

// ListFilters son los filtros del listado de asignaciones.
type ListFilters struct {
	IsActive       *bool
	FacultyID      *uuid.UUID
	SubjectID      *uuid.UUID
	ProfessorID    *uuid.UUID
	DisciplineID   *uuid.UUID
	AcademicYear   string
	Semester       *int
	AssignmentType string
	Search         string

	// ScopeHeadID limita el listado a las asignaciones cuyas asignaturas
	// pertenecen a disciplinas dirigidas por este usuario.
	ScopeHeadID *uuid.UUID
}

type AssignmentRepository interface {
	Create(input CreateInput, actor *models.User) (*models.Assignment, error)
	Update(id uuid.UUID, input UpdateInput, actor *models.User) (*models.Assignment, error)
	Delete(id uuid.UUID, actor *models.User) error
	Get(id uuid.UUID) (*models.Assignment, error)
	List(filters ListFilters) ([]models.Assignment, error)
	History(assignmentID uuid.UUID) ([]models.AssignmentHistory, error)
	AllHistory() ([]models.AssignmentHistory, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(input CreateInput, actor *models.User) (*models.Assignment, error) {
	var created *models.Assignment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := validateReferences(tx, input.ProfessorID, input.SubjectID, input.FacultyID); err != nil {
			return err
		}
		if err := checkDuplicate(tx, input, uuid.Nil); err != nil {
			return err
		}

		assignment := models.Assignment{
			ProfessorID:    input.ProfessorID,
			SubjectID:      input.SubjectID,
			FacultyID:      input.FacultyID,
			AssignmentType: input.AssignmentType,
			HoursPerWeek:   input.HoursPerWeek,
			Group:          groupOrEmpty(input.Group),
			AcademicYear:   input.AcademicYear,
			Semester:       input.Semester,
			Order:          input.Order,
			IsActive:       true,
		}
		if input.IsActive != nil {
			assignment.IsActive = *input.IsActive
		}
		if actor != nil {
			assignment.AssignedByID = &actor.ID
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		history := models.AssignmentHistory{
			AssignmentID: assignment.ID,
			Action:       models.ActionCreate,
			Changes:      models.JSONMap{"created": true},
		}
		if actor != nil {
			history.PerformedByID = &actor.ID
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		loaded, err := loadAssignment(tx, assignment.ID)
		if err != nil {
			return err
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *assignmentRepository) Update(id uuid.UUID, input UpdateInput, actor *models.User) (*models.Assignment, error) {
	var updated *models.Assignment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		assignment, err := loadAssignment(tx, id)
		if err != nil {
			return err
		}
		oldResp := serializers.NewAssignmentResponse(assignment)

		if input.ProfessorID != nil {
			assignment.ProfessorID = *input.ProfessorID
		}
		if input.SubjectID != nil {
			assignment.SubjectID = *input.SubjectID
		}
		if input.FacultyID != nil {
			assignment.FacultyID = *input.FacultyID
		}
		if input.AssignmentType != nil {
			assignment.AssignmentType = *input.AssignmentType
		}
		if input.HoursPerWeek != nil {
			assignment.HoursPerWeek = *input.HoursPerWeek
		}
		if input.GroupSet {
			assignment.Group = groupOrEmpty(input.Group)
		}
		if input.AcademicYear != nil {
			assignment.AcademicYear = *input.AcademicYear
		}
		if input.Semester != nil {
			assignment.Semester = *input.Semester
		}
		if input.Order != nil {
			assignment.Order = *input.Order
		}
		if input.IsActive != nil {
			assignment.IsActive = *input.IsActive
		}

		if err := validateReferences(tx, assignment.ProfessorID, assignment.SubjectID, assignment.FacultyID); err != nil {
			return err
		}
		dup := CreateInput{
			ProfessorID:    assignment.ProfessorID,
			SubjectID:      assignment.SubjectID,
			FacultyID:      assignment.FacultyID,
			AssignmentType: assignment.AssignmentType,
			Group:          &assignment.Group,
			AcademicYear:   assignment.AcademicYear,
			Semester:       assignment.Semester,
		}
		if err := checkDuplicate(tx, dup, assignment.ID); err != nil {
			return err
		}

		// Save sin asociaciones: las estructuras precargadas reescribirían
		// las claves foráneas recién asignadas con los valores viejos.
		if err := tx.Omit(clause.Associations).Save(assignment).Error; err != nil {
			return err
		}

		reloaded, err := loadAssignment(tx, assignment.ID)
		if err != nil {
			return err
		}
		newResp := serializers.NewAssignmentResponse(reloaded)

		changes := serializers.ComputeChanges(oldResp, newResp)
		if len(changes) > 0 {
			history := models.AssignmentHistory{
				AssignmentID: reloaded.ID,
				Action:       models.ActionUpdate,
				Changes:      changes,
			}
			if actor != nil {
				history.PerformedByID = &actor.ID
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete elimina la asignación junto a su historial y desvincula los
// comentarios que la referencian.
func (r *assignmentRepository) Delete(id uuid.UUID, actor *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		assignment, err := loadAssignment(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Where("assignment_id = ?", id).Delete(&models.AssignmentHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("assignment_id = ?", id).
			Update("assignment_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(assignment).Error
	})
}

func (r *assignmentRepository) Get(id uuid.UUID) (*models.Assignment, error) {
	return loadAssignment(r.db, id)
}

func (r *assignmentRepository) List(filters ListFilters) ([]models.Assignment, error) {
	query := r.db.Model(&models.Assignment{}).
		Joins("JOIN subjects ON subjects.id = assignments.subject_id").
		Joins("JOIN disciplines ON disciplines.id = subjects.discipline_id").
		Joins("JOIN professors ON professors.id = assignments.professor_id").
		Joins("JOIN faculties ON faculties.id = assignments.faculty_id").
		Preload("Professor").
		Preload("Subject.Discipline").
		Preload("Faculty").
		Preload("AssignedBy")

	if filters.ScopeHeadID != nil {
		query = query.Where("disciplines.head_id = ?", *filters.ScopeHeadID)
	}
	if filters.IsActive != nil {
		query = query.Where("assignments.is_active = ?", *filters.IsActive)
	}
	if filters.FacultyID != nil {
		query = query.Where("assignments.faculty_id = ?", *filters.FacultyID)
	}
	if filters.SubjectID != nil {
		query = query.Where("assignments.subject_id = ?", *filters.SubjectID)
	}
	if filters.ProfessorID != nil {
		query = query.Where("assignments.professor_id = ?", *filters.ProfessorID)
	}
	if filters.DisciplineID != nil {
		query = query.Where("subjects.discipline_id = ?", *filters.DisciplineID)
	}
	if filters.AcademicYear != "" {
		query = query.Where("assignments.academic_year = ?", filters.AcademicYear)
	}
	if filters.Semester != nil {
		query = query.Where("assignments.semester = ?", *filters.Semester)
	}
	if filters.AssignmentType != "" {
		query = query.Where("assignments.assignment_type = ?", filters.AssignmentType)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where(
			"LOWER(professors.first_name) LIKE ? OR LOWER(professors.last_name) LIKE ? OR LOWER(subjects.name) LIKE ? OR LOWER(faculties.name) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var assignments []models.Assignment
	err := query.
		Order("assignments.sort_order, faculties.name, subjects.name, professors.last_name").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) History(assignmentID uuid.UUID) ([]models.AssignmentHistory, error) {
	var entries []models.AssignmentHistory
	err := r.db.Where("assignment_id = ?", assignmentID).
		Preload("PerformedBy").
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *assignmentRepository) AllHistory() ([]models.AssignmentHistory, error) {
	var entries []models.AssignmentHistory
	err := r.db.Preload("PerformedBy").
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func loadAssignment(tx *gorm.DB, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := tx.Preload("Professor").
		Preload("Subject.Discipline").
		Preload("Faculty").
		Preload("AssignedBy").
		First(&assignment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func validateReferences(tx *gorm.DB, professorID, subjectID, facultyID uuid.UUID) error {
	errs := ValidationError{}

	var count int64
	tx.Model(&models.Professor{}).Where("id = ?", professorID).Count(&count)
	if count == 0 {
		errs["professor"] = "El profesor indicado no existe."
	}
	tx.Model(&models.Subject{}).Where("id = ?", subjectID).Count(&count)
	if count == 0 {
		errs["subject"] = "La asignatura indicada no existe."
	}
	tx.Model(&models.Faculty{}).Where("id = ?", facultyID).Count(&count)
	if count == 0 {
		errs["faculty"] = "La facultad indicada no existe."
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// groupOrEmpty normaliza el grupo ausente a cadena vacía. El grupo se
// persiste siempre como texto no nulo para que el índice único de la tupla
// también colisione cuando no hay grupo.
func groupOrEmpty(g *string) string {
	if g == nil {
		return ""
	}
	return *g
}

func checkDuplicate(tx *gorm.DB, input CreateInput, excludeID uuid.UUID) error {
	query := tx.Model(&models.Assignment{}).Where(
		"professor_id = ? AND subject_id = ? AND faculty_id = ? AND assignment_type = ? AND academic_year = ? AND semester = ?",
		input.ProfessorID, input.SubjectID, input.FacultyID,
		input.AssignmentType, input.AcademicYear, input.Semester,
	)
	query = query.Where("group_name = ?", groupOrEmpty(input.Group))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	return nil
}
