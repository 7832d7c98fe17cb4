// Package serializers arma las representaciones de respuesta de las
// asignaciones y calcula el diff entre dos representaciones. El diff se
// hace sobre la forma serializada (nombres renderizados, no claves
// foráneas) para que dos registros semánticamente iguales no cuenten como
// cambio.
package serializers

import (
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo-uci/carga-docente-backend/models"
)

type AssignmentResponse struct {
	ID                    uuid.UUID             `json:"id"`
	Professor             uuid.UUID             `json:"professor"`
	ProfessorName         string                `json:"professor_name"`
	Subject               uuid.UUID             `json:"subject"`
	SubjectName           string                `json:"subject_name"`
	Faculty               uuid.UUID             `json:"faculty"`
	FacultyName           string                `json:"faculty_name"`
	DisciplineName        string                `json:"discipline_name"`
	AssignmentType        models.AssignmentType `json:"assignment_type"`
	AssignmentTypeDisplay string                `json:"assignment_type_display"`
	HoursPerWeek          int                   `json:"hours_per_week"`
	Group                 string                `json:"group"`
	AcademicYear          string                `json:"academic_year"`
	Semester              int                   `json:"semester"`
	Order                 int                   `json:"order"`
	IsActive              bool                  `json:"is_active"`
	AssignedBy            *uuid.UUID            `json:"assigned_by"`
	AssignedByName        *string               `json:"assigned_by_name"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// NewAssignmentResponse exige la asignación con Professor, Subject (con
// Discipline), Faculty y AssignedBy precargados.
func NewAssignmentResponse(a *models.Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:                    a.ID,
		Professor:             a.ProfessorID,
		ProfessorName:         a.Professor.FullName(),
		Subject:               a.SubjectID,
		SubjectName:           a.Subject.Name,
		Faculty:               a.FacultyID,
		FacultyName:           a.Faculty.Name,
		DisciplineName:        a.Subject.Discipline.Name,
		AssignmentType:        a.AssignmentType,
		AssignmentTypeDisplay: a.AssignmentType.Display(),
		HoursPerWeek:          a.HoursPerWeek,
		Group:                 a.Group,
		AcademicYear:          a.AcademicYear,
		Semester:              a.Semester,
		Order:                 a.Order,
		IsActive:              a.IsActive,
		AssignedBy:            a.AssignedByID,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
	if a.AssignedBy != nil {
		name := a.AssignedBy.FullName()
		resp.AssignedByName = &name
	}
	return resp
}

// rendered devuelve los campos comparables de la representación. Quedan
// fuera id, created_at y updated_at: updated_at cambia en cada escritura y
// convertiría toda actualización en un cambio aparente.
func (r AssignmentResponse) rendered() map[string]any {
	var assignedBy any
	if r.AssignedBy != nil {
		assignedBy = r.AssignedBy.String()
	}
	var assignedByName any
	if r.AssignedByName != nil {
		assignedByName = *r.AssignedByName
	}
	return map[string]any{
		"professor":               r.Professor.String(),
		"professor_name":          r.ProfessorName,
		"subject":                 r.Subject.String(),
		"subject_name":            r.SubjectName,
		"faculty":                 r.Faculty.String(),
		"faculty_name":            r.FacultyName,
		"discipline_name":         r.DisciplineName,
		"assignment_type":         string(r.AssignmentType),
		"assignment_type_display": r.AssignmentTypeDisplay,
		"hours_per_week":          r.HoursPerWeek,
		"group":                   r.Group,
		"academic_year":           r.AcademicYear,
		"semester":                r.Semester,
		"order":                   r.Order,
		"is_active":               r.IsActive,
		"assigned_by":             assignedBy,
		"assigned_by_name":        assignedByName,
	}
}

// ComputeChanges calcula el diff campo a campo entre dos representaciones.
// Devuelve un mapa vacío cuando nada cambió.
func ComputeChanges(oldResp, newResp AssignmentResponse) models.JSONMap {
	oldFields := oldResp.rendered()
	newFields := newResp.rendered()

	changes := models.JSONMap{}
	for key, newValue := range newFields {
		oldValue := oldFields[key]
		if !reflect.DeepEqual(oldValue, newValue) {
			changes[key] = map[string]any{"old": oldValue, "new": newValue}
		}
	}
	return changes
}

type HistoryResponse struct {
	ID              uuid.UUID         `json:"id"`
	Assignment      uuid.UUID         `json:"assignment"`
	Action          models.ActionType `json:"action"`
	ActionDisplay   string            `json:"action_display"`
	Changes         models.JSONMap    `json:"changes"`
	PerformedBy     *uuid.UUID        `json:"performed_by"`
	PerformedByName *string           `json:"performed_by_name"`
	CreatedAt       time.Time         `json:"created_at"`
}

func NewHistoryResponse(h *models.AssignmentHistory) HistoryResponse {
	resp := HistoryResponse{
		ID:            h.ID,
		Assignment:    h.AssignmentID,
		Action:        h.Action,
		ActionDisplay: h.Action.Display(),
		Changes:       h.Changes,
		PerformedBy:   h.PerformedByID,
		CreatedAt:     h.CreatedAt,
	}
	if h.PerformedBy != nil {
		name := h.PerformedBy.FullName()
		resp.PerformedByName = &name
	}
	return resp
}
