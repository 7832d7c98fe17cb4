package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentType string

const (
	TypeLecture   AssignmentType = "LECTURE"
	TypePractical AssignmentType = "PRACTICAL"
	TypeSeminar   AssignmentType = "SEMINAR"
	TypeLab       AssignmentType = "LAB"
	TypeWorkshop  AssignmentType = "WORKSHOP"
)

var assignmentTypeLabels = map[AssignmentType]string{
	TypeLecture:   "Conferencia",
	TypePractical: "Clase Práctica",
	TypeSeminar:   "Seminario",
	TypeLab:       "Laboratorio",
	TypeWorkshop:  "Taller",
}

func (t AssignmentType) Display() string {
	if label, ok := assignmentTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t AssignmentType) Valid() bool {
	_, ok := assignmentTypeLabels[t]
	return ok
}

func AssignmentTypeChoices() []Choice {
	return []Choice{
		{Value: string(TypeLecture), Label: assignmentTypeLabels[TypeLecture]},
		{Value: string(TypePractical), Label: assignmentTypeLabels[TypePractical]},
		{Value: string(TypeSeminar), Label: assignmentTypeLabels[TypeSeminar]},
		{Value: string(TypeLab), Label: assignmentTypeLabels[TypeLab]},
		{Value: string(TypeWorkshop), Label: assignmentTypeLabels[TypeWorkshop]},
	}
}

// Assignment representa la carga docente de un profesor: una asignatura en
// una facultad, con tipo de actividad y período académico. La tupla
// (profesor, asignatura, facultad, tipo, año, semestre, grupo) es única;
// el grupo vacío se guarda como '' y no como NULL para que el índice la
// haga cumplir también sin grupo. La disciplina se deriva siempre a
// través de la asignatura.
type Assignment struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfessorID    uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_assignments_tuple" json:"professor"`
	Professor      Professor      `gorm:"foreignKey:ProfessorID;constraint:OnDelete:CASCADE" json:"-"`
	SubjectID      uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_assignments_tuple" json:"subject"`
	Subject        Subject        `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
	FacultyID      uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_assignments_tuple" json:"faculty"`
	Faculty        Faculty        `gorm:"foreignKey:FacultyID;constraint:OnDelete:CASCADE" json:"-"`
	AssignmentType AssignmentType `gorm:"type:varchar(20);not null;default:'LECTURE';uniqueIndex:ux_assignments_tuple" json:"assignment_type"`
	HoursPerWeek   int            `gorm:"not null;default:0" json:"hours_per_week"`
	Group          string         `gorm:"column:group_name;size:50;not null;default:'';uniqueIndex:ux_assignments_tuple" json:"group"`
	AcademicYear   string         `gorm:"size:20;not null;uniqueIndex:ux_assignments_tuple" json:"academic_year"`
	Semester       int            `gorm:"not null;default:1;uniqueIndex:ux_assignments_tuple" json:"semester"`
	Order          int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	AssignedByID   *uuid.UUID     `gorm:"type:uuid" json:"assigned_by,omitempty"`
	AssignedBy     *User          `gorm:"foreignKey:AssignedByID" json:"-"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

var actionLabels = map[ActionType]string{
	ActionCreate: "Creación",
	ActionUpdate: "Modificación",
	ActionDelete: "Eliminación",
}

func (a ActionType) Display() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return string(a)
}

// JSONMap guarda el payload de cambios como JSON en una columna de texto,
// portable entre postgres y sqlite.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *JSONMap) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: tipo no soportado %T", value)
	}
}

// AssignmentHistory es el historial inmutable de una asignación: una fila
// por cada creación o modificación efectiva, con el diff campo a campo.
// Nunca se actualiza; se elimina solo junto con su asignación.
type AssignmentHistory struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"assignment"`
	Assignment    Assignment `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"-"`
	Action        ActionType `gorm:"type:varchar(10);not null" json:"action"`
	Changes       JSONMap    `gorm:"type:text;not null" json:"changes"`
	PerformedByID *uuid.UUID `gorm:"type:uuid" json:"performed_by,omitempty"`
	PerformedBy   *User      `gorm:"foreignKey:PerformedByID" json:"-"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (h *AssignmentHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
