package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryInstructor Category = "INSTRUCTOR"
	CategoryAsistente  Category = "ASISTENTE"
	CategoryAuxiliar   Category = "AUXILIAR"
	CategoryTitular    Category = "TITULAR"
)

var categoryLabels = map[Category]string{
	CategoryInstructor: "Instructor",
	CategoryAsistente:  "Asistente",
	CategoryAuxiliar:   "Auxiliar",
	CategoryTitular:    "Titular",
}

func (c Category) Display() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func CategoryChoices() []Choice {
	return []Choice{
		{Value: string(CategoryInstructor), Label: categoryLabels[CategoryInstructor]},
		{Value: string(CategoryAsistente), Label: categoryLabels[CategoryAsistente]},
		{Value: string(CategoryAuxiliar), Label: categoryLabels[CategoryAuxiliar]},
		{Value: string(CategoryTitular), Label: categoryLabels[CategoryTitular]},
	}
}

type ScientificDegree string

const (
	DegreeNone ScientificDegree = "NONE"
	DegreeMsc  ScientificDegree = "MSC"
	DegreeDr   ScientificDegree = "DR"
)

var degreeLabels = map[ScientificDegree]string{
	DegreeNone: "Ninguno",
	DegreeMsc:  "Máster en Ciencias",
	DegreeDr:   "Doctor en Ciencias",
}

func (d ScientificDegree) Display() string {
	if label, ok := degreeLabels[d]; ok {
		return label
	}
	return string(d)
}

func (d ScientificDegree) Valid() bool {
	_, ok := degreeLabels[d]
	return ok
}

func ScientificDegreeChoices() []Choice {
	return []Choice{
		{Value: string(DegreeNone), Label: degreeLabels[DegreeNone]},
		{Value: string(DegreeMsc), Label: degreeLabels[DegreeMsc]},
		{Value: string(DegreeDr), Label: degreeLabels[DegreeDr]},
	}
}

type ContractType string

const (
	ContractFullTime ContractType = "FULL_TIME"
	ContractPartTime ContractType = "PART_TIME"
	ContractHourly   ContractType = "HOURLY"
)

var contractLabels = map[ContractType]string{
	ContractFullTime: "Tiempo Completo",
	ContractPartTime: "Tiempo Parcial",
	ContractHourly:   "Por Horas",
}

func (t ContractType) Display() string {
	if label, ok := contractLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t ContractType) Valid() bool {
	_, ok := contractLabels[t]
	return ok
}

func ContractTypeChoices() []Choice {
	return []Choice{
		{Value: string(ContractFullTime), Label: contractLabels[ContractFullTime]},
		{Value: string(ContractPartTime), Label: contractLabels[ContractPartTime]},
		{Value: string(ContractHourly), Label: contractLabels[ContractHourly]},
	}
}

// Professor es el registro docente, independiente de las cuentas de usuario.
type Professor struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName         string           `gorm:"size:100;not null" json:"first_name"`
	LastName          string           `gorm:"size:100;not null" json:"last_name"`
	Email             string           `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Phone             *string          `gorm:"size:20" json:"phone,omitempty"`
	Identification    string           `gorm:"size:20;uniqueIndex;not null" json:"identification"`
	Category          Category         `gorm:"type:varchar(20);not null;default:'INSTRUCTOR'" json:"category"`
	ScientificDegree  ScientificDegree `gorm:"type:varchar(20);not null;default:'NONE'" json:"scientific_degree"`
	ContractType      ContractType     `gorm:"type:varchar(20);not null;default:'FULL_TIME'" json:"contract_type"`
	Specialty         *string          `gorm:"size:200" json:"specialty,omitempty"`
	YearsOfExperience int              `gorm:"not null;default:0" json:"years_of_experience"`
	IsActive          bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedByID       *uuid.UUID       `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedBy         *User            `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Professor) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Professor) FullName() string {
	return p.FirstName + " " + p.LastName
}
