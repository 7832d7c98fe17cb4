package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Discipline agrupa asignaturas bajo un jefe de disciplina opcional.
// El jefe debe tener un rol elegible (ver HeadEligibleRoles); se valida al
// crear o actualizar, no como restricción de almacenamiento.
type Discipline struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:200;not null" json:"name"`
	Code        string     `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	HeadID      *uuid.UUID `gorm:"type:uuid" json:"head,omitempty"`
	Head        *User      `gorm:"foreignKey:HeadID" json:"-"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Subjects []Subject `gorm:"foreignKey:DisciplineID" json:"-"`
}

func (d *Discipline) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
