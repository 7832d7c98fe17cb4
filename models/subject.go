package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subject struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:200;not null" json:"name"`
	Code         string     `gorm:"size:20;uniqueIndex;not null" json:"code"`
	DisciplineID uuid.UUID  `gorm:"type:uuid;not null;index" json:"discipline"`
	Discipline   Discipline `gorm:"foreignKey:DisciplineID;constraint:OnDelete:CASCADE" json:"-"`
	HoursPerWeek int        `gorm:"not null;default:0" json:"hours_per_week"`
	Semester     int        `gorm:"not null;default:1" json:"semester"`
	Year         int        `gorm:"not null;default:1" json:"year"`
	Description  *string    `gorm:"type:text" json:"description,omitempty"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Subject) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
