package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentType string

const (
	CommentModification CommentType = "MODIFICATION"
	CommentAssignment   CommentType = "ASSIGNMENT"
	CommentDeletion     CommentType = "DELETION"
	CommentGeneral      CommentType = "GENERAL"
)

var commentTypeLabels = map[CommentType]string{
	CommentModification: "Modificación",
	CommentAssignment:   "Nueva Asignación",
	CommentDeletion:     "Eliminación",
	CommentGeneral:      "General",
}

func (t CommentType) Display() string {
	if label, ok := commentTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t CommentType) Valid() bool {
	_, ok := commentTypeLabels[t]
	return ok
}

func CommentTypeChoices() []Choice {
	return []Choice{
		{Value: string(CommentModification), Label: commentTypeLabels[CommentModification]},
		{Value: string(CommentAssignment), Label: commentTypeLabels[CommentAssignment]},
		{Value: string(CommentDeletion), Label: commentTypeLabels[CommentDeletion]},
		{Value: string(CommentGeneral), Label: commentTypeLabels[CommentGeneral]},
	}
}

// Comment es el mensaje que dejan los jefes al modificar asignaciones;
// funciona como canal de notificación hacia dirección. Al eliminar la
// asignación referida el vínculo se anula, el comentario sobrevive.
type Comment struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"author"`
	Author       User        `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	AssignmentID *uuid.UUID  `gorm:"type:uuid;index" json:"assignment,omitempty"`
	Assignment   *Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
	CommentType  CommentType `gorm:"type:varchar(20);not null;default:'MODIFICATION'" json:"comment_type"`
	Subject      string      `gorm:"size:200;not null" json:"subject"`
	Message      string      `gorm:"type:text;not null" json:"message"`
	IsRead       bool        `gorm:"not null;default:false" json:"is_read"`
	ReadByID     *uuid.UUID  `gorm:"type:uuid" json:"read_by,omitempty"`
	ReadBy       *User       `gorm:"foreignKey:ReadByID" json:"-"`
	ReadAt       *time.Time  `json:"read_at,omitempty"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Replies []CommentReply `gorm:"foreignKey:CommentID" json:"replies,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// MarkRead es idempotente: re-marcar sobrescribe lector y fecha.
func (c *Comment) MarkRead(reader *User, at time.Time) {
	c.IsRead = true
	c.ReadByID = &reader.ID
	c.ReadAt = &at
}

// CommentReply es una respuesta plana (un solo nivel) a un comentario.
type CommentReply struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;index" json:"comment"`
	Comment   Comment   `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *CommentReply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
