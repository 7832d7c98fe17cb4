package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin            Role = "ADMIN"             // Administrador del sistema
	RoleDirector         Role = "DIRECTOR"          // Director de Formación
	RoleJefeDisciplina   Role = "JEFE_DISCIPLINA"   // Jefe de Disciplina
	RoleJefeDepartamento Role = "JEFE_DEPARTAMENTO" // Jefe de Departamento
	RoleVicedecano       Role = "VICEDECANO"        // Vicedecano de Formación
)

var roleLabels = map[Role]string{
	RoleAdmin:            "Administrador",
	RoleDirector:         "Director de Formación",
	RoleJefeDisciplina:   "Jefe de Disciplina",
	RoleJefeDepartamento: "Jefe de Departamento",
	RoleVicedecano:       "Vicedecano de Formación",
}

// Mapeo de roles backend → frontend
var roleFrontend = map[Role]string{
	RoleAdmin:            "admin",
	RoleDirector:         "director",
	RoleJefeDisciplina:   "jefe_disciplina",
	RoleJefeDepartamento: "jefe_departamento",
	RoleVicedecano:       "vicedecano",
}

func (r Role) Display() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

// Frontend devuelve el nombre del rol que espera el cliente web.
func (r Role) Frontend() string {
	if name, ok := roleFrontend[r]; ok {
		return name
	}
	return strings.ToLower(string(r))
}

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

func RoleChoices() []Choice {
	return []Choice{
		{Value: string(RoleAdmin), Label: roleLabels[RoleAdmin]},
		{Value: string(RoleDirector), Label: roleLabels[RoleDirector]},
		{Value: string(RoleJefeDisciplina), Label: roleLabels[RoleJefeDisciplina]},
		{Value: string(RoleJefeDepartamento), Label: roleLabels[RoleJefeDepartamento]},
		{Value: string(RoleVicedecano), Label: roleLabels[RoleVicedecano]},
	}
}

// HeadEligibleRoles son los roles que pueden ser jefes de una disciplina.
func HeadEligibleRoles() []Role {
	return []Role{RoleJefeDisciplina, RoleJefeDepartamento}
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'JEFE_DISCIPLINA'" json:"role"`
	Phone     *string   `gorm:"size:20" json:"phone,omitempty"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	IsBlocked bool      `gorm:"not null;default:false" json:"is_blocked"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
