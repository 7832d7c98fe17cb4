// Package permissions concentra la política de capacidades por rol.
// Cada capacidad es una función pura del rol del usuario; el bloqueo de
// cuenta se comprueba antes, en el middleware de autenticación, y niega
// todo sin importar el rol.
package permissions

import "github.com/dcastillo-uci/carga-docente-backend/models"

type Capability string

const (
	ManageUsers       Capability = "manage_users"
	AddProfessors     Capability = "add_professors"
	DownloadReports   Capability = "download_reports"
	ViewComments      Capability = "view_comments"
	ModifyAssignments Capability = "modify_assignments"
	ManageAcademic    Capability = "manage_academic"
)

// Tabla fija rol → capacidades. ManageAcademic cubre solo escrituras:
// las lecturas del catálogo quedan abiertas a cualquier rol autenticado.
var grants = map[Capability][]models.Role{
	ManageUsers:       {models.RoleAdmin},
	AddProfessors:     {models.RoleJefeDisciplina, models.RoleJefeDepartamento, models.RoleVicedecano},
	DownloadReports:   {models.RoleDirector, models.RoleVicedecano},
	ViewComments:      {models.RoleDirector, models.RoleVicedecano},
	ModifyAssignments: {models.RoleJefeDisciplina, models.RoleJefeDepartamento, models.RoleVicedecano},
	ManageAcademic:    {models.RoleAdmin, models.RoleVicedecano},
}

var messages = map[Capability]string{
	ManageUsers:       "No tiene permisos para gestionar usuarios.",
	AddProfessors:     "No tiene permisos para agregar profesores.",
	DownloadReports:   "No tiene permisos para descargar reportes.",
	ViewComments:      "No tiene permisos para ver comentarios.",
	ModifyAssignments: "No tiene permisos para modificar asignaciones.",
	ManageAcademic:    "No tiene permisos para gestionar datos académicos.",
}

// BlockedMessage es la respuesta fija para cuentas bloqueadas.
const BlockedMessage = "Su cuenta está bloqueada. Contacte al administrador."

func Allowed(role models.Role, cap Capability) bool {
	for _, r := range grants[cap] {
		if r == role {
			return true
		}
	}
	return false
}

func Message(cap Capability) string {
	if msg, ok := messages[cap]; ok {
		return msg
	}
	return "No tiene permisos para realizar esta acción."
}

// Set devuelve el mapa de capacidades de un rol, tal como lo expone el
// perfil del usuario.
func Set(role models.Role) map[string]bool {
	return map[string]bool{
		"can_manage_users":       Allowed(role, ManageUsers),
		"can_add_professors":     Allowed(role, AddProfessors),
		"can_download_reports":   Allowed(role, DownloadReports),
		"can_view_comments":      Allowed(role, ViewComments),
		"can_modify_assignments": Allowed(role, ModifyAssignments),
	}
}
