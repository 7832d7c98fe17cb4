package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcastillo-uci/carga-docente-backend/models"
)

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		role models.Role
		cap  Capability
		want bool
	}{
		{models.RoleAdmin, ManageUsers, true},
		{models.RoleDirector, ManageUsers, false},
		{models.RoleJefeDisciplina, ManageUsers, false},
		{models.RoleVicedecano, ManageUsers, false},

		{models.RoleJefeDisciplina, AddProfessors, true},
		{models.RoleJefeDepartamento, AddProfessors, true},
		{models.RoleVicedecano, AddProfessors, true},
		{models.RoleAdmin, AddProfessors, false},
		{models.RoleDirector, AddProfessors, false},

		{models.RoleDirector, DownloadReports, true},
		{models.RoleVicedecano, DownloadReports, true},
		{models.RoleJefeDisciplina, DownloadReports, false},
		{models.RoleAdmin, DownloadReports, false},

		{models.RoleDirector, ViewComments, true},
		{models.RoleVicedecano, ViewComments, true},
		{models.RoleJefeDepartamento, ViewComments, false},

		{models.RoleJefeDisciplina, ModifyAssignments, true},
		{models.RoleJefeDepartamento, ModifyAssignments, true},
		{models.RoleVicedecano, ModifyAssignments, true},
		{models.RoleDirector, ModifyAssignments, false},
		{models.RoleAdmin, ModifyAssignments, false},

		{models.RoleAdmin, ManageAcademic, true},
		{models.RoleVicedecano, ManageAcademic, true},
		{models.RoleDirector, ManageAcademic, false},
		{models.RoleJefeDisciplina, ManageAcademic, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Allowed(tc.role, tc.cap),
			"rol %s, capacidad %s", tc.role, tc.cap)
	}
}

func TestSet(t *testing.T) {
	set := Set(models.RoleJefeDisciplina)
	assert.False(t, set["can_manage_users"])
	assert.True(t, set["can_add_professors"])
	assert.False(t, set["can_download_reports"])
	assert.False(t, set["can_view_comments"])
	assert.True(t, set["can_modify_assignments"])
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "No tiene permisos para gestionar usuarios.", Message(ManageUsers))
	assert.Equal(t, "No tiene permisos para descargar reportes.", Message(DownloadReports))
	assert.NotEmpty(t, Message(Capability("desconocida")))
}
