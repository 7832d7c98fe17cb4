package serializers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dcastillo-uci/carga-docente-backend/models"
)

func sampleResponse() AssignmentResponse {
	return AssignmentResponse{
		ID:                    uuid.New(),
		Professor:             uuid.New(),
		ProfessorName:         "Ana Pérez",
		Subject:               uuid.New(),
		SubjectName:           "Programación",
		Faculty:               uuid.New(),
		FacultyName:           "Facultad 1",
		DisciplineName:        "Ingeniería de Software",
		AssignmentType:        models.TypeLecture,
		AssignmentTypeDisplay: models.TypeLecture.Display(),
		HoursPerWeek:          4,
		AcademicYear:          "2025-2026",
		Semester:              1,
		Order:                 0,
		IsActive:              true,
		CreatedAt:             time.Now(),
		UpdatedAt:             time.Now(),
	}
}

func TestComputeChangesEmptyWhenEqual(t *testing.T) {
	a := sampleResponse()
	b := a
	// Los timestamps no forman parte de la comparación.
	b.UpdatedAt = b.UpdatedAt.Add(time.Hour)

	changes := ComputeChanges(a, b)
	assert.Empty(t, changes)
}

func TestComputeChangesDetectsFieldChange(t *testing.T) {
	a := sampleResponse()
	b := a
	b.HoursPerWeek = 6
	b.AssignmentType = models.TypePractical
	b.AssignmentTypeDisplay = models.TypePractical.Display()

	changes := ComputeChanges(a, b)
	assert.Len(t, changes, 3)

	hours, ok := changes["hours_per_week"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, 4, hours["old"])
	assert.Equal(t, 6, hours["new"])
}

func TestComputeChangesGroupEmptyToValue(t *testing.T) {
	a := sampleResponse()
	b := a
	b.Group = "C-301"

	changes := ComputeChanges(a, b)
	assert.Len(t, changes, 1)

	diff := changes["group"].(map[string]any)
	assert.Equal(t, "", diff["old"])
	assert.Equal(t, "C-301", diff["new"])
}
