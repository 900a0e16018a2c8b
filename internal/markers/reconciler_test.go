package markers

import (
	"slices"
	"testing"

	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorFor(t *testing.T) {
	assert.Equal(t, ColorCritical, ColorFor(models.Incident{PriorityTag: models.PriorityCritical}))
	assert.Equal(t, ColorHigh, ColorFor(models.Incident{PriorityTag: models.PriorityHigh}))
	assert.Equal(t, ColorMedium, ColorFor(models.Incident{PriorityTag: models.PriorityMedium}))
	assert.Equal(t, ColorLow, ColorFor(models.Incident{PriorityTag: models.PriorityLow}))
	assert.Equal(t, ColorFallback, ColorFor(models.Incident{PriorityTag: "Bogus"}))

	// Resolved перекрывает любой приоритет
	assert.Equal(t, ColorResolved, ColorFor(models.Incident{
		PriorityTag:   models.PriorityCritical,
		ResolutionTag: models.ResolutionResolved,
	}))
}

func TestReconcile_ImageOfInput(t *testing.T) {
	r := NewReconciler()

	setA := []models.Incident{
		{ID: "INC-00001", Category: models.CategoryTheft, Latitude: 1, Longitude: 1, PriorityTag: models.PriorityHigh},
		{ID: "INC-00002", Category: models.CategoryAccident, Latitude: 2, Longitude: 2, PriorityTag: models.PriorityLow},
	}
	r.Reconcile(slices.Values(setA))
	assert.Equal(t, 2, r.Len())

	// Набор B: INC-00001 сдвинулся, INC-00002 исчез, INC-00003 появился
	setB := []models.Incident{
		{ID: "INC-00001", Category: models.CategoryTheft, Latitude: 1.5, Longitude: 1.5, PriorityTag: models.PriorityHigh},
		{ID: "INC-00003", Category: models.CategoryFire, Latitude: 3, Longitude: 3, PriorityTag: models.PriorityCritical},
	}
	r.Reconcile(slices.Values(setB))

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "INC-00001", snapshot[0].IncidentID)
	assert.Equal(t, 1.5, snapshot[0].Latitude)
	assert.Equal(t, "INC-00003", snapshot[1].IncidentID)
	assert.Equal(t, ColorCritical, snapshot[1].Color)

	_, ok := r.Marker("INC-00002")
	assert.False(t, ok)
}

func TestReconcile_UpdatesInPlace(t *testing.T) {
	r := NewReconciler()

	r.Reconcile(slices.Values([]models.Incident{
		{ID: "INC-00001", Category: models.CategoryTheft, PriorityTag: models.PriorityCritical},
	}))
	before, ok := r.Marker("INC-00001")
	require.True(t, ok)
	assert.Equal(t, ColorCritical, before.Color)

	// Инцидент разрешен: маркер перекрашивается, но хэндл остается тем же
	r.Reconcile(slices.Values([]models.Incident{
		{ID: "INC-00001", Category: models.CategoryTheft, PriorityTag: models.PriorityCritical, ResolutionTag: models.ResolutionResolved},
	}))
	after, ok := r.Marker("INC-00001")
	require.True(t, ok)
	assert.Same(t, before, after)
	assert.Equal(t, ColorResolved, after.Color)
}

func TestReconcile_EmptySetDropsEverything(t *testing.T) {
	r := NewReconciler()
	r.Reconcile(slices.Values([]models.Incident{
		{ID: "INC-00001"},
		{ID: "INC-00002"},
	}))
	require.Equal(t, 2, r.Len())

	r.Reconcile(slices.Values([]models.Incident{}))
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Snapshot())
}
