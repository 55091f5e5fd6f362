package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/store"
)

func seedAssembly(t *testing.T, s store.Store) *models.Assembly {
	t.Helper()
	a := &models.Assembly{
		ID:       "asm-1",
		TenantID: "t1",
		Name:     "Gearbox",
		Units:    1,
		Components: []models.RequiredComponent{
			{Name: "Widget", QuantityPerUnit: 5},
			{Name: "Screw", QuantityPerUnit: 2},
		},
	}
	require.NoError(t, s.CreateAssembly(a))
	return a
}

func TestCheckReportsAllShortages(t *testing.T) {
	s := store.NewMemoryStore()
	seedAssembly(t, s)
	require.NoError(t, s.SetComponentStock("t1", "Widget", 3))
	require.NoError(t, s.SetComponentStock("t1", "Screw", 1))

	checker := NewStoreChecker(s)
	report, err := checker.Check("t1", "asm-1")
	require.NoError(t, err)

	assert.True(t, report.HasShortage)
	require.Len(t, report.Shortages, 2)
	assert.Equal(t, models.ComponentShortage{Component: "Widget", Needed: 5, Available: 3}, report.Shortages[0])
	assert.Equal(t, models.ComponentShortage{Component: "Screw", Needed: 2, Available: 1}, report.Shortages[1])
}

func TestCheckNoShortage(t *testing.T) {
	s := store.NewMemoryStore()
	seedAssembly(t, s)
	require.NoError(t, s.SetComponentStock("t1", "Widget", 5))
	require.NoError(t, s.SetComponentStock("t1", "Screw", 10))

	checker := NewStoreChecker(s)
	report, err := checker.Check("t1", "asm-1")
	require.NoError(t, err)

	assert.False(t, report.HasShortage)
	assert.Empty(t, report.Shortages)
}

func TestCheckScalesByUnits(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.CreateAssembly(&models.Assembly{
		ID:       "asm-1",
		TenantID: "t1",
		Name:     "Gearbox",
		Units:    3,
		Components: []models.RequiredComponent{
			{Name: "Widget", QuantityPerUnit: 5},
			{Name: "Screw", QuantityPerUnit: 2},
		},
	}))

	require.NoError(t, s.SetComponentStock("t1", "Widget", 14)) // need 15
	require.NoError(t, s.SetComponentStock("t1", "Screw", 6))   // need 6

	checker := NewStoreChecker(s)
	report, err := checker.Check("t1", "asm-1")
	require.NoError(t, err)

	require.Len(t, report.Shortages, 1)
	assert.Equal(t, models.ComponentShortage{Component: "Widget", Needed: 15, Available: 14}, report.Shortages[0])
}

func TestCheckMissingAssembly(t *testing.T) {
	s := store.NewMemoryStore()
	checker := NewStoreChecker(s)

	_, err := checker.Check("t1", "nope")
	assert.ErrorIs(t, err, store.ErrAssemblyNotFound)
}

func TestConsumeClampsAtZero(t *testing.T) {
	s := store.NewMemoryStore()
	seedAssembly(t, s)
	require.NoError(t, s.SetComponentStock("t1", "Widget", 3))
	require.NoError(t, s.SetComponentStock("t1", "Screw", 10))

	checker := NewStoreChecker(s)
	require.NoError(t, checker.Consume("t1", "asm-1"))

	widget, err := s.GetComponentStock("t1", "Widget")
	require.NoError(t, err)
	assert.Equal(t, 0, widget)

	screw, err := s.GetComponentStock("t1", "Screw")
	require.NoError(t, err)
	assert.Equal(t, 8, screw)
}
