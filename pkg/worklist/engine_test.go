package worklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printforge/fleet/pkg/inventory"
	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/store"
)

func newTestEngine(t *testing.T) (*Engine, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	return NewEngine(s, inventory.NewStoreChecker(s)), s
}

func createTask(t *testing.T, s store.Store, taskType models.TaskType, assemblyID *string) *models.WorklistTask {
	t.Helper()
	task := &models.WorklistTask{
		TenantID:   "t1",
		Type:       taskType,
		Priority:   models.TaskPriorityMedium,
		Title:      "test task",
		AssemblyID: assemblyID,
	}
	require.NoError(t, s.CreateTask(task))
	return task
}

func TestStartStampsStartedAt(t *testing.T) {
	engine, s := newTestEngine(t)
	task := createTask(t, s, models.TaskTypeCollection, nil)

	started, err := engine.Start("t1", task.ID)
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	assert.WithinDuration(t, time.Now().UTC(), *started.StartedAt, 2*time.Second)
}

func TestStartTwiceRejected(t *testing.T) {
	engine, s := newTestEngine(t)
	task := createTask(t, s, models.TaskTypeCollection, nil)

	_, err := engine.Start("t1", task.ID)
	require.NoError(t, err)

	_, err = engine.Start("t1", task.ID)
	assert.Error(t, err)
}

func TestCancelFromPending(t *testing.T) {
	engine, s := newTestEngine(t)
	task := createTask(t, s, models.TaskTypeMaintenance, nil)

	cancelled, err := engine.Cancel("t1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CompletedAt)
}

func TestCancelTerminalRejected(t *testing.T) {
	engine, s := newTestEngine(t)
	task := createTask(t, s, models.TaskTypeMaintenance, nil)

	_, err := engine.Cancel("t1", task.ID)
	require.NoError(t, err)

	_, err = engine.Cancel("t1", task.ID)
	assert.ErrorIs(t, err, ErrTaskTerminal)
}

func TestCompleteUnlinkedTask(t *testing.T) {
	engine, s := newTestEngine(t)
	task := createTask(t, s, models.TaskTypeFilamentChange, nil)

	_, err := engine.Start("t1", task.ID)
	require.NoError(t, err)

	result, err := engine.Complete("t1", task.ID)
	require.NoError(t, err)

	assert.False(t, result.Blocked)
	assert.Equal(t, models.TaskStatusCompleted, result.Task.Status)
	assert.NotNil(t, result.Task.CompletedAt)
	assert.NotNil(t, result.Task.ActualMinutes)
}

func TestCompleteTerminalRejected(t *testing.T) {
	engine, s := newTestEngine(t)
	task := createTask(t, s, models.TaskTypeCollection, nil)

	_, err := engine.Complete("t1", task.ID)
	require.NoError(t, err)

	_, err = engine.Complete("t1", task.ID)
	assert.ErrorIs(t, err, ErrTaskTerminal)
}

func seedGearbox(t *testing.T, s store.Store) string {
	t.Helper()
	require.NoError(t, s.CreateAssembly(&models.Assembly{
		ID:       "asm-1",
		TenantID: "t1",
		Name:     "Gearbox",
		Units:    1,
		Components: []models.RequiredComponent{
			{Name: "Widget", QuantityPerUnit: 5},
		},
	}))
	return "asm-1"
}

func TestAssemblyCompletionShortageFlow(t *testing.T) {
	engine, s := newTestEngine(t)
	asmID := seedGearbox(t, s)
	require.NoError(t, s.SetComponentStock("t1", "Widget", 3))

	task := createTask(t, s, models.TaskTypeAssembly, &asmID)
	_, err := engine.Start("t1", task.ID)
	require.NoError(t, err)

	// Phase one: shortage blocks completion and changes nothing
	result, err := engine.Complete("t1", task.ID)
	require.NoError(t, err)
	assert.True(t, result.Blocked)
	require.Len(t, result.Shortages, 1)
	assert.Equal(t, models.ComponentShortage{Component: "Widget", Needed: 5, Available: 3}, result.Shortages[0])

	current, err := s.GetTask("t1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, current.Status)

	stock, err := s.GetComponentStock("t1", "Widget")
	require.NoError(t, err)
	assert.Equal(t, 3, stock, "blocked completion must not touch stock")

	// Phase two: forced completion consumes what exists, clamped at zero
	result, err = engine.CompleteForced("t1", task.ID)
	require.NoError(t, err)
	assert.False(t, result.Blocked)
	assert.Equal(t, models.TaskStatusCompleted, result.Task.Status)

	stock, err = s.GetComponentStock("t1", "Widget")
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestAssemblyCompletionSufficientStock(t *testing.T) {
	engine, s := newTestEngine(t)
	asmID := seedGearbox(t, s)
	require.NoError(t, s.SetComponentStock("t1", "Widget", 8))

	task := createTask(t, s, models.TaskTypeAssembly, &asmID)
	_, err := engine.Start("t1", task.ID)
	require.NoError(t, err)

	result, err := engine.Complete("t1", task.ID)
	require.NoError(t, err)
	assert.False(t, result.Blocked)
	assert.Equal(t, models.TaskStatusCompleted, result.Task.Status)

	stock, err := s.GetComponentStock("t1", "Widget")
	require.NoError(t, err)
	assert.Equal(t, 3, stock)
}

func TestAssemblyCompletionCheckFailureAborts(t *testing.T) {
	engine, s := newTestEngine(t)
	missing := "no-such-assembly"
	task := createTask(t, s, models.TaskTypeAssembly, &missing)

	_, err := engine.Start("t1", task.ID)
	require.NoError(t, err)

	_, err = engine.Complete("t1", task.ID)
	require.Error(t, err)

	current, err := s.GetTask("t1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, current.Status, "failed inventory check must not complete the task")
}

func TestNonAssemblyTaskWithAssemblyLinkNotGated(t *testing.T) {
	engine, s := newTestEngine(t)
	asmID := seedGearbox(t, s)
	// Zero stock, but the gate only applies to assembly tasks
	task := createTask(t, s, models.TaskTypeQualityCheck, &asmID)

	result, err := engine.Complete("t1", task.ID)
	require.NoError(t, err)
	assert.False(t, result.Blocked)
	assert.Equal(t, models.TaskStatusCompleted, result.Task.Status)
}

func TestElapsed(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(42 * time.Minute)
	now := start.Add(2 * time.Hour)

	running := &models.WorklistTask{StartedAt: &start}
	assert.Equal(t, 2*time.Hour, Elapsed(running, now))

	finished := &models.WorklistTask{StartedAt: &start, CompletedAt: &end}
	assert.Equal(t, 42*time.Minute, Elapsed(finished, now))

	unstarted := &models.WorklistTask{}
	assert.Equal(t, time.Duration(0), Elapsed(unstarted, now))
}
