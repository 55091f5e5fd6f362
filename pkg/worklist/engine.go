package worklist

import (
	"errors"
	"fmt"
	"time"

	"github.com/printforge/fleet/pkg/inventory"
	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/store"
)

var (
	// ErrTaskTerminal is returned when a lifecycle operation targets a
	// task that is already completed or cancelled.
	ErrTaskTerminal = errors.New("task is already completed or cancelled")
)

// CompletionResult is the outcome of a completion attempt. When Blocked
// is true the task was left untouched and Shortages explains why; the
// caller decides whether to retry with Force.
type CompletionResult struct {
	Task      *models.WorklistTask       `json:"task,omitempty"`
	Blocked   bool                       `json:"blocked"`
	Shortages []models.ComponentShortage `json:"shortages,omitempty"`
}

// Engine drives the worklist task lifecycle: start, cancel and the
// two-phase completion of inventory-gated assembly tasks.
type Engine struct {
	store   store.Store
	checker inventory.AvailabilityChecker
	now     func() time.Time
}

// NewEngine creates a worklist engine
func NewEngine(s store.Store, checker inventory.AvailabilityChecker) *Engine {
	return &Engine{
		store:   s,
		checker: checker,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start moves a pending task to in_progress and records when work
// began. Elapsed time is derived from this absolute timestamp, so a
// dashboard reload never resets a running clock.
func (e *Engine) Start(tenantID, taskID string) (*models.WorklistTask, error) {
	task, err := e.store.GetTask(tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalTaskStatus(task.Status) {
		return nil, ErrTaskTerminal
	}
	if err := models.ValidateTaskTransition(task.Status, models.TaskStatusInProgress); err != nil {
		return nil, err
	}

	now := e.now()
	task.Status = models.TaskStatusInProgress
	task.StartedAt = &now
	if err := e.store.UpdateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Cancel moves a task to cancelled. Allowed from pending and
// in_progress; cancelling a terminal task is rejected rather than
// treated as a no-op so double-clicks surface as conflicts.
func (e *Engine) Cancel(tenantID, taskID string) (*models.WorklistTask, error) {
	task, err := e.store.GetTask(tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalTaskStatus(task.Status) {
		return nil, ErrTaskTerminal
	}
	if err := models.ValidateTaskTransition(task.Status, models.TaskStatusCancelled); err != nil {
		return nil, err
	}

	now := e.now()
	task.Status = models.TaskStatusCancelled
	task.CompletedAt = &now
	if err := e.store.UpdateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete attempts to complete a task. For assembly tasks linked to an
// assembly record this is phase one of a two-phase flow: the component
// inventory is checked first, and any shortage blocks completion
// without changing task state. All other tasks complete immediately.
func (e *Engine) Complete(tenantID, taskID string) (*CompletionResult, error) {
	return e.complete(tenantID, taskID, false)
}

// CompleteForced completes a task regardless of component shortages,
// consuming whatever stock exists (clamped at zero). This is phase two,
// reached only after the operator has seen the shortage report.
func (e *Engine) CompleteForced(tenantID, taskID string) (*CompletionResult, error) {
	return e.complete(tenantID, taskID, true)
}

func (e *Engine) complete(tenantID, taskID string, force bool) (*CompletionResult, error) {
	task, err := e.store.GetTask(tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalTaskStatus(task.Status) {
		return nil, ErrTaskTerminal
	}
	if err := models.ValidateTaskTransition(task.Status, models.TaskStatusCompleted); err != nil {
		return nil, err
	}

	gated := task.Type == models.TaskTypeAssembly && task.AssemblyID != nil

	if gated && !force {
		report, err := e.checker.Check(tenantID, *task.AssemblyID)
		if err != nil {
			// An unverifiable inventory must block completion; completing
			// blind could silently oversell components.
			return nil, fmt.Errorf("inventory check failed: %w", err)
		}
		if report.HasShortage {
			return &CompletionResult{Blocked: true, Shortages: report.Shortages}, nil
		}
	}

	if gated {
		if err := e.checker.Consume(tenantID, *task.AssemblyID); err != nil {
			return nil, fmt.Errorf("failed to consume components: %w", err)
		}
	}

	now := e.now()
	task.Status = models.TaskStatusCompleted
	task.CompletedAt = &now
	if task.StartedAt != nil {
		minutes := int(now.Sub(*task.StartedAt).Minutes())
		task.ActualMinutes = &minutes
	}
	if err := e.store.UpdateTask(task); err != nil {
		return nil, err
	}
	return &CompletionResult{Task: task}, nil
}

// Elapsed returns how long a task has been running. Zero for tasks that
// were never started; for finished tasks the clock stops at completion.
func Elapsed(task *models.WorklistTask, now time.Time) time.Duration {
	if task.StartedAt == nil {
		return 0
	}
	end := now
	if task.CompletedAt != nil {
		end = *task.CompletedAt
	}
	if end.Before(*task.StartedAt) {
		return 0
	}
	return end.Sub(*task.StartedAt)
}
