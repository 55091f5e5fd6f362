package models

import (
	"time"
)

// TaskType classifies worklist tasks
type TaskType string

const (
	TaskTypeAssembly       TaskType = "assembly"
	TaskTypeFilamentChange TaskType = "filament_change"
	TaskTypeCollection     TaskType = "collection"
	TaskTypeMaintenance    TaskType = "maintenance"
	TaskTypeQualityCheck   TaskType = "quality_check"
)

// TaskPriority is the operator-facing urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// TaskStatus represents the lifecycle state of a worklist task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// WorklistTask represents a human work item. Assembly tasks may link to
// an assembly record whose required components gate completion.
type WorklistTask struct {
	ID               string       `json:"id"`
	TenantID         string       `json:"tenant_id"`
	Type             TaskType     `json:"type"`
	Priority         TaskPriority `json:"priority"`
	Status           TaskStatus   `json:"status"`
	Title            string       `json:"title"`
	Notes            string       `json:"notes,omitempty"`
	AssemblyID       *string      `json:"assembly_id,omitempty"`
	EstimatedMinutes int          `json:"estimated_minutes,omitempty"`
	ActualMinutes    *int         `json:"actual_minutes,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	StartedAt        *time.Time   `json:"started_at,omitempty"`
	CompletedAt      *time.Time   `json:"completed_at,omitempty"`
}

// TaskRequest represents a request to create a worklist task
type TaskRequest struct {
	Type             TaskType     `json:"type"`
	Priority         TaskPriority `json:"priority,omitempty"`
	Title            string       `json:"title"`
	Notes            string       `json:"notes,omitempty"`
	AssemblyID       *string      `json:"assembly_id,omitempty"`
	EstimatedMinutes int          `json:"estimated_minutes,omitempty"`
}
