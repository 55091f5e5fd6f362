package models

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition wraps every rejected status transition so callers
// can map it to a client error instead of a server fault.
var ErrInvalidTransition = errors.New("invalid status transition")

// validJobTransitions maps from-status to allowed to-statuses for print
// jobs. Terminal statuses map to an empty set: once a job is persisted
// as completed, failed or cancelled, nothing moves it again; this is
// the invariant that protects against stale telemetry reviving a job
// the user already cancelled.
var validJobTransitions = map[JobStatus]map[JobStatus]bool{
	JobStatusQueued: {
		JobStatusProcessing: true, // queue → slicing/preparation
		JobStatusUploaded:   true, // file pushed straight to the printer
		JobStatusCancelled:  true, // user cancels before anything happened
		JobStatusFailed:     true, // preparation failed
	},
	JobStatusProcessing: {
		JobStatusUploaded:  true,
		JobStatusPrinting:  true,
		JobStatusFailed:    true,
		JobStatusCancelled: true,
	},
	JobStatusUploaded: {
		JobStatusPrinting:  true, // printer picked the file up
		JobStatusFailed:    true,
		JobStatusCancelled: true,
	},
	JobStatusPrinting: {
		JobStatusPaused:    true,
		JobStatusCompleted: true,
		JobStatusFailed:    true,
		JobStatusCancelled: true,
	},
	JobStatusPaused: {
		JobStatusPrinting:  true, // resume
		JobStatusCompleted: true,
		JobStatusFailed:    true,
		JobStatusCancelled: true,
	},
	// Terminal statuses
	JobStatusCompleted: {},
	JobStatusFailed:    {},
	JobStatusCancelled: {},
}

// validTaskTransitions maps from-status to allowed to-statuses for
// worklist tasks. Completion is allowed from pending as well as
// in_progress: small tasks get checked off without being started first.
var validTaskTransitions = map[TaskStatus]map[TaskStatus]bool{
	TaskStatusPending: {
		TaskStatusInProgress: true,
		TaskStatusCompleted:  true,
		TaskStatusCancelled:  true,
	},
	TaskStatusInProgress: {
		TaskStatusCompleted: true,
		TaskStatusCancelled: true,
	},
	// Terminal statuses
	TaskStatusCompleted: {},
	TaskStatusCancelled: {},
}

// ValidateJobTransition checks if a job status transition is valid
func ValidateJobTransition(from, to JobStatus) error {
	allowed, exists := validJobTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source status: %s", from)
	}
	if !allowed[to] {
		return fmt.Errorf("%w: job %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidateTaskTransition checks if a task status transition is valid
func ValidateTaskTransition(from, to TaskStatus) error {
	allowed, exists := validTaskTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source status: %s", from)
	}
	if !allowed[to] {
		return fmt.Errorf("%w: task %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsTerminalJobStatus returns true if no further job transitions are
// permitted from this status
func IsTerminalJobStatus(status JobStatus) bool {
	return status == JobStatusCompleted || status == JobStatusFailed || status == JobStatusCancelled
}

// IsActiveJobStatus returns true for jobs that may still receive live
// telemetry overlays
func IsActiveJobStatus(status JobStatus) bool {
	return !IsTerminalJobStatus(status)
}

// IsTerminalTaskStatus returns true if no further task transitions are
// permitted from this status
func IsTerminalTaskStatus(status TaskStatus) bool {
	return status == TaskStatusCompleted || status == TaskStatusCancelled
}
