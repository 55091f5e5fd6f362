package models

import (
	"testing"
)

func TestValidateJobTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    JobStatus
		to      JobStatus
		wantErr bool
	}{
		// Valid transitions
		{"Queued to Processing", JobStatusQueued, JobStatusProcessing, false},
		{"Queued to Cancelled", JobStatusQueued, JobStatusCancelled, false},
		{"Processing to Uploaded", JobStatusProcessing, JobStatusUploaded, false},
		{"Uploaded to Printing", JobStatusUploaded, JobStatusPrinting, false},
		{"Printing to Paused", JobStatusPrinting, JobStatusPaused, false},
		{"Printing to Completed", JobStatusPrinting, JobStatusCompleted, false},
		{"Paused to Printing", JobStatusPaused, JobStatusPrinting, false},
		{"Paused to Cancelled", JobStatusPaused, JobStatusCancelled, false},

		// Invalid transitions
		{"Queued to Completed", JobStatusQueued, JobStatusCompleted, true},
		{"Queued to Printing", JobStatusQueued, JobStatusPrinting, true},
		{"Completed to Printing", JobStatusCompleted, JobStatusPrinting, true},
		{"Completed to anything", JobStatusCompleted, JobStatusQueued, true},
		{"Failed to Printing", JobStatusFailed, JobStatusPrinting, true},
		{"Cancelled to Queued", JobStatusCancelled, JobStatusQueued, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateJobTransition(%v, %v) error = %v, wantErr %v",
					tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTaskTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    TaskStatus
		to      TaskStatus
		wantErr bool
	}{
		{"Pending to InProgress", TaskStatusPending, TaskStatusInProgress, false},
		{"Pending to Completed", TaskStatusPending, TaskStatusCompleted, false},
		{"Pending to Cancelled", TaskStatusPending, TaskStatusCancelled, false},
		{"InProgress to Completed", TaskStatusInProgress, TaskStatusCompleted, false},
		{"InProgress to Cancelled", TaskStatusInProgress, TaskStatusCancelled, false},

		{"InProgress to Pending", TaskStatusInProgress, TaskStatusPending, true},
		{"Completed to InProgress", TaskStatusCompleted, TaskStatusInProgress, true},
		{"Completed to Cancelled", TaskStatusCompleted, TaskStatusCancelled, true},
		{"Cancelled to Pending", TaskStatusCancelled, TaskStatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTaskTransition(%v, %v) error = %v, wantErr %v",
					tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestIsTerminalJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected bool
	}{
		{"Completed is terminal", JobStatusCompleted, true},
		{"Failed is terminal", JobStatusFailed, true},
		{"Cancelled is terminal", JobStatusCancelled, true},
		{"Queued is not terminal", JobStatusQueued, false},
		{"Printing is not terminal", JobStatusPrinting, false},
		{"Paused is not terminal", JobStatusPaused, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTerminalJobStatus(tt.status); got != tt.expected {
				t.Errorf("IsTerminalJobStatus(%v) = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestIsTerminalTaskStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   TaskStatus
		expected bool
	}{
		{"Completed is terminal", TaskStatusCompleted, true},
		{"Cancelled is terminal", TaskStatusCancelled, true},
		{"Pending is not terminal", TaskStatusPending, false},
		{"InProgress is not terminal", TaskStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTerminalTaskStatus(tt.status); got != tt.expected {
				t.Errorf("IsTerminalTaskStatus(%v) = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestParsePrinterID(t *testing.T) {
	id, err := ParsePrinterID("7")
	if err != nil {
		t.Fatalf("ParsePrinterID(\"7\") error = %v", err)
	}
	if id != PrinterID(7) {
		t.Errorf("ParsePrinterID(\"7\") = %v, want 7", id)
	}
	if id.String() != "7" {
		t.Errorf("PrinterID(7).String() = %q, want \"7\"", id.String())
	}

	if _, err := ParsePrinterID("not-a-number"); err == nil {
		t.Error("ParsePrinterID(\"not-a-number\") expected error, got nil")
	}
}
