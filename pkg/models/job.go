package models

import (
	"time"
)

// JobStatus represents the status of a print job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusUploaded   JobStatus = "uploaded" // file delivered to the printer, not yet started
	JobStatusPrinting   JobStatus = "printing"
	JobStatusPaused     JobStatus = "paused"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// PrintJob represents a persisted print job. PrinterID is nullable:
// unassigned jobs sit in the queue until an operator binds them to a
// printer.
type PrintJob struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	PrinterID   *string    `json:"printer_id,omitempty"`
	FileName    string     `json:"file_name"`
	ProductSKU  string     `json:"product_sku,omitempty"`
	Status      JobStatus  `json:"status"`
	Progress    float64    `json:"progress_percentage"` // 0-100
	Quantity    int        `json:"quantity"`
	SubmittedAt time.Time  `json:"submitted_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobRequest represents a request to create a new print job
type JobRequest struct {
	PrinterID  *string `json:"printer_id,omitempty"`
	FileName   string  `json:"file_name"`
	ProductSKU string  `json:"product_sku,omitempty"`
	Quantity   int     `json:"quantity,omitempty"`
}
