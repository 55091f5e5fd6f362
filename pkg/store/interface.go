package store

import (
	"errors"
	"time"

	"github.com/printforge/fleet/pkg/models"
)

var (
	ErrPrinterNotFound  = errors.New("printer not found")
	ErrJobNotFound      = errors.New("job not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrAssemblyNotFound = errors.New("assembly not found")
	ErrTenantNotFound   = errors.New("tenant not found")

	// ErrTerminalStatus is returned when a mutation targets a job or
	// task that already reached a terminal status. Callers must see
	// this explicitly; a silent no-op would mask the conflict.
	ErrTerminalStatus = errors.New("entity is in a terminal status")

	ErrUnsupportedDatabase = errors.New("unsupported database type")
)

// Store defines the persistence interface for the printer directory,
// job ledger, worklist and component inventory. All entity queries are
// tenant-scoped. Memory, SQLite and PostgreSQL implementations exist.
type Store interface {
	// Printer directory
	CreatePrinter(p *models.Printer) error
	GetPrinter(tenantID, id string) (*models.Printer, error)
	ListPrinters(tenantID string) ([]*models.Printer, error)
	UpdatePrinter(tenantID, id string, upd models.PrinterUpdate) (*models.Printer, error)
	UpdatePrinterConnectivity(tenantID, id string, connected bool, status models.PrinterStatus) error
	ReorderPrinters(tenantID string, orderedIDs []string) error
	SetPrinterCleared(tenantID, id string, cleared bool) error

	// Job ledger
	CreateJob(job *models.PrintJob) error
	GetJob(tenantID, id string) (*models.PrintJob, error)
	ListJobs(tenantID string) ([]*models.PrintJob, error)
	UpdateJobStatus(tenantID, id string, status models.JobStatus) (*models.PrintJob, error)
	UpdateJobProgress(tenantID, id string, progress float64) error

	// Worklist
	CreateTask(task *models.WorklistTask) error
	GetTask(tenantID, id string) (*models.WorklistTask, error)
	ListTasks(tenantID string) ([]*models.WorklistTask, error)
	UpdateTask(task *models.WorklistTask) error

	// Assemblies and component inventory
	CreateAssembly(a *models.Assembly) error
	GetAssembly(tenantID, id string) (*models.Assembly, error)
	GetComponentStock(tenantID, component string) (int, error)
	SetComponentStock(tenantID, component string, quantity int) error
	ConsumeAssemblyComponents(tenantID, assemblyID string) error

	// Tenants
	CreateTenant(t *models.Tenant) error
	GetTenant(id string) (*models.Tenant, error)
	ListTenants() ([]*models.Tenant, error)

	// Lifecycle
	Close() error
	HealthCheck() error
}

// Config holds database configuration
type Config struct {
	Type string // "memory", "sqlite" or "postgres"
	DSN  string // connection string (postgres) or file path (sqlite)

	// PostgreSQL pool tuning
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// New creates a store based on configuration
func New(config Config) (Store, error) {
	switch config.Type {
	case "postgres", "postgresql":
		return NewPostgresStore(config)
	case "sqlite", "":
		path := config.DSN
		if path == "" {
			path = "fleet.db"
		}
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, ErrUnsupportedDatabase
	}
}

// applyJobStatus performs the shared status-transition bookkeeping used
// by every implementation: validate the transition, stamp timestamps
// and pin progress for completed jobs.
func applyJobStatus(job *models.PrintJob, status models.JobStatus, now time.Time) error {
	if models.IsTerminalJobStatus(job.Status) {
		return ErrTerminalStatus
	}
	if err := models.ValidateJobTransition(job.Status, status); err != nil {
		return err
	}

	job.Status = status
	switch {
	case status == models.JobStatusPrinting && job.StartedAt == nil:
		t := now
		job.StartedAt = &t
	case status == models.JobStatusCompleted:
		t := now
		job.CompletedAt = &t
		job.Progress = 100
	case status == models.JobStatusFailed || status == models.JobStatusCancelled:
		t := now
		job.CompletedAt = &t
	}
	return nil
}
