package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/printforge/fleet/pkg/models"
)

// MemoryStore is an in-memory implementation of the data store. Used by
// tests and by single-process deployments that do not need durability.
type MemoryStore struct {
	mu         sync.RWMutex
	printers   map[string]*models.Printer
	jobs       map[string]*models.PrintJob
	tasks      map[string]*models.WorklistTask
	assemblies map[string]*models.Assembly
	stock      map[string]map[string]int // tenantID -> component -> quantity
	tenants    map[string]*models.Tenant

	nextPrinterNum models.PrinterID
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		printers:   make(map[string]*models.Printer),
		jobs:       make(map[string]*models.PrintJob),
		tasks:      make(map[string]*models.WorklistTask),
		assemblies: make(map[string]*models.Assembly),
		stock:      make(map[string]map[string]int),
		tenants:    make(map[string]*models.Tenant),
	}
}

// Printer directory

// CreatePrinter adds a printer, assigning its numeric telemetry ID and
// sort position. Numeric IDs increase monotonically and are never
// reused, even after deletion.
func (s *MemoryStore) CreatePrinter(p *models.Printer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.nextPrinterNum++
	p.NumericID = s.nextPrinterNum

	pos := 0
	for _, existing := range s.printers {
		if existing.TenantID == p.TenantID && existing.Position >= pos {
			pos = existing.Position + 1
		}
	}
	p.Position = pos

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = models.PrinterStatusOffline
	}

	s.printers[p.ID] = p
	return nil
}

// GetPrinter retrieves a printer by ID within a tenant
func (s *MemoryStore) GetPrinter(tenantID, id string) (*models.Printer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPrinterLocked(tenantID, id)
}

func (s *MemoryStore) getPrinterLocked(tenantID, id string) (*models.Printer, error) {
	p, ok := s.printers[id]
	if !ok || p.TenantID != tenantID {
		return nil, ErrPrinterNotFound
	}
	return p, nil
}

// ListPrinters returns a tenant's printers ordered by sort position
func (s *MemoryStore) ListPrinters(tenantID string) ([]*models.Printer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	printers := make([]*models.Printer, 0)
	for _, p := range s.printers {
		if p.TenantID == tenantID {
			printers = append(printers, p)
		}
	}
	sort.Slice(printers, func(i, j int) bool {
		return printers[i].Position < printers[j].Position
	})
	return printers, nil
}

// UpdatePrinter applies a settings update to a printer
func (s *MemoryStore) UpdatePrinter(tenantID, id string, upd models.PrinterUpdate) (*models.Printer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.getPrinterLocked(tenantID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Model != nil {
		p.Model = *upd.Model
	}
	if upd.Manufacturer != nil {
		p.Manufacturer = *upd.Manufacturer
	}
	if upd.InMaintenance != nil {
		p.InMaintenance = *upd.InMaintenance
	}
	if upd.FilamentColor != nil {
		p.FilamentColor = *upd.FilamentColor
	}
	if upd.FilamentType != nil {
		p.FilamentType = *upd.FilamentType
	}
	if upd.FilamentLevel != nil {
		p.FilamentLevel = *upd.FilamentLevel
	}
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

// UpdatePrinterConnectivity persists the last-known connectivity of a
// printer. This is the periodic sync write, not a telemetry side
// effect: reconciliation itself never calls it.
func (s *MemoryStore) UpdatePrinterConnectivity(tenantID, id string, connected bool, status models.PrinterStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.getPrinterLocked(tenantID, id)
	if err != nil {
		return err
	}
	p.Connected = connected
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ReorderPrinters rewrites sort positions to match the given ID order
func (s *MemoryStore) ReorderPrinters(tenantID string, orderedIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for pos, id := range orderedIDs {
		p, err := s.getPrinterLocked(tenantID, id)
		if err != nil {
			return err
		}
		p.Position = pos
		p.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// SetPrinterCleared records the operator's build-plate acknowledgement
func (s *MemoryStore) SetPrinterCleared(tenantID, id string, cleared bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.getPrinterLocked(tenantID, id)
	if err != nil {
		return err
	}
	p.Cleared = cleared
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Job ledger

// CreateJob adds a new print job
func (s *MemoryStore) CreateJob(job *models.PrintJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = models.JobStatusQueued
	}
	if job.Quantity <= 0 {
		job.Quantity = 1
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	s.jobs[job.ID] = job
	return nil
}

// GetJob retrieves a job by ID within a tenant
func (s *MemoryStore) GetJob(tenantID, id string) (*models.PrintJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getJobLocked(tenantID, id)
}

func (s *MemoryStore) getJobLocked(tenantID, id string) (*models.PrintJob, error) {
	job, ok := s.jobs[id]
	if !ok || job.TenantID != tenantID {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// ListJobs returns a tenant's jobs, newest submission first
func (s *MemoryStore) ListJobs(tenantID string) ([]*models.PrintJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*models.PrintJob, 0)
	for _, job := range s.jobs {
		if job.TenantID == tenantID {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].SubmittedAt.After(jobs[j].SubmittedAt)
	})
	return jobs, nil
}

// UpdateJobStatus transitions a job's status, rejecting transitions out
// of a terminal status
func (s *MemoryStore) UpdateJobStatus(tenantID, id string, status models.JobStatus) (*models.PrintJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.getJobLocked(tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := applyJobStatus(job, status, time.Now().UTC()); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateJobProgress records persisted progress for an active job
func (s *MemoryStore) UpdateJobProgress(tenantID, id string, progress float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.getJobLocked(tenantID, id)
	if err != nil {
		return err
	}
	if models.IsTerminalJobStatus(job.Status) {
		return ErrTerminalStatus
	}
	job.Progress = progress
	return nil
}

// Worklist

// CreateTask adds a new worklist task in pending status
func (s *MemoryStore) CreateTask(task *models.WorklistTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	s.tasks[task.ID] = task
	return nil
}

// GetTask retrieves a task by ID within a tenant
func (s *MemoryStore) GetTask(tenantID, id string) (*models.WorklistTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok || task.TenantID != tenantID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns a tenant's tasks, newest first
func (s *MemoryStore) ListTasks(tenantID string) ([]*models.WorklistTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.WorklistTask, 0)
	for _, task := range s.tasks {
		if task.TenantID == tenantID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// UpdateTask replaces a task record
func (s *MemoryStore) UpdateTask(task *models.WorklistTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok || existing.TenantID != task.TenantID {
		return ErrTaskNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

// Assemblies and component inventory

// CreateAssembly adds an assembly definition
func (s *MemoryStore) CreateAssembly(a *models.Assembly) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Units <= 0 {
		a.Units = 1
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.assemblies[a.ID] = a
	return nil
}

// GetAssembly retrieves an assembly with its required components
func (s *MemoryStore) GetAssembly(tenantID, id string) (*models.Assembly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAssemblyLocked(tenantID, id)
}

func (s *MemoryStore) getAssemblyLocked(tenantID, id string) (*models.Assembly, error) {
	a, ok := s.assemblies[id]
	if !ok || a.TenantID != tenantID {
		return nil, ErrAssemblyNotFound
	}
	return a, nil
}

// GetComponentStock returns current stock for a component. Unknown
// components have zero stock.
func (s *MemoryStore) GetComponentStock(tenantID, component string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stock[tenantID][component], nil
}

// SetComponentStock sets the stock level for a component
func (s *MemoryStore) SetComponentStock(tenantID, component string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stock[tenantID] == nil {
		s.stock[tenantID] = make(map[string]int)
	}
	s.stock[tenantID][component] = quantity
	return nil
}

// ConsumeAssemblyComponents decrements stock for every required
// component of an assembly. Components without enough stock are clamped
// to zero rather than going negative; this is the forced-completion
// path, the sufficiency decision already happened upstream.
func (s *MemoryStore) ConsumeAssemblyComponents(tenantID, assemblyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.getAssemblyLocked(tenantID, assemblyID)
	if err != nil {
		return err
	}
	if s.stock[tenantID] == nil {
		s.stock[tenantID] = make(map[string]int)
	}
	for _, c := range a.Components {
		needed := c.QuantityPerUnit * a.Units
		remaining := s.stock[tenantID][c.Name] - needed
		if remaining < 0 {
			remaining = 0
		}
		s.stock[tenantID][c.Name] = remaining
	}
	return nil
}

// Tenants

// CreateTenant adds a tenant
func (s *MemoryStore) CreateTenant(t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = models.TenantStatusActive
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	s.tenants[t.ID] = t
	return nil
}

// GetTenant retrieves a tenant by ID
func (s *MemoryStore) GetTenant(id string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return t, nil
}

// ListTenants returns all tenants
func (s *MemoryStore) ListTenants() ([]*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenants := make([]*models.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		tenants = append(tenants, t)
	}
	sort.Slice(tenants, func(i, j int) bool {
		return tenants[i].CreatedAt.Before(tenants[j].CreatedAt)
	})
	return tenants, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error { return nil }

// HealthCheck is a no-op for the memory store
func (s *MemoryStore) HealthCheck() error { return nil }
