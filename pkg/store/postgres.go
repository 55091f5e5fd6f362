package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/printforge/fleet/pkg/models"
)

// PostgresStore is a PostgreSQL-based implementation of the data store,
// for deployments where multiple fleetd instances share one backend.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(config Config) (*PostgresStore, error) {
	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		plan TEXT NOT NULL DEFAULT 'free',
		max_printers INTEGER NOT NULL DEFAULT 0,
		max_active_jobs INTEGER NOT NULL DEFAULT 0,
		max_tasks INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE SEQUENCE IF NOT EXISTS printer_numeric_id_seq;

	CREATE TABLE IF NOT EXISTS printers (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		numeric_id INTEGER NOT NULL UNIQUE DEFAULT nextval('printer_numeric_id_seq'),
		name TEXT NOT NULL,
		model TEXT,
		manufacturer TEXT,
		status TEXT NOT NULL,
		connected BOOLEAN NOT NULL DEFAULT FALSE,
		cleared BOOLEAN NOT NULL DEFAULT FALSE,
		in_maintenance BOOLEAN NOT NULL DEFAULT FALSE,
		filament_color TEXT,
		filament_type TEXT,
		filament_level INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_printers_tenant ON printers(tenant_id);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		printer_id TEXT,
		file_name TEXT NOT NULL,
		product_sku TEXT,
		status TEXT NOT NULL,
		progress DOUBLE PRECISION NOT NULL DEFAULT 0,
		quantity INTEGER NOT NULL DEFAULT 1,
		submitted_at TIMESTAMPTZ NOT NULL,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_tenant ON jobs(tenant_id);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		type TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		title TEXT NOT NULL,
		notes TEXT,
		assembly_id TEXT,
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		actual_minutes INTEGER,
		created_at TIMESTAMPTZ NOT NULL,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_tenant ON tasks(tenant_id);

	CREATE TABLE IF NOT EXISTS assemblies (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		sku TEXT,
		units INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS assembly_components (
		assembly_id TEXT NOT NULL,
		component_name TEXT NOT NULL,
		quantity_per_unit INTEGER NOT NULL,
		PRIMARY KEY (assembly_id, component_name)
	);

	CREATE TABLE IF NOT EXISTS component_stock (
		tenant_id TEXT NOT NULL,
		component_name TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (tenant_id, component_name)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Printer directory

func (s *PostgresStore) CreatePrinter(p *models.Printer) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = models.PrinterStatusOffline
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxPos sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(position) FROM printers WHERE tenant_id = $1`, p.TenantID).Scan(&maxPos); err != nil {
		return err
	}
	if maxPos.Valid {
		p.Position = int(maxPos.Int64) + 1
	}

	// numeric_id comes from a sequence, so it is never reused
	var numericID int
	err = tx.QueryRow(`
		INSERT INTO printers (id, tenant_id, name, model, manufacturer, status,
			connected, cleared, in_maintenance, filament_color, filament_type, filament_level,
			position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING numeric_id`,
		p.ID, p.TenantID, p.Name, p.Model, p.Manufacturer, string(p.Status),
		p.Connected, p.Cleared, p.InMaintenance, p.FilamentColor, p.FilamentType, p.FilamentLevel,
		p.Position, p.CreatedAt, p.UpdatedAt).Scan(&numericID)
	if err != nil {
		return err
	}
	p.NumericID = models.PrinterID(numericID)
	return tx.Commit()
}

func (s *PostgresStore) GetPrinter(tenantID, id string) (*models.Printer, error) {
	row := s.db.QueryRow(`SELECT `+printerColumns+` FROM printers WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	p, err := scanPrinter(row)
	if err == sql.ErrNoRows {
		return nil, ErrPrinterNotFound
	}
	return p, err
}

func (s *PostgresStore) ListPrinters(tenantID string) ([]*models.Printer, error) {
	rows, err := s.db.Query(`SELECT `+printerColumns+` FROM printers WHERE tenant_id = $1 ORDER BY position`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	printers := make([]*models.Printer, 0)
	for rows.Next() {
		p, err := scanPrinter(rows)
		if err != nil {
			return nil, err
		}
		printers = append(printers, p)
	}
	return printers, rows.Err()
}

func (s *PostgresStore) UpdatePrinter(tenantID, id string, upd models.PrinterUpdate) (*models.Printer, error) {
	p, err := s.GetPrinter(tenantID, id)
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

	_, err = s.db.Exec(`
		UPDATE printers SET name = $1, model = $2, manufacturer = $3, in_maintenance = $4,
			filament_color = $5, filament_type = $6, filament_level = $7, updated_at = $8
		WHERE id = $9 AND tenant_id = $10`,
		p.Name, p.Model, p.Manufacturer, p.InMaintenance,
		p.FilamentColor, p.FilamentType, p.FilamentLevel, p.UpdatedAt,
		id, tenantID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) UpdatePrinterConnectivity(tenantID, id string, connected bool, status models.PrinterStatus) error {
	res, err := s.db.Exec(`UPDATE printers SET connected = $1, status = $2, updated_at = $3 WHERE id = $4 AND tenant_id = $5`,
		connected, string(status), time.Now().UTC(), id, tenantID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrPrinterNotFound)
}

func (s *PostgresStore) ReorderPrinters(tenantID string, orderedIDs []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for pos, id := range orderedIDs {
		res, err := tx.Exec(`UPDATE printers SET position = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4`,
			pos, now, id, tenantID)
		if err != nil {
			return err
		}
		if err := requireRow(res, ErrPrinterNotFound); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) SetPrinterCleared(tenantID, id string, cleared bool) error {
	res, err := s.db.Exec(`UPDATE printers SET cleared = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4`,
		cleared, time.Now().UTC(), id, tenantID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrPrinterNotFound)
}

// Job ledger

func (s *PostgresStore) CreateJob(job *models.PrintJob) error {
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

	_, err := s.db.Exec(`
		INSERT INTO jobs (id, tenant_id, printer_id, file_name, product_sku, status, progress,
			quantity, submitted_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		job.ID, job.TenantID, job.PrinterID, job.FileName, job.ProductSKU, string(job.Status),
		job.Progress, job.Quantity, job.SubmittedAt, job.StartedAt, job.CompletedAt)
	return err
}

func (s *PostgresStore) GetJob(tenantID, id string) (*models.PrintJob, error) {
	row := s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	return job, err
}

func (s *PostgresStore) ListJobs(tenantID string) ([]*models.PrintJob, error) {
	rows, err := s.db.Query(`SELECT `+jobColumns+` FROM jobs WHERE tenant_id = $1 ORDER BY submitted_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*models.PrintJob, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) UpdateJobStatus(tenantID, id string, status models.JobStatus) (*models.PrintJob, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND tenant_id = $2 FOR UPDATE`, id, tenantID)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := applyJobStatus(job, status, time.Now().UTC()); err != nil {
		return nil, err
	}

	_, err = tx.Exec(`UPDATE jobs SET status = $1, progress = $2, started_at = $3, completed_at = $4 WHERE id = $5`,
		string(job.Status), job.Progress, job.StartedAt, job.CompletedAt, job.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *PostgresStore) UpdateJobProgress(tenantID, id string, progress float64) error {
	job, err := s.GetJob(tenantID, id)
	if err != nil {
		return err
	}
	if models.IsTerminalJobStatus(job.Status) {
		return ErrTerminalStatus
	}
	_, err = s.db.Exec(`UPDATE jobs SET progress = $1 WHERE id = $2`, progress, id)
	return err
}

// Worklist

func (s *PostgresStore) CreateTask(task *models.WorklistTask) error {
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

	_, err := s.db.Exec(`
		INSERT INTO tasks (id, tenant_id, type, priority, status, title, notes, assembly_id,
			estimated_minutes, actual_minutes, created_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		task.ID, task.TenantID, string(task.Type), string(task.Priority), string(task.Status),
		task.Title, task.Notes, task.AssemblyID,
		task.EstimatedMinutes, task.ActualMinutes, task.CreatedAt, task.StartedAt, task.CompletedAt)
	return err
}

func (s *PostgresStore) GetTask(tenantID, id string) (*models.WorklistTask, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, ErrTaskNotFound
	}
	return task, err
}

func (s *PostgresStore) ListTasks(tenantID string) ([]*models.WorklistTask, error) {
	rows, err := s.db.Query(`SELECT `+taskColumns+` FROM tasks WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.WorklistTask, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) UpdateTask(task *models.WorklistTask) error {
	res, err := s.db.Exec(`
		UPDATE tasks SET type = $1, priority = $2, status = $3, title = $4, notes = $5, assembly_id = $6,
			estimated_minutes = $7, actual_minutes = $8, started_at = $9, completed_at = $10
		WHERE id = $11 AND tenant_id = $12`,
		string(task.Type), string(task.Priority), string(task.Status), task.Title, task.Notes,
		task.AssemblyID, task.EstimatedMinutes, task.ActualMinutes, task.StartedAt, task.CompletedAt,
		task.ID, task.TenantID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrTaskNotFound)
}

// Assemblies and component inventory

func (s *PostgresStore) CreateAssembly(a *models.Assembly) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Units <= 0 {
		a.Units = 1
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO assemblies (id, tenant_id, name, sku, units, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.TenantID, a.Name, a.SKU, a.Units, a.CreatedAt)
	if err != nil {
		return err
	}
	for _, c := range a.Components {
		_, err = tx.Exec(`INSERT INTO assembly_components (assembly_id, component_name, quantity_per_unit) VALUES ($1, $2, $3)`,
			a.ID, c.Name, c.QuantityPerUnit)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) GetAssembly(tenantID, id string) (*models.Assembly, error) {
	var a models.Assembly
	err := s.db.QueryRow(`SELECT id, tenant_id, name, sku, units, created_at FROM assemblies WHERE id = $1 AND tenant_id = $2`,
		id, tenantID).Scan(&a.ID, &a.TenantID, &a.Name, &a.SKU, &a.Units, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAssemblyNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT component_name, quantity_per_unit FROM assembly_components WHERE assembly_id = $1 ORDER BY component_name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.RequiredComponent
		if err := rows.Scan(&c.Name, &c.QuantityPerUnit); err != nil {
			return nil, err
		}
		a.Components = append(a.Components, c)
	}
	return &a, rows.Err()
}

func (s *PostgresStore) GetComponentStock(tenantID, component string) (int, error) {
	var qty int
	err := s.db.QueryRow(`SELECT quantity FROM component_stock WHERE tenant_id = $1 AND component_name = $2`,
		tenantID, component).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return qty, err
}

func (s *PostgresStore) SetComponentStock(tenantID, component string, quantity int) error {
	_, err := s.db.Exec(`
		INSERT INTO component_stock (tenant_id, component_name, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, component_name) DO UPDATE SET quantity = EXCLUDED.quantity`,
		tenantID, component, quantity)
	return err
}

func (s *PostgresStore) ConsumeAssemblyComponents(tenantID, assemblyID string) error {
	a, err := s.GetAssembly(tenantID, assemblyID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range a.Components {
		needed := c.QuantityPerUnit * a.Units
		// Shortfalls clamp to zero, never negative
		_, err = tx.Exec(`
			INSERT INTO component_stock (tenant_id, component_name, quantity) VALUES ($1, $2, 0)
			ON CONFLICT (tenant_id, component_name)
			DO UPDATE SET quantity = GREATEST(component_stock.quantity - $3, 0)`,
			tenantID, c.Name, needed)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Tenants

func (s *PostgresStore) CreateTenant(t *models.Tenant) error {
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

	_, err := s.db.Exec(`
		INSERT INTO tenants (id, name, status, plan, max_printers, max_active_jobs, max_tasks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Name, string(t.Status), t.Plan,
		t.Quotas.MaxPrinters, t.Quotas.MaxActiveJobs, t.Quotas.MaxTasks,
		t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *PostgresStore) GetTenant(id string) (*models.Tenant, error) {
	row := s.db.QueryRow(`SELECT id, name, status, plan, max_printers, max_active_jobs, max_tasks, created_at, updated_at FROM tenants WHERE id = $1`, id)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, ErrTenantNotFound
	}
	return t, err
}

func (s *PostgresStore) ListTenants() ([]*models.Tenant, error) {
	rows, err := s.db.Query(`SELECT id, name, status, plan, max_printers, max_active_jobs, max_tasks, created_at, updated_at FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := make([]*models.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// Lifecycle

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) HealthCheck() error { return s.db.Ping() }
