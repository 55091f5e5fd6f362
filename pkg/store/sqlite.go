package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/printforge/fleet/pkg/models"
)

// SQLiteStore is a SQLite-based implementation of the data store
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL for concurrent readers, busy timeout for the single writer,
	// immediate txlock to reduce SQLITE_BUSY on write transactions.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000&_synchronous=NORMAL&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialize writes to avoid lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		plan TEXT NOT NULL DEFAULT 'free',
		max_printers INTEGER NOT NULL DEFAULT 0,
		max_active_jobs INTEGER NOT NULL DEFAULT 0,
		max_tasks INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS printers (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		numeric_id INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		model TEXT,
		manufacturer TEXT,
		status TEXT NOT NULL,
		connected BOOLEAN NOT NULL DEFAULT 0,
		cleared BOOLEAN NOT NULL DEFAULT 0,
		in_maintenance BOOLEAN NOT NULL DEFAULT 0,
		filament_color TEXT,
		filament_type TEXT,
		filament_level INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_printers_tenant ON printers(tenant_id);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		printer_id TEXT,
		file_name TEXT NOT NULL,
		product_sku TEXT,
		status TEXT NOT NULL,
		progress REAL NOT NULL DEFAULT 0,
		quantity INTEGER NOT NULL DEFAULT 1,
		submitted_at DATETIME NOT NULL,
		started_at DATETIME,
		completed_at DATETIME
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
		created_at DATETIME NOT NULL,
		started_at DATETIME,
		completed_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_tenant ON tasks(tenant_id);

	CREATE TABLE IF NOT EXISTS assemblies (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		sku TEXT,
		units INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
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

func (s *SQLiteStore) CreatePrinter(p *models.Printer) error {
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

	// Numeric IDs come from a monotonic high-water mark so they are
	// never reused after deletion.
	var maxNum sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(numeric_id) FROM printers`).Scan(&maxNum); err != nil {
		return err
	}
	p.NumericID = models.PrinterID(maxNum.Int64) + 1

	var maxPos sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(position) FROM printers WHERE tenant_id = ?`, p.TenantID).Scan(&maxPos); err != nil {
		return err
	}
	if maxPos.Valid {
		p.Position = int(maxPos.Int64) + 1
	} else {
		p.Position = 0
	}

	_, err = tx.Exec(`
		INSERT INTO printers (id, tenant_id, numeric_id, name, model, manufacturer, status,
			connected, cleared, in_maintenance, filament_color, filament_type, filament_level,
			position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TenantID, int(p.NumericID), p.Name, p.Model, p.Manufacturer, string(p.Status),
		p.Connected, p.Cleared, p.InMaintenance, p.FilamentColor, p.FilamentType, p.FilamentLevel,
		p.Position, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

const printerColumns = `id, tenant_id, numeric_id, name, model, manufacturer, status,
	connected, cleared, in_maintenance, filament_color, filament_type, filament_level,
	position, created_at, updated_at`

func scanPrinter(row interface{ Scan(...interface{}) error }) (*models.Printer, error) {
	var p models.Printer
	var numericID int
	var status string
	err := row.Scan(&p.ID, &p.TenantID, &numericID, &p.Name, &p.Model, &p.Manufacturer, &status,
		&p.Connected, &p.Cleared, &p.InMaintenance, &p.FilamentColor, &p.FilamentType, &p.FilamentLevel,
		&p.Position, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.NumericID = models.PrinterID(numericID)
	p.Status = models.PrinterStatus(status)
	return &p, nil
}

func (s *SQLiteStore) GetPrinter(tenantID, id string) (*models.Printer, error) {
	row := s.db.QueryRow(`SELECT `+printerColumns+` FROM printers WHERE id = ? AND tenant_id = ?`, id, tenantID)
	p, err := scanPrinter(row)
	if err == sql.ErrNoRows {
		return nil, ErrPrinterNotFound
	}
	return p, err
}

func (s *SQLiteStore) ListPrinters(tenantID string) ([]*models.Printer, error) {
	rows, err := s.db.Query(`SELECT `+printerColumns+` FROM printers WHERE tenant_id = ? ORDER BY position`, tenantID)
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

func (s *SQLiteStore) UpdatePrinter(tenantID, id string, upd models.PrinterUpdate) (*models.Printer, error) {
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
		UPDATE printers SET name = ?, model = ?, manufacturer = ?, in_maintenance = ?,
			filament_color = ?, filament_type = ?, filament_level = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?`,
		p.Name, p.Model, p.Manufacturer, p.InMaintenance,
		p.FilamentColor, p.FilamentType, p.FilamentLevel, p.UpdatedAt,
		id, tenantID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLiteStore) UpdatePrinterConnectivity(tenantID, id string, connected bool, status models.PrinterStatus) error {
	res, err := s.db.Exec(`
		UPDATE printers SET connected = ?, status = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?`,
		connected, string(status), time.Now().UTC(), id, tenantID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrPrinterNotFound)
}

func (s *SQLiteStore) ReorderPrinters(tenantID string, orderedIDs []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for pos, id := range orderedIDs {
		res, err := tx.Exec(`UPDATE printers SET position = ?, updated_at = ? WHERE id = ? AND tenant_id = ?`,
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

func (s *SQLiteStore) SetPrinterCleared(tenantID, id string, cleared bool) error {
	res, err := s.db.Exec(`UPDATE printers SET cleared = ?, updated_at = ? WHERE id = ? AND tenant_id = ?`,
		cleared, time.Now().UTC(), id, tenantID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrPrinterNotFound)
}

// Job ledger

func (s *SQLiteStore) CreateJob(job *models.PrintJob) error {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.TenantID, job.PrinterID, job.FileName, job.ProductSKU, string(job.Status),
		job.Progress, job.Quantity, job.SubmittedAt, job.StartedAt, job.CompletedAt)
	return err
}

const jobColumns = `id, tenant_id, printer_id, file_name, product_sku, status, progress,
	quantity, submitted_at, started_at, completed_at`

func scanJob(row interface{ Scan(...interface{}) error }) (*models.PrintJob, error) {
	var job models.PrintJob
	var status string
	err := row.Scan(&job.ID, &job.TenantID, &job.PrinterID, &job.FileName, &job.ProductSKU, &status,
		&job.Progress, &job.Quantity, &job.SubmittedAt, &job.StartedAt, &job.CompletedAt)
	if err != nil {
		return nil, err
	}
	job.Status = models.JobStatus(status)
	return &job, nil
}

func (s *SQLiteStore) GetJob(tenantID, id string) (*models.PrintJob, error) {
	row := s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ? AND tenant_id = ?`, id, tenantID)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	return job, err
}

func (s *SQLiteStore) ListJobs(tenantID string) ([]*models.PrintJob, error) {
	rows, err := s.db.Query(`SELECT `+jobColumns+` FROM jobs WHERE tenant_id = ? ORDER BY submitted_at DESC`, tenantID)
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

func (s *SQLiteStore) UpdateJobStatus(tenantID, id string, status models.JobStatus) (*models.PrintJob, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ? AND tenant_id = ?`, id, tenantID)
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

	_, err = tx.Exec(`UPDATE jobs SET status = ?, progress = ?, started_at = ?, completed_at = ? WHERE id = ?`,
		string(job.Status), job.Progress, job.StartedAt, job.CompletedAt, job.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *SQLiteStore) UpdateJobProgress(tenantID, id string, progress float64) error {
	job, err := s.GetJob(tenantID, id)
	if err != nil {
		return err
	}
	if models.IsTerminalJobStatus(job.Status) {
		return ErrTerminalStatus
	}
	_, err = s.db.Exec(`UPDATE jobs SET progress = ? WHERE id = ?`, progress, id)
	return err
}

// Worklist

func (s *SQLiteStore) CreateTask(task *models.WorklistTask) error {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.TenantID, string(task.Type), string(task.Priority), string(task.Status),
		task.Title, task.Notes, task.AssemblyID,
		task.EstimatedMinutes, task.ActualMinutes, task.CreatedAt, task.StartedAt, task.CompletedAt)
	return err
}

const taskColumns = `id, tenant_id, type, priority, status, title, notes, assembly_id,
	estimated_minutes, actual_minutes, created_at, started_at, completed_at`

func scanTask(row interface{ Scan(...interface{}) error }) (*models.WorklistTask, error) {
	var task models.WorklistTask
	var typ, priority, status string
	err := row.Scan(&task.ID, &task.TenantID, &typ, &priority, &status, &task.Title, &task.Notes,
		&task.AssemblyID, &task.EstimatedMinutes, &task.ActualMinutes,
		&task.CreatedAt, &task.StartedAt, &task.CompletedAt)
	if err != nil {
		return nil, err
	}
	task.Type = models.TaskType(typ)
	task.Priority = models.TaskPriority(priority)
	task.Status = models.TaskStatus(status)
	return &task, nil
}

func (s *SQLiteStore) GetTask(tenantID, id string) (*models.WorklistTask, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND tenant_id = ?`, id, tenantID)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, ErrTaskNotFound
	}
	return task, err
}

func (s *SQLiteStore) ListTasks(tenantID string) ([]*models.WorklistTask, error) {
	rows, err := s.db.Query(`SELECT `+taskColumns+` FROM tasks WHERE tenant_id = ? ORDER BY created_at DESC`, tenantID)
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

func (s *SQLiteStore) UpdateTask(task *models.WorklistTask) error {
	res, err := s.db.Exec(`
		UPDATE tasks SET type = ?, priority = ?, status = ?, title = ?, notes = ?, assembly_id = ?,
			estimated_minutes = ?, actual_minutes = ?, started_at = ?, completed_at = ?
		WHERE id = ? AND tenant_id = ?`,
		string(task.Type), string(task.Priority), string(task.Status), task.Title, task.Notes,
		task.AssemblyID, task.EstimatedMinutes, task.ActualMinutes, task.StartedAt, task.CompletedAt,
		task.ID, task.TenantID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrTaskNotFound)
}

// Assemblies and component inventory

func (s *SQLiteStore) CreateAssembly(a *models.Assembly) error {
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

	_, err = tx.Exec(`INSERT INTO assemblies (id, tenant_id, name, sku, units, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.TenantID, a.Name, a.SKU, a.Units, a.CreatedAt)
	if err != nil {
		return err
	}
	for _, c := range a.Components {
		_, err = tx.Exec(`INSERT INTO assembly_components (assembly_id, component_name, quantity_per_unit) VALUES (?, ?, ?)`,
			a.ID, c.Name, c.QuantityPerUnit)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetAssembly(tenantID, id string) (*models.Assembly, error) {
	var a models.Assembly
	err := s.db.QueryRow(`SELECT id, tenant_id, name, sku, units, created_at FROM assemblies WHERE id = ? AND tenant_id = ?`,
		id, tenantID).Scan(&a.ID, &a.TenantID, &a.Name, &a.SKU, &a.Units, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAssemblyNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT component_name, quantity_per_unit FROM assembly_components WHERE assembly_id = ? ORDER BY component_name`, id)
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

func (s *SQLiteStore) GetComponentStock(tenantID, component string) (int, error) {
	var qty int
	err := s.db.QueryRow(`SELECT quantity FROM component_stock WHERE tenant_id = ? AND component_name = ?`,
		tenantID, component).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return qty, err
}

func (s *SQLiteStore) SetComponentStock(tenantID, component string, quantity int) error {
	_, err := s.db.Exec(`
		INSERT INTO component_stock (tenant_id, component_name, quantity) VALUES (?, ?, ?)
		ON CONFLICT(tenant_id, component_name) DO UPDATE SET quantity = excluded.quantity`,
		tenantID, component, quantity)
	return err
}

func (s *SQLiteStore) ConsumeAssemblyComponents(tenantID, assemblyID string) error {
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
			INSERT INTO component_stock (tenant_id, component_name, quantity) VALUES (?, ?, 0)
			ON CONFLICT(tenant_id, component_name) DO UPDATE SET quantity = MAX(quantity - ?, 0)`,
			tenantID, c.Name, needed)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Tenants

func (s *SQLiteStore) CreateTenant(t *models.Tenant) error {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, string(t.Status), t.Plan,
		t.Quotas.MaxPrinters, t.Quotas.MaxActiveJobs, t.Quotas.MaxTasks,
		t.CreatedAt, t.UpdatedAt)
	return err
}

func scanTenant(row interface{ Scan(...interface{}) error }) (*models.Tenant, error) {
	var t models.Tenant
	var status string
	err := row.Scan(&t.ID, &t.Name, &status, &t.Plan,
		&t.Quotas.MaxPrinters, &t.Quotas.MaxActiveJobs, &t.Quotas.MaxTasks,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = models.TenantStatus(status)
	return &t, nil
}

func (s *SQLiteStore) GetTenant(id string) (*models.Tenant, error) {
	row := s.db.QueryRow(`SELECT id, name, status, plan, max_printers, max_active_jobs, max_tasks, created_at, updated_at FROM tenants WHERE id = ?`, id)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, ErrTenantNotFound
	}
	return t, err
}

func (s *SQLiteStore) ListTenants() ([]*models.Tenant, error) {
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

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) HealthCheck() error { return s.db.Ping() }

// requireRow converts a zero-row update into a not-found error
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
