package store

import (
	"errors"
	"testing"

	"github.com/printforge/fleet/pkg/models"
)

func TestCreatePrinterAssignsNumericIDs(t *testing.T) {
	st := NewMemoryStore()

	p1 := &models.Printer{TenantID: "t1", Name: "Ender A"}
	p2 := &models.Printer{TenantID: "t1", Name: "Ender B"}
	p3 := &models.Printer{TenantID: "t2", Name: "Prusa"}

	for _, p := range []*models.Printer{p1, p2, p3} {
		if err := st.CreatePrinter(p); err != nil {
			t.Fatalf("CreatePrinter: %v", err)
		}
	}

	if p1.NumericID != 1 || p2.NumericID != 2 || p3.NumericID != 3 {
		t.Errorf("numeric IDs = %d, %d, %d; want 1, 2, 3", p1.NumericID, p2.NumericID, p3.NumericID)
	}
	// Positions are per tenant
	if p1.Position != 0 || p2.Position != 1 || p3.Position != 0 {
		t.Errorf("positions = %d, %d, %d; want 0, 1, 0", p1.Position, p2.Position, p3.Position)
	}
}

func TestPrintersAreTenantScoped(t *testing.T) {
	st := NewMemoryStore()
	p := &models.Printer{TenantID: "t1", Name: "Ender"}
	if err := st.CreatePrinter(p); err != nil {
		t.Fatalf("CreatePrinter: %v", err)
	}

	if _, err := st.GetPrinter("t2", p.ID); !errors.Is(err, ErrPrinterNotFound) {
		t.Errorf("GetPrinter from wrong tenant: err = %v, want ErrPrinterNotFound", err)
	}

	list, err := st.ListPrinters("t2")
	if err != nil {
		t.Fatalf("ListPrinters: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("ListPrinters(t2) returned %d printers, want 0", len(list))
	}
}

func TestReorderPrinters(t *testing.T) {
	st := NewMemoryStore()
	a := &models.Printer{TenantID: "t1", Name: "A"}
	b := &models.Printer{TenantID: "t1", Name: "B"}
	c := &models.Printer{TenantID: "t1", Name: "C"}
	for _, p := range []*models.Printer{a, b, c} {
		if err := st.CreatePrinter(p); err != nil {
			t.Fatalf("CreatePrinter: %v", err)
		}
	}

	if err := st.ReorderPrinters("t1", []string{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("ReorderPrinters: %v", err)
	}

	list, err := st.ListPrinters("t1")
	if err != nil {
		t.Fatalf("ListPrinters: %v", err)
	}
	got := []string{list[0].Name, list[1].Name, list[2].Name}
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order after reorder = %v, want %v", got, want)
		}
	}
}

func TestUpdateJobStatusRejectsTerminal(t *testing.T) {
	st := NewMemoryStore()
	job := &models.PrintJob{TenantID: "t1", FileName: "part.gcode", Status: models.JobStatusPrinting}
	if err := st.CreateJob(job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if _, err := st.UpdateJobStatus("t1", job.ID, models.JobStatusCompleted); err != nil {
		t.Fatalf("UpdateJobStatus to completed: %v", err)
	}

	got, err := st.GetJob("t1", job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Progress != 100 {
		t.Errorf("completed job progress = %v, want 100", got.Progress)
	}
	if got.CompletedAt == nil {
		t.Error("completed job has nil CompletedAt")
	}

	// Mutating a terminal job must be rejected, not silently absorbed
	if _, err := st.UpdateJobStatus("t1", job.ID, models.JobStatusCancelled); !errors.Is(err, ErrTerminalStatus) {
		t.Errorf("UpdateJobStatus on terminal job: err = %v, want ErrTerminalStatus", err)
	}
	if err := st.UpdateJobProgress("t1", job.ID, 50); !errors.Is(err, ErrTerminalStatus) {
		t.Errorf("UpdateJobProgress on terminal job: err = %v, want ErrTerminalStatus", err)
	}
}

func TestUpdateJobStatusStampsStartedAt(t *testing.T) {
	st := NewMemoryStore()
	job := &models.PrintJob{TenantID: "t1", FileName: "part.gcode", Status: models.JobStatusUploaded}
	if err := st.CreateJob(job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	updated, err := st.UpdateJobStatus("t1", job.ID, models.JobStatusPrinting)
	if err != nil {
		t.Fatalf("UpdateJobStatus: %v", err)
	}
	if updated.StartedAt == nil {
		t.Error("printing job has nil StartedAt")
	}
}

func TestConsumeAssemblyComponentsClampsToZero(t *testing.T) {
	st := NewMemoryStore()
	asm := &models.Assembly{
		TenantID: "t1",
		Name:     "Widget Kit",
		Units:    1,
		Components: []models.RequiredComponent{
			{Name: "Widget", QuantityPerUnit: 5},
			{Name: "Screw", QuantityPerUnit: 2},
		},
	}
	if err := st.CreateAssembly(asm); err != nil {
		t.Fatalf("CreateAssembly: %v", err)
	}
	if err := st.SetComponentStock("t1", "Widget", 3); err != nil {
		t.Fatalf("SetComponentStock: %v", err)
	}
	if err := st.SetComponentStock("t1", "Screw", 10); err != nil {
		t.Fatalf("SetComponentStock: %v", err)
	}

	if err := st.ConsumeAssemblyComponents("t1", asm.ID); err != nil {
		t.Fatalf("ConsumeAssemblyComponents: %v", err)
	}

	// Shortfall component drained to zero, not negative
	if qty, _ := st.GetComponentStock("t1", "Widget"); qty != 0 {
		t.Errorf("Widget stock = %d, want 0", qty)
	}
	// Sufficient component decremented normally
	if qty, _ := st.GetComponentStock("t1", "Screw"); qty != 8 {
		t.Errorf("Screw stock = %d, want 8", qty)
	}
}

func TestTaskRoundTrip(t *testing.T) {
	st := NewMemoryStore()
	task := &models.WorklistTask{TenantID: "t1", Type: models.TaskTypeCollection, Title: "Collect prints"}
	if err := st.CreateTask(task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Status != models.TaskStatusPending {
		t.Errorf("new task status = %s, want pending", task.Status)
	}
	if task.Priority != models.TaskPriorityMedium {
		t.Errorf("new task priority = %s, want medium", task.Priority)
	}

	got, err := st.GetTask("t1", task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "Collect prints" {
		t.Errorf("task title = %q", got.Title)
	}

	if _, err := st.GetTask("t2", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetTask from wrong tenant: err = %v, want ErrTaskNotFound", err)
	}
}
