package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printforge/fleet/pkg/logging"
	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/store"
	"github.com/printforge/fleet/pkg/telemetry"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store, *telemetry.Hub) {
	t.Helper()
	logger := logging.NewLogger(logging.ERROR, false)
	s := store.NewMemoryStore()
	hub := telemetry.NewHub(logger)
	srv := NewServer(s, hub, logger)

	ts := httptest.NewServer(srv.Router(Options{}))
	t.Cleanup(ts.Close)
	return ts, s, hub
}

func TestCreateAndListPrinters(t *testing.T) {
	ts, _, _ := newTestServer(t)
	client := NewClient(ts.URL, "t1", "")

	printer, err := client.CreatePrinter(&CreatePrinterRequest{Name: "Ender 3", Model: "Ender 3", FilamentType: "PLA"})
	require.NoError(t, err)
	assert.NotEmpty(t, printer.ID)
	assert.Equal(t, models.PrinterID(1), printer.NumericID)

	views, err := client.ListPrinters()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Ender 3", views[0].Name)
	assert.Equal(t, models.PrinterStatusIdle, views[0].DisplayStatus)
	assert.Nil(t, views[0].Live)
}

func TestTenantIsolation(t *testing.T) {
	ts, _, _ := newTestServer(t)
	alpha := NewClient(ts.URL, "alpha", "")
	beta := NewClient(ts.URL, "beta", "")

	_, err := alpha.CreatePrinter(&CreatePrinterRequest{Name: "Alpha printer"})
	require.NoError(t, err)

	views, err := beta.ListPrinters()
	require.NoError(t, err)
	assert.Empty(t, views, "tenant beta must not see alpha's printers")
}

func TestPrinterQuotaEnforced(t *testing.T) {
	ts, s, _ := newTestServer(t)
	require.NoError(t, s.CreateTenant(&models.Tenant{
		ID:     "alpha",
		Name:   "Alpha Makers",
		Status: models.TenantStatusActive,
		Plan:   "free",
		Quotas: models.DefaultQuotas("free"), // 2 printers
	}))

	client := NewClient(ts.URL, "alpha", "")
	_, err := client.CreatePrinter(&CreatePrinterRequest{Name: "One"})
	require.NoError(t, err)
	_, err = client.CreatePrinter(&CreatePrinterRequest{Name: "Two"})
	require.NoError(t, err)

	_, err = client.CreatePrinter(&CreatePrinterRequest{Name: "Three"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestMergedPrinterViewWithTelemetry(t *testing.T) {
	ts, _, hub := newTestServer(t)
	client := NewClient(ts.URL, "t1", "")

	printer, err := client.CreatePrinter(&CreatePrinterRequest{Name: "Prusa"})
	require.NoError(t, err)

	progress := 44.0
	hub.Publish(context.Background(), "t1", models.Snapshot{
		printer.NumericID: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "lid.gcode", Progress: &progress},
	})

	views, err := client.ListPrinters()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Connected)
	assert.Equal(t, models.PrinterStatusPrinting, views[0].DisplayStatus)
	require.NotNil(t, views[0].Live)
	assert.Equal(t, 44.0, *views[0].Live.Progress)
}

func TestCancelJobThenStaleTelemetry(t *testing.T) {
	ts, _, hub := newTestServer(t)
	client := NewClient(ts.URL, "t1", "")

	printer, err := client.CreatePrinter(&CreatePrinterRequest{Name: "Prusa"})
	require.NoError(t, err)

	job, err := client.CreateJob(&models.JobRequest{PrinterID: &printer.ID, FileName: "part.gcode"})
	require.NoError(t, err)

	cancelled, err := client.CancelJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)

	// Second cancel is a conflict
	_, err = client.CancelJob(job.ID)
	require.Error(t, err)

	// A stale snapshot still showing the print must not revive the job
	progress := 50.0
	hub.Publish(context.Background(), "t1", models.Snapshot{
		printer.NumericID: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "part.gcode", Progress: &progress},
	})

	jobs, err := client.ListJobs()
	require.NoError(t, err)
	var found map[string]interface{}
	for _, j := range jobs {
		if j["id"] == job.ID {
			found = j
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, string(models.JobStatusCancelled), found["status"])
}

func TestTaskShortageFlowOverHTTP(t *testing.T) {
	ts, s, _ := newTestServer(t)
	client := NewClient(ts.URL, "t1", "")

	require.NoError(t, s.CreateAssembly(&models.Assembly{
		ID:       "asm-1",
		TenantID: "t1",
		Name:     "Gearbox",
		Units:    1,
		Components: []models.RequiredComponent{
			{Name: "Widget", QuantityPerUnit: 5},
		},
	}))
	require.NoError(t, client.SetStock("Widget", 3))

	asmID := "asm-1"
	task, err := client.CreateTask(&models.TaskRequest{
		Type:       models.TaskTypeAssembly,
		Title:      "Assemble gearbox",
		AssemblyID: &asmID,
	})
	require.NoError(t, err)

	_, err = client.StartTask(task.ID)
	require.NoError(t, err)

	// Phase one: blocked with the full shortage list
	result, err := client.CompleteTask(task.ID, false)
	require.ErrorIs(t, err, ErrShortage)
	require.NotNil(t, result)
	require.Len(t, result.Shortages, 1)
	assert.Equal(t, models.ComponentShortage{Component: "Widget", Needed: 5, Available: 3}, result.Shortages[0])

	// Phase two: forced completion succeeds and clamps stock to zero
	result, err = client.CompleteTask(task.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, result.Task.Status)

	stock, err := s.GetComponentStock("t1", "Widget")
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestAvailabilityEndpoint(t *testing.T) {
	ts, s, _ := newTestServer(t)
	client := NewClient(ts.URL, "t1", "")

	require.NoError(t, s.CreateAssembly(&models.Assembly{
		ID:       "asm-1",
		TenantID: "t1",
		Name:     "Gearbox",
		Units:    2,
		Components: []models.RequiredComponent{
			{Name: "Screw", QuantityPerUnit: 4},
		},
	}))
	require.NoError(t, client.SetStock("Screw", 8))

	report, err := client.CheckAvailability("asm-1")
	require.NoError(t, err)
	assert.False(t, report.HasShortage)

	require.NoError(t, client.SetStock("Screw", 7))
	report, err = client.CheckAvailability("asm-1")
	require.NoError(t, err)
	assert.True(t, report.HasShortage)
}

func TestExternalJobInMergedView(t *testing.T) {
	ts, _, hub := newTestServer(t)
	client := NewClient(ts.URL, "t1", "")

	printer, err := client.CreatePrinter(&CreatePrinterRequest{Name: "Voron"})
	require.NoError(t, err)

	progress := 33.0
	hub.Publish(context.Background(), "t1", models.Snapshot{
		printer.NumericID: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "f.gcode", Progress: &progress},
	})

	jobs, err := client.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, true, jobs[0]["is_external_job"])
	assert.Equal(t, "f.gcode", jobs[0]["file_name"])
}
