package reconcile

import (
	"testing"

	"github.com/printforge/fleet/pkg/models"
)

func testPrinter(id string, numeric models.PrinterID) *models.Printer {
	return &models.Printer{
		ID:        id,
		TenantID:  "t1",
		NumericID: numeric,
		Name:      "Printer " + id,
		Status:    models.PrinterStatusIdle,
		Connected: true,
	}
}

func testJob(id, printerID, file string, status models.JobStatus, progress float64) *models.PrintJob {
	return &models.PrintJob{
		ID:        id,
		TenantID:  "t1",
		PrinterID: &printerID,
		FileName:  file,
		Status:    status,
		Progress:  progress,
		Quantity:  1,
	}
}

func f64(v float64) *float64 { return &v }

func TestMergeJobsTerminalInvariant(t *testing.T) {
	printers := []*models.Printer{testPrinter("p1", 1)}

	for _, status := range []models.JobStatus{
		models.JobStatusCompleted, models.JobStatusFailed, models.JobStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			engine := NewEngine()
			jobs := []*models.PrintJob{testJob("j1", "p1", "part.gcode", status, 40)}

			// A stale snapshot still showing the job printing must not revive it
			snap := models.Snapshot{
				1: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "part.gcode", Progress: f64(80)},
			}

			merged := engine.MergeJobs(jobs, printers, snap)
			var found *MergedJob
			for i := range merged {
				if merged[i].ID == "j1" {
					found = &merged[i]
				}
			}
			if found == nil {
				t.Fatal("job j1 missing from merged view")
			}
			if found.Status != status {
				t.Errorf("terminal job status changed to %s", found.Status)
			}
			if found.Progress != 40 {
				t.Errorf("terminal job progress changed to %v", found.Progress)
			}
		})
	}
}

func TestMergeJobsCompletionInference(t *testing.T) {
	engine := NewEngine()
	printers := []*models.Printer{testPrinter("p1", 1)}
	jobs := []*models.PrintJob{testJob("j1", "p1", "part.gcode", models.JobStatusPrinting, 73)}

	// Printer went back to idle with no current job: the stream's only
	// way of saying the print finished.
	snap := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusIdle},
	}

	merged := engine.MergeJobs(jobs, printers, snap)
	if merged[0].Status != models.JobStatusCompleted {
		t.Errorf("status = %s, want completed", merged[0].Status)
	}
	if merged[0].Progress != 100 {
		t.Errorf("progress = %v, want 100", merged[0].Progress)
	}
}

func TestMergeJobsPausedInference(t *testing.T) {
	engine := NewEngine()
	printers := []*models.Printer{testPrinter("p1", 1)}
	jobs := []*models.PrintJob{testJob("j1", "p1", "part.gcode", models.JobStatusPrinting, 50)}

	snap := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusPaused, CurrentJob: "part.gcode", Progress: f64(50)},
	}

	merged := engine.MergeJobs(jobs, printers, snap)
	if merged[0].Status != models.JobStatusPaused {
		t.Errorf("status = %s, want paused", merged[0].Status)
	}
}

func TestMergeJobsMonotonicProgress(t *testing.T) {
	engine := NewEngine()
	printers := []*models.Printer{testPrinter("p1", 1)}
	jobs := []*models.PrintJob{testJob("j1", "p1", "part.gcode", models.JobStatusPrinting, 0)}

	first := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "part.gcode", Progress: f64(62)},
	}
	merged := engine.MergeJobs(jobs, printers, first)
	if merged[0].Progress != 62 {
		t.Fatalf("progress after first snapshot = %v, want 62", merged[0].Progress)
	}

	// An out-of-order snapshot reporting lower progress must not move
	// the bar backwards.
	second := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "part.gcode", Progress: f64(58)},
	}
	merged = engine.MergeJobs(jobs, printers, second)
	if merged[0].Progress != 62 {
		t.Errorf("progress after regressed snapshot = %v, want 62", merged[0].Progress)
	}

	third := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "part.gcode", Progress: f64(71)},
	}
	merged = engine.MergeJobs(jobs, printers, third)
	if merged[0].Progress != 71 {
		t.Errorf("progress after advancing snapshot = %v, want 71", merged[0].Progress)
	}
}

func TestMergeJobsPrinterAdvancedToNextItem(t *testing.T) {
	engine := NewEngine()
	printers := []*models.Printer{testPrinter("p1", 1)}
	// Job still persisted as printing, but the printer reports idle
	// with no current job; filename matching alone would miss this.
	jobs := []*models.PrintJob{testJob("j1", "p1", "done.gcode", models.JobStatusPrinting, 90)}

	snap := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusIdle, CurrentJob: ""},
	}

	merged := engine.MergeJobs(jobs, printers, snap)
	if merged[0].Status != models.JobStatusCompleted {
		t.Errorf("status = %s, want completed", merged[0].Status)
	}
	if merged[0].Progress != 100 {
		t.Errorf("progress = %v, want 100", merged[0].Progress)
	}
}

func TestMergeJobsFilenameMatchForNonPrintingJobs(t *testing.T) {
	engine := NewEngine()
	printers := []*models.Printer{testPrinter("p1", 1)}
	// An uploaded job whose filename does not match the live current
	// job must not receive that printer's telemetry.
	jobs := []*models.PrintJob{testJob("j1", "p1", "queued.gcode", models.JobStatusUploaded, 0)}

	snap := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusPaused, CurrentJob: "other.gcode"},
	}

	merged := engine.MergeJobs(jobs, printers, snap)
	if merged[0].Status != models.JobStatusUploaded {
		t.Errorf("status = %s, want uploaded (telemetry belongs to a different job)", merged[0].Status)
	}
	if merged[0].LiveMatched {
		t.Error("job matched live entry despite filename mismatch")
	}
}

func TestMergeJobsExternalJobSynthesis(t *testing.T) {
	engine := NewEngine()
	printers := []*models.Printer{testPrinter("p1", 1)}
	jobs := []*models.PrintJob{testJob("j1", "p1", "mine.gcode", models.JobStatusQueued, 0)}

	snap := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "f.gcode", Progress: f64(33)},
	}

	merged := engine.MergeJobs(jobs, printers, snap)
	if len(merged) != 2 {
		t.Fatalf("merged view has %d entries, want 2", len(merged))
	}

	ext := merged[0] // synthesized entries are prepended
	if !ext.IsExternalJob {
		t.Error("first entry is not flagged as external")
	}
	if ext.FileName != "f.gcode" {
		t.Errorf("external job file = %q, want f.gcode", ext.FileName)
	}
	if ext.Status != models.JobStatusPrinting {
		t.Errorf("external job status = %s, want printing", ext.Status)
	}
	if ext.Progress != 33 {
		t.Errorf("external job progress = %v, want 33", ext.Progress)
	}

	count := 0
	for _, m := range merged {
		if m.IsExternalJob {
			count++
		}
	}
	if count != 1 {
		t.Errorf("external entries = %d, want exactly 1", count)
	}
}

func TestMergeJobsNoExternalJobWhenFileIsKnown(t *testing.T) {
	engine := NewEngine()
	printers := []*models.Printer{testPrinter("p1", 1)}
	jobs := []*models.PrintJob{testJob("j1", "p1", "f.gcode", models.JobStatusPrinting, 10)}

	snap := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "f.gcode", Progress: f64(20)},
	}

	merged := engine.MergeJobs(jobs, printers, snap)
	for _, m := range merged {
		if m.IsExternalJob {
			t.Error("external job synthesized for a file the ledger already owns")
		}
	}
}

func TestMergeJobsIdempotent(t *testing.T) {
	engine := NewEngine()
	printers := []*models.Printer{testPrinter("p1", 1)}
	jobs := []*models.PrintJob{testJob("j1", "p1", "part.gcode", models.JobStatusPrinting, 10)}
	snap := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "part.gcode", Progress: f64(45)},
	}

	first := engine.MergeJobs(jobs, printers, snap)
	second := engine.MergeJobs(jobs, printers, snap)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Status != second[i].Status || first[i].Progress != second[i].Progress {
			t.Errorf("entry %d differs between identical passes: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestMergeJobsNilSnapshotDegrades(t *testing.T) {
	engine := NewEngine()
	printers := []*models.Printer{testPrinter("p1", 1)}
	jobs := []*models.PrintJob{testJob("j1", "p1", "part.gcode", models.JobStatusPrinting, 55)}

	merged := engine.MergeJobs(jobs, printers, nil)
	if len(merged) != 1 {
		t.Fatalf("merged view has %d entries, want 1", len(merged))
	}
	if merged[0].Status != models.JobStatusPrinting || merged[0].Progress != 55 {
		t.Errorf("persisted state not preserved: %+v", merged[0])
	}
}

func TestMergePrintersOfflineFallback(t *testing.T) {
	engine := NewEngine()

	offline := testPrinter("p1", 1)
	offline.Status = models.PrinterStatusOffline
	offline.Connected = false

	paused := testPrinter("p2", 2)
	paused.Status = models.PrinterStatusPaused
	paused.Connected = true

	merged := engine.MergePrinters([]*models.Printer{offline, paused}, models.Snapshot{})

	// Persisted "offline" is a connectivity artifact, shown as idle
	if merged[0].Connected {
		t.Error("printer p1 shown connected without live data or persisted flag")
	}
	if merged[0].DisplayStatus != models.PrinterStatusIdle {
		t.Errorf("p1 display status = %s, want idle", merged[0].DisplayStatus)
	}

	// Any other persisted status passes through unchanged
	if !merged[1].Connected {
		t.Error("printer p2 persisted connected flag not honored")
	}
	if merged[1].DisplayStatus != models.PrinterStatusPaused {
		t.Errorf("p2 display status = %s, want paused", merged[1].DisplayStatus)
	}
}

func TestMergePrintersLiveOverridesPersisted(t *testing.T) {
	engine := NewEngine()
	p := testPrinter("p1", 1)
	p.Status = models.PrinterStatusOffline
	p.Connected = false

	snap := models.Snapshot{
		1: {Connected: true, Status: models.PrinterStatusPrinting, CurrentJob: "part.gcode", Progress: f64(12)},
	}

	merged := engine.MergePrinters([]*models.Printer{p}, snap)
	if !merged[0].Connected {
		t.Error("printer with live entry not shown connected")
	}
	if merged[0].DisplayStatus != models.PrinterStatusPrinting {
		t.Errorf("display status = %s, want printing", merged[0].DisplayStatus)
	}
	if merged[0].Live == nil {
		t.Fatal("live data missing from merged printer")
	}
	if merged[0].Live.Progress == nil || *merged[0].Live.Progress != 12 {
		t.Error("live progress not carried into merged view")
	}
}

func TestMergePrintersNoDataPlaceholders(t *testing.T) {
	engine := NewEngine()
	p := testPrinter("p1", 1)

	merged := engine.MergePrinters([]*models.Printer{p}, nil)
	if merged[0].Live != nil {
		t.Error("absent telemetry produced non-nil live data")
	}
}
