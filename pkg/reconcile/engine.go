// Package reconcile merges authoritative persisted state (printer
// directory, job ledger) with ephemeral telemetry snapshots into views
// suitable for direct rendering. The merge is display-layer only: it
// never writes to the store. Inferred transitions (a printing job whose
// printer went idle is shown completed) are best-effort optimism; the
// backend sync service remains the source of truth for persisted
// status.
package reconcile

import (
	"fmt"

	"github.com/printforge/fleet/pkg/models"
)

// MergedPrinter is one printer's row in the fleet view
type MergedPrinter struct {
	Printer   *models.Printer
	Connected bool
	// DisplayStatus is the printer's current activity. A persisted
	// status of "offline" is a connectivity artifact, not a job
	// state, so it renders as idle when no live data is available.
	DisplayStatus models.PrinterStatus
	// Live is nil when the snapshot carried no entry for this
	// printer. Nil means "no data": progress and temperatures render
	// as placeholders, never fabricated zeros.
	Live *models.LivePrinterStatus
}

// MergedJob is one job's row in the job view. For external jobs the
// embedded PrintJob is synthetic and must not be used for persisted
// mutations.
type MergedJob struct {
	models.PrintJob
	// IsExternalJob marks a job fabricated from telemetry alone:
	// the printer reports printing a file no persisted job owns.
	IsExternalJob bool `json:"is_external_job"`
	// LiveMatched is true when a telemetry entry was attributed to
	// this job in the current pass.
	LiveMatched bool `json:"live_matched"`
}

// Engine performs the per-cycle merge for one tenant session. The only
// state retained across passes is the last displayed progress per job,
// which enforces the monotonic-progress rule against out-of-order or
// partial snapshots. An Engine must not be shared across tenants.
type Engine struct {
	lastProgress map[string]float64
}

// NewEngine creates a reconciliation engine for one tenant session
func NewEngine() *Engine {
	return &Engine{lastProgress: make(map[string]float64)}
}

// MergePrinters produces the per-printer fleet view from the persisted
// printer list and the current snapshot. A nil snapshot degrades to
// pure persisted-state rendering.
func (e *Engine) MergePrinters(printers []*models.Printer, snap models.Snapshot) []MergedPrinter {
	merged := make([]MergedPrinter, 0, len(printers))
	for _, p := range printers {
		live := snap[p.NumericID]

		m := MergedPrinter{Printer: p, Live: live}
		if live != nil {
			m.Connected = true
			m.DisplayStatus = live.Status
		} else {
			// The persisted flag is a stale assumption, the
			// fallback of last resort.
			m.Connected = p.Connected
			if p.Status == models.PrinterStatusOffline {
				m.DisplayStatus = models.PrinterStatusIdle
			} else {
				m.DisplayStatus = p.Status
			}
		}
		merged = append(merged, m)
	}
	return merged
}

// MergeJobs produces the per-job view from the persisted job list, the
// printer directory (to resolve telemetry correlation keys) and the
// current snapshot. Synthetic entries for jobs detected live but absent
// from the ledger are prepended.
func (e *Engine) MergeJobs(jobs []*models.PrintJob, printers []*models.Printer, snap models.Snapshot) []MergedJob {
	numericByRecordID := make(map[string]models.PrinterID, len(printers))
	for _, p := range printers {
		numericByRecordID[p.ID] = p.NumericID
	}

	merged := make([]MergedJob, 0, len(jobs))
	for _, job := range jobs {
		m := MergedJob{PrintJob: *job}

		// Terminal jobs pass through unmodified. This also
		// shields against stale in-flight snapshots that still
		// show a just-cancelled job printing.
		if models.IsTerminalJobStatus(job.Status) {
			delete(e.lastProgress, job.ID)
			merged = append(merged, m)
			continue
		}

		var pid models.PrinterID
		var hasPrinter bool
		if job.PrinterID != nil {
			pid, hasPrinter = numericByRecordID[*job.PrinterID]
		}

		// A printing job matches its live entry by printer alone:
		// whatever is on that plate is definitionally this job.
		// Any other active status additionally requires the
		// filename to match, so telemetry is not mis-attributed
		// after the printer's queue advanced.
		var live *models.LivePrinterStatus
		if hasPrinter {
			if entry := snap[pid]; entry != nil {
				if job.Status == models.JobStatusPrinting || entry.CurrentJob == job.FileName {
					live = entry
				}
			}
		}

		switch {
		case live != nil && live.Status == models.PrinterStatusPaused:
			// Soft, reversible transition.
			m.Status = models.JobStatusPaused
			m.LiveMatched = true

		case live != nil && live.Status == models.PrinterStatusIdle && job.Status == models.JobStatusPrinting:
			// The stream never announces "job finished"; the
			// printer dropping from printing to idle is the
			// only signal there is.
			e.markCompleted(&m)
			m.LiveMatched = true

		case live == nil && job.Status == models.JobStatusPrinting && hasPrinter:
			// Filename no longer matches because the printer
			// already advanced to another queued item. The
			// printer-level lookup catches the completion.
			if entry := snap[pid]; entry != nil && entry.Status == models.PrinterStatusIdle && entry.CurrentJob == "" {
				e.markCompleted(&m)
			}

		case live != nil:
			m.LiveMatched = true
			if job.Status == models.JobStatusPrinting && live.Progress != nil {
				m.Progress = e.monotonicProgress(job.ID, job.Progress, *live.Progress)
			}
		}

		merged = append(merged, m)
	}

	external := e.synthesizeExternalJobs(jobs, printers, snap)
	if len(external) > 0 {
		merged = append(external, merged...)
	}
	return merged
}

// markCompleted applies the completion inference: status completed,
// progress forced to 100. Display-layer only.
func (e *Engine) markCompleted(m *MergedJob) {
	m.Status = models.JobStatusCompleted
	m.Progress = 100
	delete(e.lastProgress, m.ID)
}

// monotonicProgress returns the displayed progress for a printing job,
// never less than any previously displayed value. Out-of-order and
// partial snapshots must not make the bar move backwards.
func (e *Engine) monotonicProgress(jobID string, persisted, live float64) float64 {
	progress := live
	if persisted > progress {
		progress = persisted
	}
	if last, ok := e.lastProgress[jobID]; ok && last > progress {
		progress = last
	}
	e.lastProgress[jobID] = progress
	return progress
}

// synthesizeExternalJobs fabricates job entries for printers actively
// printing a file that no persisted job accounts for, i.e. printers
// driven by a tool outside this system.
func (e *Engine) synthesizeExternalJobs(jobs []*models.PrintJob, printers []*models.Printer, snap models.Snapshot) []MergedJob {
	var external []MergedJob
	for _, p := range printers {
		live := snap[p.NumericID]
		if live == nil || live.Status != models.PrinterStatusPrinting || live.CurrentJob == "" {
			continue
		}

		known := false
		for _, job := range jobs {
			if job.PrinterID != nil && *job.PrinterID == p.ID && job.FileName == live.CurrentJob {
				known = true
				break
			}
		}
		if known {
			continue
		}

		var progress float64
		if live.Progress != nil {
			progress = *live.Progress
		}
		printerID := p.ID
		external = append(external, MergedJob{
			PrintJob: models.PrintJob{
				ID:        fmt.Sprintf("external-%s", p.NumericID),
				TenantID:  p.TenantID,
				PrinterID: &printerID,
				FileName:  live.CurrentJob,
				Status:    models.JobStatusPrinting,
				Progress:  progress,
				Quantity:  1,
			},
			IsExternalJob: true,
			LiveMatched:   true,
		})
	}
	return external
}

// Forget drops retained progress for a job, e.g. after deletion
func (e *Engine) Forget(jobID string) {
	delete(e.lastProgress, jobID)
}
