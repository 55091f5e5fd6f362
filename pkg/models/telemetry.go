package models

// LivePrinterStatus is one printer's slice of a telemetry snapshot. It
// exists only for the lifetime of the snapshot that carried it. Pointer
// fields distinguish "no reading" from a real zero; absence must render
// as an explicit no-data placeholder, never a fabricated value.
type LivePrinterStatus struct {
	Connected        bool          `json:"connected"`
	Status           PrinterStatus `json:"status"`
	CurrentJob       string        `json:"current_job,omitempty"` // filename of the job on the plate
	Progress         *float64      `json:"progress,omitempty"`    // 0-100
	CurrentLayer     *int          `json:"current_layer,omitempty"`
	TotalLayers      *int          `json:"total_layers,omitempty"`
	RemainingSeconds *int          `json:"remaining_seconds,omitempty"`
	NozzleTemp       *float64      `json:"nozzle_temp,omitempty"`
	BedTemp          *float64      `json:"bed_temp,omitempty"`
}

// Snapshot is one push of fleet-wide live status, keyed by the typed
// printer ID. A missing entry means "no live signal" for that printer,
// which is not the same thing as the printer reporting offline.
//
// Snapshots are immutable once decoded: each reconciliation pass
// receives a fully-formed value and never mutates it.
type Snapshot map[PrinterID]*LivePrinterStatus
