package models

import (
	"strconv"
	"time"
)

// PrinterID is the small numeric identifier assigned to a printer at
// creation. It is the correlation key between persisted printer records
// and live telemetry snapshots. IDs are assigned by the backend and
// never reused.
type PrinterID int

// String renders the ID the way telemetry frames key it on the wire.
func (id PrinterID) String() string {
	return strconv.Itoa(int(id))
}

// ParsePrinterID converts a wire-format key to a PrinterID. This is the
// single place stringly-typed telemetry keys become typed identifiers.
func ParsePrinterID(s string) (PrinterID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return PrinterID(n), nil
}

// PrinterStatus represents the coarse activity state of a printer
type PrinterStatus string

const (
	PrinterStatusIdle        PrinterStatus = "idle"
	PrinterStatusPrinting    PrinterStatus = "printing"
	PrinterStatusPaused      PrinterStatus = "paused"
	PrinterStatusMaintenance PrinterStatus = "maintenance"
	PrinterStatusFailed      PrinterStatus = "failed"
	PrinterStatusCancelled   PrinterStatus = "cancelled"
	PrinterStatusOffline     PrinterStatus = "offline"
)

// Printer represents a persisted printer record owned by one tenant
type Printer struct {
	ID            string        `json:"id"`
	TenantID      string        `json:"tenant_id"`
	NumericID     PrinterID     `json:"printer_numeric_id"`
	Name          string        `json:"name"`
	Model         string        `json:"model,omitempty"`         // e.g., "Ender 3", "i3 MK3S+"
	Manufacturer  string        `json:"manufacturer,omitempty"`  // e.g., "Creality", "Prusa"
	Status        PrinterStatus `json:"status"`
	Connected     bool          `json:"connected"` // last-known persisted flag, not live truth
	Cleared       bool          `json:"cleared"`   // operator acknowledged the build plate is ready
	InMaintenance bool          `json:"in_maintenance"`
	FilamentColor string        `json:"filament_color,omitempty"`
	FilamentType  string        `json:"filament_type,omitempty"` // PLA, PETG, ABS, TPU
	FilamentLevel int           `json:"filament_level"`          // percent remaining
	Position      int           `json:"position"` // sort position in the fleet view
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PrinterUpdate carries the mutable settings fields of a printer.
// Nil fields are left unchanged.
type PrinterUpdate struct {
	Name          *string `json:"name,omitempty"`
	Model         *string `json:"model,omitempty"`
	Manufacturer  *string `json:"manufacturer,omitempty"`
	InMaintenance *bool   `json:"in_maintenance,omitempty"`
	FilamentColor *string `json:"filament_color,omitempty"`
	FilamentType  *string `json:"filament_type,omitempty"`
	FilamentLevel *int    `json:"filament_level,omitempty"`
}
