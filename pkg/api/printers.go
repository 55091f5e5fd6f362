package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/reconcile"
)

// CreatePrinterRequest represents a printer registration request
type CreatePrinterRequest struct {
	Name          string `json:"name"`
	Model         string `json:"model,omitempty"`
	Manufacturer  string `json:"manufacturer,omitempty"`
	FilamentColor string `json:"filament_color,omitempty"`
	FilamentType  string `json:"filament_type,omitempty"`
	FilamentLevel int    `json:"filament_level,omitempty"`
}

// PrinterView is one printer row in the merged fleet view
type PrinterView struct {
	*models.Printer
	Connected     bool                      `json:"connected"`
	DisplayStatus models.PrinterStatus      `json:"display_status"`
	Live          *models.LivePrinterStatus `json:"live,omitempty"`
}

func toPrinterViews(merged []reconcile.MergedPrinter) []PrinterView {
	views := make([]PrinterView, len(merged))
	for i, m := range merged {
		views[i] = PrinterView{
			Printer:       m.Printer,
			Connected:     m.Connected,
			DisplayStatus: m.DisplayStatus,
			Live:          m.Live,
		}
	}
	return views
}

// handleListPrinters returns the merged fleet view: persisted records
// overlaid with the tenant's latest telemetry snapshot
func (s *Server) handleListPrinters(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFrom(r)

	printers, err := s.store.ListPrinters(tenantID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	snap := s.hub.Latest(tenantID)
	merged := s.engineFor(tenantID).MergePrinters(printers, snap)
	writeJSON(w, http.StatusOK, toPrinterViews(merged))
}

func (s *Server) handleCreatePrinter(w http.ResponseWriter, r *http.Request) {
	var req CreatePrinterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "printer name is required")
		return
	}

	tenantID := tenantFrom(r)

	// Quota enforcement is best-effort: tenants without a registered
	// record (local setups, tests) are unrestricted.
	if tenant, err := s.store.GetTenant(tenantID); err == nil && tenant.Quotas.MaxPrinters > 0 {
		existing, err := s.store.ListPrinters(tenantID)
		if err == nil && len(existing) >= tenant.Quotas.MaxPrinters {
			writeError(w, http.StatusForbidden,
				fmt.Sprintf("printer quota reached (%d)", tenant.Quotas.MaxPrinters))
			return
		}
	}

	printer := &models.Printer{
		TenantID:      tenantID,
		Name:          req.Name,
		Model:         req.Model,
		Manufacturer:  req.Manufacturer,
		Status:        models.PrinterStatusIdle,
		FilamentColor: req.FilamentColor,
		FilamentType:  req.FilamentType,
		FilamentLevel: req.FilamentLevel,
	}
	if err := s.store.CreatePrinter(printer); err != nil {
		writeStoreError(w, err)
		return
	}

	s.logger.Info("Printer registered", map[string]interface{}{
		"tenant_id":  printer.TenantID,
		"printer_id": printer.ID,
		"numeric_id": printer.NumericID,
	})
	writeJSON(w, http.StatusCreated, printer)
}

func (s *Server) handleUpdatePrinter(w http.ResponseWriter, r *http.Request) {
	var upd models.PrinterUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	printer, err := s.store.UpdatePrinter(tenantFrom(r), mux.Vars(r)["id"], upd)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, printer)
}

// ReorderRequest carries the full ordered list of printer record IDs
type ReorderRequest struct {
	PrinterIDs []string `json:"printer_ids"`
}

func (s *Server) handleReorderPrinters(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.PrinterIDs) == 0 {
		writeError(w, http.StatusBadRequest, "printer_ids is required")
		return
	}

	if err := s.store.ReorderPrinters(tenantFrom(r), req.PrinterIDs); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearRequest toggles the build-plate-cleared acknowledgement
type ClearRequest struct {
	Cleared bool `json:"cleared"`
}

func (s *Server) handleClearPrinter(w http.ResponseWriter, r *http.Request) {
	var req ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SetPrinterCleared(tenantFrom(r), mux.Vars(r)["id"], req.Cleared); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
