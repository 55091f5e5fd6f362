package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/printforge/fleet/pkg/models"
)

// CreateAssemblyRequest registers an assembly and its bill of materials
type CreateAssemblyRequest struct {
	Name       string                     `json:"name"`
	SKU        string                     `json:"sku,omitempty"`
	Units      int                        `json:"units,omitempty"`
	Components []models.RequiredComponent `json:"components"`
}

func (s *Server) handleCreateAssembly(w http.ResponseWriter, r *http.Request) {
	var req CreateAssemblyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "assembly name is required")
		return
	}

	assembly := &models.Assembly{
		TenantID:   tenantFrom(r),
		Name:       req.Name,
		SKU:        req.SKU,
		Units:      req.Units,
		Components: req.Components,
	}
	if err := s.store.CreateAssembly(assembly); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, assembly)
}

// handleAvailability runs the inventory check for an assembly without
// completing anything; the dashboard uses it to warn before the
// operator reaches for the complete button.
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	report, err := s.checker.Check(tenantFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// StockResponse is the stock level of one component
type StockResponse struct {
	Component string `json:"component_name"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	component := mux.Vars(r)["component"]
	quantity, err := s.store.GetComponentStock(tenantFrom(r), component)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StockResponse{Component: component, Quantity: quantity})
}

// SetStockRequest sets the absolute stock level of a component
type SetStockRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleSetStock(w http.ResponseWriter, r *http.Request) {
	var req SetStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	component := mux.Vars(r)["component"]
	if err := s.store.SetComponentStock(tenantFrom(r), component, req.Quantity); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StockResponse{Component: component, Quantity: req.Quantity})
}
