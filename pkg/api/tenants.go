package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/printforge/fleet/pkg/models"
)

// CreateTenantRequest represents a tenant registration request
type CreateTenantRequest struct {
	Name string `json:"name"`
	Plan string `json:"plan,omitempty"` // free, basic, pro
}

func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "tenant name is required")
		return
	}

	plan := req.Plan
	if plan == "" {
		plan = "free"
	}
	tenant := &models.Tenant{
		Name:   req.Name,
		Status: models.TenantStatusActive,
		Plan:   plan,
		Quotas: models.DefaultQuotas(plan),
	}
	if err := s.store.CreateTenant(tenant); err != nil {
		writeStoreError(w, err)
		return
	}

	s.logger.Info("Tenant created", map[string]interface{}{
		"tenant_id": tenant.ID,
		"name":      tenant.Name,
		"plan":      tenant.Plan,
	})
	writeJSON(w, http.StatusCreated, tenant)
}

func (s *Server) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := s.store.GetTenant(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.store.ListTenants()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}
