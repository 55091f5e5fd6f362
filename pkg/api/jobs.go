package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/printforge/fleet/pkg/models"
)

// handleListJobs returns the merged job view. Persisted jobs are
// overlaid with live telemetry; entries for prints started outside the
// system are synthesized and prepended.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFrom(r)

	jobs, err := s.store.ListJobs(tenantID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	printers, err := s.store.ListPrinters(tenantID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	snap := s.hub.Latest(tenantID)
	merged := s.engineFor(tenantID).MergeJobs(jobs, printers, snap)
	writeJSON(w, http.StatusOK, merged)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req models.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FileName == "" {
		writeError(w, http.StatusBadRequest, "file_name is required")
		return
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	job := &models.PrintJob{
		TenantID:   tenantFrom(r),
		PrinterID:  req.PrinterID,
		FileName:   req.FileName,
		ProductSKU: req.ProductSKU,
		Status:     models.JobStatusQueued,
		Quantity:   quantity,
	}
	if err := s.store.CreateJob(job); err != nil {
		writeStoreError(w, err)
		return
	}

	s.logger.Info("Job created", map[string]interface{}{
		"tenant_id": job.TenantID,
		"job_id":    job.ID,
		"file_name": job.FileName,
	})
	writeJSON(w, http.StatusCreated, job)
}

// JobStatusRequest requests a status transition on a job
type JobStatusRequest struct {
	Status models.JobStatus `json:"status"`
}

func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	var req JobStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := s.store.UpdateJobStatus(tenantFrom(r), mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCompleteJob persists a completion, e.g. when the operator
// confirms a print the reconciliation layer already shows as done
func (s *Server) handleCompleteJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.UpdateJobStatus(tenantFrom(r), mux.Vars(r)["id"], models.JobStatusCompleted)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.engineFor(tenantFrom(r)).Forget(job.ID)
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob moves a job to cancelled. Cancelling an already
// terminal job is a conflict, not a silent success; the reconciliation
// layer guarantees stale telemetry can never resurrect it afterwards.
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.UpdateJobStatus(tenantFrom(r), mux.Vars(r)["id"], models.JobStatusCancelled)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.engineFor(tenantFrom(r)).Forget(job.ID)
	writeJSON(w, http.StatusOK, job)
}
