package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/worklist"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(tenantFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	task := &models.WorklistTask{
		TenantID:         tenantFrom(r),
		Type:             req.Type,
		Priority:         priority,
		Status:           models.TaskStatusPending,
		Title:            req.Title,
		Notes:            req.Notes,
		AssemblyID:       req.AssemblyID,
		EstimatedMinutes: req.EstimatedMinutes,
	}
	if err := s.store.CreateTask(task); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.worklist.Start(tenantFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.worklist.Cancel(tenantFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleCompleteTask completes a task. For inventory-gated assembly
// tasks the first call may come back 409 with the shortage list; the
// client retries with ?force=true after the operator confirms.
func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFrom(r)
	taskID := mux.Vars(r)["id"]
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	var result *worklist.CompletionResult
	var err error
	if force {
		result, err = s.worklist.CompleteForced(tenantID, taskID)
	} else {
		result, err = s.worklist.Complete(tenantID, taskID)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if result.Blocked {
		writeJSON(w, http.StatusConflict, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
