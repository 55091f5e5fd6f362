package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/printforge/fleet/pkg/auth"
	"github.com/printforge/fleet/pkg/inventory"
	"github.com/printforge/fleet/pkg/logging"
	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/ratelimit"
	"github.com/printforge/fleet/pkg/reconcile"
	"github.com/printforge/fleet/pkg/store"
	"github.com/printforge/fleet/pkg/telemetry"
	"github.com/printforge/fleet/pkg/tenancy"
	"github.com/printforge/fleet/pkg/worklist"
)

// Server exposes the fleet API: printer directory, job ledger, worklist
// and the merged live views.
type Server struct {
	store    store.Store
	hub      *telemetry.Hub
	worklist *worklist.Engine
	checker  inventory.AvailabilityChecker
	logger   *logging.Logger

	// One reconciliation engine per tenant; monotonic progress state
	// must not leak between tenants.
	mu      sync.Mutex
	engines map[string]*reconcile.Engine
}

// Options configures optional server middleware
type Options struct {
	Keys        *auth.KeyManager
	AuthEnabled bool
	RateLimiter *ratelimit.Limiter
}

// NewServer creates an API server
func NewServer(s store.Store, hub *telemetry.Hub, logger *logging.Logger) *Server {
	checker := inventory.NewStoreChecker(s)
	return &Server{
		store:    s,
		hub:      hub,
		worklist: worklist.NewEngine(s, checker),
		checker:  checker,
		logger:   logger,
		engines:  make(map[string]*reconcile.Engine),
	}
}

// engineFor returns the tenant's reconciliation engine, creating it on
// first use
func (s *Server) engineFor(tenantID string) *reconcile.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	engine, ok := s.engines[tenantID]
	if !ok {
		engine = reconcile.NewEngine()
		s.engines[tenantID] = engine
	}
	return engine
}

// Router builds the HTTP routing table
func (s *Server) Router(opts Options) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Tenant administration sits outside the tenant-scoped API
	r.HandleFunc("/admin/tenants", s.handleCreateTenant).Methods("POST")
	r.HandleFunc("/admin/tenants", s.handleListTenants).Methods("GET")
	r.HandleFunc("/admin/tenants/{id}", s.handleGetTenant).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(tenancy.Middleware)
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.Middleware(func(r *http.Request) string {
			if tenantID, err := tenancy.GetTenantID(r.Context()); err == nil {
				return tenantID
			}
			return r.RemoteAddr
		}))
	}
	if opts.Keys != nil {
		api.Use(auth.Middleware(opts.Keys, opts.AuthEnabled))
	}
	api.Use(tenancy.RequireTenant)

	// Telemetry channel
	api.HandleFunc("/telemetry/ingest", s.hub.HandleIngest).Methods("POST")
	api.HandleFunc("/telemetry/subscribe", s.hub.HandleSubscribe).Methods("GET")

	// Printer directory and fleet view
	api.HandleFunc("/printers", s.handleListPrinters).Methods("GET")
	api.HandleFunc("/printers", s.handleCreatePrinter).Methods("POST")
	api.HandleFunc("/printers/reorder", s.handleReorderPrinters).Methods("POST")
	api.HandleFunc("/printers/{id}", s.handleUpdatePrinter).Methods("PATCH")
	api.HandleFunc("/printers/{id}/clear", s.handleClearPrinter).Methods("POST")

	// Job ledger and merged job view
	api.HandleFunc("/jobs", s.handleListJobs).Methods("GET")
	api.HandleFunc("/jobs", s.handleCreateJob).Methods("POST")
	api.HandleFunc("/jobs/{id}/status", s.handleUpdateJobStatus).Methods("POST")
	api.HandleFunc("/jobs/{id}/cancel", s.handleCancelJob).Methods("POST")
	api.HandleFunc("/jobs/{id}/complete", s.handleCompleteJob).Methods("POST")

	// Worklist
	api.HandleFunc("/tasks", s.handleListTasks).Methods("GET")
	api.HandleFunc("/tasks", s.handleCreateTask).Methods("POST")
	api.HandleFunc("/tasks/{id}/start", s.handleStartTask).Methods("POST")
	api.HandleFunc("/tasks/{id}/cancel", s.handleCancelTask).Methods("POST")
	api.HandleFunc("/tasks/{id}/complete", s.handleCompleteTask).Methods("POST")

	// Assemblies and component inventory
	api.HandleFunc("/assemblies", s.handleCreateAssembly).Methods("POST")
	api.HandleFunc("/assemblies/{id}/availability", s.handleAvailability).Methods("GET")
	api.HandleFunc("/inventory/{component}", s.handleGetStock).Methods("GET")
	api.HandleFunc("/inventory/{component}", s.handleSetStock).Methods("PUT")

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.HealthCheck(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unhealthy: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"subscribers": s.hub.SubscriberCount(),
	})
}

// errorResponse is the uniform error body
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeStoreError maps store errors to HTTP statuses. Terminal-status
// conflicts are 409 so clients can distinguish "already finished" from
// genuine failures.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrPrinterNotFound),
		errors.Is(err, store.ErrJobNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrAssemblyNotFound),
		errors.Is(err, store.ErrTenantNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrTerminalStatus),
		errors.Is(err, worklist.ErrTaskTerminal):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func tenantFrom(r *http.Request) string {
	tenantID, _ := tenancy.GetTenantID(r.Context())
	return tenantID
}
