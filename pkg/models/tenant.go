package models

import (
	"time"
)

// TenantStatus represents the operational status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusDeleted   TenantStatus = "deleted"
)

// Tenant represents one organization operating a printer fleet
type Tenant struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Status    TenantStatus `json:"status"`
	Plan      string       `json:"plan"` // free, basic, pro
	Quotas    TenantQuotas `json:"quotas"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TenantQuotas defines resource limits for a tenant
type TenantQuotas struct {
	MaxPrinters   int `json:"max_printers"`
	MaxActiveJobs int `json:"max_active_jobs"`
	MaxTasks      int `json:"max_tasks"`
}

// DefaultQuotas returns quotas for a plan
func DefaultQuotas(plan string) TenantQuotas {
	switch plan {
	case "basic":
		return TenantQuotas{MaxPrinters: 10, MaxActiveJobs: 50, MaxTasks: 200}
	case "pro":
		return TenantQuotas{MaxPrinters: 100, MaxActiveJobs: 500, MaxTasks: 2000}
	default: // free
		return TenantQuotas{MaxPrinters: 2, MaxActiveJobs: 10, MaxTasks: 50}
	}
}
