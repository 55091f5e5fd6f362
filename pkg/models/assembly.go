package models

import (
	"time"
)

// Assembly represents a finished good built from stocked components.
// Units is the number of finished items one assembly task produces.
type Assembly struct {
	ID         string              `json:"id"`
	TenantID   string              `json:"tenant_id"`
	Name       string              `json:"name"`
	SKU        string              `json:"sku,omitempty"`
	Units      int                 `json:"units"`
	Components []RequiredComponent `json:"components"`
	CreatedAt  time.Time           `json:"created_at"`
}

// RequiredComponent is one line of an assembly's bill of materials
type RequiredComponent struct {
	Name            string `json:"component_name"`
	QuantityPerUnit int    `json:"quantity_per_unit"`
}

// ComponentShortage is a required-component deficit blocking
// unconditional completion of an assembly task. Needed is the total
// requirement (per-unit quantity times units being assembled).
type ComponentShortage struct {
	Component string `json:"component_name"`
	Needed    int    `json:"needed"`
	Available int    `json:"available"`
}

// ShortageReport is the result of an inventory availability check for
// one assembly. Shortages holds every deficient component, not just the
// first found.
type ShortageReport struct {
	HasShortage bool                `json:"has_shortage"`
	Shortages   []ComponentShortage `json:"shortages"`
}
