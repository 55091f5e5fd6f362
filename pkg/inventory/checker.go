package inventory

import (
	"fmt"

	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/store"
)

// AvailabilityChecker answers whether the components an assembly needs
// are in stock, and consumes them when an assembly completes.
type AvailabilityChecker interface {
	Check(tenantID, assemblyID string) (*models.ShortageReport, error)
	Consume(tenantID, assemblyID string) error
}

// StoreChecker checks availability against the persistent component
// inventory.
type StoreChecker struct {
	store store.Store
}

// NewStoreChecker creates a checker backed by the given store
func NewStoreChecker(s store.Store) *StoreChecker {
	return &StoreChecker{store: s}
}

// Check computes the total requirement for every component on the
// assembly's bill of materials and reports all deficits, not just the
// first one found. An operator restocking from a partial report would
// hit the next shortage immediately.
func (c *StoreChecker) Check(tenantID, assemblyID string) (*models.ShortageReport, error) {
	assembly, err := c.store.GetAssembly(tenantID, assemblyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assembly %s: %w", assemblyID, err)
	}

	units := assembly.Units
	if units <= 0 {
		units = 1
	}

	report := &models.ShortageReport{}
	for _, comp := range assembly.Components {
		needed := comp.QuantityPerUnit * units
		available, err := c.store.GetComponentStock(tenantID, comp.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read stock for %s: %w", comp.Name, err)
		}
		if available < needed {
			report.HasShortage = true
			report.Shortages = append(report.Shortages, models.ComponentShortage{
				Component: comp.Name,
				Needed:    needed,
				Available: available,
			})
		}
	}
	return report, nil
}

// Consume deducts the assembly's component requirements from stock.
// Deduction clamps at zero; forced completions may consume more than
// is recorded and the ledger must not go negative.
func (c *StoreChecker) Consume(tenantID, assemblyID string) error {
	return c.store.ConsumeAssemblyComponents(tenantID, assemblyID)
}
