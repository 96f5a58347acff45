package domain

import (
	"time"
)

// Warehouse represents a physical warehouse unit in the fulfilment network.
// The business unit code is the stable business identity; every business rule
// keys off it, never off the surrogate ID.
type Warehouse struct {
	ID               string     `json:"id"`
	BusinessUnitCode string     `json:"business_unit_code"`
	Location         string     `json:"location"`
	Capacity         int        `json:"capacity"`
	Stock            int        `json:"stock"`
	CreatedAt        time.Time  `json:"created_at"`
	ArchivedAt       *time.Time `json:"archived_at,omitempty"`
}

// IsArchived reports whether the warehouse has been soft-deleted.
// An active warehouse is one with no archive timestamp set.
func (w Warehouse) IsArchived() bool {
	return w.ArchivedAt != nil
}
