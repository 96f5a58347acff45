package locationdir

import (
	"fmt"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
)

// Directory is the fixed, read-only mapping from a location identifier to its
// quota pair (max warehouse count, max aggregate capacity). Locations are
// business-managed and change with releases, not at runtime, so they live in
// code instead of a table. Safe for concurrent use.
type Directory struct {
	locations map[string]domain.Location
}

// NewDirectory builds the directory with the pre-seeded location table.
func NewDirectory() *Directory {
	table := []domain.Location{
		{Identification: "ZWOLLE-001", MaxNumberOfWarehouses: 1, MaxCapacity: 40},
		{Identification: "ZWOLLE-002", MaxNumberOfWarehouses: 2, MaxCapacity: 50},
		{Identification: "AMSTERDAM-001", MaxNumberOfWarehouses: 5, MaxCapacity: 100},
		{Identification: "AMSTERDAM-002", MaxNumberOfWarehouses: 3, MaxCapacity: 75},
		{Identification: "TILBURG-001", MaxNumberOfWarehouses: 1, MaxCapacity: 40},
		{Identification: "HELMOND-001", MaxNumberOfWarehouses: 1, MaxCapacity: 45},
		{Identification: "EINDHOVEN-001", MaxNumberOfWarehouses: 2, MaxCapacity: 70},
		{Identification: "VETSBY-001", MaxNumberOfWarehouses: 1, MaxCapacity: 90},
	}

	locations := make(map[string]domain.Location, len(table))
	for _, loc := range table {
		locations[loc.Identification] = loc
	}

	return &Directory{locations: locations}
}

// Resolve looks up a location by identifier. Pure lookup, no side effects.
// Fails with a not-found error when the identifier is empty or unknown.
func (d *Directory) Resolve(identifier string) (domain.Location, error) {
	location, ok := d.locations[identifier]
	if !ok {
		return domain.Location{}, apperror.NewNotFoundError(
			fmt.Sprintf("Location with identifier %s not found.", identifier))
	}
	return location, nil
}
