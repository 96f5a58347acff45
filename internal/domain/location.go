package domain

// Location is a physical site with a fixed quota on warehouse count and
// aggregate capacity. Locations are pre-seeded and immutable; they are
// resolved by identifier from a static directory.
type Location struct {
	Identification        string `json:"identification"`
	MaxNumberOfWarehouses int    `json:"max_number_of_warehouses"`
	MaxCapacity           int    `json:"max_capacity"`
}
