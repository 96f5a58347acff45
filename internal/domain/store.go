package domain

import "time"

// Store is a retail location served by the fulfilment network.
// QuantityProductsInStock mirrors the figure tracked by the legacy
// store manager; it is display data, not a constrained value.
type Store struct {
	ID                      string    `json:"id"`
	Name                    string    `json:"name"`
	QuantityProductsInStock int       `json:"quantity_products_in_stock"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}
