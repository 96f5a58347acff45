package domain

import (
	"time"
)

// Product is a catalog item that warehouses fulfill for stores.
// It carries no business constraints of its own; the fulfilment rules
// only need its identity.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductFilter defines search and pagination parameters for listing.
type ProductFilter struct {
	Page  int
	Limit int
	Name  string
}

// Context is an interface that wraps Go's context.Context.
// It propagates timeouts and cancellation signals through the layers
// without the Service contracts depending on the "context" package directly.
type Context interface{}
