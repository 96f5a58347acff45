package domain

import "time"

// Fulfillment states that a given warehouse fulfills a given product for a
// given store. The identity is the (product, warehouse code, store) triple;
// there is no surrogate key. Records are created and deleted, never updated.
type Fulfillment struct {
	ProductID             string    `json:"product_id"`
	WarehouseBusinessUnit string    `json:"warehouse_business_unit"`
	StoreID               string    `json:"store_id"`
	CreatedAt             time.Time `json:"created_at"`
}

// FulfillmentRequest is the payload for creating or deleting an association.
type FulfillmentRequest struct {
	ProductID             string `json:"product_id"`
	WarehouseBusinessUnit string `json:"warehouse_business_unit"`
	StoreID               string `json:"store_id"`
}

// FulfillmentStats summarizes how close an entity is to its association limit.
type FulfillmentStats struct {
	EntityType        string `json:"entity_type"`
	EntityID          string `json:"entity_id"`
	CurrentCount      int    `json:"current_count"`
	MaxAllowed        int    `json:"max_allowed"`
	TotalFulfillments int    `json:"total_fulfillments"`
	HasCapacity       bool   `json:"has_capacity"`
}
