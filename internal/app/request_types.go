package app

import "lpg-console/internal/core"

// CreateWarehouseRequest registers a new storage location.
type CreateWarehouseRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Capacity *int    `json:"capacity,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// CreateProductRequest adds a cylinder product to the catalog.
type CreateProductRequest struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// AdjustStockRequest applies a signed delta to one balance dimension.
type AdjustStockRequest struct {
	WarehouseID int            `json:"warehouse_id"`
	ProductID   int            `json:"product_id"`
	Dimension   core.Dimension `json:"dimension"`
	Delta       int64          `json:"delta"`
	Reason      string         `json:"reason"`
}

// TransferStockRequest moves full cylinders between warehouses.
type TransferStockRequest struct {
	FromWarehouseID int    `json:"from_warehouse_id"`
	ToWarehouseID   int    `json:"to_warehouse_id"`
	ProductID       int    `json:"product_id"`
	Quantity        int64  `json:"quantity"`
	Notes           string `json:"notes"`
}
