package app

import "lpg-console/internal/core"

// WarehouseListResult is returned by ListWarehouses.
type WarehouseListResult struct {
	Warehouses []core.WarehouseSummary `json:"warehouses"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// BalanceRow is one classified balance prepared for tabular display.
type BalanceRow struct {
	core.InventoryBalance
	Available     int64            `json:"available"`
	Status        core.StockStatus `json:"status"`
	WarehouseName string           `json:"warehouse_name,omitempty"`
}

// ProductBalancesResult is returned by ProductBalances: per-warehouse rows
// plus the aggregate across all warehouses.
type ProductBalancesResult struct {
	ProductID      int              `json:"product_id"`
	Rows           []BalanceRow     `json:"rows"`
	TotalFull      int64            `json:"total_full"`
	TotalEmpty     int64            `json:"total_empty"`
	TotalReserved  int64            `json:"total_reserved"`
	TotalAvailable int64            `json:"total_available"`
	OverallStatus  core.StockStatus `json:"overall_status"`
}

// WarehouseBalancesResult is returned by WarehouseBalances.
type WarehouseBalancesResult struct {
	WarehouseID int          `json:"warehouse_id"`
	Rows        []BalanceRow `json:"rows"`
}

// BalanceResult is returned by AdjustStock.
type BalanceResult struct {
	Balance   core.InventoryBalance `json:"balance"`
	Available int64                 `json:"available"`
	Status    core.StockStatus      `json:"status"`
}
