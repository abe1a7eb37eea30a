package app

import (
	"context"
	"time"

	"lpg-console/internal/core"
)

// ApplicationService is the single interface the HTTP adapter (and any
// future CLI) calls. It decouples presentation from business logic;
// implementations contain no rendering concerns.
type ApplicationService interface {
	// Login verifies credentials and returns the user for session issuance.
	Login(ctx context.Context, username, password string) (*core.User, error)

	// ListWarehouses returns all active warehouses with their dashboard
	// summaries (aggregated cylinder counts and utilization).
	ListWarehouses(ctx context.Context) (*WarehouseListResult, error)

	// CreateWarehouse registers a new warehouse.
	CreateWarehouse(ctx context.Context, auth core.AuthContext, req CreateWarehouseRequest) (*core.Warehouse, error)

	// ListProducts returns the product catalog.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// CreateProduct adds a product in active status.
	CreateProduct(ctx context.Context, auth core.AuthContext, req CreateProductRequest) (*core.Product, error)

	// SetProductStatus moves a product along its lifecycle.
	SetProductStatus(ctx context.Context, auth core.AuthContext, productID int, status core.ProductStatus) (*core.Product, error)

	// ProductBalances returns every warehouse balance for one product,
	// classified, plus the aggregate across warehouses.
	ProductBalances(ctx context.Context, productID int) (*ProductBalancesResult, error)

	// WarehouseBalances returns every product balance in one warehouse,
	// classified.
	WarehouseBalances(ctx context.Context, warehouseID int) (*WarehouseBalancesResult, error)

	// AdjustStock applies a signed delta to one balance dimension.
	AdjustStock(ctx context.Context, auth core.AuthContext, req AdjustStockRequest) (*BalanceResult, error)

	// TransferStock moves full cylinders between two warehouses.
	TransferStock(ctx context.Context, auth core.AuthContext, req TransferStockRequest) (*core.TransferResult, error)

	// UsageReport derives delivered-volume analytics for a product.
	// Advisory: always returns a report, zeroed on read failure.
	UsageReport(ctx context.Context, productID int, asOf time.Time) *core.UsageReport
}
