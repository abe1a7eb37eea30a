package app

import (
	"context"
	"time"

	"lpg-console/internal/core"
)

type appService struct {
	users       *core.UserService
	warehouses  *core.WarehouseService
	products    *core.ProductService
	store       core.BalanceStore
	adjustments *core.AdjustmentService
	transfers   *core.TransferService
	analytics   *core.UsageAnalytics
}

// NewAppService constructs the ApplicationService from the core services.
// Catalog services may be nil in compositions that only exercise the
// balance core (tests over the in-memory store).
func NewAppService(
	users *core.UserService,
	warehouses *core.WarehouseService,
	products *core.ProductService,
	store core.BalanceStore,
	adjustments *core.AdjustmentService,
	transfers *core.TransferService,
	analytics *core.UsageAnalytics,
) ApplicationService {
	return &appService{
		users:       users,
		warehouses:  warehouses,
		products:    products,
		store:       store,
		adjustments: adjustments,
		transfers:   transfers,
		analytics:   analytics,
	}
}

func (s *appService) Login(ctx context.Context, username, password string) (*core.User, error) {
	return s.users.Authenticate(ctx, username, password)
}

func (s *appService) ListWarehouses(ctx context.Context) (*WarehouseListResult, error) {
	summaries, err := s.warehouses.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	return &WarehouseListResult{Warehouses: summaries}, nil
}

func (s *appService) CreateWarehouse(ctx context.Context, auth core.AuthContext, req CreateWarehouseRequest) (*core.Warehouse, error) {
	return s.warehouses.Create(ctx, auth, req.Code, req.Name, req.Capacity, req.Address)
}

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) CreateProduct(ctx context.Context, auth core.AuthContext, req CreateProductRequest) (*core.Product, error) {
	return s.products.Create(ctx, auth, req.SKU, req.Name)
}

func (s *appService) SetProductStatus(ctx context.Context, auth core.AuthContext, productID int, status core.ProductStatus) (*core.Product, error) {
	return s.products.SetStatus(ctx, auth, productID, status)
}

func (s *appService) ProductBalances(ctx context.Context, productID int) (*ProductBalancesResult, error) {
	balances, err := s.store.ForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	names := s.warehouseNames(ctx)
	result := &ProductBalancesResult{ProductID: productID}
	for _, b := range balances {
		result.Rows = append(result.Rows, balanceRow(b, names[b.WarehouseID]))
		result.TotalFull += b.Full
		result.TotalEmpty += b.Empty
		result.TotalReserved += b.Reserved
	}
	result.TotalAvailable = result.TotalFull - result.TotalReserved
	result.OverallStatus = core.Classify(core.Quantities{
		Full:     result.TotalFull,
		Reserved: result.TotalReserved,
	})
	return result, nil
}

func (s *appService) WarehouseBalances(ctx context.Context, warehouseID int) (*WarehouseBalancesResult, error) {
	balances, err := s.store.ForWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	result := &WarehouseBalancesResult{WarehouseID: warehouseID}
	for _, b := range balances {
		result.Rows = append(result.Rows, balanceRow(b, ""))
	}
	return result, nil
}

func (s *appService) AdjustStock(ctx context.Context, auth core.AuthContext, req AdjustStockRequest) (*BalanceResult, error) {
	bal, err := s.adjustments.AdjustStock(ctx, auth, req.WarehouseID, req.ProductID, req.Dimension, req.Delta, req.Reason)
	if err != nil {
		return nil, err
	}
	return &BalanceResult{
		Balance:   *bal,
		Available: bal.Available(),
		Status:    core.Classify(bal.Quantities),
	}, nil
}

func (s *appService) TransferStock(ctx context.Context, auth core.AuthContext, req TransferStockRequest) (*core.TransferResult, error) {
	return s.transfers.Transfer(ctx, auth, req.FromWarehouseID, req.ToWarehouseID, req.ProductID, req.Quantity, req.Notes)
}

func (s *appService) UsageReport(ctx context.Context, productID int, asOf time.Time) *core.UsageReport {
	return s.analytics.Analyze(ctx, productID, asOf)
}

// warehouseNames resolves warehouse display names for table rows.
// Advisory: on failure the rows simply render without names.
func (s *appService) warehouseNames(ctx context.Context) map[int]string {
	names := make(map[int]string)
	if s.warehouses == nil {
		return names
	}
	list, err := s.warehouses.List(ctx)
	if err != nil {
		return names
	}
	for _, w := range list {
		names[w.ID] = w.Name
	}
	return names
}

func balanceRow(b core.InventoryBalance, warehouseName string) BalanceRow {
	return BalanceRow{
		InventoryBalance: b,
		Available:        b.Available(),
		Status:           core.Classify(b.Quantities),
		WarehouseName:    warehouseName,
	}
}
