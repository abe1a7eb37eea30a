package core

import "time"

// ProductStatus is the lifecycle state of a catalog product.
type ProductStatus string

const (
	ProductActive    ProductStatus = "active"
	ProductEndOfSale ProductStatus = "end_of_sale"
	ProductObsolete  ProductStatus = "obsolete"
)

// CanTransition reports whether a product may move from one lifecycle status
// to another. The lifecycle runs forward (active → end_of_sale → obsolete);
// an end-of-sale product may be reinstated, an obsolete one may not.
func CanTransition(from, to ProductStatus) bool {
	switch from {
	case ProductActive:
		return to == ProductEndOfSale || to == ProductObsolete
	case ProductEndOfSale:
		return to == ProductActive || to == ProductObsolete
	default:
		return false
	}
}

// Warehouse represents a physical cylinder storage location.
// Capacity is the rated cylinder count; it is advisory, used only for the
// utilization percentage, and is never enforced as a hard limit.
type Warehouse struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Capacity  *int      `json:"capacity,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Product represents a cylinder product in the catalog (e.g. a 14.2 kg
// domestic cylinder). SKU is the unique human-readable code.
type Product struct {
	ID        int           `json:"id"`
	SKU       string        `json:"sku"`
	Name      string        `json:"name"`
	Status    ProductStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// BalanceKey identifies one inventory balance row.
type BalanceKey struct {
	WarehouseID int `json:"warehouse_id"`
	ProductID   int `json:"product_id"`
}

// Quantities is the full/empty/reserved triple of one balance.
// All three are always ≥ 0.
type Quantities struct {
	Full     int64 `json:"qty_full"`
	Empty    int64 `json:"qty_empty"`
	Reserved int64 `json:"qty_reserved"`
}

// Available is the quantity eligible for new commitments or transfer.
// It is always derived, never stored.
func (q Quantities) Available() int64 {
	return q.Full - q.Reserved
}

// InventoryBalance is the authoritative quantity record for one
// (warehouse, product) pair.
type InventoryBalance struct {
	BalanceKey
	Quantities
	UpdatedAt time.Time `json:"updated_at"`
}

// Dimension names one of the three balance quantities an adjustment targets.
type Dimension string

const (
	DimensionFull     Dimension = "full"
	DimensionEmpty    Dimension = "empty"
	DimensionReserved Dimension = "reserved"
)

// Valid reports whether d is one of the three known dimensions.
func (d Dimension) Valid() bool {
	return d == DimensionFull || d == DimensionEmpty || d == DimensionReserved
}

// AdjustmentRecord is an immutable audit entry written on every successful
// balance mutation. RequestedDelta and AppliedDelta differ when a full/empty
// decrement was clamped at zero. A transfer writes two records (debit at
// source, credit at destination) sharing one CorrelationID.
type AdjustmentRecord struct {
	ID             int64     `json:"id"`
	WarehouseID    int       `json:"warehouse_id"`
	ProductID      int       `json:"product_id"`
	Dimension      Dimension `json:"dimension"`
	RequestedDelta int64     `json:"requested_delta"`
	AppliedDelta   int64     `json:"applied_delta"`
	Reason         string    `json:"reason"`
	Actor          string    `json:"actor"`
	CorrelationID  string    `json:"correlation_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuthContext carries the authenticated actor performing a mutation.
// It is passed explicitly into every core write operation; mutations with an
// empty actor are rejected rather than recorded anonymously.
type AuthContext struct {
	Actor string
}

// User is a console user account; its username becomes the audit actor.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Status values for the externally owned order records this core reads.
const (
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// DeliveredLine is one delivered order line as seen by the analytics
// aggregator: product, quantity, and the parent order's date.
type DeliveredLine struct {
	ProductID int
	Quantity  int64
	OrderDate time.Time
}
