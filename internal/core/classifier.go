package core

import "github.com/shopspring/decimal"

// StockStatus is the derived health label of one balance. It is computed on
// demand from (qty_full, qty_reserved) and never persisted.
type StockStatus string

const (
	StockGood StockStatus = "good"
	StockLow  StockStatus = "low"
	StockOut  StockStatus = "out"
)

// LowStockThreshold is the available-unit count below which a balance is
// classified low.
const LowStockThreshold = 10

// Classify maps a balance's quantities to its stock status.
// It is a pure function of qty_full and qty_reserved.
func Classify(q Quantities) StockStatus {
	available := q.Available()
	switch {
	case available <= 0:
		return StockOut
	case available < LowStockThreshold:
		return StockLow
	default:
		return StockGood
	}
}

// UtilizationStatus is the warehouse-level fill health. It is a separate
// classification axis from StockStatus and the two are never conflated:
// a warehouse can be critical on utilization while every product in it is
// stock-healthy, and vice versa.
type UtilizationStatus string

const (
	UtilizationGood     UtilizationStatus = "good"
	UtilizationWarning  UtilizationStatus = "warning"
	UtilizationCritical UtilizationStatus = "critical"
)

// Utilization is the fill ratio of a warehouse against its rated capacity.
type Utilization struct {
	TotalCylinders int64             `json:"total_cylinders"`
	Capacity       int               `json:"capacity"`
	Percent        decimal.Decimal   `json:"percent"`
	Status         UtilizationStatus `json:"status"`
}

// ClassifyUtilization computes a warehouse's utilization from its total
// cylinder count (full + empty across all products) and rated capacity.
// Returns nil when the warehouse has no usable capacity figure.
func ClassifyUtilization(totalCylinders int64, capacity *int) *Utilization {
	if capacity == nil || *capacity <= 0 {
		return nil
	}
	pct := decimal.NewFromInt(totalCylinders).
		Div(decimal.NewFromInt(int64(*capacity))).
		Mul(decimal.NewFromInt(100)).
		Round(1)

	u := &Utilization{TotalCylinders: totalCylinders, Capacity: *capacity, Percent: pct}
	switch {
	case pct.GreaterThan(decimal.NewFromInt(90)):
		u.Status = UtilizationCritical
	case pct.GreaterThan(decimal.NewFromInt(75)):
		u.Status = UtilizationWarning
	default:
		u.Status = UtilizationGood
	}
	return u
}
