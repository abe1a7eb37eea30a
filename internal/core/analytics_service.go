package core

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// trendDays is the length of the trailing delivery-trend window.
const trendDays = 30

// TrendPoint is the delivered quantity for one calendar date.
// Dates with no deliveries are omitted, not zero-filled.
type TrendPoint struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Quantity int64  `json:"quantity"`
}

// UsageReport summarizes a product's delivered volume around one date.
type UsageReport struct {
	ProductID               int             `json:"product_id"`
	AsOf                    string          `json:"as_of"`
	TotalDeliveredThisMonth int64           `json:"total_delivered_this_month"`
	AverageDailyUsage       decimal.Decimal `json:"average_daily_usage"`
	Trend                   []TrendPoint    `json:"trend"`
}

// UsageAnalytics derives delivered-volume statistics from historical order
// lines. It is read-only and advisory: a failed read degrades to a zeroed
// report and is logged, never surfaced, so the rest of the dashboard keeps
// rendering.
type UsageAnalytics struct {
	orders OrderReader
	logger *slog.Logger
}

func NewUsageAnalytics(orders OrderReader, logger *slog.Logger) *UsageAnalytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageAnalytics{orders: orders, logger: logger}
}

// Analyze reports delivered volume for the calendar month containing asOf and
// the delivery trend over the trailing 30 calendar dates ending at asOf.
// Average daily usage divides by days elapsed in the month, not days in the
// month, so a mid-month average is meaningful.
func (s *UsageAnalytics) Analyze(ctx context.Context, productID int, asOf time.Time) *UsageReport {
	day := dateOnly(asOf)
	report := &UsageReport{
		ProductID:         productID,
		AsOf:              day.Format("2006-01-02"),
		AverageDailyUsage: decimal.Zero,
	}

	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	trendStart := day.AddDate(0, 0, -(trendDays - 1))
	windowStart := monthStart
	if trendStart.Before(windowStart) {
		windowStart = trendStart
	}

	lines, err := s.orders.DeliveredLines(ctx, productID, windowStart, day)
	if err != nil {
		s.logger.Warn("usage analytics degraded to zero report",
			"product_id", productID, "as_of", report.AsOf, "error", err)
		return report
	}

	byDate := make(map[string]int64)
	for _, l := range lines {
		d := dateOnly(l.OrderDate)
		if !d.Before(monthStart) && !d.After(day) {
			report.TotalDeliveredThisMonth += l.Quantity
		}
		if !d.Before(trendStart) && !d.After(day) {
			byDate[d.Format("2006-01-02")] += l.Quantity
		}
	}

	for date, qty := range byDate {
		report.Trend = append(report.Trend, TrendPoint{Date: date, Quantity: qty})
	}
	sort.Slice(report.Trend, func(i, j int) bool { return report.Trend[i].Date < report.Trend[j].Date })

	daysElapsed := int64(day.Day())
	report.AverageDailyUsage = decimal.NewFromInt(report.TotalDeliveredThisMonth).
		Div(decimal.NewFromInt(daysElapsed)).
		Round(2)

	return report
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
