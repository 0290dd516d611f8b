// Package reports provides read-only aggregations over invoices and stock.
package reports

import (
	"context"
	"time"

	"msana/internal/core/apperror"
	"msana/internal/core/types"
)

// SalesBucket is one day of invoice totals.
type SalesBucket struct {
	Day          time.Time   `db:"day" json:"day"`
	InvoiceCount int64       `db:"invoice_count" json:"invoiceCount"`
	GrossSales   types.Money `db:"gross_sales" json:"grossSales"`
	TaxCollected types.Money `db:"tax_collected" json:"taxCollected"`
	Discounts    types.Money `db:"discounts" json:"discounts"`
}

// ProductSales aggregates sold quantity and revenue per product.
type ProductSales struct {
	ProductID   string      `db:"product_id" json:"productId"`
	ProductName string      `db:"product_name" json:"productName"`
	QtySold     int64       `db:"qty_sold" json:"qtySold"`
	Revenue     types.Money `db:"revenue" json:"revenue"`
}

// InventoryValuation summarizes on-hand stock worth.
type InventoryValuation struct {
	ProductCount   int64       `db:"product_count" json:"productCount"`
	TotalUnits     int64       `db:"total_units" json:"totalUnits"`
	ValueAtMRP     types.Money `db:"value_at_mrp" json:"valueAtMrp"`
	ValueAtSelling types.Money `db:"value_at_selling" json:"valueAtSelling"`
	LowStockCount  int64       `db:"low_stock_count" json:"lowStockCount"`
	OutOfStock     int64       `db:"out_of_stock" json:"outOfStock"`
}

// Dashboard carries the front-page counters.
type Dashboard struct {
	TodayInvoices  int64       `db:"today_invoices" json:"todayInvoices"`
	TodaySales     types.Money `db:"today_sales" json:"todaySales"`
	MonthSales     types.Money `db:"month_sales" json:"monthSales"`
	PendingBalance types.Money `db:"pending_balance" json:"pendingBalance"`
	LowStockCount  int64       `db:"low_stock_count" json:"lowStockCount"`
	ExpiringCount  int64       `db:"expiring_count" json:"expiringCount"`
}

// Repository runs the aggregation queries.
type Repository interface {
	SalesByDay(ctx context.Context, from, to time.Time) ([]SalesBucket, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
	InventoryValuation(ctx context.Context) (*InventoryValuation, error)
	Dashboard(ctx context.Context, now time.Time) (*Dashboard, error)
}

// Service validates report parameters and delegates to the repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

const maxReportRange = 366 * 24 * time.Hour

// SalesByDay returns daily sales totals for the inclusive range.
func (s *Service) SalesByDay(ctx context.Context, from, to time.Time) ([]SalesBucket, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.repo.SalesByDay(ctx, from, to)
}

// TopProducts returns best sellers for the range, most revenue first.
func (s *Service) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.TopProducts(ctx, from, to, limit)
}

// InventoryValuation returns current stock worth.
func (s *Service) InventoryValuation(ctx context.Context) (*InventoryValuation, error) {
	return s.repo.InventoryValuation(ctx)
}

// Dashboard returns the front-page counters.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	return s.repo.Dashboard(ctx, s.now())
}

func validateRange(from, to time.Time) error {
	if to.Before(from) {
		return apperror.NewValidation("date range end precedes start")
	}
	if to.Sub(from) > maxReportRange {
		return apperror.NewValidation("date range exceeds one year")
	}
	return nil
}
