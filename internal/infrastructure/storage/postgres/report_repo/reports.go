// Package report_repo provides PostgreSQL implementations for report queries.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"msana/internal/domain/reports"
	"msana/internal/infrastructure/storage/postgres"
)

var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository with GROUP BY aggregations over
// the invoice and product tables.
type ReportRepo struct {
	tx      *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a report repository.
func NewReportRepo(tx *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		tx:      tx,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// SalesByDay aggregates invoice totals per calendar day, oldest first.
// Returned invoices exclude estimates: only tax invoices count as sales.
func (r *ReportRepo) SalesByDay(ctx context.Context, from, to time.Time) ([]reports.SalesBucket, error) {
	q := r.builder.
		Select(
			"DATE_TRUNC('day', created_at) AS day",
			"COUNT(*) AS invoice_count",
			"COALESCE(SUM(net_payable), 0) AS gross_sales",
			"COALESCE(SUM(tax_total), 0) AS tax_collected",
			"COALESCE(SUM(discount_total), 0) AS discounts",
		).
		From("doc_invoices").
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to}).
		Where(squirrel.Eq{"bill_type": "TAX_INVOICE"}).
		Where(squirrel.NotEq{"status": "RETURN"}).
		GroupBy("1").
		OrderBy("day ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var buckets []reports.SalesBucket
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &buckets, sql, args...); err != nil {
		return nil, fmt.Errorf("sales by day: %w", err)
	}
	return buckets, nil
}

// TopProducts aggregates sold quantity and revenue per product for the range.
func (r *ReportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]reports.ProductSales, error) {
	q := r.builder.
		Select(
			"l.product_id::text AS product_id",
			"l.product_name",
			"COALESCE(SUM(l.qty), 0) AS qty_sold",
			"COALESCE(SUM(l.amount), 0) AS revenue",
		).
		From("doc_invoice_lines l").
		Join("doc_invoices i ON i.id = l.invoice_id").
		Where(squirrel.GtOrEq{"i.created_at": from}).
		Where(squirrel.Lt{"i.created_at": to}).
		Where(squirrel.NotEq{"i.status": "RETURN"}).
		Where(squirrel.NotEq{"l.product_id": nil}).
		GroupBy("l.product_id", "l.product_name").
		OrderBy("revenue DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []reports.ProductSales
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return items, nil
}

// InventoryValuation summarizes on-hand stock worth across active products.
func (r *ReportRepo) InventoryValuation(ctx context.Context) (*reports.InventoryValuation, error) {
	sql := `
		SELECT
			COUNT(*) AS product_count,
			COALESCE(SUM(stock), 0) AS total_units,
			COALESCE(SUM(stock * mrp), 0) AS value_at_mrp,
			COALESCE(SUM(stock * COALESCE(selling_price, mrp)), 0) AS value_at_selling,
			COUNT(*) FILTER (WHERE stock <= min_stock) AS low_stock_count,
			COUNT(*) FILTER (WHERE stock = 0) AS out_of_stock
		FROM cat_products
		WHERE is_active = true
	`

	valuation := &reports.InventoryValuation{}
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), valuation, sql); err != nil {
		return nil, fmt.Errorf("inventory valuation: %w", err)
	}
	return valuation, nil
}

// Dashboard computes the front-page counters relative to now.
func (r *ReportRepo) Dashboard(ctx context.Context, now time.Time) (*reports.Dashboard, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	expiryCutoff := now.AddDate(0, 0, 90)

	sql := `
		SELECT
			(SELECT COUNT(*) FROM doc_invoices WHERE created_at >= $1) AS today_invoices,
			(SELECT COALESCE(SUM(net_payable), 0) FROM doc_invoices
				WHERE created_at >= $1 AND status <> 'RETURN') AS today_sales,
			(SELECT COALESCE(SUM(net_payable), 0) FROM doc_invoices
				WHERE created_at >= $2 AND status <> 'RETURN') AS month_sales,
			(SELECT COALESCE(SUM(balance), 0) FROM doc_invoices
				WHERE status = 'PENDING') AS pending_balance,
			(SELECT COUNT(*) FROM cat_products
				WHERE is_active = true AND stock <= min_stock) AS low_stock_count,
			(SELECT COUNT(*) FROM cat_products
				WHERE is_active = true AND expiry_date IS NOT NULL AND expiry_date < $3) AS expiring_count
	`

	dashboard := &reports.Dashboard{}
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), dashboard, sql, dayStart, monthStart, expiryCutoff); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return dashboard, nil
}
