package product

import (
	"context"
	"time"

	"msana/internal/core/id"
	"msana/internal/domain"
)

// ListFilter narrows product listings.
type ListFilter struct {
	domain.ListFilter

	// LowStock keeps only items with stock <= min_stock
	LowStock bool

	// Schedule filters by regulatory schedule
	Schedule Schedule

	// SupplierID filters by supplier
	SupplierID *id.ID

	// ActiveOnly hides deactivated products
	ActiveOnly bool
}

// Repository defines persistence operations for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID id.ID) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Product], error)

	// FindLowStock returns active products with stock <= min_stock, ordered by
	// stock ascending. Used by listings and the stock alert monitor.
	FindLowStock(ctx context.Context) ([]*Product, error)

	// FindExpiring returns active products expiring before the cutoff.
	FindExpiring(ctx context.Context, before time.Time) ([]*Product, error)

	// CountBySupplier counts active products referencing a supplier.
	CountBySupplier(ctx context.Context, supplierID id.ID) (int64, error)
}
