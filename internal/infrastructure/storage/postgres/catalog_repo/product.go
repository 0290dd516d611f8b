package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/domain"
	"msana/internal/domain/catalogs/product"
	"msana/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// Compile-time check that ProductRepo implements product.Repository.
var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*baseCatalogRepo[*product.Product]
}

// NewProductRepo creates a product repository.
func NewProductRepo(tx *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		baseCatalogRepo: newBaseCatalogRepo(
			tx,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetBySKU retrieves a product by its SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"sku": sku}).
		Limit(1)

	p, err := r.findOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", sku)
		}
		return nil, err
	}
	return p, nil
}

// List retrieves products with filtering and pagination.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) (domain.ListResult[*product.Product], error) {
	q := r.baseSelect()

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"brand": pattern},
			squirrel.ILike{"generic": pattern},
			squirrel.ILike{"sku": pattern},
			squirrel.ILike{"barcode": pattern},
		})
	}
	if filter.LowStock {
		q = q.Where(squirrel.Expr("stock <= min_stock"))
	}
	if filter.Schedule != "" {
		q = q.Where(squirrel.Eq{"schedule": filter.Schedule})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	return r.runList(ctx, q, filter.ListFilter)
}

// FindLowStock returns active products at or below their minimum, lowest
// stock first.
func (r *ProductRepo) FindLowStock(ctx context.Context) ([]*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Expr("stock <= min_stock")).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("stock ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find low stock: %w", err)
	}
	return items, nil
}

// FindExpiring returns active products with a batch expiring before the cutoff.
func (r *ProductRepo) FindExpiring(ctx context.Context, before time.Time) ([]*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.NotEq{"expiry_date": nil}).
		Where(squirrel.Lt{"expiry_date": before}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("expiry_date ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find expiring: %w", err)
	}
	return items, nil
}

// CountBySupplier counts active products referencing the supplier.
func (r *ProductRepo) CountBySupplier(ctx context.Context, supplierID id.ID) (int64, error) {
	q := r.builder().
		Select("COUNT(*)").
		From(productTable).
		Where(squirrel.Eq{"supplier_id": supplierID}).
		Where(squirrel.Eq{"is_active": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by supplier: %w", err)
	}
	return count, nil
}
