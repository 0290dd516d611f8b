package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/domain"
	"msana/internal/domain/catalogs/supplier"
	"msana/internal/infrastructure/storage/postgres"
)

const supplierTable = "cat_suppliers"

var _ supplier.Repository = (*SupplierRepo)(nil)

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*baseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a supplier repository.
func NewSupplierRepo(tx *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		baseCatalogRepo: newBaseCatalogRepo(
			tx,
			supplierTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// FindIDByName resolves a supplier by exact name, case-insensitive. Used by
// CSV import rows that reference suppliers by name.
func (r *SupplierRepo) FindIDByName(ctx context.Context, name string) (id.ID, error) {
	q := r.builder().
		Select("id").
		From(supplierTable).
		Where(squirrel.Eq{"lower(name)": strings.ToLower(strings.TrimSpace(name))}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return id.Nil(), fmt.Errorf("build query: %w", err)
	}

	var supplierID id.ID
	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&supplierID); err != nil {
		return id.Nil(), apperror.NewNotFound("supplier", name)
	}
	return supplierID, nil
}

// List retrieves suppliers with filtering and pagination.
func (r *SupplierRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*supplier.Supplier], error) {
	q := r.baseSelect()

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"phone": pattern},
			squirrel.ILike{"gst_number": pattern},
		})
	}

	return r.runList(ctx, q, filter)
}
