// Package document_repo provides PostgreSQL implementations for document
// repositories.
package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/domain"
	"msana/internal/domain/documents/invoice"
	"msana/internal/infrastructure/storage/postgres"
)

const (
	invoiceTable     = "doc_invoices"
	invoiceLineTable = "doc_invoice_lines"
)

var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo implements invoice.Repository. Headers and lines live in two
// tables; every write touching both runs in one transaction.
type InvoiceRepo struct {
	tx         *postgres.TxManager
	selectCols []string
	lineCols   []string
}

// NewInvoiceRepo creates an invoice repository.
func NewInvoiceRepo(tx *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		tx:         tx,
		selectCols: postgres.ExtractDBColumns[invoice.Invoice](),
		lineCols:   postgres.ExtractDBColumns[invoice.Line](),
	}
}

func (r *InvoiceRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *InvoiceRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(invoiceTable)
}

// Create inserts the invoice header and its lines atomically. A duplicate
// invoice number maps to an apperror duplicate so number allocation can retry.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.tx.GetQuerier(ctx)

		headerQ := r.builder().
			Insert(invoiceTable).
			SetMap(postgres.StructToMap(inv))

		sql, args, err := headerQ.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}

		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			if postgres.IsUniqueViolation(err) {
				return apperror.NewDuplicate("invoice", "invoice_no", inv.InvoiceNo)
			}
			return fmt.Errorf("insert invoice: %w", err)
		}

		lineQ := r.builder().
			Insert(invoiceLineTable).
			Columns(append([]string{"invoice_id"}, r.lineCols...)...)
		for _, line := range inv.Lines {
			data := postgres.StructToMap(&line)
			values := make([]any, 0, len(r.lineCols)+1)
			values = append(values, inv.ID)
			for _, col := range r.lineCols {
				values = append(values, data[col])
			}
			lineQ = lineQ.Values(values...)
		}

		sql, args, err = lineQ.ToSql()
		if err != nil {
			return fmt.Errorf("build lines insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert invoice lines: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an invoice with its lines.
func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": invoiceID}).
		Limit(1)
	return r.findOne(ctx, q, invoiceID.String())
}

// GetByNumber retrieves an invoice by its document number.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, invoiceNo string) (*invoice.Invoice, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"invoice_no": invoiceNo}).
		Limit(1)
	return r.findOne(ctx, q, invoiceNo)
}

func (r *InvoiceRepo) findOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*invoice.Invoice, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	inv := &invoice.Invoice{}
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", key)
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	if err := r.loadLines(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepo) loadLines(ctx context.Context, inv *invoice.Invoice) error {
	q := r.builder().
		Select(r.lineCols...).
		From(invoiceLineTable).
		Where(squirrel.Eq{"invoice_id": inv.ID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build lines query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &inv.Lines, sql, args...); err != nil {
		return fmt.Errorf("load invoice lines: %w", err)
	}
	return nil
}

// LastNumberForPrefix returns the greatest invoice number starting with
// dayPrefix, or "" when no invoice has been issued for that day yet. Ordering
// is by length first so a sequence that outgrew the pad width (e.g. 10000
// after 9999) still wins over its shorter lexicographic betters.
func (r *InvoiceRepo) LastNumberForPrefix(ctx context.Context, dayPrefix string) (string, error) {
	q := r.builder().
		Select("invoice_no").
		From(invoiceTable).
		Where(squirrel.Like{"invoice_no": escapeLike(dayPrefix) + "%"}).
		OrderBy("length(invoice_no) DESC", "invoice_no DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var number string
	err = r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&number)
	if err != nil {
		if pgxscan.NotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("last number for prefix: %w", err)
	}
	return number, nil
}

// escapeLike escapes LIKE wildcards in a literal prefix.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// UpdateMutable persists the only mutable invoice fields: status and notes.
func (r *InvoiceRepo) UpdateMutable(ctx context.Context, inv *invoice.Invoice) error {
	q := r.builder().
		Update(invoiceTable).
		Set("status", inv.Status).
		Set("notes", inv.Notes).
		Set("printed", inv.Printed).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": inv.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", inv.ID.String())
	}
	return nil
}

// Delete removes an invoice and its lines.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	return r.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.tx.GetQuerier(ctx)

		lineQ := r.builder().
			Delete(invoiceLineTable).
			Where(squirrel.Eq{"invoice_id": invoiceID})
		sql, args, err := lineQ.ToSql()
		if err != nil {
			return fmt.Errorf("build lines delete: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete invoice lines: %w", err)
		}

		headerQ := r.builder().
			Delete(invoiceTable).
			Where(squirrel.Eq{"id": invoiceID})
		sql, args, err = headerQ.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}

		result, err := querier.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil
	})
}

// List retrieves invoice headers with filtering and pagination. Lines are not
// loaded for listings.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	filter.Normalize()
	result := domain.ListResult[*invoice.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"invoice_no": pattern},
			squirrel.ILike{"patient_name": pattern},
			squirrel.ILike{"doctor_name": pattern},
		})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}

	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.tx.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list invoices: %w", err)
	}
	return result, nil
}
