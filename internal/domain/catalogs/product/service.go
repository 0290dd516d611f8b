package product

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/core/types"
	"msana/internal/domain"
	"msana/internal/domain/audit"
	"msana/pkg/logger"
)

// AlertResetter clears low-stock alert de-duplication state for a product.
// Every path that mutates stock or thresholds must call it so the monitor can
// alert again on the next scan.
type AlertResetter interface {
	ResetProduct(productID id.ID)
}

// SupplierResolver resolves a supplier reference by name for CSV import rows.
type SupplierResolver interface {
	FindIDByName(ctx context.Context, name string) (id.ID, error)
}

// StockOperation selects the direction of a manual stock adjustment.
type StockOperation string

const (
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"
)

// Service provides business logic for the product catalog.
type Service struct {
	repo      Repository
	alerts    AlertResetter
	auditor   *audit.Recorder
	suppliers SupplierResolver
}

// NewService creates a product service.
func NewService(repo Repository, alerts AlertResetter, auditor *audit.Recorder, suppliers SupplierResolver) *Service {
	return &Service{repo: repo, alerts: alerts, auditor: auditor, suppliers: suppliers}
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if p.Name == "" {
		p.Name = p.DisplayName()
	}
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetBySKU(ctx, p.SKU); err == nil && existing != nil {
		return apperror.NewDuplicate("product", "sku", p.SKU)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	s.auditor.Record(ctx, audit.ActionProductCreated, audit.ResourceProduct, &p.ID, map[string]any{
		"sku":   p.SKU,
		"brand": p.Brand,
	})
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// Update persists product changes and resets alert suppression, since stock or
// the threshold may have changed.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	s.alerts.ResetProduct(p.ID)

	s.auditor.Record(ctx, audit.ActionProductUpdated, audit.ResourceProduct, &p.ID, map[string]any{
		"sku": p.SKU,
	})
	return nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.alerts.ResetProduct(productID)

	s.auditor.Record(ctx, audit.ActionProductDeleted, audit.ResourceProduct, &productID, map[string]any{
		"sku":   p.SKU,
		"brand": p.Brand,
	})
	return nil
}

// AdjustStock applies a manual stock correction. Subtracting below zero is a
// validation failure; every adjustment resets alert suppression.
func (s *Service) AdjustStock(ctx context.Context, productID id.ID, op StockOperation, quantity int) (*Product, error) {
	if quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}

	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	switch op {
	case StockAdd:
		p.Stock += quantity
	case StockSubtract:
		if p.Stock < quantity {
			return nil, apperror.NewInsufficientStock(productID.String(), quantity, p.Stock)
		}
		p.Stock -= quantity
	default:
		return nil, apperror.NewValidation("operation must be add or subtract").WithDetail("field", "operation")
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	logger.Info(ctx, "stock manually adjusted",
		"product_id", productID,
		"operation", op,
		"quantity", quantity,
		"new_stock", p.Stock,
	)

	s.alerts.ResetProduct(productID)

	s.auditor.Record(ctx, audit.ActionProductUpdated, audit.ResourceProduct, &productID, map[string]any{
		"sku":       p.SKU,
		"operation": string(op),
		"quantity":  quantity,
		"stock":     p.Stock,
	})
	return p, nil
}

// List retrieves products with filtering and pagination.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Product], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// LowStock returns active products at or below their reorder threshold.
func (s *Service) LowStock(ctx context.Context) ([]*Product, error) {
	return s.repo.FindLowStock(ctx)
}

// Expiring returns active products expiring within the given number of days.
func (s *Service) Expiring(ctx context.Context, days int) ([]*Product, error) {
	if days <= 0 {
		days = 90
	}
	return s.repo.FindExpiring(ctx, time.Now().AddDate(0, 0, days))
}

// ImportRowError describes a rejected CSV row.
type ImportRowError struct {
	Row   int    `json:"row"`
	SKU   string `json:"sku,omitempty"`
	Error string `json:"error"`
}

// ImportResult summarizes a bulk CSV import.
type ImportResult struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}

// BulkImportCSV reads product rows from CSV and creates them one by one.
// Rejected rows are reported per-row; the import continues past failures.
// Expected header: sku,brand,generic,form,strength,mrp,... (extra columns in
// any order).
func (s *Service) BulkImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperror.NewValidation("empty or unreadable csv").WithCause(err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	result := &ImportResult{Errors: []ImportRowError{}}
	for rowNum := 1; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Total++
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Error: err.Error()})
			continue
		}

		result.Total++
		field := func(name string) string {
			if i, ok := cols[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		p, err := s.rowToProduct(ctx, field)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, SKU: field("sku"), Error: err.Error()})
			continue
		}

		if err := s.Create(ctx, p); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, SKU: p.SKU, Error: err.Error()})
			continue
		}
		result.Success++
	}

	logger.Info(ctx, "bulk import completed",
		"total", result.Total,
		"success", result.Success,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *Service) rowToProduct(ctx context.Context, field func(string) string) (*Product, error) {
	mrp, err := types.NewMoneyFromString(field("mrp"))
	if err != nil {
		return nil, fmt.Errorf("invalid mrp %q", field("mrp"))
	}

	p := NewProduct(
		field("sku"),
		field("brand"),
		field("generic"),
		DosageForm(strings.ToUpper(field("form"))),
		field("strength"),
	)
	p.MRP = mrp
	p.HSNCode = field("hsnCode")
	p.BatchNumber = field("batchNumber")
	p.Barcode = field("barcode")

	if v := field("schedule"); v != "" {
		p.Schedule = Schedule(strings.ToUpper(v))
	}
	if v := field("gstPercent"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.GSTPercent = types.NewMoney(float64(n))
		}
	}
	if v := field("stock"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Stock = n
		}
	}
	if v := field("minStock"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.MinStock = n
		}
	}
	if v := field("unitsPerPack"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.UnitsPerPack = n
		}
	}
	if v := field("expiryDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			p.ExpiryDate = &t
		}
	}

	// Supplier column accepts either an ID or a name.
	if v := field("supplier"); v != "" {
		if supplierID, err := id.Parse(v); err == nil {
			p.SupplierID = &supplierID
		} else if s.suppliers != nil {
			if supplierID, err := s.suppliers.FindIDByName(ctx, v); err == nil {
				p.SupplierID = &supplierID
			}
		}
	}

	return p, nil
}
