package invoice

import (
	"context"
	"fmt"
	"time"

	"msana/internal/core/apperror"
	appctx "msana/internal/core/context"
	"msana/internal/core/id"
	"msana/internal/core/retry"
	"msana/internal/core/types"
	"msana/internal/domain"
	"msana/internal/domain/audit"
	"msana/internal/domain/catalogs/product"
	"msana/pkg/logger"
	"msana/pkg/numerator"
)

// CatalogLookup resolves catalog products referenced by draft lines.
type CatalogLookup interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// customItemName is the snapshot name for lines whose catalog reference could
// not be resolved and that carry no explicit name.
const customItemName = "Custom Item"

// maxNumberAttempts bounds retries of the number-allocate-and-insert step when
// concurrent creations collide on the invoice number unique index.
const maxNumberAttempts = 5

// numberingBackoff grows the delay after each collision: 100ms, 150ms, 200ms, 250ms.
func numberingBackoff(attempt int) time.Duration {
	return 50 * time.Millisecond * time.Duration(attempt+1)
}

// DraftLine is the input contract for a single requested line item: either a
// catalog reference or a free-text custom item, with optional explicit rate,
// GST percentage and discount that override catalog fallbacks.
type DraftLine struct {
	ProductID   *id.ID
	BatchID     *id.ID
	Name        string
	Qty         int
	FreeQty     int
	UnitRate    *types.Money
	MRP         *types.Money
	GSTPct      *types.Money
	DiscountPct *types.Money
}

// Draft is the input contract for invoice creation. Presence of
// DiscountTotal selects global-discount mode; presence of TaxTotal selects
// manual tax.
type Draft struct {
	PatientName    string
	PatientAddress string
	AdmissionDate  *time.Time
	DischargeDate  *time.Time
	RoomNo         string
	Department     string
	Diagnosis      string
	DoctorName     string
	CustomerPhone  string

	Lines []DraftLine

	Mode     PaymentMode
	BillType BillType

	GSTIN             string
	PlaceOfSupply     string
	PlaceOfSupplyCode string
	IsInterState      bool

	DiscountTotal *types.Money
	TaxTotal      *types.Money
	Paid          *types.Money

	Notes string
}

// Update carries the only post-creation mutable fields.
type Update struct {
	Status *Status
	Notes  *string
}

// Service is the invoice engine: it prices drafts, allocates sequential
// numbers and manages the invoice lifecycle.
type Service struct {
	repo      Repository
	catalog   CatalogLookup
	auditor   *audit.Recorder
	numbering numerator.Config

	// now is injectable for tests
	now func() time.Time
}

// NewService creates an invoice service. prefix is the invoice number literal
// prefix, "INV" in production.
func NewService(repo Repository, catalog CatalogLookup, auditor *audit.Recorder, prefix string) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		auditor:   auditor,
		numbering: numerator.DefaultConfig(prefix),
		now:       time.Now,
	}
}

// Create prices the draft, allocates an invoice number and persists the
// invoice atomically. Numbering races are retried; audit emission is
// fire-and-forget and never fails the creation.
func (s *Service) Create(ctx context.Context, draft Draft) (*Invoice, error) {
	resolved := make([]ResolvedLine, 0, len(draft.Lines))
	for _, dl := range draft.Lines {
		resolved = append(resolved, s.resolveLine(ctx, dl))
	}

	discount := PerLineDiscount()
	if draft.DiscountTotal != nil {
		discount = GlobalDiscount(*draft.DiscountTotal)
	}
	tax := AutoTax()
	if draft.TaxTotal != nil {
		tax = ManualTax(*draft.TaxTotal)
	}

	lines, totals := Price(resolved, discount, tax, draft.IsInterState, draft.Paid)

	now := s.now().UTC()
	inv := &Invoice{
		ID:                id.New(),
		PatientName:       draft.PatientName,
		PatientAddress:    draft.PatientAddress,
		AdmissionDate:     draft.AdmissionDate,
		DischargeDate:     draft.DischargeDate,
		RoomNo:            draft.RoomNo,
		Department:        draft.Department,
		Diagnosis:         draft.Diagnosis,
		DoctorName:        draft.DoctorName,
		CustomerPhone:     draft.CustomerPhone,
		Lines:             lines,
		Mode:              draft.Mode,
		BillType:          draft.BillType,
		GSTIN:             draft.GSTIN,
		PlaceOfSupply:     draft.PlaceOfSupply,
		PlaceOfSupplyCode: draft.PlaceOfSupplyCode,
		IsInterState:      draft.IsInterState,
		SubTotal:          totals.SubTotal,
		DiscountTotal:     totals.DiscountTotal,
		TaxTotal:          totals.TaxTotal,
		CGST:              totals.CGST,
		SGST:              totals.SGST,
		IGST:              totals.IGST,
		RoundOff:          totals.RoundOff,
		NetPayable:        totals.NetPayable,
		Paid:              totals.Paid,
		Balance:           totals.Balance,
		Status:            StatusPaid,
		Notes:             draft.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if inv.Mode == "" {
		inv.Mode = ModeCash
	}
	if inv.BillType == "" {
		inv.BillType = BillTaxInvoice
	}
	if user := appctx.GetUser(ctx); user != nil {
		if uid, err := id.Parse(user.UserID); err == nil {
			inv.CreatedBy = uid
		}
	}

	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.persistNumbered(ctx, inv); err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice created",
		"invoice_no", inv.InvoiceNo,
		"net_payable", inv.NetPayable,
		"mode", inv.Mode,
	)

	s.auditor.Record(ctx, audit.ActionInvoiceCreated, audit.ResourceInvoice, &inv.ID, map[string]any{
		"invoiceNo":   inv.InvoiceNo,
		"patientName": inv.PatientName,
		"amount":      inv.NetPayable,
		"mode":        inv.Mode,
	})
	return inv, nil
}

// persistNumbered allocates the next number for today's prefix and inserts,
// retrying the whole step on unique-index collisions.
func (s *Service) persistNumbered(ctx context.Context, inv *Invoice) error {
	dayPrefix := s.numbering.DayPrefix(s.now())

	err := retry.Attempt(ctx, maxNumberAttempts, numberingBackoff, func(ctx context.Context) error {
		last, err := s.repo.LastNumberForPrefix(ctx, dayPrefix)
		if err != nil {
			return fmt.Errorf("query last invoice number: %w", err)
		}
		inv.InvoiceNo = s.numbering.Next(dayPrefix, last)

		if err := s.repo.Create(ctx, inv); err != nil {
			if apperror.IsDuplicate(err) {
				logger.Warn(ctx, "invoice number collision, retrying",
					"invoice_no", inv.InvoiceNo,
				)
				return retry.MarkRetryable(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if apperror.IsDuplicate(err) {
			return apperror.NewSequenceExhausted(dayPrefix, maxNumberAttempts).WithCause(err)
		}
		return err
	}
	return nil
}

// resolveLine applies catalog fallbacks to a draft line. An unresolvable
// catalog reference is not an error: the line falls back to a custom item
// with no catalog linkage.
func (s *Service) resolveLine(ctx context.Context, dl DraftLine) ResolvedLine {
	var cat *product.Product
	if dl.ProductID != nil {
		p, err := s.catalog.GetByID(ctx, *dl.ProductID)
		if err == nil {
			cat = p
		}
	}

	qty := dl.Qty
	if qty < 0 {
		qty = 0
	}

	rate := types.Zero()
	switch {
	case dl.UnitRate != nil:
		rate = *dl.UnitRate
	case cat != nil && cat.MRP.IsPositive():
		rate = cat.MRP
	case cat != nil && cat.SellingPrice != nil:
		rate = *cat.SellingPrice
	}

	gst := types.Zero()
	switch {
	case dl.GSTPct != nil:
		gst = *dl.GSTPct
	case cat != nil:
		gst = cat.GSTPercent
	}

	discount := types.Zero()
	if dl.DiscountPct != nil {
		discount = *dl.DiscountPct
	}

	name := dl.Name
	if name == "" && cat != nil {
		name = cat.DisplayName()
	}
	if name == "" {
		name = customItemName
	}

	mrp := rate
	switch {
	case dl.MRP != nil:
		mrp = *dl.MRP
	case cat != nil && cat.MRP.IsPositive():
		mrp = cat.MRP
	}

	line := ResolvedLine{
		BatchID:     dl.BatchID,
		ProductName: name,
		Qty:         qty,
		FreeQty:     dl.FreeQty,
		Rate:        rate,
		MRP:         mrp,
		GSTPct:      gst,
		DiscountPct: discount,
	}
	if cat != nil {
		line.ProductID = &cat.ID
	}
	return line
}

// GetByID retrieves an invoice with its lines.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.repo.GetByID(ctx, invoiceID)
}

// GetByNumber retrieves an invoice by its human-readable number.
func (s *Service) GetByNumber(ctx context.Context, invoiceNo string) (*Invoice, error) {
	return s.repo.GetByNumber(ctx, invoiceNo)
}

// List retrieves invoices with filtering and pagination.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// ApplyUpdate mutates the only post-creation mutable fields: status and notes.
func (s *Service) ApplyUpdate(ctx context.Context, invoiceID id.ID, upd Update) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{"invoiceNo": inv.InvoiceNo}
	if upd.Status != nil {
		if !isValidStatus(*upd.Status) {
			return nil, apperror.NewValidation("invalid status").
				WithDetail("field", "status").
				WithDetail("value", string(*upd.Status))
		}
		inv.Status = *upd.Status
		changes["status"] = *upd.Status
	}
	if upd.Notes != nil {
		inv.Notes = *upd.Notes
		changes["notes"] = *upd.Notes
	}
	inv.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateMutable(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	logger.Info(ctx, "invoice updated", "invoice_no", inv.InvoiceNo)
	s.auditor.Record(ctx, audit.ActionInvoiceUpdated, audit.ResourceInvoice, &inv.ID, changes)
	return inv, nil
}

// Delete removes an invoice.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) error {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, invoiceID); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	logger.Info(ctx, "invoice deleted", "invoice_no", inv.InvoiceNo)
	s.auditor.Record(ctx, audit.ActionInvoiceDeleted, audit.ResourceInvoice, &invoiceID, map[string]any{
		"invoiceNo": inv.InvoiceNo,
	})
	return nil
}
