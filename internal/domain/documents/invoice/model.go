// Package invoice provides the sales invoice document: pricing, GST
// computation, sequential numbering and lifecycle.
package invoice

import (
	"context"
	"strings"
	"time"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/core/types"
	"msana/internal/domain"
)

// PaymentMode is how the invoice was settled.
type PaymentMode string

const (
	ModeCash   PaymentMode = "CASH"
	ModeCard   PaymentMode = "CARD"
	ModeUPI    PaymentMode = "UPI"
	ModeCredit PaymentMode = "CREDIT"
)

// Status is the invoice lifecycle state.
type Status string

const (
	StatusPaid    Status = "PAID"
	StatusPending Status = "PENDING"
	// StatusReturn marks credit notes.
	StatusReturn Status = "RETURN"
)

// BillType distinguishes the fiscal document kind.
type BillType string

const (
	BillTaxInvoice BillType = "TAX_INVOICE"
	BillEstimate   BillType = "ESTIMATE"
)

// Line is a priced invoice line. Product name, MRP and rate are snapshots:
// catalog values may change after the sale, the invoice must not.
type Line struct {
	LineNo int `db:"line_no" json:"lineNo"`

	// ProductID and BatchID are nil for custom (non-catalog) items.
	ProductID *id.ID `db:"product_id" json:"productId,omitempty"`
	BatchID   *id.ID `db:"batch_id" json:"batchId,omitempty"`

	ProductName string `db:"product_name" json:"productName"`

	Qty     int `db:"qty" json:"qty"`
	FreeQty int `db:"free_qty" json:"freeQty"`

	UnitRate    types.Money `db:"unit_rate" json:"unitRate"`
	MRP         types.Money `db:"mrp" json:"mrp"`
	DiscountPct types.Money `db:"discount_pct" json:"discountPct"`
	GSTPct      types.Money `db:"gst_pct" json:"gstPct"`

	// Amount is the taxable value of the line (raw amount less per-line
	// discount; equals the raw amount when a global discount is in effect).
	Amount types.Money `db:"amount" json:"amount"`
}

// Invoice is a priced, numbered sales document. Monetary fields and lines are
// immutable after creation; only Status and Notes may change.
type Invoice struct {
	ID        id.ID  `db:"id" json:"id"`
	InvoiceNo string `db:"invoice_no" json:"invoiceNo"`

	PatientName    string     `db:"patient_name" json:"patientName"`
	PatientAddress string     `db:"patient_address" json:"patientAddress,omitempty"`
	AdmissionDate  *time.Time `db:"admission_date" json:"admissionDate,omitempty"`
	DischargeDate  *time.Time `db:"discharge_date" json:"dischargeDate,omitempty"`
	RoomNo         string     `db:"room_no" json:"roomNo,omitempty"`
	Department     string     `db:"department" json:"department,omitempty"`
	Diagnosis      string     `db:"diagnosis" json:"diagnosis,omitempty"`
	DoctorName     string     `db:"doctor_name" json:"doctorName,omitempty"`
	CustomerPhone  string     `db:"customer_phone" json:"customerPhone,omitempty"`

	Lines []Line `db:"-" json:"items"`

	Mode     PaymentMode `db:"mode" json:"mode"`
	BillType BillType    `db:"bill_type" json:"billType"`

	// GST compliance
	GSTIN             string `db:"gstin" json:"gstin,omitempty"`
	PlaceOfSupply     string `db:"place_of_supply" json:"placeOfSupply,omitempty"`
	PlaceOfSupplyCode string `db:"place_of_supply_code" json:"placeOfSupplyCode,omitempty"`
	IsInterState      bool   `db:"is_inter_state" json:"isInterState"`

	SubTotal      types.Money `db:"sub_total" json:"subTotal"`
	DiscountTotal types.Money `db:"discount_total" json:"discountTotal"`
	TaxTotal      types.Money `db:"tax_total" json:"taxTotal"`
	CGST          types.Money `db:"cgst" json:"cgst"`
	SGST          types.Money `db:"sgst" json:"sgst"`
	IGST          types.Money `db:"igst" json:"igst"`
	RoundOff      types.Money `db:"round_off" json:"roundOff"`
	NetPayable    types.Money `db:"net_payable" json:"netPayable"`
	Paid          types.Money `db:"paid" json:"paid"`
	Balance       types.Money `db:"balance" json:"balance"`

	Status  Status `db:"status" json:"status"`
	Printed bool   `db:"printed" json:"printed"`

	CreatedBy id.ID  `db:"created_by" json:"createdBy"`
	Notes     string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks invoice invariants before persistence.
func (inv *Invoice) Validate(ctx context.Context) error {
	if strings.TrimSpace(inv.PatientName) == "" {
		return apperror.NewValidation("patient name is required").WithDetail("field", "patientName")
	}
	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line item is required").WithDetail("field", "items")
	}
	if !isValidMode(inv.Mode) {
		return apperror.NewValidation("invalid payment mode").
			WithDetail("field", "mode").
			WithDetail("value", string(inv.Mode))
	}
	for i, line := range inv.Lines {
		if line.Qty < 1 {
			return apperror.NewValidation("quantity must be at least 1").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if strings.TrimSpace(line.ProductName) == "" {
			return apperror.NewValidation("product name is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

func isValidMode(m PaymentMode) bool {
	switch m {
	case ModeCash, ModeCard, ModeUPI, ModeCredit:
		return true
	}
	return false
}

func isValidStatus(s Status) bool {
	switch s {
	case StatusPaid, StatusPending, StatusReturn:
		return true
	}
	return false
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	domain.ListFilter

	// From/To bound the creation timestamp.
	From *time.Time
	To   *time.Time

	// Status filters by lifecycle state.
	Status Status
}

// Repository defines persistence operations for invoices.
type Repository interface {
	// Create inserts the invoice with its lines atomically. A duplicate
	// invoice number surfaces as an apperror duplicate so the engine can
	// retry number allocation.
	Create(ctx context.Context, inv *Invoice) error

	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, invoiceNo string) (*Invoice, error)

	// LastNumberForPrefix returns the lexicographically greatest invoice
	// number starting with dayPrefix, or "" when none exists.
	LastNumberForPrefix(ctx context.Context, dayPrefix string) (string, error)

	// UpdateMutable persists the only mutable fields: status and notes.
	UpdateMutable(ctx context.Context, inv *Invoice) error

	Delete(ctx context.Context, invoiceID id.ID) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)
}
