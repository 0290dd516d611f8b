package dto

import (
	"time"

	"msana/internal/core/id"
	"msana/internal/core/types"
	"msana/internal/domain/documents/invoice"
)

// InvoiceLineRequest is one requested invoice line. Missing pricing fields
// fall back to catalog values at pricing time.
type InvoiceLineRequest struct {
	ProductID   *id.ID       `json:"productId"`
	BatchID     *id.ID       `json:"batchId"`
	Name        string       `json:"name"`
	Qty         int          `json:"qty" binding:"required,min=1"`
	FreeQty     int          `json:"freeQty"`
	UnitRate    *types.Money `json:"unitRate"`
	MRP         *types.Money `json:"mrp"`
	GSTPct      *types.Money `json:"gstPct"`
	DiscountPct *types.Money `json:"discountPct"`
}

// CreateInvoiceRequest creates an invoice. Presence of discountTotal selects
// global-discount mode; presence of taxTotal selects manual tax.
type CreateInvoiceRequest struct {
	PatientName    string     `json:"patientName" binding:"required"`
	PatientAddress string     `json:"patientAddress"`
	AdmissionDate  *time.Time `json:"admissionDate"`
	DischargeDate  *time.Time `json:"dischargeDate"`
	RoomNo         string     `json:"roomNo"`
	Department     string     `json:"department"`
	Diagnosis      string     `json:"diagnosis"`
	DoctorName     string     `json:"doctorName"`
	CustomerPhone  string     `json:"customerPhone"`

	Items []InvoiceLineRequest `json:"items" binding:"required,min=1"`

	Mode     invoice.PaymentMode `json:"mode"`
	BillType invoice.BillType    `json:"billType"`

	GSTIN             string `json:"gstin"`
	PlaceOfSupply     string `json:"placeOfSupply"`
	PlaceOfSupplyCode string `json:"placeOfSupplyCode"`
	IsInterState      bool   `json:"isInterState"`

	DiscountTotal *types.Money `json:"discountTotal"`
	TaxTotal      *types.Money `json:"taxTotal"`
	Paid          *types.Money `json:"paid"`

	Notes string `json:"notes"`
}

// ToDraft converts the request to the engine's draft contract.
func (r CreateInvoiceRequest) ToDraft() invoice.Draft {
	lines := make([]invoice.DraftLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, invoice.DraftLine{
			ProductID:   item.ProductID,
			BatchID:     item.BatchID,
			Name:        item.Name,
			Qty:         item.Qty,
			FreeQty:     item.FreeQty,
			UnitRate:    item.UnitRate,
			MRP:         item.MRP,
			GSTPct:      item.GSTPct,
			DiscountPct: item.DiscountPct,
		})
	}

	return invoice.Draft{
		PatientName:    r.PatientName,
		PatientAddress: r.PatientAddress,
		AdmissionDate:  r.AdmissionDate,
		DischargeDate:  r.DischargeDate,
		RoomNo:         r.RoomNo,
		Department:     r.Department,
		Diagnosis:      r.Diagnosis,
		DoctorName:     r.DoctorName,
		CustomerPhone:  r.CustomerPhone,

		Lines: lines,

		Mode:     r.Mode,
		BillType: r.BillType,

		GSTIN:             r.GSTIN,
		PlaceOfSupply:     r.PlaceOfSupply,
		PlaceOfSupplyCode: r.PlaceOfSupplyCode,
		IsInterState:      r.IsInterState,

		DiscountTotal: r.DiscountTotal,
		TaxTotal:      r.TaxTotal,
		Paid:          r.Paid,

		Notes: r.Notes,
	}
}

// UpdateInvoiceRequest carries the only mutable invoice fields.
type UpdateInvoiceRequest struct {
	Status *invoice.Status `json:"status"`
	Notes  *string         `json:"notes"`
}

// ToUpdate converts the request to the service update contract.
func (r UpdateInvoiceRequest) ToUpdate() invoice.Update {
	return invoice.Update{
		Status: r.Status,
		Notes:  r.Notes,
	}
}

// InvoiceListQuery contains invoice list parameters.
type InvoiceListQuery struct {
	ListQuery

	Status string     `form:"status"`
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
}

// ToFilter converts the query to the invoice list filter.
func (q InvoiceListQuery) ToFilter() invoice.ListFilter {
	return invoice.ListFilter{
		ListFilter: q.ListQuery.ToFilter(),
		Status:     invoice.Status(q.Status),
		From:       q.From,
		To:         q.To,
	}
}
