// Package product provides the drug master catalog.
package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/core/types"
)

// DosageForm defines the pharmaceutical form of a product.
type DosageForm string

const (
	FormTablet    DosageForm = "TAB"
	FormCapsule   DosageForm = "CAP"
	FormSyrup     DosageForm = "SYR"
	FormInjection DosageForm = "INJ"
	FormCream     DosageForm = "CRM"
	FormOintment  DosageForm = "ONT"
	FormDrops     DosageForm = "DRP"
	FormPowder    DosageForm = "PWD"
)

// Schedule defines the regulatory schedule of a drug.
type Schedule string

const (
	ScheduleH   Schedule = "H"
	ScheduleH1  Schedule = "H1"
	ScheduleX   Schedule = "X"
	ScheduleOTC Schedule = "OTC"
)

// Product represents a drug master record. Stock is a cached aggregate of
// batch quantities; whichever operation mutates inventory must keep it
// consistent and notify the stock alert monitor.
type Product struct {
	ID id.ID `db:"id" json:"id"`

	// SKU is unique across the catalog
	SKU string `db:"sku" json:"sku"`

	// Name is derived from brand + strength + form when not supplied
	Name    string `db:"name" json:"name"`
	Generic string `db:"generic" json:"generic"`
	Brand   string `db:"brand" json:"brand"`

	Form     DosageForm `db:"form" json:"form"`
	Strength string     `db:"strength" json:"strength"`
	Schedule Schedule   `db:"schedule" json:"schedule"`

	GSTPercent   types.Money  `db:"gst_percent" json:"gstPercent"`
	HSNCode      string       `db:"hsn_code" json:"hsnCode,omitempty"`
	MRP          types.Money  `db:"mrp" json:"mrp"`
	SellingPrice *types.Money `db:"selling_price" json:"sellingPrice,omitempty"`

	BatchNumber string     `db:"batch_number" json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	UnitsPerPack int    `db:"units_per_pack" json:"unitsPerPack"`
	Barcode      string `db:"barcode" json:"barcode,omitempty"`

	// Stock is the cached aggregate quantity; MinStock is the reorder threshold.
	Stock    int  `db:"stock" json:"stock"`
	MinStock int  `db:"min_stock" json:"minStock"`
	MaxStock *int `db:"max_stock" json:"maxStock,omitempty"`

	IsActive   bool   `db:"is_active" json:"isActive"`
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a product with defaults matching the catalog conventions.
func NewProduct(sku, brand, generic string, form DosageForm, strength string) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:           id.New(),
		SKU:          strings.ToUpper(strings.TrimSpace(sku)),
		Brand:        brand,
		Generic:      generic,
		Form:         form,
		Strength:     strength,
		Schedule:     ScheduleOTC,
		GSTPercent:   types.NewMoney(12),
		UnitsPerPack: 1,
		MinStock:     10,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DisplayName returns Name, deriving it from brand/strength/form when unset.
func (p *Product) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("%s %s %s", p.Brand, p.Strength, p.Form)
}

// IsLowStock reports whether the cached stock is at or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.SKU) == "" {
		return apperror.NewValidation("sku is required").WithDetail("field", "sku")
	}
	if strings.TrimSpace(p.Brand) == "" {
		return apperror.NewValidation("brand is required").WithDetail("field", "brand")
	}
	if strings.TrimSpace(p.Generic) == "" {
		return apperror.NewValidation("generic name is required").WithDetail("field", "generic")
	}
	if !isValidForm(p.Form) {
		return apperror.NewValidation("invalid dosage form").
			WithDetail("field", "form").
			WithDetail("value", string(p.Form))
	}
	if !isValidSchedule(p.Schedule) {
		return apperror.NewValidation("invalid schedule").
			WithDetail("field", "schedule").
			WithDetail("value", string(p.Schedule))
	}
	if !isValidGSTPercent(p.GSTPercent) {
		return apperror.NewValidation("invalid gst percent").
			WithDetail("field", "gstPercent").
			WithDetail("value", p.GSTPercent.String())
	}
	if p.MRP.IsNegative() {
		return apperror.NewValidation("mrp cannot be negative").WithDetail("field", "mrp")
	}
	if p.Stock < 0 {
		return apperror.NewValidation("stock cannot be negative").WithDetail("field", "stock")
	}
	if p.MinStock < 0 {
		return apperror.NewValidation("minStock cannot be negative").WithDetail("field", "minStock")
	}
	return nil
}

func isValidForm(f DosageForm) bool {
	switch f {
	case FormTablet, FormCapsule, FormSyrup, FormInjection, FormCream, FormOintment, FormDrops, FormPowder:
		return true
	}
	return false
}

func isValidSchedule(s Schedule) bool {
	switch s {
	case ScheduleH, ScheduleH1, ScheduleX, ScheduleOTC:
		return true
	}
	return false
}

// GST slabs allowed on pharmacy items.
var gstSlabs = []int64{0, 5, 12, 18, 28}

func isValidGSTPercent(pct types.Money) bool {
	for _, slab := range gstSlabs {
		if pct.Equal(types.NewMoney(float64(slab))) {
			return true
		}
	}
	return false
}
