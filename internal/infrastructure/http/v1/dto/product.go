package dto

import (
	"time"

	"msana/internal/core/id"
	"msana/internal/core/types"
	"msana/internal/domain/catalogs/product"
)

// CreateProductRequest creates a catalog entry.
type CreateProductRequest struct {
	SKU      string             `json:"sku" binding:"required"`
	Name     string             `json:"name"`
	Generic  string             `json:"generic" binding:"required"`
	Brand    string             `json:"brand" binding:"required"`
	Form     product.DosageForm `json:"form" binding:"required"`
	Strength string             `json:"strength"`
	Schedule product.Schedule   `json:"schedule"`

	GSTPercent   *types.Money `json:"gstPercent"`
	HSNCode      string       `json:"hsnCode"`
	MRP          types.Money  `json:"mrp"`
	SellingPrice *types.Money `json:"sellingPrice"`

	BatchNumber string     `json:"batchNumber"`
	ExpiryDate  *time.Time `json:"expiryDate"`

	UnitsPerPack int    `json:"unitsPerPack"`
	Barcode      string `json:"barcode"`

	Stock    int    `json:"stock"`
	MinStock *int   `json:"minStock"`
	MaxStock *int   `json:"maxStock"`
	Supplier *id.ID `json:"supplierId"`
}

// ToEntity converts the request to a product with catalog defaults.
func (r CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.SKU, r.Brand, r.Generic, r.Form, r.Strength)

	p.Name = r.Name
	if r.Schedule != "" {
		p.Schedule = r.Schedule
	}
	if r.GSTPercent != nil {
		p.GSTPercent = *r.GSTPercent
	}
	p.HSNCode = r.HSNCode
	p.MRP = r.MRP
	p.SellingPrice = r.SellingPrice
	p.BatchNumber = r.BatchNumber
	p.ExpiryDate = r.ExpiryDate
	if r.UnitsPerPack > 0 {
		p.UnitsPerPack = r.UnitsPerPack
	}
	p.Barcode = r.Barcode
	p.Stock = r.Stock
	if r.MinStock != nil {
		p.MinStock = *r.MinStock
	}
	p.MaxStock = r.MaxStock
	p.SupplierID = r.Supplier
	return p
}

// UpdateProductRequest carries mutable product fields; nil leaves a field
// unchanged.
type UpdateProductRequest struct {
	Name     *string             `json:"name"`
	Generic  *string             `json:"generic"`
	Brand    *string             `json:"brand"`
	Form     *product.DosageForm `json:"form"`
	Strength *string             `json:"strength"`
	Schedule *product.Schedule   `json:"schedule"`

	GSTPercent   *types.Money `json:"gstPercent"`
	HSNCode      *string      `json:"hsnCode"`
	MRP          *types.Money `json:"mrp"`
	SellingPrice *types.Money `json:"sellingPrice"`

	BatchNumber *string    `json:"batchNumber"`
	ExpiryDate  *time.Time `json:"expiryDate"`

	UnitsPerPack *int    `json:"unitsPerPack"`
	Barcode      *string `json:"barcode"`

	Stock    *int   `json:"stock"`
	MinStock *int   `json:"minStock"`
	MaxStock *int   `json:"maxStock"`
	IsActive *bool  `json:"isActive"`
	Supplier *id.ID `json:"supplierId"`
}

// ApplyTo copies the provided fields onto an existing product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Generic != nil {
		p.Generic = *r.Generic
	}
	if r.Brand != nil {
		p.Brand = *r.Brand
	}
	if r.Form != nil {
		p.Form = *r.Form
	}
	if r.Strength != nil {
		p.Strength = *r.Strength
	}
	if r.Schedule != nil {
		p.Schedule = *r.Schedule
	}
	if r.GSTPercent != nil {
		p.GSTPercent = *r.GSTPercent
	}
	if r.HSNCode != nil {
		p.HSNCode = *r.HSNCode
	}
	if r.MRP != nil {
		p.MRP = *r.MRP
	}
	if r.SellingPrice != nil {
		p.SellingPrice = r.SellingPrice
	}
	if r.BatchNumber != nil {
		p.BatchNumber = *r.BatchNumber
	}
	if r.ExpiryDate != nil {
		p.ExpiryDate = r.ExpiryDate
	}
	if r.UnitsPerPack != nil {
		p.UnitsPerPack = *r.UnitsPerPack
	}
	if r.Barcode != nil {
		p.Barcode = *r.Barcode
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.MinStock != nil {
		p.MinStock = *r.MinStock
	}
	if r.MaxStock != nil {
		p.MaxStock = r.MaxStock
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	if r.Supplier != nil {
		p.SupplierID = r.Supplier
	}
}

// AdjustStockRequest performs a manual stock adjustment.
type AdjustStockRequest struct {
	Operation product.StockOperation `json:"operation" binding:"required"`
	Quantity  int                    `json:"quantity" binding:"required,min=1"`
}
