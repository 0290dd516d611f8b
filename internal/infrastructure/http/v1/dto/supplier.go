package dto

import (
	"msana/internal/domain/catalogs/supplier"
)

// CreateSupplierRequest creates a supplier.
type CreateSupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email"`

	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`

	GSTNumber string `json:"gstNumber"`
	Notes     string `json:"notes"`
}

// ToEntity converts the request to a supplier.
func (r CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.NewSupplier(r.Name, r.Phone)
	s.Email = r.Email
	s.Street = r.Street
	s.City = r.City
	s.State = r.State
	s.Pincode = r.Pincode
	if r.Country != "" {
		s.Country = r.Country
	}
	s.GSTNumber = r.GSTNumber
	s.Notes = r.Notes
	return s
}

// UpdateSupplierRequest carries mutable supplier fields.
type UpdateSupplierRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`

	Street  *string `json:"street"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Pincode *string `json:"pincode"`
	Country *string `json:"country"`

	GSTNumber *string `json:"gstNumber"`
	IsActive  *bool   `json:"isActive"`
	Notes     *string `json:"notes"`
}

// ApplyTo copies the provided fields onto an existing supplier.
func (r UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Phone != nil {
		s.Phone = *r.Phone
	}
	if r.Email != nil {
		s.Email = *r.Email
	}
	if r.Street != nil {
		s.Street = *r.Street
	}
	if r.City != nil {
		s.City = *r.City
	}
	if r.State != nil {
		s.State = *r.State
	}
	if r.Pincode != nil {
		s.Pincode = *r.Pincode
	}
	if r.Country != nil {
		s.Country = *r.Country
	}
	if r.GSTNumber != nil {
		s.GSTNumber = *r.GSTNumber
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	if r.Notes != nil {
		s.Notes = *r.Notes
	}
}
