// Package supplier provides the supplier catalog.
package supplier

import (
	"context"
	"strings"
	"time"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/domain"
)

// Supplier represents a wholesale drug supplier.
type Supplier struct {
	ID    id.ID  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Phone string `db:"phone" json:"phone"`
	Email string `db:"email" json:"email,omitempty"`

	Street  string `db:"street" json:"street,omitempty"`
	City    string `db:"city" json:"city,omitempty"`
	State   string `db:"state" json:"state,omitempty"`
	Pincode string `db:"pincode" json:"pincode,omitempty"`
	Country string `db:"country" json:"country"`

	GSTNumber string `db:"gst_number" json:"gstNumber,omitempty"`
	IsActive  bool   `db:"is_active" json:"isActive"`
	Notes     string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewSupplier creates a supplier with defaults.
func NewSupplier(name, phone string) *Supplier {
	now := time.Now().UTC()
	return &Supplier{
		ID:        id.New(),
		Name:      strings.TrimSpace(name),
		Phone:     strings.TrimSpace(phone),
		Country:   "India",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks supplier invariants.
func (s *Supplier) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewValidation("supplier name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(s.Phone) == "" {
		return apperror.NewValidation("phone is required").WithDetail("field", "phone")
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return apperror.NewValidation("invalid email").WithDetail("field", "email")
	}
	return nil
}

// Repository defines persistence operations for suppliers.
type Repository interface {
	Create(ctx context.Context, s *Supplier) error
	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)
	FindIDByName(ctx context.Context, name string) (id.ID, error)
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, supplierID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Supplier], error)
}
