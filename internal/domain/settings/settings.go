// Package settings holds the singleton business profile: store identity for
// invoice headers, GST registration, and operational knobs.
package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"msana/internal/core/apperror"
	"msana/internal/domain/audit"
)

// Settings is the single business configuration row.
type Settings struct {
	StoreName    string `db:"store_name" json:"storeName"`
	AddressLine1 string `db:"address_line1" json:"addressLine1"`
	AddressLine2 string `db:"address_line2" json:"addressLine2,omitempty"`
	City         string `db:"city" json:"city"`
	State        string `db:"state" json:"state"`
	Pincode      string `db:"pincode" json:"pincode"`
	Phone        string `db:"phone" json:"phone"`
	Email        string `db:"email" json:"email,omitempty"`

	GSTNumber     string `db:"gst_number" json:"gstNumber"`
	DrugLicenseNo string `db:"drug_license_no" json:"drugLicenseNo,omitempty"`

	// InvoicePrefix is the operator's preferred document prefix, stored for
	// the UI. Invoice numbering itself is configured at deploy time.
	InvoicePrefix string `db:"invoice_prefix" json:"invoicePrefix"`

	// LowStockScanMinutes is the operator's preferred scan cadence, stored
	// for the UI. The monitor's interval is configured at deploy time.
	LowStockScanMinutes int `db:"low_stock_scan_minutes" json:"lowStockScanMinutes"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Default returns settings for a freshly provisioned store.
func Default() *Settings {
	return &Settings{
		StoreName: "mSana Pharmacy",
		State:     "Maharashtra",
	}
}

// Validate checks settings invariants.
func (s *Settings) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.StoreName) == "" {
		return apperror.NewValidation("store name is required").WithDetail("field", "storeName")
	}
	if s.LowStockScanMinutes < 0 {
		return apperror.NewValidation("scan interval cannot be negative").
			WithDetail("field", "lowStockScanMinutes")
	}
	return nil
}

// Repository persists the singleton settings row.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}

// Service provides read/update access to the business settings.
type Service struct {
	repo    Repository
	auditor *audit.Recorder
}

// NewService creates a settings service.
func NewService(repo Repository, auditor *audit.Recorder) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Get returns current settings, falling back to defaults when the row has
// never been saved.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	current, err := s.repo.Get(ctx)
	if apperror.IsNotFound(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return current, nil
}

// Update replaces the settings row.
func (s *Service) Update(ctx context.Context, next *Settings) (*Settings, error) {
	if err := next.Validate(ctx); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	s.auditor.Record(ctx, audit.ActionSettingsUpdated, audit.ResourceSettings, nil, map[string]any{
		"storeName": next.StoreName,
	})
	return next, nil
}
