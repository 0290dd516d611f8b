package supplier

import (
	"context"
	"fmt"
	"time"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/domain"
)

// ProductCounter reports how many active products reference a supplier.
type ProductCounter interface {
	CountBySupplier(ctx context.Context, supplierID id.ID) (int64, error)
}

// Service provides business logic for the supplier catalog.
type Service struct {
	repo     Repository
	products ProductCounter
}

// NewService creates a supplier service.
func NewService(repo Repository, products ProductCounter) *Service {
	return &Service{repo: repo, products: products}
}

// Create validates and persists a new supplier.
func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	return nil
}

// GetByID retrieves a supplier.
func (s *Service) GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	return s.repo.GetByID(ctx, supplierID)
}

// Update persists supplier changes.
func (s *Service) Update(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	sup.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, sup); err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return nil
}

// Delete removes a supplier unless active products still reference it.
func (s *Service) Delete(ctx context.Context, supplierID id.ID) error {
	if _, err := s.repo.GetByID(ctx, supplierID); err != nil {
		return err
	}

	count, err := s.products.CountBySupplier(ctx, supplierID)
	if err != nil {
		return fmt.Errorf("count supplier products: %w", err)
	}
	if count > 0 {
		return apperror.NewConflict("supplier has active products").
			WithDetail("productCount", count)
	}

	if err := s.repo.Delete(ctx, supplierID); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	return nil
}

// List retrieves suppliers with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Supplier], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// FindIDByName resolves a supplier ID by exact (case-insensitive) name.
func (s *Service) FindIDByName(ctx context.Context, name string) (id.ID, error) {
	return s.repo.FindIDByName(ctx, name)
}
