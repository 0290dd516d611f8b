package product

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/core/types"
	"msana/internal/domain"
	"msana/internal/domain/audit"
	"msana/pkg/logger"
)

// memRepo is an in-memory product Repository.
type memRepo struct {
	mu   sync.Mutex
	byID map[id.ID]*Product
}

func newMemRepo() *memRepo {
	return &memRepo{byID: make(map[id.ID]*Product)}
}

func (r *memRepo) Create(ctx context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[productID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("product", productID)
}

func (r *memRepo) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", sku)
}

func (r *memRepo) Update(ctx context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID)
	}
	r.byID[p.ID] = p
	return nil
}

func (r *memRepo) Delete(ctx context.Context, productID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, productID)
	return nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Product], error) {
	return domain.ListResult[*Product]{}, nil
}

func (r *memRepo) FindLowStock(ctx context.Context) ([]*Product, error) {
	return nil, nil
}

func (r *memRepo) FindExpiring(ctx context.Context, before time.Time) ([]*Product, error) {
	return nil, nil
}

func (r *memRepo) CountBySupplier(ctx context.Context, supplierID id.ID) (int64, error) {
	return 0, nil
}

// resetSpy records ResetProduct calls.
type resetSpy struct {
	mu    sync.Mutex
	calls []id.ID
}

func (s *resetSpy) ResetProduct(productID id.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, productID)
}

func (s *resetSpy) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// nameResolver maps supplier names to IDs.
type nameResolver struct {
	byName map[string]id.ID
}

func (r *nameResolver) FindIDByName(ctx context.Context, name string) (id.ID, error) {
	if sid, ok := r.byName[name]; ok {
		return sid, nil
	}
	return id.Nil(), apperror.NewNotFound("supplier", name)
}

type nopAuditRepo struct{}

func (nopAuditRepo) Create(ctx context.Context, e *audit.Entry) error { return nil }
func (nopAuditRepo) List(ctx context.Context, filter audit.ListFilter) (domain.ListResult[*audit.Entry], error) {
	return domain.ListResult[*audit.Entry]{}, nil
}
func (nopAuditRepo) CountByAction(ctx context.Context, from, to *time.Time) ([]audit.ActionCount, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo Repository, alerts AlertResetter, suppliers SupplierResolver) *Service {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)
	return NewService(repo, alerts, audit.NewRecorder(nopAuditRepo{}, log), suppliers)
}

func sampleProduct() *Product {
	p := NewProduct("PCM-500", "Calpol", "Paracetamol", FormTablet, "500mg")
	p.MRP = types.MustMoney("20.50")
	p.Stock = 100
	return p
}

func TestCreate_RejectsDuplicateSKU(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(t, repo, &resetSpy{}, nil)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, sampleProduct()))

	err := svc.Create(ctx, sampleProduct())
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestCreate_DerivesNameWhenUnset(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(t, repo, &resetSpy{}, nil)

	p := sampleProduct()
	require.NoError(t, svc.Create(context.Background(), p))
	assert.Equal(t, "Calpol 500mg TAB", p.Name)
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *resetSpy, *Product) {
		repo := newMemRepo()
		spy := &resetSpy{}
		svc := newTestService(t, repo, spy, nil)
		p := sampleProduct()
		require.NoError(t, repo.Create(ctx, p))
		return svc, spy, p
	}

	t.Run("add increases stock and resets alerts", func(t *testing.T) {
		svc, spy, p := setup(t)

		got, err := svc.AdjustStock(ctx, p.ID, StockAdd, 25)
		require.NoError(t, err)
		assert.Equal(t, 125, got.Stock)
		assert.Equal(t, 1, spy.count())
	})

	t.Run("subtract decreases stock", func(t *testing.T) {
		svc, spy, p := setup(t)

		got, err := svc.AdjustStock(ctx, p.ID, StockSubtract, 40)
		require.NoError(t, err)
		assert.Equal(t, 60, got.Stock)
		assert.Equal(t, 1, spy.count())
	})

	t.Run("subtract below zero fails without mutation", func(t *testing.T) {
		svc, spy, p := setup(t)

		_, err := svc.AdjustStock(ctx, p.ID, StockSubtract, 500)
		require.Error(t, err)

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

		stored, err := svc.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 100, stored.Stock)
		assert.Equal(t, 0, spy.count())
	})

	t.Run("unknown operation is rejected", func(t *testing.T) {
		svc, _, p := setup(t)

		_, err := svc.AdjustStock(ctx, p.ID, StockOperation("set"), 10)
		require.Error(t, err)
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		svc, _, p := setup(t)

		_, err := svc.AdjustStock(ctx, p.ID, StockAdd, 0)
		require.Error(t, err)
	})
}

func TestBulkImportCSV(t *testing.T) {
	supplierID := id.New()
	suppliers := &nameResolver{byName: map[string]id.ID{"MedPlus Distributors": supplierID}}

	csvData := strings.Join([]string{
		"sku,brand,generic,form,strength,mrp,gstPercent,stock,minStock,supplier,expiryDate",
		"PCM-500,Calpol,Paracetamol,tab,500mg,20.50,12,100,20,MedPlus Distributors,2027-06-30",
		"AMX-250,Mox,Amoxicillin,cap,250mg,85.00,5,50,10,,",
		",Missing,Sku,tab,10mg,5.00,12,0,0,,",       // no sku: rejected
		"BAD-MRP,Brand,Generic,tab,10mg,abc,12,0,0,,", // unparseable mrp: rejected
	}, "\n")

	repo := newMemRepo()
	svc := newTestService(t, repo, &resetSpy{}, suppliers)

	result, err := svc.BulkImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, "BAD-MRP", result.Errors[1].SKU)

	imported, err := repo.GetBySKU(context.Background(), "PCM-500")
	require.NoError(t, err)
	assert.Equal(t, 100, imported.Stock)
	assert.Equal(t, 20, imported.MinStock)
	require.NotNil(t, imported.SupplierID)
	assert.Equal(t, supplierID, *imported.SupplierID)
	require.NotNil(t, imported.ExpiryDate)
	assert.Equal(t, "2027-06-30", imported.ExpiryDate.Format("2006-01-02"))
}

func TestBulkImportCSV_EmptyInput(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(t, repo, &resetSpy{}, nil)

	_, err := svc.BulkImportCSV(context.Background(), strings.NewReader(""))
	require.Error(t, err)
}
