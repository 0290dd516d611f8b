package invoice

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msana/internal/core/apperror"
	appctx "msana/internal/core/context"
	"msana/internal/core/id"
	"msana/internal/core/types"
	"msana/internal/domain"
	"msana/internal/domain/audit"
	"msana/internal/domain/catalogs/product"
	"msana/pkg/logger"
)

// fakeRepo is an in-memory Repository that can simulate numbering races.
type fakeRepo struct {
	mu sync.Mutex

	byNumber map[string]*Invoice

	// failDuplicates makes the next N Create calls fail with a duplicate
	// error regardless of the stored numbers.
	failDuplicates int

	createCalls int
	lastCalls   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byNumber: make(map[string]*Invoice)}
}

func (r *fakeRepo) Create(ctx context.Context, inv *Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.createCalls++
	if r.failDuplicates > 0 {
		r.failDuplicates--
		return apperror.NewDuplicate("invoice", "invoice_no", inv.InvoiceNo)
	}
	if _, ok := r.byNumber[inv.InvoiceNo]; ok {
		return apperror.NewDuplicate("invoice", "invoice_no", inv.InvoiceNo)
	}
	r.byNumber[inv.InvoiceNo] = inv
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.byNumber {
		if inv.ID == invoiceID {
			return inv, nil
		}
	}
	return nil, apperror.NewNotFound("invoice", invoiceID)
}

func (r *fakeRepo) GetByNumber(ctx context.Context, invoiceNo string) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.byNumber[invoiceNo]; ok {
		return inv, nil
	}
	return nil, apperror.NewNotFound("invoice", invoiceNo)
}

func (r *fakeRepo) LastNumberForPrefix(ctx context.Context, dayPrefix string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastCalls++
	last := ""
	for no := range r.byNumber {
		if len(no) < len(dayPrefix) || no[:len(dayPrefix)] != dayPrefix {
			continue
		}
		// Length before lexicographic order, like the real query.
		if len(no) > len(last) || (len(no) == len(last) && no > last) {
			last = no
		}
	}
	return last, nil
}

func (r *fakeRepo) UpdateMutable(ctx context.Context, inv *Invoice) error {
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return domain.ListResult[*Invoice]{}, nil
}

// fakeCatalog resolves a fixed product set.
type fakeCatalog struct {
	products map[id.ID]*product.Product
}

func (c *fakeCatalog) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	if p, ok := c.products[productID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("product", productID)
}

type stubAuditRepo struct{}

func (stubAuditRepo) Create(ctx context.Context, e *audit.Entry) error { return nil }
func (stubAuditRepo) List(ctx context.Context, filter audit.ListFilter) (domain.ListResult[*audit.Entry], error) {
	return domain.ListResult[*audit.Entry]{}, nil
}
func (stubAuditRepo) CountByAction(ctx context.Context, from, to *time.Time) ([]audit.ActionCount, error) {
	return nil, nil
}

func testService(t *testing.T, repo Repository, catalog CatalogLookup) *Service {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)

	svc := NewService(repo, catalog, audit.NewRecorder(stubAuditRepo{}, log), "INV")
	svc.now = func() time.Time {
		return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func validDraft() Draft {
	rate := types.MustMoney("100")
	return Draft{
		PatientName: "Ramesh Kumar",
		Mode:        ModeCash,
		Lines: []DraftLine{
			{Name: "Paracetamol 500mg", Qty: 2, UnitRate: &rate},
		},
	}
}

func TestServiceCreate_AssignsDayScopedNumber(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, &fakeCatalog{})

	inv, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "INV/26/300001", inv.InvoiceNo)

	inv2, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "INV/26/300002", inv2.InvoiceNo)
}

func TestServiceCreate_ContinuesPastPadWidth(t *testing.T) {
	repo := newFakeRepo()
	repo.byNumber["INV/26/309999"] = &Invoice{ID: id.New(), InvoiceNo: "INV/26/309999"}
	repo.byNumber["INV/26/3010000"] = &Invoice{ID: id.New(), InvoiceNo: "INV/26/3010000"}
	svc := testService(t, repo, &fakeCatalog{})

	// The five-digit number is the day's latest even though ...9999 sorts
	// higher lexicographically; the next allocation must build on it.
	inv, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "INV/26/3010001", inv.InvoiceNo)
}

func TestServiceCreate_RetriesOnNumberCollision(t *testing.T) {
	repo := newFakeRepo()
	repo.failDuplicates = 2
	svc := testService(t, repo, &fakeCatalog{})

	inv, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)

	// Two collisions, then success on the third attempt.
	assert.Equal(t, 3, repo.createCalls)
	assert.Equal(t, 3, repo.lastCalls)
	assert.Equal(t, "INV/26/300001", inv.InvoiceNo)
}

func TestServiceCreate_ConcurrentCreationsGetUniqueNumbers(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, &fakeCatalog{})

	// Each lost race costs one retry, and a creator can lose at most one
	// race per competing success, so 5 workers stay within 5 attempts.
	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), validDraft())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	require.Len(t, repo.byNumber, workers)
	for seq := 1; seq <= workers; seq++ {
		assert.Contains(t, repo.byNumber, fmt.Sprintf("INV/26/30%04d", seq))
	}
}

func TestServiceCreate_SequenceExhaustedAfterMaxAttempts(t *testing.T) {
	repo := newFakeRepo()
	repo.failDuplicates = maxNumberAttempts
	svc := testService(t, repo, &fakeCatalog{})

	_, err := svc.Create(context.Background(), validDraft())
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSequenceExhausted, appErr.Code)
	assert.Equal(t, maxNumberAttempts, repo.createCalls)
}

func TestServiceCreate_NonDuplicateErrorStopsImmediately(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, &fakeCatalog{})

	// Empty patient name never reaches the repo.
	draft := validDraft()
	draft.PatientName = "  "

	_, err := svc.Create(context.Background(), draft)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, 0, repo.createCalls)
}

func TestServiceCreate_CatalogFallbacks(t *testing.T) {
	mrp := types.MustMoney("45.50")
	gst := types.MustMoney("12")
	prod := &product.Product{
		ID:         id.New(),
		SKU:        "DOLO-650",
		Brand:      "Dolo",
		Strength:   "650mg",
		Form:       product.FormTablet,
		MRP:        mrp,
		GSTPercent: gst,
		IsActive:   true,
	}
	repo := newFakeRepo()
	svc := testService(t, repo, &fakeCatalog{products: map[id.ID]*product.Product{prod.ID: prod}})

	draft := validDraft()
	draft.Lines = []DraftLine{{ProductID: &prod.ID, Qty: 1}}

	inv, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)
	require.Len(t, inv.Lines, 1)

	got := inv.Lines[0]
	assert.Equal(t, prod.DisplayName(), got.ProductName)
	assert.NotNil(t, got.ProductID)
	assert.True(t, got.UnitRate.Equal(mrp), "rate = %s", got.UnitRate)
	assert.True(t, got.GSTPct.Equal(gst), "gst = %s", got.GSTPct)
}

func TestServiceCreate_UnresolvableProductBecomesCustomItem(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, &fakeCatalog{})

	missing := id.New()
	rate := types.MustMoney("10")
	draft := validDraft()
	draft.Lines = []DraftLine{{ProductID: &missing, Qty: 1, UnitRate: &rate}}

	inv, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)
	require.Len(t, inv.Lines, 1)

	assert.Equal(t, "Custom Item", inv.Lines[0].ProductName)
	assert.Nil(t, inv.Lines[0].ProductID)
}

func TestServiceCreate_CreatedByFromContext(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, &fakeCatalog{})

	userID := id.New()
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: userID.String(),
		Name:   "Cashier",
		Role:   "staff",
	})

	inv, err := svc.Create(ctx, validDraft())
	require.NoError(t, err)
	assert.Equal(t, userID, inv.CreatedBy)
}

func TestServiceApplyUpdate_RejectsInvalidStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, &fakeCatalog{})

	inv, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)

	bad := Status("SHIPPED")
	_, err = svc.ApplyUpdate(context.Background(), inv.ID, Update{Status: &bad})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestServiceApplyUpdate_StatusAndNotes(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, &fakeCatalog{})

	inv, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)

	pending := StatusPending
	notes := "partial payment, balance due Friday"
	updated, err := svc.ApplyUpdate(context.Background(), inv.ID, Update{Status: &pending, Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, updated.Status)
	assert.Equal(t, notes, updated.Notes)
}

func TestNumberingBackoff(t *testing.T) {
	want := []time.Duration{
		100 * time.Millisecond,
		150 * time.Millisecond,
		200 * time.Millisecond,
		250 * time.Millisecond,
	}
	for attempt, d := range want {
		if got := numberingBackoff(attempt + 1); got != d {
			t.Errorf("backoff(%d) = %v, want %v", attempt+1, got, d)
		}
	}
}
