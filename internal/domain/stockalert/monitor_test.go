package stockalert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msana/internal/core/id"
	"msana/internal/domain/catalogs/product"
	"msana/pkg/logger"
)

// recordingNotifier captures dispatched alerts. block, when set, makes Send
// wait until the channel is closed so overlapping-scan behavior can be tested.
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []Alert
	block  chan struct{}
}

func (n *recordingNotifier) Send(ctx context.Context, alert Alert) error {
	if n.block != nil {
		<-n.block
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

func (n *recordingNotifier) last() Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.alerts[len(n.alerts)-1]
}

// stubSource returns a fixed low-stock set, or an error.
type stubSource struct {
	mu       sync.Mutex
	products []*product.Product
	err      error
}

func (s *stubSource) FindLowStock(ctx context.Context) ([]*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*product.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *stubSource) set(products ...*product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
}

func lowProduct(stock int) *product.Product {
	return &product.Product{
		ID:       id.New(),
		SKU:      "PCM-500",
		Name:     "Paracetamol 500mg TAB",
		Stock:    stock,
		MinStock: 10,
		IsActive: true,
	}
}

func testMonitor(t *testing.T, source ProductSource, notifier Notifier, opts ...Option) *Monitor {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)
	return NewMonitor(source, notifier, log, opts...)
}

func TestScan_AlertsOncePerStockValue(t *testing.T) {
	source := &stubSource{}
	source.set(lowProduct(5))
	notifier := &recordingNotifier{}
	m := testMonitor(t, source, notifier)

	ctx := context.Background()
	m.Scan(ctx)
	m.Scan(ctx)
	m.Scan(ctx)

	assert.Equal(t, 1, notifier.count(), "same (product, stock) state must alert once")
	assert.Equal(t, KindLowStock, notifier.last().Kind)
}

func TestScan_ReAlertsWhenStockChanges(t *testing.T) {
	p := lowProduct(5)
	source := &stubSource{}
	source.set(p)
	notifier := &recordingNotifier{}
	m := testMonitor(t, source, notifier)

	ctx := context.Background()
	m.Scan(ctx)
	require.Equal(t, 1, notifier.count())

	// Stock dropped further: a new state, a new alert.
	p.Stock = 3
	m.Scan(ctx)
	assert.Equal(t, 2, notifier.count())

	// Unchanged again.
	m.Scan(ctx)
	assert.Equal(t, 2, notifier.count())
}

func TestScan_OutOfStockClassification(t *testing.T) {
	source := &stubSource{}
	source.set(lowProduct(0))
	notifier := &recordingNotifier{}
	m := testMonitor(t, source, notifier)

	m.Scan(context.Background())

	require.Equal(t, 1, notifier.count())
	assert.Equal(t, KindOutOfStock, notifier.last().Kind)
}

func TestResetProduct_AllowsReAlertAtSameStock(t *testing.T) {
	p := lowProduct(5)
	source := &stubSource{}
	source.set(p)
	notifier := &recordingNotifier{}
	m := testMonitor(t, source, notifier)

	ctx := context.Background()
	m.Scan(ctx)
	require.Equal(t, 1, notifier.count())

	// After e.g. a manual stock adjustment the caller resets the product;
	// the very same stock value alerts again.
	m.ResetProduct(p.ID)
	m.Scan(ctx)
	assert.Equal(t, 2, notifier.count())
}

func TestResetProduct_LeavesOtherProductsSuppressed(t *testing.T) {
	p1 := lowProduct(5)
	p2 := lowProduct(2)
	source := &stubSource{}
	source.set(p1, p2)
	notifier := &recordingNotifier{}
	m := testMonitor(t, source, notifier)

	ctx := context.Background()
	m.Scan(ctx)
	require.Equal(t, 2, notifier.count())

	m.ResetProduct(p1.ID)
	m.Scan(ctx)

	// Only p1 re-alerts.
	assert.Equal(t, 3, notifier.count())
}

func TestScan_FetchFailureAbortsTick(t *testing.T) {
	source := &stubSource{err: errors.New("connection refused")}
	notifier := &recordingNotifier{}
	m := testMonitor(t, source, notifier)

	m.Scan(context.Background())
	assert.Equal(t, 0, notifier.count())

	// Recovery on a later tick.
	source.mu.Lock()
	source.err = nil
	source.mu.Unlock()
	source.set(lowProduct(5))

	m.Scan(context.Background())
	assert.Equal(t, 1, notifier.count())
}

// hangingSource blocks the fetch until its context expires, like a wedged
// database connection.
type hangingSource struct{}

func (hangingSource) FindLowStock(ctx context.Context) ([]*product.Product, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestScan_FetchIsBoundedByScanTimeout(t *testing.T) {
	notifier := &recordingNotifier{}
	m := testMonitor(t, hangingSource{}, notifier, WithScanTimeout(20*time.Millisecond))

	done := make(chan struct{})
	go func() {
		m.Scan(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not return after the fetch deadline expired")
	}
	assert.Equal(t, 0, notifier.count())
}

func TestScan_DedupSetEvictsOldestWhenFull(t *testing.T) {
	p1 := lowProduct(5)
	p2 := lowProduct(4)
	p3 := lowProduct(3)
	source := &stubSource{}
	notifier := &recordingNotifier{}
	m := testMonitor(t, source, notifier, WithMaxEntries(2))

	ctx := context.Background()
	source.set(p1, p2)
	m.Scan(ctx)
	require.Equal(t, 2, notifier.count())

	// Filling past capacity evicts p1's entry.
	source.set(p3)
	m.Scan(ctx)
	require.Equal(t, 3, notifier.count())

	// p1 was evicted, so it alerts again; p3 is still tracked.
	source.set(p1, p3)
	m.Scan(ctx)
	assert.Equal(t, 4, notifier.count())
}

func TestScan_OverlappingTickIsSkipped(t *testing.T) {
	source := &stubSource{}
	source.set(lowProduct(5))
	notifier := &recordingNotifier{block: make(chan struct{})}
	m := testMonitor(t, source, notifier)

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		m.Scan(ctx) // blocks inside the notifier
		close(done)
	}()

	// Wait until the first scan is inside Send.
	time.Sleep(50 * time.Millisecond)

	// A second tick while the first is running must be a no-op.
	m.Scan(ctx)
	assert.Equal(t, 0, notifier.count())

	close(notifier.block)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked scan never finished")
	}
	assert.Equal(t, 1, notifier.count())
}
