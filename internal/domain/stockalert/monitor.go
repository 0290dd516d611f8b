// Package stockalert watches inventory levels and raises low-stock alerts
// with de-duplication, so a product sitting at the same low quantity does not
// produce an alert storm.
package stockalert

import (
	"context"
	"sync"
	"time"

	"msana/internal/core/id"
	"msana/internal/domain/catalogs/product"
	"msana/pkg/logger"
)

// Kind classifies an alert.
type Kind string

const (
	KindLowStock   Kind = "low_stock"
	KindOutOfStock Kind = "out_of_stock"
)

// Alert is a single low-stock condition to dispatch.
type Alert struct {
	Product *product.Product
	Kind    Kind
}

// Notifier dispatches an alert to every configured recipient, logging each
// delivery outcome independently. A failed recipient must not block the rest;
// the returned error is informational only.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// ProductSource supplies the products currently at or below their threshold.
type ProductSource interface {
	FindLowStock(ctx context.Context) ([]*product.Product, error)
}

// DefaultInterval is how often the monitor scans inventory.
const DefaultInterval = 5 * time.Minute

// defaultMaxEntries bounds the de-dup set; oldest entries are evicted first.
const defaultMaxEntries = 1000

// defaultScanTimeout bounds one tick end to end, covering the persistence
// fetch and every alert dispatch. A wedged database fails the tick instead of
// blocking the schedule.
const defaultScanTimeout = 30 * time.Second

// dedupKey identifies one alerted (product, stock level) state. A product
// re-alerts only when its stock value changes or its state is reset.
type dedupKey struct {
	productID id.ID
	stock     int
}

// Monitor owns the alert de-duplication state. The state is process-local and
// not persisted: a restart clears suppression and low-stock conditions
// re-alert on the next scan, which is accepted.
type Monitor struct {
	products    ProductSource
	notifier    Notifier
	log         *logger.Logger
	interval    time.Duration
	scanTimeout time.Duration

	// scanMu serializes scans: the de-dup set is not safe under overlapping
	// ticks, so a tick that would overlap is skipped.
	scanMu sync.Mutex

	// mu guards notified/order; ResetProduct is called from request paths.
	mu         sync.Mutex
	notified   map[dedupKey]struct{}
	order      []dedupKey
	maxEntries int
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval overrides the scan interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithScanTimeout overrides the per-tick deadline.
func WithScanTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.scanTimeout = d
		}
	}
}

// WithMaxEntries overrides the de-dup set capacity.
func WithMaxEntries(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.maxEntries = n
		}
	}
}

// NewMonitor creates a stock alert monitor.
func NewMonitor(products ProductSource, notifier Notifier, log *logger.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		products:    products,
		notifier:    notifier,
		log:         log.WithComponent("stockalert"),
		interval:    DefaultInterval,
		scanTimeout: defaultScanTimeout,
		notified:    make(map[dedupKey]struct{}),
		maxEntries:  defaultMaxEntries,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run scans on a fixed interval until ctx is cancelled. Call from a goroutine.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.log.Infow("stock monitor started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			m.log.Info("stock monitor stopped")
			return
		case <-ticker.C:
			m.Scan(ctx)
		}
	}
}

// Scan performs one tick: fetch low-stock products and alert each state not
// yet notified. A fetch failure aborts the tick (logged, never propagated) so
// the schedule continues. Overlapping calls are skipped. The whole tick runs
// under the scan timeout so a stuck fetch or dispatch cannot pin the monitor.
func (m *Monitor) Scan(ctx context.Context) {
	if !m.scanMu.TryLock() {
		m.log.Warn("previous stock scan still running, skipping tick")
		return
	}
	defer m.scanMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.scanTimeout)
	defer cancel()

	low, err := m.products.FindLowStock(ctx)
	if err != nil {
		m.log.Errorw("stock scan failed", "error", err)
		return
	}

	m.log.Infow("stock scan", "low_stock_count", len(low))

	for _, p := range low {
		key := dedupKey{productID: p.ID, stock: p.Stock}
		if m.alreadyNotified(key) {
			continue
		}

		kind := KindLowStock
		if p.Stock == 0 {
			kind = KindOutOfStock
		}

		if err := m.notifier.Send(ctx, Alert{Product: p, Kind: kind}); err != nil {
			m.log.Warnw("alert dispatch reported failure",
				"product_id", p.ID,
				"sku", p.SKU,
				"error", err,
			)
		}

		m.markNotified(key)
	}
}

// ResetProduct purges all de-dup entries for a product so the next scan can
// alert again, even at an unchanged stock value. Call after any stock or
// threshold mutation.
func (m *Monitor) ResetProduct(productID id.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]
	for _, key := range m.order {
		if key.productID == productID {
			delete(m.notified, key)
			continue
		}
		kept = append(kept, key)
	}
	m.order = kept
}

func (m *Monitor) alreadyNotified(key dedupKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.notified[key]
	return ok
}

// markNotified inserts the key, evicting the oldest entry when the set is
// full. Eviction is FIFO by insertion order, an approximation that bounds
// memory rather than a correctness guarantee.
func (m *Monitor) markNotified(key dedupKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notified[key]; ok {
		return
	}
	m.notified[key] = struct{}{}
	m.order = append(m.order, key)

	if len(m.notified) > m.maxEntries {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.notified, oldest)
	}
}
