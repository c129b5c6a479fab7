package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/infrastructure/woocommerce"
	"github.com/gosgconsulting/new-cms-sub013/internal/pkg/backoff"
	"github.com/gosgconsulting/new-cms-sub013/internal/ports"
)

const testTenant = "tenant-1"

// --- fakes ------------------------------------------------------------------

type fakeIntegrationRepo struct {
	integration *domain.Integration
	err         error
	lastSync    *time.Time
	lastSyncErr error
}

func (f *fakeIntegrationRepo) GetByTenant(_ context.Context, _, _ string) (*domain.Integration, error) {
	return f.integration, f.err
}

func (f *fakeIntegrationRepo) UpdateLastSync(_ context.Context, _, _ string, at time.Time) error {
	if f.lastSyncErr != nil {
		return f.lastSyncErr
	}
	f.lastSync = &at
	return nil
}

type fakeProductRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]domain.ExternalProduct
	inserts int
	updates int
	// failOnHandle injects a persistence failure for specific handles.
	failOnHandle map[string]error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{rows: make(map[int64]domain.ExternalProduct)}
}

func (f *fakeProductRepo) FindByExternal(_ context.Context, tenantID, externalID, externalSource string) (*domain.ExternalProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TenantID == tenantID && row.ExternalID == externalID && row.ExternalSource == externalSource {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) FindByHandle(_ context.Context, tenantID, handle string) (*domain.ExternalProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TenantID == tenantID && row.Handle == handle {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) Insert(_ context.Context, product *domain.ExternalProduct) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOnHandle[product.Handle]; err != nil {
		return 0, err
	}
	f.nextID++
	f.inserts++
	row := *product
	row.ID = f.nextID
	f.rows[row.ID] = row
	return row.ID, nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *domain.ExternalProduct) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOnHandle[product.Handle]; err != nil {
		return err
	}
	if _, ok := f.rows[product.ID]; !ok {
		return &domain.PersistenceError{Op: "update product", Err: errors.New("row vanished")}
	}
	f.updates++
	f.rows[product.ID] = *product
	return nil
}

func (f *fakeProductRepo) seed(product domain.ExternalProduct) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	product.ID = f.nextID
	f.rows[product.ID] = product
	return product.ID
}

// fakeVariantRepo stores rows in a slice so inserts append unconditionally,
// like the real table: the partial unique index only guards non-empty SKUs.
type fakeVariantRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    []domain.ProductVariant
	inserts int
	updates int
}

func newFakeVariantRepo() *fakeVariantRepo {
	return &fakeVariantRepo{}
}

func (f *fakeVariantRepo) FindBySKU(_ context.Context, productID int64, sku string) (*domain.ProductVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ProductID == productID && row.SKU == sku {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeVariantRepo) FindByTitle(_ context.Context, productID int64, title string) (*domain.ProductVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ProductID == productID && row.Title == title {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeVariantRepo) Insert(_ context.Context, variant *domain.ProductVariant) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if variant.SKU != "" {
		for _, row := range f.rows {
			if row.ProductID == variant.ProductID && row.SKU == variant.SKU {
				return 0, &domain.PersistenceError{Op: "insert variant", Err: errors.New("unique violation")}
			}
		}
	}
	f.nextID++
	f.inserts++
	row := *variant
	row.ID = f.nextID
	f.rows = append(f.rows, row)
	return row.ID, nil
}

func (f *fakeVariantRepo) Update(_ context.Context, variant *domain.ProductVariant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == variant.ID {
			f.updates++
			f.rows[i] = *variant
			return nil
		}
	}
	return &domain.PersistenceError{Op: "update variant", Err: errors.New("row vanished")}
}

type fakeMirrorRepo struct {
	mu      sync.Mutex
	upserts int
	err     error
}

func (f *fakeMirrorRepo) Upsert(_ context.Context, _ *domain.LegacyProductMirror) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts++
	return nil
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]domain.ExternalOrder
	items   map[int64][]domain.OrderItem
	inserts int
	updates int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		rows:  make(map[int64]domain.ExternalOrder),
		items: make(map[int64][]domain.OrderItem),
	}
}

func (f *fakeOrderRepo) FindByExternal(_ context.Context, tenantID, externalID, externalSource string) (*domain.ExternalOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TenantID == tenantID && row.ExternalID == externalID && row.ExternalSource == externalSource {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) Insert(_ context.Context, order *domain.ExternalOrder) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.inserts++
	row := *order
	row.ID = f.nextID
	f.rows[row.ID] = row
	return row.ID, nil
}

func (f *fakeOrderRepo) Update(_ context.Context, order *domain.ExternalOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.rows[order.ID] = *order
	return nil
}

func (f *fakeOrderRepo) ReplaceItems(_ context.Context, orderID int64, items []domain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[orderID] = items
	return nil
}

type fakeReportCache struct {
	mu    sync.Mutex
	saved []*domain.SyncReport
}

func (f *fakeReportCache) SaveReport(_ context.Context, report *domain.SyncReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, report)
	return nil
}

func (f *fakeReportCache) LastReport(_ context.Context, tenantID, entity string) (*domain.SyncReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].TenantID == tenantID && f.saved[i].Entity == entity {
			return f.saved[i], nil
		}
	}
	return nil, nil
}

// scriptedClient pages through a fixed catalog. Errors in queue are consumed
// one per call before any page is served; sticky repeats on every call.
type scriptedClient struct {
	mu          sync.Mutex
	catalog     []woocommerce.Product
	orderBook   []woocommerce.Order
	queue       []error
	sticky      error
	calls       int
	lastFilters map[string]string
}

func (c *scriptedClient) nextErr() error {
	if len(c.queue) > 0 {
		err := c.queue[0]
		c.queue = c.queue[1:]
		return err
	}
	return c.sticky
}

func (c *scriptedClient) GetProducts(_ context.Context, page, perPage int, filters map[string]string) ([]woocommerce.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.lastFilters = filters
	if err := c.nextErr(); err != nil {
		return nil, err
	}
	return slicePage(c.catalog, page, perPage), nil
}

func (c *scriptedClient) GetProduct(_ context.Context, _ int64) (*woocommerce.Product, error) {
	return nil, nil
}

func (c *scriptedClient) GetOrders(_ context.Context, page, perPage int, _ map[string]string) ([]woocommerce.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if err := c.nextErr(); err != nil {
		return nil, err
	}
	return slicePage(c.orderBook, page, perPage), nil
}

func (c *scriptedClient) GetOrder(_ context.Context, _ int64) (*woocommerce.Order, error) {
	return nil, nil
}

func (c *scriptedClient) TestConnection(_ context.Context) woocommerce.ConnectionStatus {
	return woocommerce.ConnectionStatus{Success: true, StoreName: "https://shop.test"}
}

func slicePage[T any](all []T, page, perPage int) []T {
	lo := (page - 1) * perPage
	if lo >= len(all) {
		return nil
	}
	hi := lo + perPage
	if hi > len(all) {
		hi = len(all)
	}
	return all[lo:hi]
}

// --- fixture ----------------------------------------------------------------

type syncFixture struct {
	integrations *fakeIntegrationRepo
	products     *fakeProductRepo
	variants     *fakeVariantRepo
	mirror       *fakeMirrorRepo
	orders       *fakeOrderRepo
	reports      *fakeReportCache
	client       *scriptedClient
	service      *SyncService
}

func testSyncOptions() SyncOptions {
	return SyncOptions{
		PerPage:  50,
		MaxPages: 100,
		Backoff:  backoff.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}
}

func newSyncFixture(t *testing.T, opts SyncOptions) *syncFixture {
	t.Helper()

	f := &syncFixture{
		integrations: &fakeIntegrationRepo{
			integration: &domain.Integration{
				TenantID:       testTenant,
				StoreURL:       "https://shop.test",
				ConsumerKey:    "ck_test",
				ConsumerSecret: "cs_test",
				IsActive:       true,
			},
		},
		products: newFakeProductRepo(),
		variants: newFakeVariantRepo(),
		mirror:   &fakeMirrorRepo{},
		orders:   newFakeOrderRepo(),
		reports:  &fakeReportCache{},
		client:   &scriptedClient{},
	}

	factory := func(_ *domain.Integration) (ports.CommerceClient, error) {
		return f.client, nil
	}
	resolver := NewConfigResolver(f.integrations, zerolog.Nop())
	f.service = NewSyncService(resolver, factory, f.products, f.variants, f.mirror, f.orders, f.reports, nil, zerolog.Nop(), opts)
	return f
}

func makeProducts(n int) []woocommerce.Product {
	products := make([]woocommerce.Product, n)
	for i := range products {
		id := int64(i + 1)
		products[i] = woocommerce.Product{
			ID:     id,
			Name:   fmt.Sprintf("Product %d", id),
			Slug:   fmt.Sprintf("product-%d", id),
			Type:   "simple",
			Status: "publish",
			SKU:    fmt.Sprintf("SKU-%d", id),
			Price:  "10.00",
		}
	}
	return products
}

// --- product sync -----------------------------------------------------------

func TestSyncProducts_PaginatesToNaturalEnd(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.catalog = makeProducts(120) // pages of 50, 50, 20

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Equal(t, 3, report.PagesFetched)
	assert.Equal(t, 120, report.Created)
	assert.Zero(t, report.Updated)
	assert.Zero(t, report.Errors)
	assert.Equal(t, map[string]string{"status": "publish"}, f.client.lastFilters)
	assert.Equal(t, 120, f.mirror.upserts)
	assert.NotNil(t, f.integrations.lastSync, "last_sync_at must be stamped after a completed run")
}

func TestSyncProducts_SecondRunIsIdempotent(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.catalog = makeProducts(120)

	_, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Zero(t, report.Created, "re-running against unchanged upstream creates nothing")
	assert.Equal(t, 120, report.Updated)
	assert.Zero(t, report.Errors)
	assert.Len(t, f.products.rows, 120)
	assert.Len(t, f.variants.rows, 120, "variants are matched by SKU, not duplicated")
}

func TestSyncProducts_SkulessProductKeepsOneVariant(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	catalog := makeProducts(1)
	catalog[0].SKU = ""
	f.client.catalog = catalog

	_, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Zero(t, report.Errors)
	require.Len(t, f.variants.rows, 1, "re-syncing a SKU-less product must update its Default variant, not add another")
	assert.Equal(t, 1, f.variants.inserts)
	assert.Equal(t, 1, f.variants.updates)
}

func TestSyncProducts_EmptyStore(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Equal(t, 1, report.PagesFetched)
	assert.Zero(t, report.Created)
}

func TestSyncProducts_MalformedItemIsIsolated(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	catalog := makeProducts(20)
	catalog[4].Name = "" // neither slug nor name: unmappable
	catalog[4].Slug = ""
	f.client.catalog = catalog

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Equal(t, 19, report.Created)
	assert.Equal(t, 1, report.Errors)
	require.Len(t, report.ErrorSamples, 1)
	assert.Contains(t, report.ErrorSamples[0], "cannot map upstream record")
}

func TestSyncProducts_PersistenceFailureIsIsolated(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.catalog = makeProducts(10)
	f.products.failOnHandle = map[string]error{
		"product-7": &domain.PersistenceError{Op: "insert product", Err: errors.New("constraint violation")},
	}

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, 9, report.Created)
	assert.Equal(t, 1, report.Errors)
}

func TestSyncProducts_AuthFailureAbortsRun(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.sticky = &domain.AuthError{Status: 401, Reason: "invalid credentials"}

	report, err := f.service.SyncProducts(context.Background(), testTenant)

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.RunFailed, report.Status)
	assert.Contains(t, report.FailureCause, "authentication failed")
	assert.Nil(t, f.integrations.lastSync, "a failed run must not stamp last_sync_at")
}

func TestSyncProducts_FetchFailureEndsPaginationKeepingProgress(t *testing.T) {
	opts := testSyncOptions()
	opts.PerPage = 2
	f := newSyncFixture(t, opts)
	f.client.catalog = makeProducts(6)
	// Page 1 succeeds; page 2 fails on both the initial try and the retry.
	f.client.queue = []error{
		nil,
		&domain.NetworkError{Endpoint: "/products", Err: errors.New("connection reset")},
		&domain.NetworkError{Endpoint: "/products", Err: errors.New("connection reset")},
	}

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err, "a non-auth fetch failure ends the run without a fatal error")

	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Equal(t, 1, report.PagesFetched)
	assert.Equal(t, 2, report.Created, "items persisted before the failure are kept")
	assert.Equal(t, 1, report.Errors)
}

func TestSyncProducts_RateLimitIsRetried(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.catalog = makeProducts(3)
	f.client.queue = []error{&domain.RateLimitError{RetryAfter: time.Millisecond}}

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Equal(t, 3, report.Created)
	assert.Zero(t, report.Errors)
}

func TestSyncProducts_TruncatesAtPageCeiling(t *testing.T) {
	opts := testSyncOptions()
	opts.PerPage = 2
	opts.MaxPages = 2
	f := newSyncFixture(t, opts)
	f.client.catalog = makeProducts(10)

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, domain.RunTruncated, report.Status)
	assert.Equal(t, 2, report.PagesFetched)
	assert.Equal(t, 4, report.Created)
}

func TestSyncProducts_Cancellation(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.catalog = makeProducts(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.service.SyncProducts(ctx, testTenant)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.RunCancelled, report.Status)
}

func TestSyncProducts_NotConfigured(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.integrations.integration = nil

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	assert.ErrorIs(t, err, domain.ErrIntegrationNotConfigured)
	assert.Equal(t, domain.RunFailed, report.Status)
	assert.Zero(t, f.client.calls, "no upstream call may happen without a configured integration")
}

func TestSyncProducts_InactiveIntegration(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.integrations.integration.IsActive = false

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	assert.ErrorIs(t, err, domain.ErrIntegrationInactive)
	assert.Equal(t, domain.RunFailed, report.Status)
}

func TestSyncProducts_MirrorFailureIsNotARunError(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.catalog = makeProducts(5)
	f.mirror.err = &domain.PersistenceError{Op: "upsert mirror", Err: errors.New("legacy table locked")}

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Created)
	assert.Zero(t, report.Errors, "mirror drift is logged, never counted against the run")
	assert.Zero(t, f.mirror.upserts)
}

func TestSyncProducts_ReportIsCached(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.catalog = makeProducts(2)

	report, err := f.service.SyncProducts(context.Background(), testTenant)
	require.NoError(t, err)

	cached, err := f.service.LastReport(context.Background(), testTenant, "products")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, report.RunID, cached.RunID)
	assert.NotEmpty(t, cached.RunID)
	assert.GreaterOrEqual(t, cached.Duration, domain.Millis(0))
}

// --- order sync -------------------------------------------------------------

func TestSyncOrders(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	productRowID := f.products.seed(domain.ExternalProduct{
		TenantID:       testTenant,
		Name:           "Shirt",
		Handle:         "shirt",
		ExternalID:     "101",
		ExternalSource: domain.IntegrationTypeWooCommerce,
	})
	f.client.orderBook = []woocommerce.Order{
		{
			ID:       501,
			Status:   "processing",
			Currency: "SGD",
			Total:    "30.00",
			LineItems: []woocommerce.LineItem{
				{ID: 1, ProductID: 101, Name: "Shirt", Quantity: 3, Total: "30.00"},
				{ID: 2, ProductID: 999, Name: "Gone", Quantity: 1, Total: "0.00"},
			},
		},
	}

	report, err := f.service.SyncOrders(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Equal(t, 1, report.Created)
	assert.Zero(t, report.Errors)

	orderID := int64(1)
	items := f.orders.items[orderID]
	require.Len(t, items, 2)
	assert.Equal(t, productRowID, items[0].ProductID, "line items resolve against already-synced products")
	assert.Zero(t, items[1].ProductID, "unknown upstream products stay unresolved, the line is kept")
}

func TestSyncOrders_SecondRunUpdates(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.orderBook = []woocommerce.Order{{ID: 501, Status: "pending", Total: "5.00"}}

	_, err := f.service.SyncOrders(context.Background(), testTenant)
	require.NoError(t, err)

	f.client.orderBook[0].Status = "completed"
	report, err := f.service.SyncOrders(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Zero(t, report.Created)
	assert.Equal(t, 1, report.Updated)
	require.Len(t, f.orders.rows, 1)
	for _, row := range f.orders.rows {
		assert.Equal(t, domain.OrderStatusFulfilled, row.Status)
	}
}

func TestSyncOrders_FetchFailureEndsPaginationKeepingProgress(t *testing.T) {
	opts := testSyncOptions()
	opts.PerPage = 1
	f := newSyncFixture(t, opts)
	f.client.orderBook = []woocommerce.Order{
		{ID: 501, Status: "pending", Total: "5.00"},
		{ID: 502, Status: "pending", Total: "6.00"},
	}
	f.client.queue = []error{
		nil,
		&domain.NetworkError{Endpoint: "/orders", Err: errors.New("connection reset")},
		&domain.NetworkError{Endpoint: "/orders", Err: errors.New("connection reset")},
	}

	report, err := f.service.SyncOrders(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Equal(t, 1, report.PagesFetched)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Errors)
	assert.Nil(t, f.integrations.lastSync, "an early-ended run must not stamp last_sync_at")
}

func TestSyncOrders_AuthFailureAbortsRun(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.sticky = &domain.AuthError{Status: 401, Reason: "invalid credentials"}

	report, err := f.service.SyncOrders(context.Background(), testTenant)

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.RunFailed, report.Status)
}

func TestSyncOrders_MalformedOrderIsIsolated(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.client.orderBook = []woocommerce.Order{
		{ID: 0}, // no upstream id: unmappable
		{ID: 502, Status: "pending", Total: "5.00"},
	}

	report, err := f.service.SyncOrders(context.Background(), testTenant)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Errors)
}

// --- connection probe and report lookup -------------------------------------

func TestTestConnection(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())

	status, err := f.service.TestConnection(context.Background(), testTenant)
	require.NoError(t, err)
	assert.True(t, status.Success)
	assert.Equal(t, "https://shop.test", status.StoreName)
}

func TestTestConnection_NotConfigured(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	f.integrations.integration = nil

	status, err := f.service.TestConnection(context.Background(), testTenant)
	assert.ErrorIs(t, err, domain.ErrIntegrationNotConfigured)
	assert.False(t, status.Success)
	assert.NotEmpty(t, status.Error)
}

func TestLastReport_NoCacheWired(t *testing.T) {
	f := newSyncFixture(t, testSyncOptions())
	resolver := NewConfigResolver(f.integrations, zerolog.Nop())
	factory := func(_ *domain.Integration) (ports.CommerceClient, error) { return f.client, nil }
	service := NewSyncService(resolver, factory, f.products, f.variants, nil, f.orders, nil, nil, zerolog.Nop(), testSyncOptions())

	report, err := service.LastReport(context.Background(), testTenant, "products")
	require.NoError(t, err)
	assert.Nil(t, report)
}
