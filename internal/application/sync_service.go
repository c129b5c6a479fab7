package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/infrastructure/metrics"
	"github.com/gosgconsulting/new-cms-sub013/internal/infrastructure/woocommerce"
	"github.com/gosgconsulting/new-cms-sub013/internal/mapper"
	"github.com/gosgconsulting/new-cms-sub013/internal/pkg/backoff"
	"github.com/gosgconsulting/new-cms-sub013/internal/ports"
)

const (
	entityProducts = "products"
	entityOrders   = "orders"
)

// SyncOptions are the run-level policy knobs of the orchestrator.
type SyncOptions struct {
	// PerPage is the upstream page size; a page shorter than this signals
	// the loop's natural termination.
	PerPage int
	// MaxPages is the hard safety ceiling against runaway pagination.
	MaxPages int
	// PageDelay is the fixed pause between successive page fetches.
	PageDelay time.Duration
	// Backoff governs retries of rate-limited or transport-failed fetches.
	Backoff backoff.Policy
}

// DefaultSyncOptions returns the production policy values.
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		PerPage:   50,
		MaxPages:  100,
		PageDelay: 750 * time.Millisecond,
		Backoff:   backoff.Default(),
	}
}

// SyncService drives the fetch, map, persist loop for one tenant at a time.
// Pages are fetched strictly sequentially; the persistence layer's unique
// constraints are the authority on write conflicts.
type SyncService struct {
	resolver      *ConfigResolver
	clientFactory ports.CommerceClientFactory
	products      ports.ProductRepository
	variants      ports.VariantRepository
	mirror        ports.LegacyMirrorRepository
	orders        ports.OrderRepository
	reports       ports.ReportCache
	metrics       *metrics.SyncMetrics
	logger        zerolog.Logger
	opts          SyncOptions
}

// NewSyncService creates the sync orchestrator. reports and m may be nil
// when no cache or metrics registry is wired (batch invocations).
func NewSyncService(
	resolver *ConfigResolver,
	clientFactory ports.CommerceClientFactory,
	products ports.ProductRepository,
	variants ports.VariantRepository,
	mirror ports.LegacyMirrorRepository,
	orders ports.OrderRepository,
	reports ports.ReportCache,
	m *metrics.SyncMetrics,
	logger zerolog.Logger,
	opts SyncOptions,
) *SyncService {
	if opts.PerPage <= 0 {
		opts.PerPage = 50
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 100
	}
	return &SyncService{
		resolver:      resolver,
		clientFactory: clientFactory,
		products:      products,
		variants:      variants,
		mirror:        mirror,
		orders:        orders,
		reports:       reports,
		metrics:       m,
		logger:        logger,
		opts:          opts,
	}
}

// SyncProducts runs one full product sync for the tenant. The returned
// report is always non-nil; the error is non-nil only for fatal aborts and
// cancellation.
func (s *SyncService) SyncProducts(ctx context.Context, tenantID string) (*domain.SyncReport, error) {
	report := s.newReport(tenantID, entityProducts)
	defer s.finish(report)

	integration, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return s.fail(report, err), err
	}
	client, err := s.clientFactory(integration)
	if err != nil {
		return s.fail(report, err), err
	}

	logger := s.logger.With().Str("run_id", report.RunID).Str("tenant_id", tenantID).Logger()
	logger.Info().Str("store_url", integration.StoreURL).Msg("starting product sync")

	completed, err := syncPages(ctx, s, logger, report,
		func(ctx context.Context, page int) ([]woocommerce.Product, error) {
			return s.fetchProductPage(ctx, client, page)
		},
		func(ctx context.Context, item *woocommerce.Product) {
			s.syncProduct(ctx, logger, tenantID, item, report)
		},
	)
	if err != nil {
		return report, err
	}
	if !completed {
		return report, nil
	}

	s.markSynced(ctx, logger, tenantID)
	logger.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("errors", report.Errors).
		Int("pages", report.PagesFetched).
		Msg("product sync finished")
	return report, nil
}

// syncPages drives the page loop shared by the product and order syncs:
// fetch (retried by the caller-supplied fetch), auth-abort, item isolation,
// the safety ceiling, and the inter-page delay. It returns completed=false
// when a fetch failure ended pagination early; the report then carries the
// error and everything persisted so far is kept.
func syncPages[T any](
	ctx context.Context,
	s *SyncService,
	logger zerolog.Logger,
	report *domain.SyncReport,
	fetchPage func(ctx context.Context, page int) ([]T, error),
	syncItem func(ctx context.Context, item *T),
) (bool, error) {
	for page := 1; page <= s.opts.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			s.cancel(report)
			return false, err
		}

		items, err := fetchPage(ctx, page)
		if err != nil {
			var authErr *domain.AuthError
			if errors.As(err, &authErr) {
				logger.Error().Err(err).Int("page", page).Msg("credentials rejected, aborting run")
				s.fail(report, err)
				return false, err
			}
			logger.Warn().Err(err).Int("page", page).Msg("page fetch failed after retries, ending pagination")
			report.RecordError(err)
			return false, nil
		}

		report.PagesFetched++
		if s.metrics != nil {
			s.metrics.PagesFetched.Inc()
		}
		if len(items) == 0 {
			break
		}

		for i := range items {
			syncItem(ctx, &items[i])
		}

		if len(items) < s.opts.PerPage {
			break
		}
		if page == s.opts.MaxPages {
			logger.Warn().Int("pages", page).Msg("page safety ceiling hit, truncating run")
			report.Status = domain.RunTruncated
			break
		}
		if err := sleepCtx(ctx, s.opts.PageDelay); err != nil {
			s.cancel(report)
			return false, err
		}
	}
	return true, nil
}

// fetchProductPage fetches one published-products page, retrying rate-limit
// and transport failures under the backoff policy.
func (s *SyncService) fetchProductPage(ctx context.Context, client ports.CommerceClient, page int) ([]woocommerce.Product, error) {
	var items []woocommerce.Product
	err := s.opts.Backoff.Retry(ctx, func() error {
		var fetchErr error
		items, fetchErr = client.GetProducts(ctx, page, s.opts.PerPage, map[string]string{"status": "publish"})
		s.countRateLimit(fetchErr)
		return fetchErr
	})
	return items, err
}

// fetchOrderPage fetches one orders page under the same retry policy.
func (s *SyncService) fetchOrderPage(ctx context.Context, client ports.CommerceClient, page int) ([]woocommerce.Order, error) {
	var items []woocommerce.Order
	err := s.opts.Backoff.Retry(ctx, func() error {
		var fetchErr error
		items, fetchErr = client.GetOrders(ctx, page, s.opts.PerPage, nil)
		s.countRateLimit(fetchErr)
		return fetchErr
	})
	return items, err
}

// syncProduct maps and persists one upstream product. Every failure is
// caught at this boundary: counted, logged, and never allowed to abort the
// page or the run.
func (s *SyncService) syncProduct(ctx context.Context, logger zerolog.Logger, tenantID string, upstream *woocommerce.Product, report *domain.SyncReport) {
	mapped, err := mapper.MapProduct(upstream, tenantID)
	if err != nil {
		s.recordItemError(logger, report, entityProducts, err)
		return
	}
	if mapper.IsVariable(upstream) {
		logger.Warn().
			Str("external_id", mapped.ExternalID).
			Str("handle", mapped.Handle).
			Msg("variable product degraded to a single default variant")
	}

	created, err := s.persistProduct(ctx, mapped)
	if err != nil {
		s.recordItemError(logger, report, entityProducts, err)
		return
	}
	if created {
		report.Created++
	} else {
		report.Updated++
	}
	if s.metrics != nil {
		result := "updated"
		if created {
			result = "created"
		}
		s.metrics.ItemsTotal.WithLabelValues(entityProducts, result).Inc()
	}

	variants := mapper.MapVariants(upstream, mapped.ID, tenantID)
	if err := s.persistVariants(ctx, variants); err != nil {
		s.recordItemError(logger, report, entityProducts, err)
		return
	}

	s.mirrorProduct(ctx, logger, mapped, variants)
}

// persistProduct resolves the existing row by (tenant, external_id) then by
// (tenant, handle) and applies the update-or-insert policy. It reports
// whether a new row was created and leaves mapped.ID set either way.
func (s *SyncService) persistProduct(ctx context.Context, mapped *domain.ExternalProduct) (bool, error) {
	existing, err := s.products.FindByExternal(ctx, mapped.TenantID, mapped.ExternalID, mapped.ExternalSource)
	if err != nil {
		return false, err
	}
	if existing == nil {
		if existing, err = s.products.FindByHandle(ctx, mapped.TenantID, mapped.Handle); err != nil {
			return false, err
		}
	}

	if existing != nil {
		mapped.ID = existing.ID
		return false, s.products.Update(ctx, mapped)
	}

	id, err := s.products.Insert(ctx, mapped)
	if err != nil {
		return false, err
	}
	mapped.ID = id
	return true, nil
}

func (s *SyncService) persistVariants(ctx context.Context, variants []domain.ProductVariant) error {
	for i := range variants {
		variant := &variants[i]
		var existing *domain.ProductVariant
		var err error
		if variant.SKU != "" {
			existing, err = s.variants.FindBySKU(ctx, variant.ProductID, variant.SKU)
		} else {
			// The partial unique index does not guard empty SKUs; matching on
			// the title keeps re-syncs from stacking up Default variants.
			existing, err = s.variants.FindByTitle(ctx, variant.ProductID, variant.Title)
		}
		if err != nil {
			return err
		}
		if existing != nil {
			variant.ID = existing.ID
			if err := s.variants.Update(ctx, variant); err != nil {
				return err
			}
			continue
		}
		id, err := s.variants.Insert(ctx, variant)
		if err != nil {
			return err
		}
		variant.ID = id
	}
	return nil
}

// mirrorProduct writes the legacy pern_products projection. Failures are
// logged and counted as drift, never against the run's error counter.
func (s *SyncService) mirrorProduct(ctx context.Context, logger zerolog.Logger, product *domain.ExternalProduct, variants []domain.ProductVariant) {
	if s.mirror == nil {
		return
	}

	mirror := &domain.LegacyProductMirror{
		TenantID:    product.TenantID,
		Slug:        product.Handle,
		Name:        product.Name,
		Description: product.Description,
		ImageURL:    product.FeaturedImage,
	}
	if len(variants) > 0 {
		mirror.Price = variants[0].Price
	}

	if err := s.mirror.Upsert(ctx, mirror); err != nil {
		logger.Warn().Err(err).Str("slug", mirror.Slug).Msg("legacy mirror write failed, tables may drift")
		if s.metrics != nil {
			s.metrics.MirrorFailures.Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.MirrorWrites.Inc()
	}
}

// SyncOrders runs one full order sync for the tenant, resolving line items
// against already-synced products. Same loop shape and failure contract as
// SyncProducts.
func (s *SyncService) SyncOrders(ctx context.Context, tenantID string) (*domain.SyncReport, error) {
	report := s.newReport(tenantID, entityOrders)
	defer s.finish(report)

	integration, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return s.fail(report, err), err
	}
	client, err := s.clientFactory(integration)
	if err != nil {
		return s.fail(report, err), err
	}

	logger := s.logger.With().Str("run_id", report.RunID).Str("tenant_id", tenantID).Logger()
	logger.Info().Str("store_url", integration.StoreURL).Msg("starting order sync")

	completed, err := syncPages(ctx, s, logger, report,
		func(ctx context.Context, page int) ([]woocommerce.Order, error) {
			return s.fetchOrderPage(ctx, client, page)
		},
		func(ctx context.Context, item *woocommerce.Order) {
			s.syncOrder(ctx, logger, tenantID, item, report)
		},
	)
	if err != nil {
		return report, err
	}
	if !completed {
		return report, nil
	}

	s.markSynced(ctx, logger, tenantID)
	logger.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("errors", report.Errors).
		Int("pages", report.PagesFetched).
		Msg("order sync finished")
	return report, nil
}

func (s *SyncService) syncOrder(ctx context.Context, logger zerolog.Logger, tenantID string, upstream *woocommerce.Order, report *domain.SyncReport) {
	mapped, err := mapper.MapOrder(upstream, tenantID)
	if err != nil {
		s.recordItemError(logger, report, entityOrders, err)
		return
	}

	existing, err := s.orders.FindByExternal(ctx, tenantID, mapped.ExternalID, mapped.ExternalSource)
	if err != nil {
		s.recordItemError(logger, report, entityOrders, err)
		return
	}

	created := existing == nil
	if existing != nil {
		mapped.ID = existing.ID
		err = s.orders.Update(ctx, mapped)
	} else {
		mapped.ID, err = s.orders.Insert(ctx, mapped)
	}
	if err != nil {
		s.recordItemError(logger, report, entityOrders, err)
		return
	}

	items := mapper.MapOrderItems(upstream, mapped.ID, tenantID, s.resolveProductIDs(ctx, tenantID, upstream))
	if err := s.orders.ReplaceItems(ctx, mapped.ID, items); err != nil {
		s.recordItemError(logger, report, entityOrders, err)
		return
	}

	if created {
		report.Created++
	} else {
		report.Updated++
	}
	if s.metrics != nil {
		result := "updated"
		if created {
			result = "created"
		}
		s.metrics.ItemsTotal.WithLabelValues(entityOrders, result).Inc()
	}
}

// resolveProductIDs maps the order's upstream product references onto
// internal product rows. Unknown references are simply left unresolved.
func (s *SyncService) resolveProductIDs(ctx context.Context, tenantID string, upstream *woocommerce.Order) map[int64]int64 {
	resolved := make(map[int64]int64, len(upstream.LineItems))
	for _, line := range upstream.LineItems {
		if line.ProductID == 0 {
			continue
		}
		if _, ok := resolved[line.ProductID]; ok {
			continue
		}
		externalID := strconv.FormatInt(line.ProductID, 10)
		product, err := s.products.FindByExternal(ctx, tenantID, externalID, domain.IntegrationTypeWooCommerce)
		if err != nil || product == nil {
			continue
		}
		resolved[line.ProductID] = product.ID
	}
	return resolved
}

// TestConnection probes a tenant's store without mutating anything.
func (s *SyncService) TestConnection(ctx context.Context, tenantID string) (woocommerce.ConnectionStatus, error) {
	integration, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return woocommerce.ConnectionStatus{Success: false, Error: err.Error()}, err
	}
	client, err := s.clientFactory(integration)
	if err != nil {
		return woocommerce.ConnectionStatus{Success: false, Error: err.Error()}, err
	}
	return client.TestConnection(ctx), nil
}

// LastReport returns the cached report of the tenant's most recent run.
func (s *SyncService) LastReport(ctx context.Context, tenantID, entity string) (*domain.SyncReport, error) {
	if s.reports == nil {
		return nil, nil
	}
	return s.reports.LastReport(ctx, tenantID, entity)
}

func (s *SyncService) newReport(tenantID, entity string) *domain.SyncReport {
	return &domain.SyncReport{
		RunID:     uuid.NewString(),
		TenantID:  tenantID,
		Entity:    entity,
		Status:    domain.RunCompleted,
		StartedAt: time.Now().UTC(),
	}
}

// finish stamps the duration, publishes run metrics, and caches the report.
func (s *SyncService) finish(report *domain.SyncReport) {
	report.Duration = domain.Millis(time.Since(report.StartedAt))
	if s.metrics != nil {
		s.metrics.RunsTotal.WithLabelValues(report.Entity, string(report.Status)).Inc()
		s.metrics.RunDuration.Observe(time.Duration(report.Duration).Seconds())
	}
	if s.reports != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.reports.SaveReport(ctx, report); err != nil {
			s.logger.Warn().Err(err).Str("run_id", report.RunID).Msg("failed to cache sync report")
		}
	}
}

func (s *SyncService) fail(report *domain.SyncReport, cause error) *domain.SyncReport {
	report.Status = domain.RunFailed
	report.FailureCause = cause.Error()
	return report
}

func (s *SyncService) cancel(report *domain.SyncReport) *domain.SyncReport {
	report.Status = domain.RunCancelled
	return report
}

func (s *SyncService) markSynced(ctx context.Context, logger zerolog.Logger, tenantID string) {
	if err := s.resolver.MarkSynced(ctx, tenantID, time.Now().UTC()); err != nil {
		logger.Warn().Err(err).Msg("failed to update last_sync_at")
	}
}

func (s *SyncService) recordItemError(logger zerolog.Logger, report *domain.SyncReport, entity string, err error) {
	report.RecordError(err)
	if s.metrics != nil {
		s.metrics.ItemsTotal.WithLabelValues(entity, "error").Inc()
	}
	logger.Warn().Err(err).Msg("item skipped")
}

func (s *SyncService) countRateLimit(err error) {
	if err == nil || s.metrics == nil {
		return
	}
	var rateErr *domain.RateLimitError
	if errors.As(err, &rateErr) {
		s.metrics.RateLimitHits.Inc()
	}
}

// sleepCtx pauses between page fetches while honoring cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
