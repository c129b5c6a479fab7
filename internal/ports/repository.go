package ports

import (
	"context"
	"time"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
)

// IntegrationRepository reads and updates tenant integration records.
type IntegrationRepository interface {
	// GetByTenant returns nil, nil when the tenant has no record of the
	// given integration type.
	GetByTenant(ctx context.Context, tenantID, integrationType string) (*domain.Integration, error)
	UpdateLastSync(ctx context.Context, tenantID, integrationType string, at time.Time) error
}

// ProductRepository is the persistence gateway for normalized products.
// Find methods return nil, nil when no row matches.
type ProductRepository interface {
	FindByExternal(ctx context.Context, tenantID, externalID, externalSource string) (*domain.ExternalProduct, error)
	FindByHandle(ctx context.Context, tenantID, handle string) (*domain.ExternalProduct, error)
	Insert(ctx context.Context, product *domain.ExternalProduct) (int64, error)
	Update(ctx context.Context, product *domain.ExternalProduct) error
}

// VariantRepository is the persistence gateway for product variants.
// FindByTitle is the lookup for SKU-less variants, which the schema's
// partial unique index cannot guard.
type VariantRepository interface {
	FindBySKU(ctx context.Context, productID int64, sku string) (*domain.ProductVariant, error)
	FindByTitle(ctx context.Context, productID int64, title string) (*domain.ProductVariant, error)
	Insert(ctx context.Context, variant *domain.ProductVariant) (int64, error)
	Update(ctx context.Context, variant *domain.ProductVariant) error
}

// LegacyMirrorRepository writes the denormalized pern_products projection.
// Failures here are downgraded to warnings by the orchestrator.
type LegacyMirrorRepository interface {
	Upsert(ctx context.Context, mirror *domain.LegacyProductMirror) error
}

// OrderRepository is the persistence gateway for synced orders.
type OrderRepository interface {
	FindByExternal(ctx context.Context, tenantID, externalID, externalSource string) (*domain.ExternalOrder, error)
	Insert(ctx context.Context, order *domain.ExternalOrder) (int64, error)
	Update(ctx context.Context, order *domain.ExternalOrder) error
	ReplaceItems(ctx context.Context, orderID int64, items []domain.OrderItem) error
}

// ReportCache stores the last run report per tenant and entity for the
// admin surface. Best-effort; losing a cached report loses nothing durable.
type ReportCache interface {
	SaveReport(ctx context.Context, report *domain.SyncReport) error
	LastReport(ctx context.Context, tenantID, entity string) (*domain.SyncReport, error)
}
