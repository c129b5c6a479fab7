package application

import (
	"fmt"
	"time"

	"context"

	"github.com/rs/zerolog"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/ports"
)

// ConfigResolver loads a tenant's stored WooCommerce integration and writes
// back sync-state metadata. It holds no module-level state; everything a
// run needs hangs off the resolved Integration.
type ConfigResolver struct {
	integrations ports.IntegrationRepository
	logger       zerolog.Logger
}

// NewConfigResolver creates a new config resolver.
func NewConfigResolver(integrations ports.IntegrationRepository, logger zerolog.Logger) *ConfigResolver {
	return &ConfigResolver{
		integrations: integrations,
		logger:       logger,
	}
}

// Resolve returns the tenant's active WooCommerce integration. Missing or
// disabled integrations abort the run before any work begins.
func (r *ConfigResolver) Resolve(ctx context.Context, tenantID string) (*domain.Integration, error) {
	integration, err := r.integrations.GetByTenant(ctx, tenantID, domain.IntegrationTypeWooCommerce)
	if err != nil {
		return nil, fmt.Errorf("failed to load integration for tenant %s: %w", tenantID, err)
	}
	if integration == nil {
		return nil, domain.ErrIntegrationNotConfigured
	}
	if !integration.IsActive {
		return nil, domain.ErrIntegrationInactive
	}
	if integration.APIVersion == "" {
		integration.APIVersion = domain.DefaultAPIVersion
	}
	return integration, nil
}

// MarkSynced records the completion timestamp on the integration. Callers
// treat failures here as best-effort: logged, never escalated.
func (r *ConfigResolver) MarkSynced(ctx context.Context, tenantID string, at time.Time) error {
	if err := r.integrations.UpdateLastSync(ctx, tenantID, domain.IntegrationTypeWooCommerce, at); err != nil {
		return fmt.Errorf("failed to update last_sync_at for tenant %s: %w", tenantID, err)
	}
	return nil
}
