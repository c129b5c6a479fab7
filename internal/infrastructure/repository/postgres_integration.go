package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/ports"
)

// IntegrationRepository implements ports.IntegrationRepository on the
// tenant_integrations table. Connection credentials live inside the JSONB
// config column owned by the tenant admin surface.
type IntegrationRepository struct {
	db *sql.DB
}

// NewIntegrationRepository creates a new Postgres integration repository.
func NewIntegrationRepository(db *sql.DB) ports.IntegrationRepository {
	return &IntegrationRepository{db: db}
}

// GetByTenant loads and decodes the tenant's integration record. Returns
// nil, nil when the tenant has none of the requested type.
func (r *IntegrationRepository) GetByTenant(ctx context.Context, tenantID, integrationType string) (*domain.Integration, error) {
	const query = `
		SELECT is_active, config
		FROM tenant_integrations
		WHERE tenant_id = $1 AND integration_type = $2`

	var isActive bool
	var rawConfig []byte
	err := r.db.QueryRowContext(ctx, query, tenantID, integrationType).Scan(&isActive, &rawConfig)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}

	var config domain.IntegrationConfig
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("failed to decode integration config: %w", err)
	}

	return &domain.Integration{
		TenantID:       tenantID,
		StoreURL:       config.StoreURL,
		ConsumerKey:    config.ConsumerKey,
		ConsumerSecret: config.ConsumerSecret,
		APIVersion:     config.APIVersion,
		LastSyncAt:     config.LastSyncAt,
		IsActive:       isActive,
	}, nil
}

// UpdateLastSync stamps the sync completion time into the config column.
func (r *IntegrationRepository) UpdateLastSync(ctx context.Context, tenantID, integrationType string, at time.Time) error {
	const query = `
		UPDATE tenant_integrations
		SET config = jsonb_set(config, '{last_sync_at}', to_jsonb($3::text), true)
		WHERE tenant_id = $1 AND integration_type = $2`

	result, err := r.db.ExecContext(ctx, query, tenantID, integrationType, at.UTC().Format(time.RFC3339))
	if err != nil {
		return &domain.PersistenceError{Op: "update last_sync_at", Err: err}
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return &domain.PersistenceError{Op: "update last_sync_at", Err: sql.ErrNoRows}
	}
	return nil
}
