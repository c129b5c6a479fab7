package domain

import "time"

// IntegrationTypeWooCommerce is the integration_type value this engine owns.
const IntegrationTypeWooCommerce = "woocommerce"

// DefaultAPIVersion is the WooCommerce REST API namespace used when the
// tenant's integration record does not pin one.
const DefaultAPIVersion = "wc/v3"

// Integration is a tenant's stored WooCommerce connection. Created and
// updated by tenant admin action; only LastSyncAt is mutated by the engine.
type Integration struct {
	TenantID       string     `json:"tenant_id"`
	StoreURL       string     `json:"store_url"`
	ConsumerKey    string     `json:"consumer_key"`
	ConsumerSecret string     `json:"consumer_secret"`
	APIVersion     string     `json:"api_version"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	IsActive       bool       `json:"is_active"`
}

// IntegrationConfig is the shape of the JSONB config column on
// tenant_integrations.
type IntegrationConfig struct {
	StoreURL       string     `json:"store_url"`
	ConsumerKey    string     `json:"consumer_key"`
	ConsumerSecret string     `json:"consumer_secret"`
	APIVersion     string     `json:"api_version,omitempty"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
}
