package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the platform-side product lifecycle state.
type ProductStatus string

const (
	ProductStatusActive ProductStatus = "active"
	ProductStatusDraft  ProductStatus = "draft"
)

// ExternalProduct is a normalized product synced from an external store.
// Unique per (tenant_id, handle) and per (tenant_id, external_id, external_source).
type ExternalProduct struct {
	ID             int64         `json:"id"`
	TenantID       string        `json:"tenant_id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Handle         string        `json:"handle"`
	Status         ProductStatus `json:"status"`
	FeaturedImage  string        `json:"featured_image"`
	ExternalID     string        `json:"external_id"`
	ExternalSource string        `json:"external_source"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ProductVariant is one purchasable variation of a product. Simple products
// always carry exactly one "Default" variant. Unique per (product_id, sku)
// when the sku is set.
type ProductVariant struct {
	ID                  int64           `json:"id"`
	ProductID           int64           `json:"product_id"`
	TenantID            string          `json:"tenant_id"`
	SKU                 string          `json:"sku"`
	Title               string          `json:"title"`
	Price               decimal.Decimal `json:"price"`
	CompareAtPrice      decimal.Decimal `json:"compare_at_price"`
	InventoryQuantity   int             `json:"inventory_quantity"`
	InventoryManagement bool            `json:"inventory_management"`
}

// LegacyProductMirror is the denormalized pern_products projection kept for
// backward compatibility with the pre-normalization schema. Keyed by
// (slug, tenant_id); consistency with ExternalProduct is best-effort.
type LegacyProductMirror struct {
	TenantID    string          `json:"tenant_id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
}
