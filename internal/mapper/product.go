// Package mapper holds the pure, stateless transformations from upstream
// WooCommerce records into the platform's normalized schema. Nothing in this
// package performs I/O; given identical input the output is identical.
package mapper

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/infrastructure/woocommerce"
)

const maxHandleLength = 255

// DefaultVariantTitle names the single variant emitted for every product
// until variable-product expansion lands.
const DefaultVariantTitle = "Default"

// productStatusTable maps every known WooCommerce product status onto the
// platform's enumeration. Unknown values fall back to draft.
var productStatusTable = map[string]domain.ProductStatus{
	"publish": domain.ProductStatusActive,
	"draft":   domain.ProductStatusDraft,
	"pending": domain.ProductStatusDraft,
	"private": domain.ProductStatusDraft,
	"trash":   domain.ProductStatusDraft,
}

// ProductStatus resolves an upstream status string through the enumeration
// table, defaulting to draft for anything unrecognized.
func ProductStatus(upstream string) domain.ProductStatus {
	if status, ok := productStatusTable[strings.ToLower(upstream)]; ok {
		return status
	}
	return domain.ProductStatusDraft
}

// Handle derives the URL-safe handle from the upstream slug, or from the
// name when the slug is absent. The function is total over its inputs: any
// non-empty slug or name yields a valid handle, and only an entirely empty
// pair produces an error.
func Handle(slug, name string) (string, error) {
	handle := slugify(slug)
	if handle == "" {
		handle = slugify(name)
	}
	if handle == "" {
		return "", &domain.MappingError{Reason: "product has neither slug nor name to derive a handle from"}
	}
	if len(handle) > maxHandleLength {
		handle = strings.Trim(handle[:maxHandleLength], "-")
	}
	return handle, nil
}

// slugify lowercases, replaces whitespace with dashes, strips everything
// outside [a-z0-9-] and collapses dash runs.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '_':
			b.WriteByte('-')
		}
	}
	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}

// MapProduct transforms one upstream product into the normalized record.
func MapProduct(p *woocommerce.Product, tenantID string) (*domain.ExternalProduct, error) {
	if p == nil {
		return nil, &domain.MappingError{Reason: "upstream product is nil"}
	}

	handle, err := Handle(p.Slug, p.Name)
	if err != nil {
		return nil, &domain.MappingError{
			ExternalID: strconv.FormatInt(p.ID, 10),
			Reason:     "product has neither slug nor name to derive a handle from",
		}
	}

	product := &domain.ExternalProduct{
		TenantID:       tenantID,
		Name:           p.Name,
		Description:    p.Description,
		Handle:         handle,
		Status:         ProductStatus(p.Status),
		ExternalID:     strconv.FormatInt(p.ID, 10),
		ExternalSource: domain.IntegrationTypeWooCommerce,
	}
	if product.Name == "" {
		product.Name = handle
	}
	if product.Description == "" {
		product.Description = p.ShortDescription
	}
	if len(p.Images) > 0 {
		product.FeaturedImage = p.Images[0].Src
	}
	return product, nil
}

// IsVariable reports whether the upstream product declares sub-variations.
// Variation expansion is degraded to a single default variant; callers log
// the degradation so stores relying on variations can be spotted.
func IsVariable(p *woocommerce.Product) bool {
	return p != nil && p.Type == "variable"
}

// MapVariants emits the variant rows for a product. Current policy: every
// product, variable ones included, yields exactly one "Default" variant
// built from the parent record's own price and stock fields.
func MapVariants(p *woocommerce.Product, productID int64, tenantID string) []domain.ProductVariant {
	if p == nil {
		return nil
	}

	variant := domain.ProductVariant{
		ProductID:           productID,
		TenantID:            tenantID,
		SKU:                 p.SKU,
		Title:               DefaultVariantTitle,
		Price:               ParsePrice(p.Price),
		CompareAtPrice:      ParsePrice(p.RegularPrice),
		InventoryManagement: p.ManageStock,
	}
	if p.StockQuantity != nil {
		variant.InventoryQuantity = *p.StockQuantity
	}
	return []domain.ProductVariant{variant}
}

// ParsePrice converts an upstream decimal string into a Decimal, treating
// absent or malformed values as zero.
func ParsePrice(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
