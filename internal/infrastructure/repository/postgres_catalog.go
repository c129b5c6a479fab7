package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/ports"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// persistErr classifies a write failure. Unique violations surface as
// PersistenceError so the orchestrator counts them at the item boundary.
func persistErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &domain.PersistenceError{Op: op, Err: pqErr}
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

// ProductRepository implements ports.ProductRepository on the products table.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new Postgres product repository.
func NewProductRepository(db *sql.DB) ports.ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, tenant_id, name, description, handle, status, featured_image, external_id, external_source, created_at, updated_at`

func scanProduct(row *sql.Row) (*domain.ExternalProduct, error) {
	var p domain.ExternalProduct
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Handle, &p.Status,
		&p.FeaturedImage, &p.ExternalID, &p.ExternalSource, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return &p, nil
}

// FindByExternal looks a product up by its upstream identity.
func (r *ProductRepository) FindByExternal(ctx context.Context, tenantID, externalID, externalSource string) (*domain.ExternalProduct, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1 AND external_id = $2 AND external_source = $3`
	return scanProduct(r.db.QueryRowContext(ctx, query, tenantID, externalID, externalSource))
}

// FindByHandle looks a product up by its tenant-scoped handle.
func (r *ProductRepository) FindByHandle(ctx context.Context, tenantID, handle string) (*domain.ExternalProduct, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1 AND handle = $2`
	return scanProduct(r.db.QueryRowContext(ctx, query, tenantID, handle))
}

// Insert creates a product row. The ON CONFLICT clause makes concurrent
// inserts of the same handle converge on one row instead of racing.
func (r *ProductRepository) Insert(ctx context.Context, p *domain.ExternalProduct) (int64, error) {
	const query = `
		INSERT INTO products (tenant_id, name, description, handle, status, featured_image, external_id, external_source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (tenant_id, handle) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			featured_image = EXCLUDED.featured_image,
			external_id = EXCLUDED.external_id,
			external_source = EXCLUDED.external_source,
			updated_at = NOW()
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		p.TenantID, p.Name, p.Description, p.Handle, p.Status,
		p.FeaturedImage, p.ExternalID, p.ExternalSource,
	).Scan(&id)
	if err != nil {
		return 0, persistErr("insert product", err)
	}
	return id, nil
}

// Update rewrites a product row in place.
func (r *ProductRepository) Update(ctx context.Context, p *domain.ExternalProduct) error {
	const query = `
		UPDATE products
		SET name = $2, description = $3, handle = $4, status = $5, featured_image = $6,
		    external_id = $7, external_source = $8, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Handle, p.Status,
		p.FeaturedImage, p.ExternalID, p.ExternalSource,
	); err != nil {
		return persistErr("update product", err)
	}
	return nil
}

// VariantRepository implements ports.VariantRepository on product_variants.
type VariantRepository struct {
	db *sql.DB
}

// NewVariantRepository creates a new Postgres variant repository.
func NewVariantRepository(db *sql.DB) ports.VariantRepository {
	return &VariantRepository{db: db}
}

// FindBySKU looks a variant up within its product.
func (r *VariantRepository) FindBySKU(ctx context.Context, productID int64, sku string) (*domain.ProductVariant, error) {
	const query = `
		SELECT id, product_id, tenant_id, sku, title, price, compare_at_price, inventory_quantity, inventory_management
		FROM product_variants
		WHERE product_id = $1 AND sku = $2`

	var v domain.ProductVariant
	err := r.db.QueryRowContext(ctx, query, productID, sku).Scan(
		&v.ID, &v.ProductID, &v.TenantID, &v.SKU, &v.Title,
		&v.Price, &v.CompareAtPrice, &v.InventoryQuantity, &v.InventoryManagement,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan variant: %w", err)
	}
	return &v, nil
}

// FindByTitle looks a variant up by its title within its product. Used for
// SKU-less variants; ordered so duplicates from before the lookup existed
// converge on the oldest row.
func (r *VariantRepository) FindByTitle(ctx context.Context, productID int64, title string) (*domain.ProductVariant, error) {
	const query = `
		SELECT id, product_id, tenant_id, sku, title, price, compare_at_price, inventory_quantity, inventory_management
		FROM product_variants
		WHERE product_id = $1 AND title = $2
		ORDER BY id
		LIMIT 1`

	var v domain.ProductVariant
	err := r.db.QueryRowContext(ctx, query, productID, title).Scan(
		&v.ID, &v.ProductID, &v.TenantID, &v.SKU, &v.Title,
		&v.Price, &v.CompareAtPrice, &v.InventoryQuantity, &v.InventoryManagement,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan variant: %w", err)
	}
	return &v, nil
}

// Insert creates a variant row.
func (r *VariantRepository) Insert(ctx context.Context, v *domain.ProductVariant) (int64, error) {
	const query = `
		INSERT INTO product_variants (product_id, tenant_id, sku, title, price, compare_at_price, inventory_quantity, inventory_management)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		v.ProductID, v.TenantID, v.SKU, v.Title,
		v.Price, v.CompareAtPrice, v.InventoryQuantity, v.InventoryManagement,
	).Scan(&id)
	if err != nil {
		return 0, persistErr("insert variant", err)
	}
	return id, nil
}

// Update rewrites a variant row in place.
func (r *VariantRepository) Update(ctx context.Context, v *domain.ProductVariant) error {
	const query = `
		UPDATE product_variants
		SET sku = $2, title = $3, price = $4, compare_at_price = $5, inventory_quantity = $6, inventory_management = $7
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query,
		v.ID, v.SKU, v.Title, v.Price, v.CompareAtPrice, v.InventoryQuantity, v.InventoryManagement,
	); err != nil {
		return persistErr("update variant", err)
	}
	return nil
}

// LegacyMirrorRepository implements the best-effort pern_products dual-write.
type LegacyMirrorRepository struct {
	db *sql.DB
}

// NewLegacyMirrorRepository creates a new Postgres legacy mirror repository.
func NewLegacyMirrorRepository(db *sql.DB) ports.LegacyMirrorRepository {
	return &LegacyMirrorRepository{db: db}
}

// Upsert writes the denormalized projection keyed by (slug, tenant_id).
func (r *LegacyMirrorRepository) Upsert(ctx context.Context, m *domain.LegacyProductMirror) error {
	const query = `
		INSERT INTO pern_products (slug, tenant_id, name, price, description, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug, tenant_id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url`

	if _, err := r.db.ExecContext(ctx, query,
		m.Slug, m.TenantID, m.Name, m.Price, m.Description, m.ImageURL,
	); err != nil {
		return persistErr("upsert legacy mirror", err)
	}
	return nil
}
