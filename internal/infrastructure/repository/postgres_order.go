package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/ports"
)

// OrderRepository implements ports.OrderRepository on the orders and
// order_items tables. Addresses are stored as JSONB.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new Postgres order repository.
func NewOrderRepository(db *sql.DB) ports.OrderRepository {
	return &OrderRepository{db: db}
}

func encodeAddress(a *domain.Address) (interface{}, error) {
	if a == nil {
		return nil, nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode address: %w", err)
	}
	return raw, nil
}

func decodeAddress(raw []byte) (*domain.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var a domain.Address
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("failed to decode address: %w", err)
	}
	return &a, nil
}

// FindByExternal looks an order up by its upstream identity.
func (r *OrderRepository) FindByExternal(ctx context.Context, tenantID, externalID, externalSource string) (*domain.ExternalOrder, error) {
	const query = `
		SELECT id, tenant_id, external_id, external_source, status, currency, customer_email,
		       total, shipping_total, tax_total, billing_address, shipping_address, placed_at, created_at, updated_at
		FROM orders
		WHERE tenant_id = $1 AND external_id = $2 AND external_source = $3`

	var o domain.ExternalOrder
	var billing, shipping []byte
	err := r.db.QueryRowContext(ctx, query, tenantID, externalID, externalSource).Scan(
		&o.ID, &o.TenantID, &o.ExternalID, &o.ExternalSource, &o.Status, &o.Currency, &o.CustomerEmail,
		&o.Total, &o.ShippingTotal, &o.TaxTotal, &billing, &shipping, &o.PlacedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if o.BillingAddress, err = decodeAddress(billing); err != nil {
		return nil, err
	}
	if o.ShippingAddress, err = decodeAddress(shipping); err != nil {
		return nil, err
	}
	return &o, nil
}

// Insert creates an order row.
func (r *OrderRepository) Insert(ctx context.Context, o *domain.ExternalOrder) (int64, error) {
	billing, err := encodeAddress(o.BillingAddress)
	if err != nil {
		return 0, err
	}
	shipping, err := encodeAddress(o.ShippingAddress)
	if err != nil {
		return 0, err
	}

	const query = `
		INSERT INTO orders (tenant_id, external_id, external_source, status, currency, customer_email,
		                    total, shipping_total, tax_total, billing_address, shipping_address, placed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (tenant_id, external_id, external_source) DO UPDATE SET
			status = EXCLUDED.status,
			total = EXCLUDED.total,
			updated_at = NOW()
		RETURNING id`

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		o.TenantID, o.ExternalID, o.ExternalSource, o.Status, o.Currency, o.CustomerEmail,
		o.Total, o.ShippingTotal, o.TaxTotal, billing, shipping, o.PlacedAt,
	).Scan(&id)
	if err != nil {
		return 0, persistErr("insert order", err)
	}
	return id, nil
}

// Update rewrites an order row in place.
func (r *OrderRepository) Update(ctx context.Context, o *domain.ExternalOrder) error {
	billing, err := encodeAddress(o.BillingAddress)
	if err != nil {
		return err
	}
	shipping, err := encodeAddress(o.ShippingAddress)
	if err != nil {
		return err
	}

	const query = `
		UPDATE orders
		SET status = $2, currency = $3, customer_email = $4, total = $5, shipping_total = $6,
		    tax_total = $7, billing_address = $8, shipping_address = $9, placed_at = $10, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query,
		o.ID, o.Status, o.Currency, o.CustomerEmail, o.Total, o.ShippingTotal,
		o.TaxTotal, billing, shipping, o.PlacedAt,
	); err != nil {
		return persistErr("update order", err)
	}
	return nil
}

// ReplaceItems swaps the order's line items inside one transaction so a
// re-sync never leaves a half-written item set behind.
func (r *OrderRepository) ReplaceItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("replace order items", err)
	}
	defer txn.Rollback() // Rollback is a no-op if Commit() is called

	if _, err := txn.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return persistErr("replace order items", err)
	}

	const insert = `
		INSERT INTO order_items (order_id, tenant_id, product_id, external_id, name, sku, quantity, unit_price, total)
		VALUES ($1, $2, NULLIF($3, 0), $4, $5, $6, $7, $8, $9)`
	for _, item := range items {
		if _, err := txn.ExecContext(ctx, insert,
			orderID, item.TenantID, item.ProductID, item.ExternalID, item.Name,
			item.SKU, item.Quantity, item.UnitPrice, item.Total,
		); err != nil {
			return persistErr("replace order items", err)
		}
	}

	if err := txn.Commit(); err != nil {
		return persistErr("replace order items", err)
	}
	return nil
}
