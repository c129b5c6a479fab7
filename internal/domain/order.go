package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the platform-side order lifecycle state. Its enumeration
// table is independent from ProductStatus.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Address is a billing or shipping address. Only materialized when the
// upstream record carries at least one address line.
type Address struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	PostCode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ExternalOrder is a normalized order synced from an external store.
// Unique per (tenant_id, external_id, external_source).
type ExternalOrder struct {
	ID              int64           `json:"id"`
	TenantID        string          `json:"tenant_id"`
	ExternalID      string          `json:"external_id"`
	ExternalSource  string          `json:"external_source"`
	Status          OrderStatus     `json:"status"`
	Currency        string          `json:"currency"`
	CustomerEmail   string          `json:"customer_email"`
	Total           decimal.Decimal `json:"total"`
	ShippingTotal   decimal.Decimal `json:"shipping_total"`
	TaxTotal        decimal.Decimal `json:"tax_total"`
	BillingAddress  *Address        `json:"billing_address,omitempty"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	PlacedAt        *time.Time      `json:"placed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is one line of an external order. ProductID is resolved to the
// internal product when the external reference is known; zero otherwise.
type OrderItem struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	TenantID   string          `json:"tenant_id"`
	ProductID  int64           `json:"product_id,omitempty"`
	ExternalID string          `json:"external_id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Total      decimal.Decimal `json:"total"`
}
