package mapper

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/infrastructure/woocommerce"
)

// orderStatusTable maps WooCommerce order statuses onto the platform's
// enumeration. Distinct from the product table; unknown values fall back
// to pending.
var orderStatusTable = map[string]domain.OrderStatus{
	"pending":    domain.OrderStatusPending,
	"on-hold":    domain.OrderStatusPending,
	"processing": domain.OrderStatusPaid,
	"completed":  domain.OrderStatusFulfilled,
	"cancelled":  domain.OrderStatusCancelled,
	"failed":     domain.OrderStatusCancelled,
	"trash":      domain.OrderStatusCancelled,
	"refunded":   domain.OrderStatusRefunded,
}

// OrderStatus resolves an upstream order status, defaulting to pending.
func OrderStatus(upstream string) domain.OrderStatus {
	if status, ok := orderStatusTable[strings.ToLower(upstream)]; ok {
		return status
	}
	return domain.OrderStatusPending
}

// mapAddress materializes an address sub-object only when an address line
// is present; otherwise the order carries no address at all.
func mapAddress(a *woocommerce.OrderAddress) *domain.Address {
	if a == nil || a.Address1 == "" {
		return nil
	}
	return &domain.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.State,
		PostCode:  a.Postcode,
		Country:   a.Country,
		Phone:     a.Phone,
	}
}

// MapOrder transforms one upstream order into the normalized record. When
// the upstream total is absent the total is recomputed from the line items
// plus shipping and tax.
func MapOrder(o *woocommerce.Order, tenantID string) (*domain.ExternalOrder, error) {
	if o == nil {
		return nil, &domain.MappingError{Reason: "upstream order is nil"}
	}
	if o.ID == 0 {
		return nil, &domain.MappingError{Reason: "upstream order has no id"}
	}

	order := &domain.ExternalOrder{
		TenantID:        tenantID,
		ExternalID:      strconv.FormatInt(o.ID, 10),
		ExternalSource:  domain.IntegrationTypeWooCommerce,
		Status:          OrderStatus(o.Status),
		Currency:        o.Currency,
		Total:           ParsePrice(o.Total),
		ShippingTotal:   ParsePrice(o.ShippingTotal),
		TaxTotal:        ParsePrice(o.TotalTax),
		BillingAddress:  mapAddress(o.Billing),
		ShippingAddress: mapAddress(o.Shipping),
	}
	if o.Billing != nil {
		order.CustomerEmail = o.Billing.Email
	}
	if o.DateCreated != "" {
		// WooCommerce emits local store time without an offset.
		if t, err := time.Parse("2006-01-02T15:04:05", o.DateCreated); err == nil {
			order.PlacedAt = &t
		}
	}

	if order.Total.IsZero() && len(o.LineItems) > 0 {
		items := MapOrderItems(o, 0, tenantID, nil)
		order.Total = CalculateOrderTotals(items, order.ShippingTotal, order.TaxTotal)
	}
	return order, nil
}

// MapOrderItems transforms the order's line items. productIDs maps upstream
// product IDs to internal product rows; unknown references keep a zero
// ProductID rather than dropping the line.
func MapOrderItems(o *woocommerce.Order, orderID int64, tenantID string, productIDs map[int64]int64) []domain.OrderItem {
	if o == nil || len(o.LineItems) == 0 {
		return nil
	}

	items := make([]domain.OrderItem, 0, len(o.LineItems))
	for _, line := range o.LineItems {
		item := domain.OrderItem{
			OrderID:    orderID,
			TenantID:   tenantID,
			ExternalID: strconv.FormatInt(line.ID, 10),
			Name:       line.Name,
			SKU:        line.SKU,
			Quantity:   line.Quantity,
			UnitPrice:  ParsePrice(line.Price.String()),
			Total:      ParsePrice(line.Total),
		}
		if id, ok := productIDs[line.ProductID]; ok {
			item.ProductID = id
		}
		if item.Total.IsZero() && item.Quantity > 0 {
			item.Total = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		items = append(items, item)
	}
	return items
}

// CalculateOrderTotals sums item totals plus shipping and tax. Used only as
// a fallback when the upstream order carries no total of its own.
func CalculateOrderTotals(items []domain.OrderItem, shipping, tax decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return total.Add(shipping).Add(tax)
}
