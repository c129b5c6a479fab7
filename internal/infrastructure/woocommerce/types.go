package woocommerce

import "encoding/json"

// Upstream record shapes for the WooCommerce REST API v3. Every field that
// the store may omit is either a pointer or a zero-value-safe type; no field
// access anywhere downstream may assume presence. No validation happens at
// this layer, that is the mapper's job.

// Product is a WooCommerce product as returned by GET /products.
type Product struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Slug             string  `json:"slug"`
	Type             string  `json:"type"`
	Status           string  `json:"status"`
	Description      string  `json:"description"`
	ShortDescription string  `json:"short_description"`
	SKU              string  `json:"sku"`
	Price            string  `json:"price"`
	RegularPrice     string  `json:"regular_price"`
	SalePrice        string  `json:"sale_price"`
	ManageStock      bool    `json:"manage_stock"`
	StockQuantity    *int    `json:"stock_quantity"`
	Images           []Image `json:"images"`
}

// Image is an attached product image.
type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Order is a WooCommerce order as returned by GET /orders.
type Order struct {
	ID            int64         `json:"id"`
	Number        string        `json:"number"`
	Status        string        `json:"status"`
	Currency      string        `json:"currency"`
	Total         string        `json:"total"`
	ShippingTotal string        `json:"shipping_total"`
	TotalTax      string        `json:"total_tax"`
	DateCreated   string        `json:"date_created"`
	Billing       *OrderAddress `json:"billing"`
	Shipping      *OrderAddress `json:"shipping"`
	LineItems     []LineItem    `json:"line_items"`
}

// OrderAddress is a billing or shipping sub-object on an order.
type OrderAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// LineItem is one order line. Price arrives as a JSON number while the
// totals arrive as strings; both are normalized by the mapper.
type LineItem struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	ProductID   int64       `json:"product_id"`
	VariationID int64       `json:"variation_id"`
	Quantity    int         `json:"quantity"`
	SKU         string      `json:"sku"`
	Price       json.Number `json:"price"`
	Subtotal    string      `json:"subtotal"`
	Total       string      `json:"total"`
}

// systemStatus is the subset of GET /system_status used by the connection probe.
type systemStatus struct {
	Environment struct {
		SiteURL string `json:"site_url"`
		Version string `json:"version"`
	} `json:"environment"`
}

// errorBody is WooCommerce's standard error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectionStatus is the result of a liveness probe against a store.
// It is always populated, never accompanied by an error.
type ConnectionStatus struct {
	Success    bool   `json:"success"`
	StoreName  string `json:"store_name,omitempty"`
	APIVersion string `json:"api_version,omitempty"`
	Error      string `json:"error,omitempty"`
}
