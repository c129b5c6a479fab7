package woocommerce

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryAfter = 60 * time.Second
	maxPerPage        = 100
)

// ClientConfig carries everything needed to talk to one store.
type ClientConfig struct {
	StoreURL       string
	ConsumerKey    string
	ConsumerSecret string
	APIVersion     string
	Timeout        time.Duration
	// RequestsPerSecond paces outbound calls; zero disables pacing.
	RequestsPerSecond float64
}

// Client is an authenticated, paginated WooCommerce REST API client bound to
// a single store. One instance per sync run, never shared across tenants.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient validates the configuration and builds a client. The store URL
// is normalized (trailing slash stripped) and the base URL becomes
// <store>/wp-json/<apiVersion>.
func NewClient(cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.StoreURL == "" {
		return nil, &domain.ConfigurationError{Field: "store_url"}
	}
	if cfg.ConsumerKey == "" {
		return nil, &domain.ConfigurationError{Field: "consumer_key"}
	}
	if cfg.ConsumerSecret == "" {
		return nil, &domain.ConfigurationError{Field: "consumer_secret"}
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = domain.DefaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	creds := cfg.ConsumerKey + ":" + cfg.ConsumerSecret
	return &Client{
		baseURL:    strings.TrimRight(cfg.StoreURL, "/") + "/wp-json/" + apiVersion,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(creds)),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// request issues one API call. GET params become the query string, other
// methods send params as a JSON body. The raw decoded JSON is returned
// as-is; schema validation belongs to the mapper.
func (c *Client) request(ctx context.Context, method, endpoint string, params map[string]string) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.TimeoutError{Endpoint: endpoint}
		}
	}

	reqURL := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	var body io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			q := url.Values{}
			for k, v := range params {
				q.Set(k, v)
			}
			reqURL += "?" + q.Encode()
		}
	} else if params != nil {
		payload, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, endpoint)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp, raw)
	}

	return json.RawMessage(raw), nil
}

// classifyTransportError maps net/http failures onto the engine's taxonomy.
func classifyTransportError(err error, endpoint string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &domain.TimeoutError{Endpoint: endpoint}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.TimeoutError{Endpoint: endpoint}
	}
	return &domain.NetworkError{Endpoint: endpoint, Err: err}
}

// classifyStatus maps non-2xx responses onto the engine's taxonomy.
func classifyStatus(resp *http.Response, raw []byte) error {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &domain.RateLimitError{RetryAfter: retryAfter}
	case http.StatusUnauthorized:
		return &domain.AuthError{Status: resp.StatusCode, Reason: "invalid credentials"}
	case http.StatusForbidden:
		return &domain.AuthError{Status: resp.StatusCode, Reason: "insufficient permissions"}
	}

	msg := upstreamMessage(resp.StatusCode, raw)
	return &domain.UpstreamError{Status: resp.StatusCode, Message: msg}
}

// upstreamMessage extracts the error envelope message, falling back to the
// raw body, then to a generic "HTTP <status>" string.
func upstreamMessage(status int, raw []byte) string {
	var envelope errorBody
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	if trimmed := strings.TrimSpace(string(raw)); trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("HTTP %d", status)
}

// paginationParams clamps page/perPage into the bounds WooCommerce accepts
// and merges caller filters on top.
func paginationParams(page, perPage int, filters map[string]string) map[string]string {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	params := map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
	}
	for k, v := range filters {
		params[k] = v
	}
	return params
}

// GetProducts fetches one page of products.
func (c *Client) GetProducts(ctx context.Context, page, perPage int, filters map[string]string) ([]Product, error) {
	raw, err := c.request(ctx, http.MethodGet, "products", paginationParams(page, perPage, filters))
	if err != nil {
		return nil, err
	}
	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, &domain.UpstreamError{Status: http.StatusOK, Message: "products response is not a JSON array: " + err.Error()}
	}
	return products, nil
}

// GetProduct fetches a single product by its upstream ID.
func (c *Client) GetProduct(ctx context.Context, externalID int64) (*Product, error) {
	raw, err := c.request(ctx, http.MethodGet, "products/"+strconv.FormatInt(externalID, 10), nil)
	if err != nil {
		return nil, err
	}
	var product Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, &domain.UpstreamError{Status: http.StatusOK, Message: "product response is malformed: " + err.Error()}
	}
	return &product, nil
}

// GetOrders fetches one page of orders.
func (c *Client) GetOrders(ctx context.Context, page, perPage int, filters map[string]string) ([]Order, error) {
	raw, err := c.request(ctx, http.MethodGet, "orders", paginationParams(page, perPage, filters))
	if err != nil {
		return nil, err
	}
	var orders []Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, &domain.UpstreamError{Status: http.StatusOK, Message: "orders response is not a JSON array: " + err.Error()}
	}
	return orders, nil
}

// GetOrder fetches a single order by its upstream ID.
func (c *Client) GetOrder(ctx context.Context, externalID int64) (*Order, error) {
	raw, err := c.request(ctx, http.MethodGet, "orders/"+strconv.FormatInt(externalID, 10), nil)
	if err != nil {
		return nil, err
	}
	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, &domain.UpstreamError{Status: http.StatusOK, Message: "order response is malformed: " + err.Error()}
	}
	return &order, nil
}

// TestConnection probes the store. It tries the lightweight system_status
// endpoint first and falls back to fetching a single product as a secondary
// liveness check. It never returns an error.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	raw, err := c.request(ctx, http.MethodGet, "system_status", nil)
	if err == nil {
		var status systemStatus
		if jsonErr := json.Unmarshal(raw, &status); jsonErr == nil {
			return ConnectionStatus{
				Success:    true,
				StoreName:  status.Environment.SiteURL,
				APIVersion: status.Environment.Version,
			}
		}
		return ConnectionStatus{Success: true}
	}

	// system_status requires elevated permissions on some stores; a readable
	// product list is still proof of life.
	c.logger.Debug().Err(err).Msg("system_status probe failed, falling back to product fetch")
	if _, fallbackErr := c.GetProducts(ctx, 1, 1, nil); fallbackErr == nil {
		return ConnectionStatus{Success: true}
	}

	return ConnectionStatus{Success: false, Error: err.Error()}
}
