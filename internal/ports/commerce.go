package ports

import (
	"context"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/infrastructure/woocommerce"
)

// CommerceClient defines the paginated, authenticated access the sync engine
// needs from one upstream store.
type CommerceClient interface {
	GetProducts(ctx context.Context, page, perPage int, filters map[string]string) ([]woocommerce.Product, error)
	GetProduct(ctx context.Context, externalID int64) (*woocommerce.Product, error)
	GetOrders(ctx context.Context, page, perPage int, filters map[string]string) ([]woocommerce.Order, error)
	GetOrder(ctx context.Context, externalID int64) (*woocommerce.Order, error)
	TestConnection(ctx context.Context) woocommerce.ConnectionStatus
}

// CommerceClientFactory builds one client per sync run from a tenant's
// integration record. Clients are never shared across tenants.
type CommerceClientFactory func(integration *domain.Integration) (CommerceClient, error)
