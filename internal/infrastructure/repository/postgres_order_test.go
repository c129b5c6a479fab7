package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
)

var orderColumnList = []string{
	"id", "tenant_id", "external_id", "external_source", "status", "currency", "customer_email",
	"total", "shipping_total", "tax_total", "billing_address", "shipping_address",
	"placed_at", "created_at", "updated_at",
}

func TestOrderRepository_FindByExternal(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &OrderRepository{db: db}
	now := time.Now()

	billing := []byte(`{"first_name":"Ada","address1":"1 Raffles Place"}`)
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("tenant-1", "501", "woocommerce").
		WillReturnRows(sqlmock.NewRows(orderColumnList).AddRow(
			int64(12), "tenant-1", "501", "woocommerce", "paid", "SGD", "ada@example.com",
			"42.50", "5.00", "2.50", billing, nil,
			now, now, now,
		))

	order, err := repo.FindByExternal(context.Background(), "tenant-1", "501", "woocommerce")
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, int64(12), order.ID)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("42.50")))
	require.NotNil(t, order.BillingAddress)
	assert.Equal(t, "1 Raffles Place", order.BillingAddress.Address1)
	assert.Nil(t, order.ShippingAddress, "a NULL address column decodes to no address")
}

func TestOrderRepository_FindByExternal_NoRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &OrderRepository{db: db}

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("tenant-1", "404", "woocommerce").
		WillReturnError(sql.ErrNoRows)

	order, err := repo.FindByExternal(context.Background(), "tenant-1", "404", "woocommerce")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestOrderRepository_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &OrderRepository{db: db}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	id, err := repo.Insert(context.Background(), &domain.ExternalOrder{
		TenantID:       "tenant-1",
		ExternalID:     "501",
		ExternalSource: "woocommerce",
		Status:         domain.OrderStatusPaid,
		Currency:       "SGD",
		Total:          decimal.RequireFromString("42.50"),
		BillingAddress: &domain.Address{FirstName: "Ada", Address1: "1 Raffles Place"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestOrderRepository_ReplaceItems(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &OrderRepository{db: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM order_items")).
		WithArgs(int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	items := []domain.OrderItem{
		{TenantID: "tenant-1", ExternalID: "1", Name: "Shirt", Quantity: 3, ProductID: 7},
		{TenantID: "tenant-1", ExternalID: "2", Name: "Gone", Quantity: 1},
	}
	require.NoError(t, repo.ReplaceItems(context.Background(), 12, items))
}

func TestOrderRepository_ReplaceItems_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &OrderRepository{db: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM order_items")).
		WithArgs(int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.ReplaceItems(context.Background(), 12, []domain.OrderItem{
		{TenantID: "tenant-1", ExternalID: "1", Name: "Shirt", Quantity: 1},
	})

	var persistErr *domain.PersistenceError
	assert.ErrorAs(t, err, &persistErr)
}
