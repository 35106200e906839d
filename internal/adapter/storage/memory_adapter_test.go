package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/stockroom/internal/core/domain"
)

func seedItem(t *testing.T, m *MemoryAdapter, id, ownerID string, quantity int, price string, created time.Time) domain.Item {
	t.Helper()
	item, err := domain.NewItem(id, ownerID, "Item "+id, quantity, decimal.RequireFromString(price), created)
	require.NoError(t, err)
	require.NoError(t, m.CreateItem(context.Background(), item))
	return item
}

func TestMemoryListItems_NewestFirstAndScoped(t *testing.T) {
	m := NewMemoryAdapter()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedItem(t, m, "a", "owner-1", 1, "1", base)
	seedItem(t, m, "b", "owner-1", 1, "1", base.Add(time.Hour))
	seedItem(t, m, "c", "owner-2", 1, "1", base.Add(2*time.Hour))

	items, err := m.ListItems(context.Background(), "owner-1")

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
}

func TestMemoryItems_OwnerIsolation(t *testing.T) {
	m := NewMemoryAdapter()
	seedItem(t, m, "a", "owner-1", 3, "1", time.Now())
	ctx := context.Background()

	_, err := m.GetItem(ctx, "owner-2", "a")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	assert.ErrorIs(t, m.DeleteItem(ctx, "owner-2", "a"), domain.ErrItemNotFound)

	_, err = m.RestockItem(ctx, "owner-2", "a", 1)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = m.CreateSale(ctx, domain.Sale{ID: "s", OwnerID: "owner-2", ItemID: "a", Quantity: 1, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	item, err := m.GetItem(ctx, "owner-1", "a")
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
}

func TestMemoryCreateSale(t *testing.T) {
	m := NewMemoryAdapter()
	seedItem(t, m, "a", "owner-1", 5, "19.99", time.Now())
	ctx := context.Background()

	receipt, err := m.CreateSale(ctx, domain.Sale{ID: "s1", OwnerID: "owner-1", ItemID: "a", Quantity: 3, CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 2, receipt.UpdatedItem.Quantity)
	assert.Equal(t, 1, receipt.UpdatedItem.Version)
	assert.True(t, receipt.Sale.TotalAmount.Equal(decimal.RequireFromString("59.97")))

	_, err = m.CreateSale(ctx, domain.Sale{ID: "s2", OwnerID: "owner-1", ItemID: "a", Quantity: 3, CreatedAt: time.Now()})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	item, _ := m.GetItem(ctx, "owner-1", "a")
	assert.Equal(t, 2, item.Quantity)
}

func TestMemoryReports(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	day1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 23, 30, 0, 0, time.UTC)
	seedItem(t, m, "a", "owner-1", 10, "2", day1)
	seedItem(t, m, "b", "owner-1", 10, "5", day1)

	for _, s := range []domain.Sale{
		{ID: "s1", OwnerID: "owner-1", ItemID: "a", Quantity: 2, CreatedAt: day1},
		{ID: "s2", OwnerID: "owner-1", ItemID: "b", Quantity: 1, CreatedAt: day1},
		{ID: "s3", OwnerID: "owner-1", ItemID: "a", Quantity: 1, CreatedAt: day2},
	} {
		_, err := m.CreateSale(ctx, s)
		require.NoError(t, err)
	}
	require.NoError(t, m.DeleteItem(ctx, "owner-1", "b"))

	summary, err := m.SalesSummary(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "a", summary[0].ItemID)
	assert.EqualValues(t, 3, summary[0].TotalQuantity)
	assert.True(t, summary[0].TotalAmount.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, "b", summary[1].ItemID)
	assert.Equal(t, "", summary[1].ItemName)

	trend, err := m.SalesTrend(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Equal(t, "2024-01-01", trend[0].Date)
	assert.True(t, trend[0].TotalSales.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, "2024-01-02", trend[1].Date)

	empty, err := m.SalesSummary(ctx, "owner-2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryAccounts(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	account := domain.Account{ID: "acc-1", Email: "a@example.com", Name: "A"}
	require.NoError(t, m.CreateAccount(ctx, account))

	account.ID = "acc-2"
	assert.ErrorIs(t, m.CreateAccount(ctx, account), domain.ErrEmailTaken)

	found, err := m.GetAccountByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", found.ID)

	_, err = m.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
