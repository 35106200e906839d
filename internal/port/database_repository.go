package port

import (
	"context"

	"github.com/rl1809/stockroom/internal/core/domain"
)

// Every method is scoped to an owner; an item belonging to another owner is
// reported as domain.ErrItemNotFound.

type ItemRepository interface {
	CreateItem(ctx context.Context, item domain.Item) error

	// ListItems returns the owner's items, newest first
	ListItems(ctx context.Context, ownerID string) ([]domain.Item, error)

	GetItem(ctx context.Context, ownerID, itemID string) (*domain.Item, error)

	DeleteItem(ctx context.Context, ownerID, itemID string) error

	// RestockItem atomically adds delta to the quantity and bumps the version
	RestockItem(ctx context.Context, ownerID, itemID string, delta int) (*domain.Item, error)
}

type SaleRepository interface {
	// CreateSale decrements the item and inserts the sale in one transaction.
	// TotalAmount is computed from the item price read inside the transaction.
	// Returns domain.ErrStaleItem when the item version moved underneath.
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.SaleReceipt, error)
}

type ReportRepository interface {
	// SalesSummary groups sales by item. ItemName is empty for deleted items.
	SalesSummary(ctx context.Context, ownerID string) ([]domain.SummaryEntry, error)

	// SalesTrend groups sales by UTC day, ascending
	SalesTrend(ctx context.Context, ownerID string) ([]domain.TrendPoint, error)
}

type AccountRepository interface {
	// CreateAccount returns domain.ErrEmailTaken on a duplicate email
	CreateAccount(ctx context.Context, account domain.Account) error

	GetAccount(ctx context.Context, id string) (*domain.Account, error)

	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type DatabaseRepository interface {
	ItemRepository
	SaleRepository
	ReportRepository
	AccountRepository
}
