package mocks

import (
	"context"

	"github.com/rl1809/stockroom/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockDatabaseRepository struct {
	mock.Mock
}

func (m *MockDatabaseRepository) CreateItem(ctx context.Context, item domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockDatabaseRepository) ListItems(ctx context.Context, ownerID string) ([]domain.Item, error) {
	args := m.Called(ctx, ownerID)
	var r0 []domain.Item
	if args.Get(0) != nil {
		r0 = args.Get(0).([]domain.Item)
	}
	return r0, args.Error(1)
}

func (m *MockDatabaseRepository) GetItem(ctx context.Context, ownerID, itemID string) (*domain.Item, error) {
	args := m.Called(ctx, ownerID, itemID)
	var r0 *domain.Item
	if args.Get(0) != nil {
		r0 = args.Get(0).(*domain.Item)
	}
	return r0, args.Error(1)
}

func (m *MockDatabaseRepository) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	args := m.Called(ctx, ownerID, itemID)
	return args.Error(0)
}

func (m *MockDatabaseRepository) RestockItem(ctx context.Context, ownerID, itemID string, delta int) (*domain.Item, error) {
	args := m.Called(ctx, ownerID, itemID, delta)
	var r0 *domain.Item
	if args.Get(0) != nil {
		r0 = args.Get(0).(*domain.Item)
	}
	return r0, args.Error(1)
}

func (m *MockDatabaseRepository) CreateSale(ctx context.Context, sale domain.Sale) (*domain.SaleReceipt, error) {
	args := m.Called(ctx, sale)
	var r0 *domain.SaleReceipt
	if args.Get(0) != nil {
		r0 = args.Get(0).(*domain.SaleReceipt)
	}
	return r0, args.Error(1)
}

func (m *MockDatabaseRepository) SalesSummary(ctx context.Context, ownerID string) ([]domain.SummaryEntry, error) {
	args := m.Called(ctx, ownerID)
	var r0 []domain.SummaryEntry
	if args.Get(0) != nil {
		r0 = args.Get(0).([]domain.SummaryEntry)
	}
	return r0, args.Error(1)
}

func (m *MockDatabaseRepository) SalesTrend(ctx context.Context, ownerID string) ([]domain.TrendPoint, error) {
	args := m.Called(ctx, ownerID)
	var r0 []domain.TrendPoint
	if args.Get(0) != nil {
		r0 = args.Get(0).([]domain.TrendPoint)
	}
	return r0, args.Error(1)
}

func (m *MockDatabaseRepository) CreateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockDatabaseRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	var r0 *domain.Account
	if args.Get(0) != nil {
		r0 = args.Get(0).(*domain.Account)
	}
	return r0, args.Error(1)
}

func (m *MockDatabaseRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	var r0 *domain.Account
	if args.Get(0) != nil {
		r0 = args.Get(0).(*domain.Account)
	}
	return r0, args.Error(1)
}
