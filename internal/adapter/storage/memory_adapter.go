package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/stockroom/internal/core/domain"
)

// MemoryAdapter is a process-local port.DatabaseRepository. A single mutex
// serializes writers, which makes every operation trivially atomic.
type MemoryAdapter struct {
	mu       sync.RWMutex
	items    map[string]domain.Item
	sales    []domain.Sale
	accounts map[string]domain.Account
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		items:    make(map[string]domain.Item),
		accounts: make(map[string]domain.Account),
	}
}

func (m *MemoryAdapter) CreateItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[item.ID] = item
	return nil
}

func (m *MemoryAdapter) ListItems(ctx context.Context, ownerID string) ([]domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := []domain.Item{}
	for _, item := range m.items {
		if item.OwnerID == ownerID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// lookup must be called with mu held.
func (m *MemoryAdapter) lookup(ownerID, itemID string) (domain.Item, error) {
	item, ok := m.items[itemID]
	if !ok || item.OwnerID != ownerID {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return item, nil
}

func (m *MemoryAdapter) GetItem(ctx context.Context, ownerID, itemID string) (*domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, err := m.lookup(ownerID, itemID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (m *MemoryAdapter) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(ownerID, itemID); err != nil {
		return err
	}
	delete(m.items, itemID)
	return nil
}

func (m *MemoryAdapter) RestockItem(ctx context.Context, ownerID, itemID string, delta int) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.lookup(ownerID, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.Restock(delta); err != nil {
		return nil, err
	}
	item.Version++
	item.UpdatedAt = time.Now().UTC()
	m.items[itemID] = item
	return &item, nil
}

func (m *MemoryAdapter) CreateSale(ctx context.Context, sale domain.Sale) (*domain.SaleReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.lookup(sale.OwnerID, sale.ItemID)
	if err != nil {
		return nil, err
	}

	total, err := item.Sell(sale.Quantity)
	if err != nil {
		return nil, err
	}
	item.Version++
	item.UpdatedAt = sale.CreatedAt
	sale.TotalAmount = total

	m.items[item.ID] = item
	m.sales = append(m.sales, sale)
	return &domain.SaleReceipt{Sale: sale, UpdatedItem: item}, nil
}

func (m *MemoryAdapter) SalesSummary(ctx context.Context, ownerID string) ([]domain.SummaryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byItem := make(map[string]*domain.SummaryEntry)
	for _, sale := range m.sales {
		if sale.OwnerID != ownerID {
			continue
		}
		entry, ok := byItem[sale.ItemID]
		if !ok {
			entry = &domain.SummaryEntry{ItemID: sale.ItemID, TotalAmount: decimal.Zero}
			if item, found := m.items[sale.ItemID]; found {
				entry.ItemName = item.Name
			}
			byItem[sale.ItemID] = entry
		}
		entry.TotalQuantity += int64(sale.Quantity)
		entry.TotalAmount = entry.TotalAmount.Add(sale.TotalAmount)
	}

	summary := make([]domain.SummaryEntry, 0, len(byItem))
	for _, entry := range byItem {
		summary = append(summary, *entry)
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].ItemID < summary[j].ItemID })
	return summary, nil
}

func (m *MemoryAdapter) SalesTrend(ctx context.Context, ownerID string) ([]domain.TrendPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byDay := make(map[string]decimal.Decimal)
	for _, sale := range m.sales {
		if sale.OwnerID != ownerID {
			continue
		}
		day := sale.CreatedAt.UTC().Format(domain.TrendDateLayout)
		byDay[day] = byDay[day].Add(sale.TotalAmount)
	}

	trend := make([]domain.TrendPoint, 0, len(byDay))
	for day, total := range byDay {
		trend = append(trend, domain.TrendPoint{Date: day, TotalSales: total})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend, nil
}

func (m *MemoryAdapter) CreateAccount(ctx context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.accounts {
		if existing.Email == account.Email {
			return domain.ErrEmailTaken
		}
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MemoryAdapter) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}

func (m *MemoryAdapter) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, account := range m.accounts {
		if account.Email == email {
			return &account, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}
