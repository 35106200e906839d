package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/stockroom/internal/core/domain"
	"github.com/rl1809/stockroom/internal/port"
)

type ItemService struct {
	items  port.ItemRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewItemService(items port.ItemRepository, logger *zap.Logger) *ItemService {
	return &ItemService{
		items:  items,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID, name string, quantity int, price decimal.Decimal) (*domain.Item, error) {
	item, err := domain.NewItem(uuid.NewString(), ownerID, name, quantity, price, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.items.CreateItem(ctx, item); err != nil {
		s.logger.Error("failed to create item", zap.String("owner", ownerID), zap.Error(err))
		return nil, fmt.Errorf("could not save item: %w", err)
	}
	return &item, nil
}

func (s *ItemService) ListItems(ctx context.Context, ownerID string) ([]domain.Item, error) {
	return s.items.ListItems(ctx, ownerID)
}

func (s *ItemService) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	if err := s.items.DeleteItem(ctx, ownerID, itemID); err != nil {
		return err
	}
	s.logger.Info("item deleted", zap.String("owner", ownerID), zap.String("item_id", itemID))
	return nil
}

// RestockItem adds delta units. A negative delta is rejected before the
// store is touched.
func (s *ItemService) RestockItem(ctx context.Context, ownerID, itemID string, delta int) (*domain.Item, error) {
	if err := domain.ValidateRestock(delta); err != nil {
		return nil, err
	}
	return s.items.RestockItem(ctx, ownerID, itemID, delta)
}
