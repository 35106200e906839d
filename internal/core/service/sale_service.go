package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/stockroom/internal/core/domain"
	"github.com/rl1809/stockroom/internal/port"
)

const (
	lockBackoffMin     = 5 * time.Millisecond
	lockBackoffMax     = 100 * time.Millisecond
	lockReleaseTimeout = time.Second
)

type SaleConfig struct {
	LockTTL     time.Duration
	MaxAttempts int
}

type SaleService struct {
	sales       port.SaleRepository
	cache       port.CacheRepository
	logger      *zap.Logger
	lockTTL     time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewSaleService(sales port.SaleRepository, cache port.CacheRepository, logger *zap.Logger, cfg SaleConfig) *SaleService {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Second
	}
	return &SaleService{
		sales:       sales,
		cache:       cache,
		logger:      logger,
		lockTTL:     cfg.LockTTL,
		maxAttempts: cfg.MaxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RecordSale sells quantity units of the owner's item. The stock decrement
// and the sale record are committed together or not at all. A non-empty
// idempotencyKey makes the call at-most-once per owner.
func (s *SaleService) RecordSale(ctx context.Context, ownerID, itemID string, quantity int, idempotencyKey string) (*domain.SaleReceipt, error) {
	if itemID == "" {
		return nil, fmt.Errorf("%w: itemId is required", domain.ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", domain.ErrValidation)
	}

	if idempotencyKey != "" {
		key := fmt.Sprintf("sale:%s:%s", ownerID, idempotencyKey)
		ok, err := s.cache.SetIdempotency(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest
		}

		receipt, err := s.recordLocked(ctx, ownerID, itemID, quantity)
		if err != nil {
			if clearErr := s.cache.ClearIdempotency(context.WithoutCancel(ctx), key); clearErr != nil {
				s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(clearErr))
			}
			return nil, err
		}
		return receipt, nil
	}

	return s.recordLocked(ctx, ownerID, itemID, quantity)
}

func (s *SaleService) recordLocked(ctx context.Context, ownerID, itemID string, quantity int) (*domain.SaleReceipt, error) {
	unlock, err := s.lockItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		sale := domain.Sale{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			ItemID:    itemID,
			Quantity:  quantity,
			CreatedAt: s.now(),
		}

		receipt, err := s.sales.CreateSale(ctx, sale)
		if err == nil {
			s.logger.Info("sale recorded",
				zap.String("owner", ownerID),
				zap.String("item_id", itemID),
				zap.String("sale_id", receipt.Sale.ID),
				zap.Int("quantity", quantity),
				zap.Int("remaining", receipt.UpdatedItem.Quantity),
			)
			return receipt, nil
		}
		if !errors.Is(err, domain.ErrStaleItem) {
			return nil, err
		}

		s.logger.Debug("item changed during sale, retrying",
			zap.String("item_id", itemID),
			zap.Int("attempt", attempt),
		)
	}

	return nil, fmt.Errorf("%w: item %s kept changing, try again", domain.ErrConflict, itemID)
}

// lockItem blocks until the owner's per-item lock is held or ctx is done.
func (s *SaleService) lockItem(ctx context.Context, ownerID, itemID string) (func(), error) {
	key := "item:" + ownerID + ":" + itemID
	token := uuid.NewString()
	backoff := lockBackoffMin

	for {
		ok, err := s.cache.AcquireLock(ctx, key, token, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire item lock: %w", err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("acquire item lock: %w", ctx.Err())
		case <-timer.C:
		}
		if backoff < lockBackoffMax {
			backoff *= 2
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout)
		defer cancel()
		if err := s.cache.ReleaseLock(releaseCtx, key, token); err != nil {
			s.logger.Warn("failed to release item lock", zap.String("item_id", itemID), zap.Error(err))
		}
	}, nil
}
