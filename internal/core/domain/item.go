package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest stock level an item may hold. It matches the
// INT quantity column.
const MaxQuantity = math.MaxInt32

func init() {
	// Prices and totals are rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Item is a stock-keeping record owned by exactly one account.
type Item struct {
	ID        string          `json:"_id" db:"id"`
	OwnerID   string          `json:"user" db:"owner_id"`
	Name      string          `json:"name" db:"name"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Version   int             `json:"version" db:"version"` // optimistic locking
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// NewItem builds a validated item with version 0.
func NewItem(id, ownerID, name string, quantity int, price decimal.Decimal, now time.Time) (Item, error) {
	item := Item{
		ID:        id,
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(name),
		Quantity:  quantity,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (i Item) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if i.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}
	if i.Quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity cannot exceed %d", ErrValidation, MaxQuantity)
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	return nil
}

// Sell removes quantity units from stock and returns the sale total at the
// current price. The item is left untouched when stock is insufficient.
func (i *Item) Sell(quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if i.Quantity < quantity {
		return decimal.Zero, fmt.Errorf("%w: %d available, %d requested", ErrInsufficientStock, i.Quantity, quantity)
	}
	i.Quantity -= quantity
	return i.Price.Mul(decimal.NewFromInt(int64(quantity))), nil
}

// Restock adds a non-negative delta to the quantity. The item is left
// untouched when the result would exceed MaxQuantity.
func (i *Item) Restock(delta int) error {
	if err := ValidateRestock(delta); err != nil {
		return err
	}
	if delta > MaxQuantity-i.Quantity {
		return fmt.Errorf("%w: restocking %d on top of %d exceeds %d", ErrValidation, delta, i.Quantity, MaxQuantity)
	}
	i.Quantity += delta
	return nil
}

func ValidateRestock(delta int) error {
	if delta < 0 {
		return fmt.Errorf("%w: restock quantity cannot be negative", ErrValidation)
	}
	if delta > MaxQuantity {
		return fmt.Errorf("%w: restock quantity cannot exceed %d", ErrValidation, MaxQuantity)
	}
	return nil
}
