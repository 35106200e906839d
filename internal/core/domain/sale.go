package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an immutable record of stock sold. TotalAmount pins the item price
// at the time of the sale.
type Sale struct {
	ID          string          `json:"_id" db:"id"`
	OwnerID     string          `json:"user" db:"owner_id"`
	ItemID      string          `json:"item" db:"item_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// SaleReceipt is the outcome of a committed sale.
type SaleReceipt struct {
	Sale        Sale `json:"sale"`
	UpdatedItem Item `json:"updatedItem"`
}
