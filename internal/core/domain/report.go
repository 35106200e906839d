package domain

import "github.com/shopspring/decimal"

const (
	// DeletedItemName labels summary rows whose item no longer exists.
	DeletedItemName = "(deleted item)"
	TrendDateLayout = "2006-01-02"
)

type SummaryEntry struct {
	ItemID        string          `json:"item" db:"item_id"`
	ItemName      string          `json:"item_name" db:"item_name"`
	TotalQuantity int64           `json:"total_quantity" db:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
}

type TrendPoint struct {
	Date       string          `json:"date"`
	TotalSales decimal.Decimal `json:"total_sales"`
}
