package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/rl1809/stockroom/internal/core/domain"
)

const (
	mysqlDuplicateEntry     = 1062
	postgresUniqueViolation = "23505"
)

const itemColumns = `id, owner_id, name, quantity, price, version, created_at, updated_at`

const accountColumns = `id, email, name, warehouse_name, password_hash, created_at`

// SQLAdapter implements port.DatabaseRepository on MySQL or PostgreSQL.
// Queries are written with '?' placeholders and rebound for the driver.
type SQLAdapter struct {
	db *sqlx.DB
}

func NewSQLAdapter(db *sqlx.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (m *SQLAdapter) CreateItem(ctx context.Context, item domain.Item) error {
	_, err := m.db.ExecContext(ctx, m.db.Rebind(`
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		item.ID, item.OwnerID, item.Name, item.Quantity, item.Price, item.Version,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	return nil
}

func (m *SQLAdapter) ListItems(ctx context.Context, ownerID string) ([]domain.Item, error) {
	items := []domain.Item{}
	err := m.db.SelectContext(ctx, &items, m.db.Rebind(`
		SELECT `+itemColumns+`
		FROM items WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC`), ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	return items, nil
}

func (m *SQLAdapter) GetItem(ctx context.Context, ownerID, itemID string) (*domain.Item, error) {
	return getItem(ctx, m.db, m.db.Rebind, ownerID, itemID)
}

func getItem(ctx context.Context, q sqlx.QueryerContext, rebind func(string) string, ownerID, itemID string) (*domain.Item, error) {
	var item domain.Item
	err := sqlx.GetContext(ctx, q, &item, rebind(`
		SELECT `+itemColumns+`
		FROM items WHERE id = ? AND owner_id = ?`), itemID, ownerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}

	return &item, nil
}

func (m *SQLAdapter) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	result, err := m.db.ExecContext(ctx, m.db.Rebind(`
		DELETE FROM items WHERE id = ? AND owner_id = ?`), itemID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

func (m *SQLAdapter) RestockItem(ctx context.Context, ownerID, itemID string, delta int) (*domain.Item, error) {
	if err := domain.ValidateRestock(delta); err != nil {
		return nil, err
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, m.db.Rebind(`
		UPDATE items
		SET quantity = quantity + ?, version = version + 1, updated_at = ?
		WHERE id = ? AND owner_id = ? AND quantity <= ?`),
		delta, time.Now().UTC(), itemID, ownerID, domain.MaxQuantity-delta,
	)
	if err != nil {
		return nil, fmt.Errorf("restock item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		current, err := getItem(ctx, tx, m.db.Rebind, ownerID, itemID)
		return nil, restockMiss(current, delta, err)
	}

	item, err := getItem(ctx, tx, m.db.Rebind, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit restock: %w", err)
	}

	return item, nil
}

func (m *SQLAdapter) CreateSale(ctx context.Context, sale domain.Sale) (*domain.SaleReceipt, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	item, err := getItem(ctx, tx, m.db.Rebind, sale.OwnerID, sale.ItemID)
	if err != nil {
		return nil, err
	}

	total, err := item.Sell(sale.Quantity)
	if err != nil {
		return nil, err
	}
	item.UpdatedAt = sale.CreatedAt

	result, err := tx.ExecContext(ctx, m.db.Rebind(`
		UPDATE items
		SET quantity = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND owner_id = ? AND version = ?`),
		item.Quantity, item.UpdatedAt, item.ID, item.OwnerID, item.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, domain.ErrStaleItem
	}
	item.Version++

	sale.TotalAmount = total
	_, err = tx.ExecContext(ctx, m.db.Rebind(`
		INSERT INTO sales (id, owner_id, item_id, quantity, total_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		sale.ID, sale.OwnerID, sale.ItemID, sale.Quantity, sale.TotalAmount, sale.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}

	return &domain.SaleReceipt{Sale: sale, UpdatedItem: *item}, nil
}

func (m *SQLAdapter) SalesSummary(ctx context.Context, ownerID string) ([]domain.SummaryEntry, error) {
	summary := []domain.SummaryEntry{}
	err := m.db.SelectContext(ctx, &summary, m.db.Rebind(`
		SELECT s.item_id AS item_id,
			COALESCE(i.name, '') AS item_name,
			SUM(s.quantity) AS total_quantity,
			SUM(s.total_amount) AS total_amount
		FROM sales s
		LEFT JOIN items i ON i.id = s.item_id
		WHERE s.owner_id = ?
		GROUP BY s.item_id, i.name
		ORDER BY s.item_id`), ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sales summary: %w", err)
	}

	return summary, nil
}

type trendRow struct {
	Day        time.Time       `db:"sale_day"`
	TotalSales decimal.Decimal `db:"total_sales"`
}

func (m *SQLAdapter) SalesTrend(ctx context.Context, ownerID string) ([]domain.TrendPoint, error) {
	var rows []trendRow
	err := m.db.SelectContext(ctx, &rows, m.db.Rebind(`
		SELECT CAST(created_at AS DATE) AS sale_day, SUM(total_amount) AS total_sales
		FROM sales
		WHERE owner_id = ?
		GROUP BY CAST(created_at AS DATE)
		ORDER BY sale_day`), ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sales trend: %w", err)
	}

	trend := make([]domain.TrendPoint, 0, len(rows))
	for _, row := range rows {
		trend = append(trend, domain.TrendPoint{
			Date:       row.Day.UTC().Format(domain.TrendDateLayout),
			TotalSales: row.TotalSales,
		})
	}

	return trend, nil
}

func (m *SQLAdapter) CreateAccount(ctx context.Context, account domain.Account) error {
	_, err := m.db.ExecContext(ctx, m.db.Rebind(`
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`),
		account.ID, account.Email, account.Name, account.WarehouseName,
		account.PasswordHash, account.CreatedAt,
	)
	if isDuplicateKey(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

func (m *SQLAdapter) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return m.getAccount(ctx, "id", id)
}

func (m *SQLAdapter) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return m.getAccount(ctx, "email", email)
}

func (m *SQLAdapter) getAccount(ctx context.Context, column, value string) (*domain.Account, error) {
	var account domain.Account
	err := m.db.GetContext(ctx, &account, m.db.Rebind(`
		SELECT `+accountColumns+`
		FROM accounts WHERE `+column+` = ?`), value,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query account: %w", err)
	}

	return &account, nil
}

// restockMiss explains a guarded restock that matched no row: the item is
// missing, or the delta would push it past domain.MaxQuantity.
func restockMiss(item *domain.Item, delta int, err error) error {
	if err != nil {
		return err
	}
	if err := item.Restock(delta); err != nil {
		return err
	}
	return domain.ErrConflict
}

func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolation
	}
	return false
}
