package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rl1809/stockroom/internal/config"
	"github.com/rl1809/stockroom/internal/port"
)

const (
	maxOpenConns    = 50
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
	pingTimeout     = 5 * time.Second
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		warehouse_name VARCHAR(255) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id VARCHAR(36) PRIMARY KEY,
		owner_id VARCHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		quantity INT NOT NULL CHECK (quantity >= 0),
		price DECIMAL(14,4) NOT NULL CHECK (price >= 0),
		version INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_items_owner_created (owner_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id VARCHAR(36) PRIMARY KEY,
		owner_id VARCHAR(36) NOT NULL,
		item_id VARCHAR(36) NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		total_amount DECIMAL(18,4) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_sales_owner_item (owner_id, item_id),
		INDEX idx_sales_owner_created (owner_id, created_at)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		warehouse_name VARCHAR(255) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id VARCHAR(36) PRIMARY KEY,
		owner_id VARCHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		price NUMERIC(14,4) NOT NULL CHECK (price >= 0),
		version INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP(6) NOT NULL,
		updated_at TIMESTAMP(6) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_owner_created ON items (owner_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id VARCHAR(36) PRIMARY KEY,
		owner_id VARCHAR(36) NOT NULL,
		item_id VARCHAR(36) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		total_amount NUMERIC(18,4) NOT NULL,
		created_at TIMESTAMP(6) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_owner_item ON sales (owner_id, item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_owner_created ON sales (owner_id, created_at)`,
}

// OpenSQL connects to MySQL ("mysql") or PostgreSQL ("pgx") with the
// service's pool settings.
func OpenSQL(ctx context.Context, driverName, dsn string) (*sqlx.DB, error) {
	if driverName == "mysql" {
		normalized, err := mysqlDSN(dsn)
		if err != nil {
			return nil, err
		}
		dsn = normalized
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}

	return db, nil
}

// mysqlDSN forces DATETIME columns to scan into time.Time in UTC, whatever
// the configured DSN says.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// Migrate creates the tables the adapter needs if they do not exist.
func (m *SQLAdapter) Migrate(ctx context.Context) error {
	schema := mysqlSchema
	if m.db.DriverName() == "pgx" {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Open builds the database repository selected by cfg.Driver. The returned
// close function releases the underlying connections.
func Open(ctx context.Context, cfg config.Storage) (port.DatabaseRepository, func() error, error) {
	switch cfg.Driver {
	case config.DriverMySQL, config.DriverPostgres:
		driverName := "mysql"
		if cfg.Driver == config.DriverPostgres {
			driverName = "pgx"
		}
		db, err := OpenSQL(ctx, driverName, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		adapter := NewSQLAdapter(db)
		if cfg.AutoMigrate {
			if err := adapter.Migrate(ctx); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return adapter, db.Close, nil

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DSN))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		adapter := NewMongoAdapter(client, cfg.MongoDatabase)
		if cfg.AutoMigrate {
			if err := adapter.Migrate(ctx); err != nil {
				client.Disconnect(context.Background())
				return nil, nil, err
			}
		}
		return adapter, func() error { return client.Disconnect(context.Background()) }, nil

	case config.DriverMemory:
		return NewMemoryAdapter(), func() error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

// OpenCache returns a Redis-backed cache when addr is set, and an in-process
// one otherwise.
func OpenCache(ctx context.Context, addr string) (port.CacheRepository, func() error, error) {
	if addr == "" {
		return NewMemoryCache(), func() error { return nil }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	return NewRedisAdapter(rdb), rdb.Close, nil
}
