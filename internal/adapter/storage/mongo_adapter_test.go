package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rl1809/stockroom/internal/core/domain"
)

func TestDecimal128RoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "2.5", "19.99", "123456789.0001"} {
		want := decimal.RequireFromString(raw)

		d128, err := toDecimal128(want)
		if err != nil {
			t.Fatalf("toDecimal128(%s) failed: %v", raw, err)
		}
		got, err := fromDecimal128(d128)
		if err != nil {
			t.Fatalf("fromDecimal128(%s) failed: %v", raw, err)
		}
		if !got.Equal(want) {
			t.Errorf("round trip of %s gave %s", raw, got)
		}
	}
}

func TestItemDocumentConversion(t *testing.T) {
	now := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	item := domain.Item{ID: "i", OwnerID: "o", Name: "Widget", Quantity: 4, Price: decimal.RequireFromString("1.25"), Version: 2, CreatedAt: now, UpdatedAt: now}

	doc, err := newItemDocument(item)
	if err != nil {
		t.Fatalf("newItemDocument failed: %v", err)
	}
	back, err := doc.toDomain()
	if err != nil {
		t.Fatalf("toDomain failed: %v", err)
	}
	if back.Name != item.Name || back.Quantity != item.Quantity || back.Version != item.Version || !back.Price.Equal(item.Price) {
		t.Errorf("conversion mismatch: %+v vs %+v", back, item)
	}
}

// getMongoAdapter needs a replica set, since sales run in a transaction.
func getMongoAdapter(t *testing.T) *MongoAdapter {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	adapter := NewMongoAdapter(client, "stockroom_test")
	if err := adapter.Migrate(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return adapter
}

func TestLiveMongo_SaleLifecycle(t *testing.T) {
	adapter := getMongoAdapter(t)
	ctx := context.Background()

	ownerID := "test-owner-" + uuid.NewString()[:8]
	defer adapter.items.DeleteMany(ctx, bson.M{"owner_id": ownerID})
	defer adapter.sales.DeleteMany(ctx, bson.M{"owner_id": ownerID})

	now := time.Now().UTC().Truncate(time.Millisecond)
	item, _ := domain.NewItem(uuid.NewString(), ownerID, "Widget", 5, decimal.RequireFromString("2.50"), now)
	if err := adapter.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	receipt, err := adapter.CreateSale(ctx, domain.Sale{
		ID: uuid.NewString(), OwnerID: ownerID, ItemID: item.ID, Quantity: 3, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}
	if receipt.UpdatedItem.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", receipt.UpdatedItem.Quantity)
	}

	_, err = adapter.CreateSale(ctx, domain.Sale{
		ID: uuid.NewString(), OwnerID: ownerID, ItemID: item.ID, Quantity: 3, CreatedAt: now,
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}

	restocked, err := adapter.RestockItem(ctx, ownerID, item.ID, 1)
	if err != nil {
		t.Fatalf("RestockItem failed: %v", err)
	}
	if restocked.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", restocked.Quantity)
	}
	if _, err := adapter.RestockItem(ctx, ownerID, item.ID, domain.MaxQuantity); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation past the quantity ceiling, got %v", err)
	}
	if _, err := adapter.RestockItem(ctx, ownerID, "missing", 1); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	if err := adapter.DeleteItem(ctx, ownerID, item.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}

	summary, err := adapter.SalesSummary(ctx, ownerID)
	if err != nil {
		t.Fatalf("SalesSummary failed: %v", err)
	}
	if len(summary) != 1 || summary[0].TotalQuantity != 3 || summary[0].ItemName != "" {
		t.Errorf("unexpected summary: %+v", summary)
	}

	trend, err := adapter.SalesTrend(ctx, ownerID)
	if err != nil {
		t.Fatalf("SalesTrend failed: %v", err)
	}
	if len(trend) != 1 || !trend[0].TotalSales.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("unexpected trend: %+v", trend)
	}
}

func TestLiveMongo_DuplicateEmail(t *testing.T) {
	adapter := getMongoAdapter(t)
	ctx := context.Background()

	email := uuid.NewString()[:8] + "@example.com"
	defer adapter.accounts.DeleteMany(ctx, bson.M{"email": email})

	account := domain.Account{ID: uuid.NewString(), Email: email, Name: "A", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	if err := adapter.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	account.ID = uuid.NewString()
	if err := adapter.CreateAccount(ctx, account); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	found, err := adapter.GetAccountByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetAccountByEmail failed: %v", err)
	}
	if found.Email != email {
		t.Errorf("expected %s, got %s", email, found.Email)
	}
}
