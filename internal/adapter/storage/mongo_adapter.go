package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rl1809/stockroom/internal/core/domain"
)

const (
	itemsCollection    = "items"
	salesCollection    = "sales"
	accountsCollection = "accounts"
)

type itemDocument struct {
	ID        string               `bson:"_id"`
	OwnerID   string               `bson:"owner_id"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
	Version   int                  `bson:"version"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

type saleDocument struct {
	ID          string               `bson:"_id"`
	OwnerID     string               `bson:"owner_id"`
	ItemID      string               `bson:"item_id"`
	Quantity    int                  `bson:"quantity"`
	TotalAmount primitive.Decimal128 `bson:"total_amount"`
	CreatedAt   time.Time            `bson:"created_at"`
}

type accountDocument struct {
	ID            string    `bson:"_id"`
	Email         string    `bson:"email"`
	Name          string    `bson:"name"`
	WarehouseName string    `bson:"warehouse_name"`
	PasswordHash  string    `bson:"password_hash"`
	CreatedAt     time.Time `bson:"created_at"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func newItemDocument(item domain.Item) (itemDocument, error) {
	price, err := toDecimal128(item.Price)
	if err != nil {
		return itemDocument{}, fmt.Errorf("encode price: %w", err)
	}
	return itemDocument{
		ID:        item.ID,
		OwnerID:   item.OwnerID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Price:     price,
		Version:   item.Version,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}, nil
}

func (d itemDocument) toDomain() (domain.Item, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return domain.Item{}, fmt.Errorf("decode price: %w", err)
	}
	return domain.Item{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Name:      d.Name,
		Quantity:  d.Quantity,
		Price:     price,
		Version:   d.Version,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

// MongoAdapter implements port.DatabaseRepository on MongoDB. Sales use a
// multi-document transaction, so the deployment must be a replica set.
type MongoAdapter struct {
	client   *mongo.Client
	items    *mongo.Collection
	sales    *mongo.Collection
	accounts *mongo.Collection
}

func NewMongoAdapter(client *mongo.Client, database string) *MongoAdapter {
	db := client.Database(database)
	return &MongoAdapter{
		client:   client,
		items:    db.Collection(itemsCollection),
		sales:    db.Collection(salesCollection),
		accounts: db.Collection(accountsCollection),
	}
}

// Migrate creates the indexes the adapter relies on.
func (a *MongoAdapter) Migrate(ctx context.Context) error {
	_, err := a.accounts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create accounts index: %w", err)
	}

	_, err = a.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create items index: %w", err)
	}

	_, err = a.sales.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "item_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create sales index: %w", err)
	}

	return nil
}

func (a *MongoAdapter) CreateItem(ctx context.Context, item domain.Item) error {
	doc, err := newItemDocument(item)
	if err != nil {
		return err
	}
	if _, err := a.items.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (a *MongoAdapter) ListItems(ctx context.Context, ownerID string) ([]domain.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := a.items.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}

	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	items := make([]domain.Item, 0, len(docs))
	for _, doc := range docs {
		item, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (a *MongoAdapter) GetItem(ctx context.Context, ownerID, itemID string) (*domain.Item, error) {
	var doc itemDocument
	err := a.items.FindOne(ctx, bson.M{"_id": itemID, "owner_id": ownerID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}

	item, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (a *MongoAdapter) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	result, err := a.items.DeleteOne(ctx, bson.M{"_id": itemID, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (a *MongoAdapter) RestockItem(ctx context.Context, ownerID, itemID string, delta int) (*domain.Item, error) {
	if err := domain.ValidateRestock(delta); err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":      itemID,
		"owner_id": ownerID,
		"quantity": bson.M{"$lte": domain.MaxQuantity - delta},
	}
	update := bson.M{
		"$inc": bson.M{"quantity": delta, "version": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc itemDocument
	err := a.items.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, err := a.GetItem(ctx, ownerID, itemID)
		return nil, restockMiss(current, delta, err)
	}
	if err != nil {
		return nil, fmt.Errorf("restock item: %w", err)
	}

	item, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (a *MongoAdapter) CreateSale(ctx context.Context, sale domain.Sale) (*domain.SaleReceipt, error) {
	session, err := a.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return a.createSaleTx(sc, sale)
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.SaleReceipt), nil
}

func (a *MongoAdapter) createSaleTx(sc mongo.SessionContext, sale domain.Sale) (*domain.SaleReceipt, error) {
	item, err := a.GetItem(sc, sale.OwnerID, sale.ItemID)
	if err != nil {
		return nil, err
	}

	total, err := item.Sell(sale.Quantity)
	if err != nil {
		return nil, err
	}
	item.UpdatedAt = sale.CreatedAt

	filter := bson.M{"_id": item.ID, "owner_id": item.OwnerID, "version": item.Version}
	update := bson.M{
		"$set": bson.M{"quantity": item.Quantity, "updated_at": item.UpdatedAt},
		"$inc": bson.M{"version": 1},
	}
	result, err := a.items.UpdateOne(sc, filter, update)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, domain.ErrStaleItem
	}
	item.Version++

	sale.TotalAmount = total
	amount, err := toDecimal128(total)
	if err != nil {
		return nil, fmt.Errorf("encode total: %w", err)
	}
	_, err = a.sales.InsertOne(sc, saleDocument{
		ID:          sale.ID,
		OwnerID:     sale.OwnerID,
		ItemID:      sale.ItemID,
		Quantity:    sale.Quantity,
		TotalAmount: amount,
		CreatedAt:   sale.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	return &domain.SaleReceipt{Sale: sale, UpdatedItem: *item}, nil
}

type summaryDocument struct {
	ItemID        string               `bson:"_id"`
	TotalQuantity int64                `bson:"total_quantity"`
	TotalAmount   primitive.Decimal128 `bson:"total_amount"`
	Items         []itemDocument       `bson:"item"`
}

func (a *MongoAdapter) SalesSummary(ctx context.Context, ownerID string) ([]domain.SummaryEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner_id", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$item_id"},
			{Key: "total_quantity", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
			{Key: "total_amount", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: itemsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "item"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := a.sales.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales summary: %w", err)
	}

	var docs []summaryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sales summary: %w", err)
	}

	summary := make([]domain.SummaryEntry, 0, len(docs))
	for _, doc := range docs {
		amount, err := fromDecimal128(doc.TotalAmount)
		if err != nil {
			return nil, fmt.Errorf("decode summary total: %w", err)
		}
		entry := domain.SummaryEntry{
			ItemID:        doc.ItemID,
			TotalQuantity: doc.TotalQuantity,
			TotalAmount:   amount,
		}
		if len(doc.Items) > 0 {
			entry.ItemName = doc.Items[0].Name
		}
		summary = append(summary, entry)
	}
	return summary, nil
}

type trendDocument struct {
	Date       string               `bson:"_id"`
	TotalSales primitive.Decimal128 `bson:"total_sales"`
}

func (a *MongoAdapter) SalesTrend(ctx context.Context, ownerID string) ([]domain.TrendPoint, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner_id", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$created_at"},
			}}}},
			{Key: "total_sales", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := a.sales.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales trend: %w", err)
	}

	var docs []trendDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sales trend: %w", err)
	}

	trend := make([]domain.TrendPoint, 0, len(docs))
	for _, doc := range docs {
		total, err := fromDecimal128(doc.TotalSales)
		if err != nil {
			return nil, fmt.Errorf("decode trend total: %w", err)
		}
		trend = append(trend, domain.TrendPoint{Date: doc.Date, TotalSales: total})
	}
	return trend, nil
}

func (a *MongoAdapter) CreateAccount(ctx context.Context, account domain.Account) error {
	_, err := a.accounts.InsertOne(ctx, accountDocument(account))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (a *MongoAdapter) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return a.findAccount(ctx, bson.M{"_id": id})
}

func (a *MongoAdapter) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return a.findAccount(ctx, bson.M{"email": email})
}

func (a *MongoAdapter) findAccount(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDocument
	err := a.accounts.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}

	account := domain.Account(doc)
	account.CreatedAt = account.CreatedAt.UTC()
	return &account, nil
}
