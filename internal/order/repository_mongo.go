package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "orders"

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(database), nil
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(CollectionName)}
}

// CreateIndexes backs the user history and payment id lookups.
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: FieldUserID, Value: 1}, {Key: FieldCreatedAt, Value: -1}}},
		{Keys: bson.D{{Key: FieldPaymentID, Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Insert(ctx context.Context, o Order) (Order, error) {
	doc, err := toDocument(o)
	if err != nil {
		return Order{}, err
	}
	res, err := m.collection.InsertOne(ctx, doc)
	if err != nil {
		return Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid.Hex()
	}
	return o, nil
}

func (m *MongoRepository) FindByID(ctx context.Context, id string) (Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Order{}, ErrNotFound
	}
	return m.findOne(ctx, bson.M{FieldID: oid})
}

func (m *MongoRepository) FindByField(ctx context.Context, field string, value interface{}) (Order, error) {
	return m.findOne(ctx, bson.M{field: value})
}

func (m *MongoRepository) findOne(ctx context.Context, filter bson.M) (Order, error) {
	var doc bson.M
	if err := m.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("failed to get order: %w", err)
	}
	return fromDocument(doc), nil
}

func (m *MongoRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: FieldCreatedAt, Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := m.collection.Find(ctx, bson.M{FieldUserID: userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]Order, 0)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		out = append(out, fromDocument(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return out, nil
}
