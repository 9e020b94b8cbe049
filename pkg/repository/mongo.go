package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mercadito-backend/pkg/config"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	ordersCollection   = "orders"
)

type Mongo struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewMongo(cfg *config.MongoDBConfig) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &Mongo{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the services rely on: one per
// user email and one per order reference number. Duplicate writes then fail
// at the store instead of racing through.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = m.database.Collection(ordersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "referenceNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *Mongo) Users() *UserRepo       { return &UserRepo{coll: m.database.Collection(usersCollection)} }
func (m *Mongo) Products() *ProductRepo { return &ProductRepo{coll: m.database.Collection(productsCollection)} }
func (m *Mongo) Orders() *OrderRepo     { return &OrderRepo{coll: m.database.Collection(ordersCollection)} }
