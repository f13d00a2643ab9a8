package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brokerage-api/internal/config"
)

// TxRunner executes a function inside a MongoDB multi-document transaction.
// All repository calls made with the callback context join the same session.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Database struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewConnection(cfg config.DatabaseConfig) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	clientOptions.SetMaxPoolSize(cfg.MaxPoolSize)
	clientOptions.SetMinPoolSize(cfg.MinPoolSize)
	clientOptions.SetMaxConnIdleTime(cfg.MaxIdleTime)
	clientOptions.SetServerSelectionTimeout(cfg.SelectionTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := &Database{
		Client:   client,
		Database: client.Database(cfg.Database),
	}

	if err := db.CreateIndexes(); err != nil {
		logrus.Warnf("Failed to create indexes: %v", err)
	}

	logrus.Infof("Connected to MongoDB database: %s", cfg.Database)
	return db, nil
}

func (d *Database) CreateIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orderIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("status_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "order_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("order_number_unique_idx"),
		},
		{
			Keys:    bson.D{{Key: "company_symbol", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("company_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "executed_at", Value: -1}},
			Options: options.Index().SetName("executed_at_idx").SetSparse(true),
		},
	}

	if _, err := d.Database.Collection("orders").Indexes().CreateMany(ctx, orderIndexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	portfolioIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "company_symbol", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_company_unique_idx"),
		},
		{
			Keys:    bson.D{{Key: "company_symbol", Value: 1}},
			Options: options.Index().SetName("company_idx"),
		},
	}

	if _, err := d.Database.Collection("portfolios").Indexes().CreateMany(ctx, portfolioIndexes); err != nil {
		return fmt.Errorf("failed to create portfolio indexes: %w", err)
	}

	accountIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_unique_idx"),
		},
	}

	if _, err := d.Database.Collection("accounts").Indexes().CreateMany(ctx, accountIndexes); err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}

	transactionIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "transaction_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("transaction_number_unique_idx"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("type_created_idx"),
		},
	}

	if _, err := d.Database.Collection("transactions").Indexes().CreateMany(ctx, transactionIndexes); err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}

	logrus.Info("MongoDB indexes created successfully")
	return nil
}

// WithTransaction runs fn inside a session transaction. The callback receives
// a mongo.SessionContext so repository operations join the transaction.
func (d *Database) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := d.Client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		return err
	}

	return nil
}

func (d *Database) GetCollection(name string) *mongo.Collection {
	return d.Database.Collection(name)
}

func (d *Database) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, nil)
}

func (d *Database) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	logrus.Info("Disconnected from MongoDB")
	return nil
}
