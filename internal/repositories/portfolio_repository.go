package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brokerage-api/internal/models"
)

type PortfolioRepository interface {
	GetByUserAndSymbol(ctx context.Context, userID int64, symbol string) (*models.Portfolio, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Portfolio, error)
	ListAll(ctx context.Context, limit, offset int64) ([]*models.Portfolio, error)
	Upsert(ctx context.Context, portfolio *models.Portfolio) error
}

type portfolioRepository struct {
	collection *mongo.Collection
}

func NewPortfolioRepository(db *mongo.Database) PortfolioRepository {
	return &portfolioRepository{
		collection: db.Collection("portfolios"),
	}
}

func (r *portfolioRepository) GetByUserAndSymbol(ctx context.Context, userID int64, symbol string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := r.collection.FindOne(ctx, bson.M{
		"user_id":        userID,
		"company_symbol": symbol,
	}).Decode(&portfolio)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("portfolio %d/%s: %w", userID, symbol, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	return &portfolio, nil
}

func (r *portfolioRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Portfolio, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "company_symbol", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer cursor.Close(ctx)

	var portfolios []*models.Portfolio
	if err := cursor.All(ctx, &portfolios); err != nil {
		return nil, fmt.Errorf("failed to decode portfolios: %w", err)
	}

	return portfolios, nil
}

func (r *portfolioRepository) ListAll(ctx context.Context, limit, offset int64) ([]*models.Portfolio, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list all portfolios: %w", err)
	}
	defer cursor.Close(ctx)

	var portfolios []*models.Portfolio
	if err := cursor.All(ctx, &portfolios); err != nil {
		return nil, fmt.Errorf("failed to decode portfolios: %w", err)
	}

	return portfolios, nil
}

func (r *portfolioRepository) Upsert(ctx context.Context, portfolio *models.Portfolio) error {
	if portfolio.ID.IsZero() {
		portfolio.ID = primitive.NewObjectID()
	}

	filter := bson.M{
		"user_id":        portfolio.UserID,
		"company_symbol": portfolio.CompanySymbol,
	}

	_, err := r.collection.ReplaceOne(ctx, filter, portfolio, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio: %w", err)
	}

	return nil
}
