package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"brokerage-api/internal/models"
)

type AccountRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.AccountBalance, error)
	Create(ctx context.Context, account *models.AccountBalance) error
	Update(ctx context.Context, account *models.AccountBalance) error
}

type accountRepository struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) AccountRepository {
	return &accountRepository{
		collection: db.Collection("accounts"),
	}
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID int64) (*models.AccountBalance, error) {
	var account models.AccountBalance
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("account for user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.AccountBalance) error {
	result, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		account.ID = oid
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *models.AccountBalance) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": account.ID}, account)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("account %s: %w", account.ID.Hex(), ErrNotFound)
	}
	return nil
}
