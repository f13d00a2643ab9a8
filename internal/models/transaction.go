package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType classifies ledger entries
type TransactionType string

const (
	TransactionTypeBuy        TransactionType = "buy"
	TransactionTypeSell       TransactionType = "sell"
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// Transaction is an append-only ledger entry. Entries are written once when
// money moves and are never updated afterwards.
type Transaction struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransactionNumber string             `bson:"transaction_number" json:"transaction_number"`
	UserID            int64              `bson:"user_id" json:"user_id"`
	Type              TransactionType    `bson:"type" json:"type"`
	Amount            decimal.Decimal    `bson:"amount" json:"amount"`
	Reference         Reference          `bson:"reference" json:"reference"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
}

// Reference carries the trade details behind a ledger entry
type Reference struct {
	OrderID       string          `bson:"order_id,omitempty" json:"order_id,omitempty"`
	CompanySymbol string          `bson:"company_symbol,omitempty" json:"company_symbol,omitempty"`
	Quantity      int64           `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Price         decimal.Decimal `bson:"price,omitempty" json:"price,omitempty"`
	Description   string          `bson:"description,omitempty" json:"description,omitempty"`
}

// NewTransaction creates a ledger entry stamped with the current time
func NewTransaction(userID int64, txType TransactionType, amount decimal.Decimal, ref Reference) *Transaction {
	now := time.Now()
	return &Transaction{
		TransactionNumber: fmt.Sprintf("TXN-%d-%d", now.Year(), now.UnixNano()),
		UserID:            userID,
		Type:              txType,
		Amount:            amount,
		Reference:         ref,
		CreatedAt:         now,
	}
}

// IsTrade returns true for entries produced by order execution
func (t *Transaction) IsTrade() bool {
	return t.Type == TransactionTypeBuy || t.Type == TransactionTypeSell
}
