package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountBalance holds a user's cash balance plus aggregates summed over all
// of the user's portfolio rows. The aggregates are derived data and are
// recomputed whenever a trade settles or holdings are revalued.
type AccountBalance struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountNumber  string             `bson:"account_number" json:"account_number"`
	UserID         int64              `bson:"user_id" json:"user_id"`
	CashBalance    decimal.Decimal    `bson:"cash_balance" json:"cash_balance"`
	InvestedAmount decimal.Decimal    `bson:"invested_amount" json:"invested_amount"`
	PortfolioValue decimal.Decimal    `bson:"portfolio_value" json:"portfolio_value"`
	UnrealizedPnL  decimal.Decimal    `bson:"unrealized_pnl" json:"unrealized_pnl"`
	RealizedPnL    decimal.Decimal    `bson:"realized_pnl" json:"realized_pnl"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// NewAccountBalance creates an account with a zero cash balance
func NewAccountBalance(userID int64) *AccountBalance {
	now := time.Now()
	return &AccountBalance{
		AccountNumber:  fmt.Sprintf("ACC-%d-%06d", now.Year(), userID),
		UserID:         userID,
		CashBalance:    decimal.Zero,
		InvestedAmount: decimal.Zero,
		PortfolioValue: decimal.Zero,
		UnrealizedPnL:  decimal.Zero,
		RealizedPnL:    decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// HasSufficientCash checks whether the cash balance covers the given amount
func (a *AccountBalance) HasSufficientCash(amount decimal.Decimal) bool {
	return a.CashBalance.GreaterThanOrEqual(amount)
}

// Debit removes cash from the account
func (a *AccountBalance) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("debit amount must be positive")
	}
	if !a.HasSufficientCash(amount) {
		return fmt.Errorf("insufficient cash: have %s, need %s", a.CashBalance, amount)
	}
	a.CashBalance = a.CashBalance.Sub(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// Credit adds cash to the account
func (a *AccountBalance) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("credit amount must be positive")
	}
	a.CashBalance = a.CashBalance.Add(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// RecalculateAggregates resums the derived fields from the user's holdings
func (a *AccountBalance) RecalculateAggregates(positions []*Portfolio) {
	invested := decimal.Zero
	value := decimal.Zero
	unrealized := decimal.Zero
	realized := decimal.Zero

	for _, p := range positions {
		invested = invested.Add(p.Invested)
		value = value.Add(p.CurrentValue)
		unrealized = unrealized.Add(p.UnrealizedPnL)
		realized = realized.Add(p.RealizedPnL)
	}

	a.InvestedAmount = invested
	a.PortfolioValue = value
	a.UnrealizedPnL = unrealized
	a.RealizedPnL = realized
	a.UpdatedAt = time.Now()
}

// TotalEquity returns cash plus the market value of all holdings
func (a *AccountBalance) TotalEquity() decimal.Decimal {
	return a.CashBalance.Add(a.PortfolioValue)
}
