package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Portfolio represents a user's holding in a single company. The average
// cost follows the weighted-average method: buys fold the new shares into
// the average, sells realize P&L against it without changing it.
type Portfolio struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        int64              `bson:"user_id" json:"user_id"`
	CompanySymbol string             `bson:"company_symbol" json:"company_symbol"`
	Quantity      int64              `bson:"quantity" json:"quantity"`
	AverageCost   decimal.Decimal    `bson:"average_cost" json:"average_cost"`
	Invested      decimal.Decimal    `bson:"invested" json:"invested"`
	CurrentValue  decimal.Decimal    `bson:"current_value" json:"current_value"`
	UnrealizedPnL decimal.Decimal    `bson:"unrealized_pnl" json:"unrealized_pnl"`
	RealizedPnL   decimal.Decimal    `bson:"realized_pnl" json:"realized_pnl"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// NewPortfolio creates an empty holding for a user and company
func NewPortfolio(userID int64, symbol string) *Portfolio {
	now := time.Now()
	return &Portfolio{
		UserID:        userID,
		CompanySymbol: symbol,
		Quantity:      0,
		AverageCost:   decimal.Zero,
		Invested:      decimal.Zero,
		CurrentValue:  decimal.Zero,
		UnrealizedPnL: decimal.Zero,
		RealizedPnL:   decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasSufficientShares checks whether a sell of the given quantity is covered
func (p *Portfolio) HasSufficientShares(quantity int64) bool {
	return p.Quantity >= quantity
}

// ApplyBuy folds a purchase into the holding and recomputes the
// weighted-average cost.
func (p *Portfolio) ApplyBuy(quantity int64, price decimal.Decimal) error {
	if quantity <= 0 {
		return fmt.Errorf("buy quantity must be positive")
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("buy price must be positive")
	}

	total := price.Mul(decimal.NewFromInt(quantity))
	p.Quantity += quantity
	p.Invested = p.Invested.Add(total)
	p.AverageCost = p.Invested.Div(decimal.NewFromInt(p.Quantity))
	p.UpdatedAt = time.Now()
	return nil
}

// ApplySell removes shares at the current average cost and accumulates the
// realized P&L. The average cost of the remaining shares is unchanged.
func (p *Portfolio) ApplySell(quantity int64, price decimal.Decimal) error {
	if quantity <= 0 {
		return fmt.Errorf("sell quantity must be positive")
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("sell price must be positive")
	}
	if !p.HasSufficientShares(quantity) {
		return fmt.Errorf("insufficient shares: have %d, need %d", p.Quantity, quantity)
	}

	total := price.Mul(decimal.NewFromInt(quantity))
	costBasis := p.AverageCost.Mul(decimal.NewFromInt(quantity))

	p.Quantity -= quantity
	p.Invested = p.Invested.Sub(costBasis)
	p.RealizedPnL = p.RealizedPnL.Add(total.Sub(costBasis))
	p.UpdatedAt = time.Now()
	return nil
}

// MarkToMarket revalues the holding at the given market price
func (p *Portfolio) MarkToMarket(price decimal.Decimal) {
	p.CurrentValue = price.Mul(decimal.NewFromInt(p.Quantity))
	p.UnrealizedPnL = p.CurrentValue.Sub(p.Invested)
	p.UpdatedAt = time.Now()
}

// IsEmpty returns true when the holding has no shares left
func (p *Portfolio) IsEmpty() bool {
	return p.Quantity == 0
}
