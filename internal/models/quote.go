package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time market price for a listed company
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	TradingStatus string          `json:"trading_status"`
	LastUpdated   time.Time       `json:"last_updated"`
}

// IsTradable returns true when the company is actively traded
func (q *Quote) IsTradable() bool {
	return q.TradingStatus == "active"
}

// User is the directory view of a platform user
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}
