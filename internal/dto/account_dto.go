package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"brokerage-api/internal/models"
)

// CashRequest is the payload for deposits and withdrawals
type CashRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// Validate parses and checks the decimal amount
func (r *CashRequest) Validate() (decimal.Decimal, error) {
	if err := validate.Struct(r); err != nil {
		return decimal.Zero, err
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", r.Amount, err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	return amount, nil
}

// AccountResponse is the wire representation of an account balance
type AccountResponse struct {
	AccountNumber  string    `json:"account_number"`
	UserID         int64     `json:"user_id"`
	CashBalance    string    `json:"cash_balance"`
	InvestedAmount string    `json:"invested_amount"`
	PortfolioValue string    `json:"portfolio_value"`
	UnrealizedPnL  string    `json:"unrealized_pnl"`
	RealizedPnL    string    `json:"realized_pnl"`
	TotalEquity    string    `json:"total_equity"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FromAccount converts a model account to its response form
func FromAccount(account *models.AccountBalance) *AccountResponse {
	return &AccountResponse{
		AccountNumber:  account.AccountNumber,
		UserID:         account.UserID,
		CashBalance:    account.CashBalance.String(),
		InvestedAmount: account.InvestedAmount.String(),
		PortfolioValue: account.PortfolioValue.String(),
		UnrealizedPnL:  account.UnrealizedPnL.String(),
		RealizedPnL:    account.RealizedPnL.String(),
		TotalEquity:    account.TotalEquity().String(),
		UpdatedAt:      account.UpdatedAt,
	}
}

// HoldingResponse is the wire representation of a portfolio row
type HoldingResponse struct {
	CompanySymbol string    `json:"company_symbol"`
	Quantity      int64     `json:"quantity"`
	AverageCost   string    `json:"average_cost"`
	Invested      string    `json:"invested"`
	CurrentValue  string    `json:"current_value"`
	UnrealizedPnL string    `json:"unrealized_pnl"`
	RealizedPnL   string    `json:"realized_pnl"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FromPortfolios converts portfolio rows to their response form
func FromPortfolios(portfolios []*models.Portfolio) []*HoldingResponse {
	holdings := make([]*HoldingResponse, 0, len(portfolios))
	for _, p := range portfolios {
		holdings = append(holdings, &HoldingResponse{
			CompanySymbol: p.CompanySymbol,
			Quantity:      p.Quantity,
			AverageCost:   p.AverageCost.String(),
			Invested:      p.Invested.String(),
			CurrentValue:  p.CurrentValue.String(),
			UnrealizedPnL: p.UnrealizedPnL.String(),
			RealizedPnL:   p.RealizedPnL.String(),
			UpdatedAt:     p.UpdatedAt,
		})
	}
	return holdings
}

// AccountSummaryResponse bundles the account with its holdings
type AccountSummaryResponse struct {
	Account  *AccountResponse   `json:"account"`
	Holdings []*HoldingResponse `json:"holdings"`
}

// TransactionResponse is the wire representation of a ledger entry
type TransactionResponse struct {
	ID                string    `json:"id"`
	TransactionNumber string    `json:"transaction_number"`
	UserID            int64     `json:"user_id"`
	Type              string    `json:"type"`
	Amount            string    `json:"amount"`
	OrderID           string    `json:"order_id,omitempty"`
	CompanySymbol     string    `json:"company_symbol,omitempty"`
	Quantity          int64     `json:"quantity,omitempty"`
	Price             string    `json:"price,omitempty"`
	Description       string    `json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// FromTransaction converts a ledger entry to its response form
func FromTransaction(t *models.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:                t.ID.Hex(),
		TransactionNumber: t.TransactionNumber,
		UserID:            t.UserID,
		Type:              string(t.Type),
		Amount:            t.Amount.String(),
		OrderID:           t.Reference.OrderID,
		CompanySymbol:     t.Reference.CompanySymbol,
		Quantity:          t.Reference.Quantity,
		Description:       t.Reference.Description,
		CreatedAt:         t.CreatedAt,
	}
	if !t.Reference.Price.IsZero() {
		resp.Price = t.Reference.Price.String()
	}
	return resp
}

// TransactionListResponse is a paginated ledger listing
type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
	Limit        int64                  `json:"limit"`
	Offset       int64                  `json:"offset"`
}
