package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"brokerage-api/internal/dto"
	"brokerage-api/internal/ledger"
	"brokerage-api/internal/monitoring"
)

type AccountHandler struct {
	service *ledger.Service
	metrics monitoring.MetricsService
}

func NewAccountHandler(service *ledger.Service, metrics monitoring.MetricsService) *AccountHandler {
	return &AccountHandler{
		service: service,
		metrics: metrics,
	}
}

// GetSummary returns the authenticated user's account and holdings
func (h *AccountHandler) GetSummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	account, positions, err := h.service.GetAccountSummary(ctx, userID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AccountSummaryResponse{
		Account:  dto.FromAccount(account),
		Holdings: dto.FromPortfolios(positions),
	})
}

// ListTransactions returns the user's ledger entries, newest first
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := parseInt64Query(c, "limit", 50)
	offset := parseInt64Query(c, "offset", 0)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	transactions, total, err := h.service.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	responses := make([]*dto.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		responses = append(responses, dto.FromTransaction(t))
	}

	c.JSON(http.StatusOK, dto.TransactionListResponse{
		Transactions: responses,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	})
}

// Deposit credits cash to the authenticated user's account
func (h *AccountHandler) Deposit(c *gin.Context) {
	h.adjustCash(c, "deposit")
}

// Withdraw debits cash from the authenticated user's account
func (h *AccountHandler) Withdraw(c *gin.Context) {
	h.adjustCash(c, "withdraw")
}

func (h *AccountHandler) adjustCash(c *gin.Context, operation string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body", err)
		return
	}

	amount, err := req.Validate()
	if err != nil {
		respondBadRequest(c, "invalid cash request", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	start := time.Now()
	var result *ledger.CashResult
	if operation == "deposit" {
		result, err = h.service.Deposit(ctx, userID, amount)
	} else {
		result, err = h.service.Withdraw(ctx, userID, amount)
	}
	h.metrics.RecordLedgerOperation(operation, statusLabel(err), time.Since(start))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account":     dto.FromAccount(result.Account),
		"transaction": dto.FromTransaction(result.Transaction),
	})
}
