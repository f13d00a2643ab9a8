package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"brokerage-api/internal/models"
	"brokerage-api/internal/repositories"
	"brokerage-api/pkg/database"
)

// PriceFeed supplies current market quotes
type PriceFeed interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// UserDirectory resolves platform users
type UserDirectory interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// NotificationSink receives order lifecycle events. Delivery is best effort;
// the ledger never fails an operation because a notification was lost.
type NotificationSink interface {
	PublishOrderSubmitted(ctx context.Context, order *models.Order) error
	PublishOrderApproved(ctx context.Context, order *models.Order) error
	PublishOrderRejected(ctx context.Context, order *models.Order) error
	PublishOrderExecuted(ctx context.Context, order *models.Order) error
}

// LockManager serializes financial operations per user
type LockManager interface {
	LockUser(ctx context.Context, userID int64, operation string, ttl time.Duration) (*repositories.DistributedLock, error)
	ReleaseLock(ctx context.Context, lock *repositories.DistributedLock) error
}

// SubmitOrderCommand carries the client's intent to trade
type SubmitOrderCommand struct {
	UserID        int64
	CompanySymbol string
	Side          models.OrderSide
	Quantity      int64
	Price         decimal.Decimal
}

// ExecuteResult bundles the executed order with its ledger entry
type ExecuteResult struct {
	Order       *models.Order
	Transaction *models.Transaction
}

// CashResult bundles the updated account with the ledger entry of a
// deposit or withdrawal.
type CashResult struct {
	Account     *models.AccountBalance
	Transaction *models.Transaction
}

// Service is the order ledger. It owns the order state machine and all
// portfolio and account bookkeeping that follows from it.
type Service struct {
	orders       repositories.OrderRepository
	portfolios   repositories.PortfolioRepository
	accounts     repositories.AccountRepository
	transactions repositories.TransactionRepository
	tx           database.TxRunner
	locks        LockManager
	market       PriceFeed
	users        UserDirectory
	notifier     NotificationSink
	lockTTL      time.Duration
}

func NewService(
	orders repositories.OrderRepository,
	portfolios repositories.PortfolioRepository,
	accounts repositories.AccountRepository,
	transactions repositories.TransactionRepository,
	tx database.TxRunner,
	locks LockManager,
	market PriceFeed,
	users UserDirectory,
	notifier NotificationSink,
	lockTTL time.Duration,
) *Service {
	return &Service{
		orders:       orders,
		portfolios:   portfolios,
		accounts:     accounts,
		transactions: transactions,
		tx:           tx,
		locks:        locks,
		market:       market,
		users:        users,
		notifier:     notifier,
		lockTTL:      lockTTL,
	}
}

// Submit validates a new order against the user's balances and persists it
// as pending. No money moves at submission; funds and shares are checked
// again at execution time.
func (s *Service) Submit(ctx context.Context, cmd SubmitOrderCommand) (*models.Order, error) {
	if cmd.UserID <= 0 {
		return nil, newError(CodeInvalidInput, "user ID must be positive")
	}
	if cmd.CompanySymbol == "" {
		return nil, newError(CodeInvalidInput, "company symbol is required")
	}
	if cmd.Side != models.OrderSideBuy && cmd.Side != models.OrderSideSell {
		return nil, newError(CodeInvalidInput, fmt.Sprintf("invalid order side: %s", cmd.Side))
	}
	if cmd.Quantity <= 0 {
		return nil, newError(CodeInvalidInput, "quantity must be positive")
	}
	if cmd.Price.LessThanOrEqual(decimal.Zero) {
		return nil, newError(CodeInvalidInput, "price must be positive")
	}

	user, err := s.users.GetUser(ctx, cmd.UserID)
	if err != nil {
		return nil, wrapError(CodeInvalidInput, "user lookup failed", err)
	}
	if !user.Active {
		return nil, newError(CodeInvalidInput, fmt.Sprintf("user %d is not active", cmd.UserID))
	}

	quote, err := s.market.GetQuote(ctx, cmd.CompanySymbol)
	if err != nil {
		return nil, wrapError(CodeInvalidInput, fmt.Sprintf("company %s is not available for trading", cmd.CompanySymbol), err)
	}
	if !quote.IsTradable() {
		return nil, newError(CodeInvalidInput, fmt.Sprintf("company %s is not actively traded", cmd.CompanySymbol))
	}

	total := cmd.Price.Mul(decimal.NewFromInt(cmd.Quantity))

	switch cmd.Side {
	case models.OrderSideBuy:
		cash := decimal.Zero
		account, err := s.accounts.GetByUserID(ctx, cmd.UserID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, wrapError(CodePersistence, "failed to load account", err)
		}
		if account != nil {
			cash = account.CashBalance
		}
		if total.GreaterThan(cash) {
			return nil, newError(CodeInsufficientFunds,
				fmt.Sprintf("order total %s exceeds cash balance %s", total, cash))
		}
	case models.OrderSideSell:
		portfolio, err := s.portfolios.GetByUserAndSymbol(ctx, cmd.UserID, cmd.CompanySymbol)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, newError(CodeInsufficientShares,
					fmt.Sprintf("no holding in %s", cmd.CompanySymbol))
			}
			return nil, wrapError(CodePersistence, "failed to load portfolio", err)
		}
		if !portfolio.HasSufficientShares(cmd.Quantity) {
			return nil, newError(CodeInsufficientShares,
				fmt.Sprintf("holding has %d shares, order needs %d", portfolio.Quantity, cmd.Quantity))
		}
	}

	order := models.NewOrder(cmd.UserID, cmd.CompanySymbol, cmd.Side, cmd.Quantity, cmd.Price)
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, wrapError(CodePersistence, "failed to create order", err)
	}

	s.notify(ctx, order, s.notifier.PublishOrderSubmitted)
	return order, nil
}

// Approve moves a pending order to approved. No financial state changes.
func (s *Service) Approve(ctx context.Context, orderID string, actorID int64) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsPending() {
		return nil, newError(CodeInvalidState,
			fmt.Sprintf("order %s is %s, only pending orders can be approved", orderID, order.Status))
	}

	order.MarkApproved(actorID)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, wrapError(CodePersistence, "failed to update order", err)
	}

	s.notify(ctx, order, s.notifier.PublishOrderApproved)
	return order, nil
}

// Reject moves a pending order to rejected. Reviewer notes are mandatory
// so the client always learns why. Rejection is terminal.
func (s *Service) Reject(ctx context.Context, orderID string, actorID int64, notes string) (*models.Order, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, newError(CodeMissingNotes, "rejection notes are required")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsPending() {
		return nil, newError(CodeInvalidState,
			fmt.Sprintf("order %s is %s, only pending orders can be rejected", orderID, order.Status))
	}

	order.MarkRejected(actorID, notes)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, wrapError(CodePersistence, "failed to update order", err)
	}

	s.notify(ctx, order, s.notifier.PublishOrderRejected)
	return order, nil
}

// Execute settles an approved order: the order flips to executed, the
// portfolio row is upserted, cash moves, a ledger entry is written and the
// account aggregates are resummed. All five writes happen inside one
// transaction guarded by a per-user lock; either everything commits or
// nothing does.
func (s *Service) Execute(ctx context.Context, orderID string, actorID int64) (*ExecuteResult, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsApproved() {
		return nil, newError(CodeInvalidState,
			fmt.Sprintf("order %s is %s, only approved orders can be executed", orderID, order.Status))
	}

	lock, err := s.locks.LockUser(ctx, order.UserID, "execute", s.lockTTL)
	if err != nil {
		return nil, wrapError(CodePersistence, "failed to acquire account lock", err)
	}
	defer func() {
		if err := s.locks.ReleaseLock(ctx, lock); err != nil {
			logrus.WithField("user_id", order.UserID).Warnf("Failed to release account lock: %v", err)
		}
	}()

	// Quote before the transaction: a dead price feed aborts execution
	// with no state touched.
	quote, err := s.market.GetQuote(ctx, order.CompanySymbol)
	if err != nil {
		return nil, wrapError(CodePersistence, "price feed unavailable", err)
	}

	var (
		executed    *models.Order
		transaction *models.Transaction
	)

	txErr := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.loadOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !current.IsApproved() {
			return newError(CodeInvalidState,
				fmt.Sprintf("order %s is %s, only approved orders can be executed", orderID, current.Status))
		}

		account, err := s.loadOrCreateAccount(ctx, current.UserID)
		if err != nil {
			return err
		}

		switch current.Side {
		case models.OrderSideBuy:
			if err := s.settleBuy(ctx, current, account, quote); err != nil {
				return err
			}
		case models.OrderSideSell:
			if err := s.settleSell(ctx, current, account, quote); err != nil {
				return err
			}
		default:
			return newError(CodeInvalidInput, fmt.Sprintf("invalid order side: %s", current.Side))
		}

		current.MarkExecuted(actorID)
		if err := s.orders.Update(ctx, current); err != nil {
			return wrapError(CodePersistence, "failed to update order", err)
		}

		entry := models.NewTransaction(current.UserID, models.TransactionType(current.Side), current.Total, models.Reference{
			OrderID:       current.ID.Hex(),
			CompanySymbol: current.CompanySymbol,
			Quantity:      current.Quantity,
			Price:         current.Price,
			Description:   fmt.Sprintf("%s %d %s @ %s", current.Side, current.Quantity, current.CompanySymbol, current.Price),
		})
		if err := s.transactions.Create(ctx, entry); err != nil {
			return wrapError(CodePersistence, "failed to create transaction", err)
		}

		positions, err := s.portfolios.ListByUser(ctx, current.UserID)
		if err != nil {
			return wrapError(CodePersistence, "failed to list portfolios", err)
		}
		account.RecalculateAggregates(positions)
		if err := s.accounts.Update(ctx, account); err != nil {
			return wrapError(CodePersistence, "failed to update account", err)
		}

		executed = current
		transaction = entry
		return nil
	})
	if txErr != nil {
		var lerr *Error
		if errors.As(txErr, &lerr) {
			return nil, lerr
		}
		return nil, wrapError(CodePersistence, "execution transaction failed", txErr)
	}

	s.notify(ctx, executed, s.notifier.PublishOrderExecuted)
	return &ExecuteResult{Order: executed, Transaction: transaction}, nil
}

func (s *Service) settleBuy(ctx context.Context, order *models.Order, account *models.AccountBalance, quote *models.Quote) error {
	if !account.HasSufficientCash(order.Total) {
		return newError(CodeInsufficientFunds,
			fmt.Sprintf("order total %s exceeds cash balance %s", order.Total, account.CashBalance))
	}
	if err := account.Debit(order.Total); err != nil {
		return wrapError(CodeInsufficientFunds, "debit failed", err)
	}

	portfolio, err := s.portfolios.GetByUserAndSymbol(ctx, order.UserID, order.CompanySymbol)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return wrapError(CodePersistence, "failed to load portfolio", err)
		}
		portfolio = models.NewPortfolio(order.UserID, order.CompanySymbol)
	}

	if err := portfolio.ApplyBuy(order.Quantity, order.Price); err != nil {
		return wrapError(CodeInvalidInput, "buy could not be applied", err)
	}
	portfolio.MarkToMarket(quote.Price)

	if err := s.portfolios.Upsert(ctx, portfolio); err != nil {
		return wrapError(CodePersistence, "failed to upsert portfolio", err)
	}
	return nil
}

func (s *Service) settleSell(ctx context.Context, order *models.Order, account *models.AccountBalance, quote *models.Quote) error {
	portfolio, err := s.portfolios.GetByUserAndSymbol(ctx, order.UserID, order.CompanySymbol)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return newError(CodeInsufficientShares, fmt.Sprintf("no holding in %s", order.CompanySymbol))
		}
		return wrapError(CodePersistence, "failed to load portfolio", err)
	}

	if !portfolio.HasSufficientShares(order.Quantity) {
		return newError(CodeInsufficientShares,
			fmt.Sprintf("holding has %d shares, order needs %d", portfolio.Quantity, order.Quantity))
	}

	if err := portfolio.ApplySell(order.Quantity, order.Price); err != nil {
		return wrapError(CodeInsufficientShares, "sell could not be applied", err)
	}
	portfolio.MarkToMarket(quote.Price)

	if err := s.portfolios.Upsert(ctx, portfolio); err != nil {
		return wrapError(CodePersistence, "failed to upsert portfolio", err)
	}

	if err := account.Credit(order.Total); err != nil {
		return wrapError(CodePersistence, "credit failed", err)
	}
	return nil
}

// Deposit credits cash to the user's account and writes a ledger entry
func (s *Service) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*CashResult, error) {
	return s.adjustCash(ctx, userID, amount, models.TransactionTypeDeposit)
}

// Withdraw debits cash from the user's account and writes a ledger entry
func (s *Service) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (*CashResult, error) {
	return s.adjustCash(ctx, userID, amount, models.TransactionTypeWithdrawal)
}

func (s *Service) adjustCash(ctx context.Context, userID int64, amount decimal.Decimal, txType models.TransactionType) (*CashResult, error) {
	if userID <= 0 {
		return nil, newError(CodeInvalidInput, "user ID must be positive")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, newError(CodeInvalidInput, "amount must be positive")
	}

	lock, err := s.locks.LockUser(ctx, userID, "cash", s.lockTTL)
	if err != nil {
		return nil, wrapError(CodePersistence, "failed to acquire account lock", err)
	}
	defer func() {
		if err := s.locks.ReleaseLock(ctx, lock); err != nil {
			logrus.WithField("user_id", userID).Warnf("Failed to release account lock: %v", err)
		}
	}()

	var result *CashResult

	txErr := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		account, err := s.loadOrCreateAccount(ctx, userID)
		if err != nil {
			return err
		}

		switch txType {
		case models.TransactionTypeDeposit:
			if err := account.Credit(amount); err != nil {
				return wrapError(CodeInvalidInput, "credit failed", err)
			}
		case models.TransactionTypeWithdrawal:
			if !account.HasSufficientCash(amount) {
				return newError(CodeInsufficientFunds,
					fmt.Sprintf("withdrawal %s exceeds cash balance %s", amount, account.CashBalance))
			}
			if err := account.Debit(amount); err != nil {
				return wrapError(CodeInsufficientFunds, "debit failed", err)
			}
		default:
			return newError(CodeInvalidInput, fmt.Sprintf("invalid cash adjustment type: %s", txType))
		}

		if err := s.accounts.Update(ctx, account); err != nil {
			return wrapError(CodePersistence, "failed to update account", err)
		}

		entry := models.NewTransaction(userID, txType, amount, models.Reference{
			Description: fmt.Sprintf("cash %s", txType),
		})
		if err := s.transactions.Create(ctx, entry); err != nil {
			return wrapError(CodePersistence, "failed to create transaction", err)
		}

		result = &CashResult{Account: account, Transaction: entry}
		return nil
	})
	if txErr != nil {
		var lerr *Error
		if errors.As(txErr, &lerr) {
			return nil, lerr
		}
		return nil, wrapError(CodePersistence, "cash adjustment failed", txErr)
	}

	return result, nil
}

// GetOrder returns a single order
func (s *Service) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.loadOrder(ctx, orderID)
}

// ListOrders returns a user's orders with optional status and side filters
func (s *Service) ListOrders(ctx context.Context, userID int64, filter repositories.OrderFilter) ([]*models.Order, int64, error) {
	orders, total, err := s.orders.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, wrapError(CodePersistence, "failed to list orders", err)
	}
	return orders, total, nil
}

// ListTransactions returns a user's ledger entries, newest first
func (s *Service) ListTransactions(ctx context.Context, userID int64, limit, offset int64) ([]*models.Transaction, int64, error) {
	transactions, total, err := s.transactions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, wrapError(CodePersistence, "failed to list transactions", err)
	}
	return transactions, total, nil
}

// GetAccountSummary returns the account with all of its holdings. A user
// who never traded gets a zero-balance view without a stored account.
func (s *Service) GetAccountSummary(ctx context.Context, userID int64) (*models.AccountBalance, []*models.Portfolio, error) {
	account, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			account = models.NewAccountBalance(userID)
		} else {
			return nil, nil, wrapError(CodePersistence, "failed to load account", err)
		}
	}

	positions, err := s.portfolios.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, wrapError(CodePersistence, "failed to list portfolios", err)
	}

	return account, positions, nil
}

// RevalueAll re-marks every holding to the latest quote and refreshes the
// affected accounts. Used by the background revaluation job.
func (s *Service) RevalueAll(ctx context.Context, batchSize int64) error {
	touched := make(map[int64]bool)

	var offset int64
	for {
		batch, err := s.portfolios.ListAll(ctx, batchSize, offset)
		if err != nil {
			return wrapError(CodePersistence, "failed to list portfolios", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, portfolio := range batch {
			quote, err := s.market.GetQuote(ctx, portfolio.CompanySymbol)
			if err != nil {
				logrus.WithField("symbol", portfolio.CompanySymbol).Warnf("Skipping revaluation, quote unavailable: %v", err)
				continue
			}

			portfolio.MarkToMarket(quote.Price)
			if err := s.portfolios.Upsert(ctx, portfolio); err != nil {
				return wrapError(CodePersistence, "failed to upsert portfolio", err)
			}
			touched[portfolio.UserID] = true
		}

		offset += int64(len(batch))
	}

	for userID := range touched {
		account, err := s.accounts.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return wrapError(CodePersistence, "failed to load account", err)
		}

		positions, err := s.portfolios.ListByUser(ctx, userID)
		if err != nil {
			return wrapError(CodePersistence, "failed to list portfolios", err)
		}

		account.RecalculateAggregates(positions)
		if err := s.accounts.Update(ctx, account); err != nil {
			return wrapError(CodePersistence, "failed to update account", err)
		}
	}

	return nil
}

func (s *Service) loadOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, wrapError(CodeNotFound, fmt.Sprintf("order %s not found", orderID), err)
		}
		return nil, wrapError(CodePersistence, "failed to load order", err)
	}
	return order, nil
}

func (s *Service) loadOrCreateAccount(ctx context.Context, userID int64) (*models.AccountBalance, error) {
	account, err := s.accounts.GetByUserID(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, wrapError(CodePersistence, "failed to load account", err)
	}

	account = models.NewAccountBalance(userID)
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, wrapError(CodePersistence, "failed to create account", err)
	}
	return account, nil
}

func (s *Service) notify(ctx context.Context, order *models.Order, publish func(context.Context, *models.Order) error) {
	if s.notifier == nil {
		return
	}
	if err := publish(ctx, order); err != nil {
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID.Hex(),
			"status":   order.Status,
		}).Warnf("Failed to publish order notification: %v", err)
	}
}
