package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"brokerage-api/internal/models"
	"brokerage-api/internal/repositories"
)

type testMocks struct {
	orders       *MockOrderRepository
	portfolios   *MockPortfolioRepository
	accounts     *MockAccountRepository
	transactions *MockTransactionRepository
	locks        *MockLockManager
	market       *MockPriceFeed
	users        *MockUserDirectory
	notifier     *MockNotificationSink
}

func newTestService() (*Service, *testMocks) {
	m := &testMocks{
		orders:       &MockOrderRepository{},
		portfolios:   &MockPortfolioRepository{},
		accounts:     &MockAccountRepository{},
		transactions: &MockTransactionRepository{},
		locks:        &MockLockManager{},
		market:       &MockPriceFeed{},
		users:        &MockUserDirectory{},
		notifier:     &MockNotificationSink{},
	}

	service := NewService(
		m.orders,
		m.portfolios,
		m.accounts,
		m.transactions,
		passthroughTxRunner{},
		m.locks,
		m.market,
		m.users,
		m.notifier,
		30*time.Second,
	)

	return service, m
}

func activeUser(id int64) *models.User {
	return &models.User{ID: id, Username: "client", Role: "client", Active: true}
}

func activeQuote(symbol string, price string) *models.Quote {
	return &models.Quote{
		Symbol:        symbol,
		Price:         decimal.RequireFromString(price),
		TradingStatus: "active",
		LastUpdated:   time.Now(),
	}
}

func accountWithCash(userID int64, cash string) *models.AccountBalance {
	account := models.NewAccountBalance(userID)
	account.ID = primitive.NewObjectID()
	account.CashBalance = decimal.RequireFromString(cash)
	return account
}

func holding(userID int64, symbol string, quantity int64, avgCost string) *models.Portfolio {
	p := models.NewPortfolio(userID, symbol)
	p.ID = primitive.NewObjectID()
	p.Quantity = quantity
	p.AverageCost = decimal.RequireFromString(avgCost)
	p.Invested = p.AverageCost.Mul(decimal.NewFromInt(quantity))
	return p
}

func approvedOrder(userID int64, symbol string, side models.OrderSide, quantity int64, price string) *models.Order {
	order := models.NewOrder(userID, symbol, side, quantity, decimal.RequireFromString(price))
	order.ID = primitive.NewObjectID()
	order.MarkApproved(99)
	return order
}

func grantLock(m *testMocks, userID int64, operation string) {
	lock := &repositories.DistributedLock{Key: "lock", Value: "token"}
	m.locks.On("LockUser", mock.Anything, userID, operation, mock.Anything).Return(lock, nil)
	m.locks.On("ReleaseLock", mock.Anything, lock).Return(nil)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name       string
		cmd        SubmitOrderCommand
		setupMocks func(m *testMocks)
		wantErr    error
	}{
		{
			name: "zero quantity",
			cmd: SubmitOrderCommand{
				UserID: 1, CompanySymbol: "ACME", Side: models.OrderSideBuy,
				Quantity: 0, Price: decimal.RequireFromString("10"),
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "negative price",
			cmd: SubmitOrderCommand{
				UserID: 1, CompanySymbol: "ACME", Side: models.OrderSideBuy,
				Quantity: 5, Price: decimal.RequireFromString("-1"),
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "unknown side",
			cmd: SubmitOrderCommand{
				UserID: 1, CompanySymbol: "ACME", Side: "short",
				Quantity: 5, Price: decimal.RequireFromString("10"),
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "inactive user",
			cmd: SubmitOrderCommand{
				UserID: 1, CompanySymbol: "ACME", Side: models.OrderSideBuy,
				Quantity: 5, Price: decimal.RequireFromString("10"),
			},
			setupMocks: func(m *testMocks) {
				m.users.On("GetUser", mock.Anything, int64(1)).
					Return(&models.User{ID: 1, Active: false}, nil)
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "unknown company",
			cmd: SubmitOrderCommand{
				UserID: 1, CompanySymbol: "NOPE", Side: models.OrderSideBuy,
				Quantity: 5, Price: decimal.RequireFromString("10"),
			},
			setupMocks: func(m *testMocks) {
				m.users.On("GetUser", mock.Anything, int64(1)).Return(activeUser(1), nil)
				m.market.On("GetQuote", mock.Anything, "NOPE").
					Return(nil, errors.New("unknown symbol"))
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "suspended company",
			cmd: SubmitOrderCommand{
				UserID: 1, CompanySymbol: "HALT", Side: models.OrderSideBuy,
				Quantity: 5, Price: decimal.RequireFromString("10"),
			},
			setupMocks: func(m *testMocks) {
				m.users.On("GetUser", mock.Anything, int64(1)).Return(activeUser(1), nil)
				m.market.On("GetQuote", mock.Anything, "HALT").
					Return(&models.Quote{Symbol: "HALT", TradingStatus: "suspended"}, nil)
			},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := newTestService()
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}

			order, err := service.Submit(context.Background(), tt.cmd)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, order)
			m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitBuyInsufficientFunds(t *testing.T) {
	service, m := newTestService()

	m.users.On("GetUser", mock.Anything, int64(1)).Return(activeUser(1), nil)
	m.market.On("GetQuote", mock.Anything, "ACME").Return(activeQuote("ACME", "50"), nil)
	m.accounts.On("GetByUserID", mock.Anything, int64(1)).
		Return(accountWithCash(1, "100"), nil)

	// 10 x 50 = 500 against 100 of cash
	order, err := service.Submit(context.Background(), SubmitOrderCommand{
		UserID: 1, CompanySymbol: "ACME", Side: models.OrderSideBuy,
		Quantity: 10, Price: decimal.RequireFromString("50"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, order)
	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitBuyWithoutAccountIsZeroCash(t *testing.T) {
	service, m := newTestService()

	m.users.On("GetUser", mock.Anything, int64(1)).Return(activeUser(1), nil)
	m.market.On("GetQuote", mock.Anything, "ACME").Return(activeQuote("ACME", "50"), nil)
	m.accounts.On("GetByUserID", mock.Anything, int64(1)).
		Return(nil, repositories.ErrNotFound)

	_, err := service.Submit(context.Background(), SubmitOrderCommand{
		UserID: 1, CompanySymbol: "ACME", Side: models.OrderSideBuy,
		Quantity: 1, Price: decimal.RequireFromString("1"),
	})

	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestSubmitSellWithoutHolding(t *testing.T) {
	service, m := newTestService()

	m.users.On("GetUser", mock.Anything, int64(1)).Return(activeUser(1), nil)
	m.market.On("GetQuote", mock.Anything, "ACME").Return(activeQuote("ACME", "50"), nil)
	m.portfolios.On("GetByUserAndSymbol", mock.Anything, int64(1), "ACME").
		Return(nil, repositories.ErrNotFound)

	order, err := service.Submit(context.Background(), SubmitOrderCommand{
		UserID: 1, CompanySymbol: "ACME", Side: models.OrderSideSell,
		Quantity: 5, Price: decimal.RequireFromString("50"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientShares)
	assert.Nil(t, order)
	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitBuyCreatesPendingOrder(t *testing.T) {
	service, m := newTestService()

	m.users.On("GetUser", mock.Anything, int64(1)).Return(activeUser(1), nil)
	m.market.On("GetQuote", mock.Anything, "ACME").Return(activeQuote("ACME", "50"), nil)
	m.accounts.On("GetByUserID", mock.Anything, int64(1)).
		Return(accountWithCash(1, "1000"), nil)
	m.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.notifier.On("PublishOrderSubmitted", mock.Anything, mock.Anything).Return(nil)

	order, err := service.Submit(context.Background(), SubmitOrderCommand{
		UserID: 1, CompanySymbol: "ACME", Side: models.OrderSideBuy,
		Quantity: 10, Price: decimal.RequireFromString("50"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("500")))
	m.notifier.AssertCalled(t, "PublishOrderSubmitted", mock.Anything, order)
}

func TestSubmitSucceedsWhenNotifierFails(t *testing.T) {
	service, m := newTestService()

	m.users.On("GetUser", mock.Anything, int64(1)).Return(activeUser(1), nil)
	m.market.On("GetQuote", mock.Anything, "ACME").Return(activeQuote("ACME", "50"), nil)
	m.accounts.On("GetByUserID", mock.Anything, int64(1)).
		Return(accountWithCash(1, "1000"), nil)
	m.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.notifier.On("PublishOrderSubmitted", mock.Anything, mock.Anything).
		Return(errors.New("broker offline"))

	order, err := service.Submit(context.Background(), SubmitOrderCommand{
		UserID: 1, CompanySymbol: "ACME", Side: models.OrderSideBuy,
		Quantity: 2, Price: decimal.RequireFromString("50"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestApprove(t *testing.T) {
	pending := models.NewOrder(1, "ACME", models.OrderSideBuy, 5, decimal.RequireFromString("10"))
	pending.ID = primitive.NewObjectID()

	tests := []struct {
		name       string
		setupMocks func(m *testMocks)
		wantErr    error
	}{
		{
			name: "approves pending order",
			setupMocks: func(m *testMocks) {
				order := *pending
				m.orders.On("GetByID", mock.Anything, pending.ID.Hex()).Return(&order, nil)
				m.orders.On("Update", mock.Anything, mock.Anything).Return(nil)
				m.notifier.On("PublishOrderApproved", mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name: "rejected order cannot be approved",
			setupMocks: func(m *testMocks) {
				order := *pending
				order.MarkRejected(99, "too risky")
				m.orders.On("GetByID", mock.Anything, pending.ID.Hex()).Return(&order, nil)
			},
			wantErr: ErrInvalidState,
		},
		{
			name: "executed order cannot be approved",
			setupMocks: func(m *testMocks) {
				order := *pending
				order.MarkExecuted(99)
				m.orders.On("GetByID", mock.Anything, pending.ID.Hex()).Return(&order, nil)
			},
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := newTestService()
			tt.setupMocks(m)

			order, err := service.Approve(context.Background(), pending.ID.Hex(), 42)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				m.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusApproved, order.Status)
			require.NotNil(t, order.ApprovedBy)
			assert.Equal(t, int64(42), *order.ApprovedBy)
			assert.NotNil(t, order.ApprovedAt)
		})
	}
}

func TestRejectRequiresNotes(t *testing.T) {
	service, m := newTestService()

	order, err := service.Reject(context.Background(), primitive.NewObjectID().Hex(), 42, "   ")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingNotes)
	assert.Nil(t, order)
	m.orders.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	m.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRejectPendingOrder(t *testing.T) {
	service, m := newTestService()

	pending := models.NewOrder(1, "ACME", models.OrderSideSell, 5, decimal.RequireFromString("10"))
	pending.ID = primitive.NewObjectID()

	m.orders.On("GetByID", mock.Anything, pending.ID.Hex()).Return(pending, nil)
	m.orders.On("Update", mock.Anything, pending).Return(nil)
	m.notifier.On("PublishOrderRejected", mock.Anything, pending).Return(nil)

	order, err := service.Reject(context.Background(), pending.ID.Hex(), 42, "position limit exceeded")

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRejected, order.Status)
	assert.Equal(t, "position limit exceeded", order.RejectionNotes)
	require.NotNil(t, order.RejectedBy)
	assert.Equal(t, int64(42), *order.RejectedBy)
}

func TestExecuteRequiresApprovedOrder(t *testing.T) {
	service, m := newTestService()

	pending := models.NewOrder(1, "ACME", models.OrderSideBuy, 5, decimal.RequireFromString("10"))
	pending.ID = primitive.NewObjectID()

	m.orders.On("GetByID", mock.Anything, pending.ID.Hex()).Return(pending, nil)

	result, err := service.Execute(context.Background(), pending.ID.Hex(), 42)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Nil(t, result)
	m.locks.AssertNotCalled(t, "LockUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteAbortsWhenPriceFeedIsDown(t *testing.T) {
	service, m := newTestService()

	order := approvedOrder(1, "ACME", models.OrderSideBuy, 10, "50")
	m.orders.On("GetByID", mock.Anything, order.ID.Hex()).Return(order, nil)
	grantLock(m, 1, "execute")
	m.market.On("GetQuote", mock.Anything, "ACME").Return(nil, errors.New("connection refused"))

	result, err := service.Execute(context.Background(), order.ID.Hex(), 42)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Nil(t, result)
	m.accounts.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecuteBuySettles(t *testing.T) {
	service, m := newTestService()

	order := approvedOrder(1, "ACME", models.OrderSideBuy, 10, "50")
	account := accountWithCash(1, "1000")

	var settled *models.Portfolio
	position := holding(1, "ACME", 10, "50")
	position.MarkToMarket(decimal.RequireFromString("55"))

	m.orders.On("GetByID", mock.Anything, order.ID.Hex()).Return(order, nil)
	grantLock(m, 1, "execute")
	m.market.On("GetQuote", mock.Anything, "ACME").Return(activeQuote("ACME", "55"), nil)
	m.accounts.On("GetByUserID", mock.Anything, int64(1)).Return(account, nil)
	m.portfolios.On("GetByUserAndSymbol", mock.Anything, int64(1), "ACME").
		Return(nil, repositories.ErrNotFound)
	m.portfolios.On("Upsert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			settled = args.Get(1).(*models.Portfolio)
		}).Return(nil)
	m.orders.On("Update", mock.Anything, order).Return(nil)
	m.transactions.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.portfolios.On("ListByUser", mock.Anything, int64(1)).
		Return([]*models.Portfolio{position}, nil)
	m.accounts.On("Update", mock.Anything, account).Return(nil)
	m.notifier.On("PublishOrderExecuted", mock.Anything, order).Return(nil)

	result, err := service.Execute(context.Background(), order.ID.Hex(), 42)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusExecuted, result.Order.Status)
	require.NotNil(t, result.Order.ExecutedBy)
	assert.Equal(t, int64(42), *result.Order.ExecutedBy)

	// Cash moved down by the full order total
	assert.True(t, account.CashBalance.Equal(decimal.RequireFromString("500")),
		"cash balance: %s", account.CashBalance)

	// New holding carries the purchase at its weighted-average cost
	require.NotNil(t, settled)
	assert.Equal(t, int64(10), settled.Quantity)
	assert.True(t, settled.AverageCost.Equal(decimal.RequireFromString("50")))
	assert.True(t, settled.Invested.Equal(decimal.RequireFromString("500")))

	// Aggregates resummed from the holdings
	assert.True(t, account.InvestedAmount.Equal(decimal.RequireFromString("500")))
	assert.True(t, account.PortfolioValue.Equal(decimal.RequireFromString("550")))

	// One immutable ledger entry for the trade
	assert.Equal(t, models.TransactionTypeBuy, result.Transaction.Type)
	assert.True(t, result.Transaction.Amount.Equal(decimal.RequireFromString("500")))
	assert.Equal(t, order.ID.Hex(), result.Transaction.Reference.OrderID)
}

func TestExecuteBuyInsufficientFundsRollsBack(t *testing.T) {
	service, m := newTestService()

	order := approvedOrder(1, "ACME", models.OrderSideBuy, 10, "50")
	account := accountWithCash(1, "100")

	m.orders.On("GetByID", mock.Anything, order.ID.Hex()).Return(order, nil)
	grantLock(m, 1, "execute")
	m.market.On("GetQuote", mock.Anything, "ACME").Return(activeQuote("ACME", "55"), nil)
	m.accounts.On("GetByUserID", mock.Anything, int64(1)).Return(account, nil)

	result, err := service.Execute(context.Background(), order.ID.Hex(), 42)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, result)
	assert.True(t, account.CashBalance.Equal(decimal.RequireFromString("100")))
	m.portfolios.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestExecuteTwiceFailsWithoutDoubleApplying(t *testing.T) {
	service, m := newTestService()

	order := approvedOrder(1, "ACME", models.OrderSideBuy, 10, "50")
	alreadyExecuted := *order
	alreadyExecuted.MarkExecuted(42)

	// Approved on the first read, executed by the time the transaction
	// reloads it.
	m.orders.On("GetByID", mock.Anything, order.ID.Hex()).Return(order, nil).Once()
	m.orders.On("GetByID", mock.Anything, order.ID.Hex()).Return(&alreadyExecuted, nil).Once()
	grantLock(m, 1, "execute")
	m.market.On("GetQuote", mock.Anything, "ACME").Return(activeQuote("ACME", "55"), nil)

	result, err := service.Execute(context.Background(), order.ID.Hex(), 42)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Nil(t, result)
	m.portfolios.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestExecuteSellExactBoundary(t *testing.T) {
	service, m := newTestService()

	order := approvedOrder(1, "ACME", models.OrderSideSell, 5, "60")
	account := accountWithCash(1, "800")
	position := holding(1, "ACME", 5, "50")

	m.orders.On("GetByID", mock.Anything, order.ID.Hex()).Return(order, nil)
	grantLock(m, 1, "execute")
	m.market.On("GetQuote", mock.Anything, "ACME").Return(activeQuote("ACME", "60"), nil)
	m.accounts.On("GetByUserID", mock.Anything, int64(1)).Return(account, nil)
	m.portfolios.On("GetByUserAndSymbol", mock.Anything, int64(1), "ACME").Return(position, nil)
	m.portfolios.On("Upsert", mock.Anything, position).Return(nil)
	m.orders.On("Update", mock.Anything, order).Return(nil)
	m.transactions.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.portfolios.On("ListByUser", mock.Anything, int64(1)).
		Return([]*models.Portfolio{position}, nil)
	m.accounts.On("Update", mock.Anything, account).Return(nil)
	m.notifier.On("PublishOrderExecuted", mock.Anything, order).Return(nil)

	result, err := service.Execute(context.Background(), order.ID.Hex(), 42)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusExecuted, result.Order.Status)

	// Selling everything empties the holding but keeps the row
	assert.Equal(t, int64(0), position.Quantity)
	assert.True(t, position.Invested.Equal(decimal.Zero))
	// 5 x (60 - 50) realized
	assert.True(t, position.RealizedPnL.Equal(decimal.RequireFromString("50")))
	// Average cost untouched by the sale
	assert.True(t, position.AverageCost.Equal(decimal.RequireFromString("50")))

	// Proceeds credited in full
	assert.True(t, account.CashBalance.Equal(decimal.RequireFromString("1100")))

	assert.Equal(t, models.TransactionTypeSell, result.Transaction.Type)
	assert.True(t, result.Transaction.Amount.Equal(decimal.RequireFromString("300")))
}

func TestExecuteSellInsufficientShares(t *testing.T) {
	service, m := newTestService()

	order := approvedOrder(1, "ACME", models.OrderSideSell, 6, "60")
	account := accountWithCash(1, "800")
	position := holding(1, "ACME", 5, "50")

	m.orders.On("GetByID", mock.Anything, order.ID.Hex()).Return(order, nil)
	grantLock(m, 1, "execute")
	m.market.On("GetQuote", mock.Anything, "ACME").Return(activeQuote("ACME", "60"), nil)
	m.accounts.On("GetByUserID", mock.Anything, int64(1)).Return(account, nil)
	m.portfolios.On("GetByUserAndSymbol", mock.Anything, int64(1), "ACME").Return(position, nil)

	result, err := service.Execute(context.Background(), order.ID.Hex(), 42)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientShares)
	assert.Nil(t, result)

	// Nothing moved
	assert.Equal(t, int64(5), position.Quantity)
	assert.True(t, account.CashBalance.Equal(decimal.RequireFromString("800")))
	m.portfolios.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDepositCreatesAccountOnFirstUse(t *testing.T) {
	service, m := newTestService()

	grantLock(m, 1, "cash")
	m.accounts.On("GetByUserID", mock.Anything, int64(1)).Return(nil, repositories.ErrNotFound)
	m.accounts.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.accounts.On("Update", mock.Anything, mock.Anything).Return(nil)
	m.transactions.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := service.Deposit(context.Background(), 1, decimal.RequireFromString("300"))

	require.NoError(t, err)
	assert.True(t, result.Account.CashBalance.Equal(decimal.RequireFromString("300")))
	assert.Equal(t, models.TransactionTypeDeposit, result.Transaction.Type)
	assert.True(t, result.Transaction.Amount.Equal(decimal.RequireFromString("300")))
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	service, m := newTestService()

	account := accountWithCash(1, "100")
	grantLock(m, 1, "cash")
	m.accounts.On("GetByUserID", mock.Anything, int64(1)).Return(account, nil)

	result, err := service.Withdraw(context.Background(), 1, decimal.RequireFromString("200"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, result)
	assert.True(t, account.CashBalance.Equal(decimal.RequireFromString("100")))
	m.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetAccountSummaryForNewUser(t *testing.T) {
	service, m := newTestService()

	m.accounts.On("GetByUserID", mock.Anything, int64(7)).Return(nil, repositories.ErrNotFound)
	m.portfolios.On("ListByUser", mock.Anything, int64(7)).Return([]*models.Portfolio{}, nil)

	account, positions, err := service.GetAccountSummary(context.Background(), 7)

	require.NoError(t, err)
	assert.True(t, account.CashBalance.Equal(decimal.Zero))
	assert.Empty(t, positions)
}
