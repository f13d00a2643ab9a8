package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebitAndCredit(t *testing.T) {
	account := NewAccountBalance(1)
	require.NoError(t, account.Credit(dec("1000")))

	require.NoError(t, account.Debit(dec("400")))
	assert.True(t, account.CashBalance.Equal(dec("600")))

	// Exact boundary drains the account
	require.NoError(t, account.Debit(dec("600")))
	assert.True(t, account.CashBalance.Equal(decimal.Zero))

	// One over zero fails without changing the balance
	err := account.Debit(dec("0.01"))
	require.Error(t, err)
	assert.True(t, account.CashBalance.Equal(decimal.Zero))
}

func TestDebitRejectsNonPositiveAmounts(t *testing.T) {
	account := NewAccountBalance(1)
	require.NoError(t, account.Credit(dec("100")))

	assert.Error(t, account.Debit(decimal.Zero))
	assert.Error(t, account.Debit(dec("-10")))
	assert.Error(t, account.Credit(decimal.Zero))
	assert.Error(t, account.Credit(dec("-10")))
	assert.True(t, account.CashBalance.Equal(dec("100")))
}

func TestHasSufficientCash(t *testing.T) {
	account := NewAccountBalance(1)
	require.NoError(t, account.Credit(dec("500")))

	assert.True(t, account.HasSufficientCash(dec("499.99")))
	assert.True(t, account.HasSufficientCash(dec("500")))
	assert.False(t, account.HasSufficientCash(dec("500.01")))
}

func TestRecalculateAggregates(t *testing.T) {
	acme := NewPortfolio(1, "ACME")
	require.NoError(t, acme.ApplyBuy(10, dec("50")))
	acme.MarkToMarket(dec("55"))

	globex := NewPortfolio(1, "GLOBEX")
	require.NoError(t, globex.ApplyBuy(20, dec("10")))
	require.NoError(t, globex.ApplySell(10, dec("12")))
	globex.MarkToMarket(dec("8"))

	account := NewAccountBalance(1)
	require.NoError(t, account.Credit(dec("100")))
	account.RecalculateAggregates([]*Portfolio{acme, globex})

	// 500 + 100 invested, 550 + 80 at market
	assert.True(t, account.InvestedAmount.Equal(dec("600")))
	assert.True(t, account.PortfolioValue.Equal(dec("630")))
	assert.True(t, account.UnrealizedPnL.Equal(dec("30")))
	assert.True(t, account.RealizedPnL.Equal(dec("20")))
	assert.True(t, account.TotalEquity().Equal(dec("730")))
}

func TestRecalculateAggregatesWithNoHoldings(t *testing.T) {
	account := NewAccountBalance(1)
	require.NoError(t, account.Credit(dec("100")))
	account.InvestedAmount = dec("999")

	account.RecalculateAggregates(nil)

	assert.True(t, account.InvestedAmount.Equal(decimal.Zero))
	assert.True(t, account.PortfolioValue.Equal(decimal.Zero))
	assert.True(t, account.TotalEquity().Equal(dec("100")))
}
