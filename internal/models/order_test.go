package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderComputesTotal(t *testing.T) {
	order := NewOrder(1, "ACME", OrderSideBuy, 10, dec("50.25"))

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(dec("502.5")), "total: %s", order.Total)
	assert.NotEmpty(t, order.OrderNumber)
}

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Order)
		wantErr bool
	}{
		{name: "valid order", mutate: func(o *Order) {}},
		{name: "missing user", mutate: func(o *Order) { o.UserID = 0 }, wantErr: true},
		{name: "missing symbol", mutate: func(o *Order) { o.CompanySymbol = "" }, wantErr: true},
		{name: "bad side", mutate: func(o *Order) { o.Side = "short" }, wantErr: true},
		{name: "zero quantity", mutate: func(o *Order) { o.Quantity = 0 }, wantErr: true},
		{name: "zero price", mutate: func(o *Order) { o.Price = decimal.Zero }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := NewOrder(1, "ACME", OrderSideSell, 5, dec("10"))
			tt.mutate(order)

			err := order.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderTransitions(t *testing.T) {
	order := NewOrder(1, "ACME", OrderSideBuy, 5, dec("10"))
	require.True(t, order.IsPending())
	require.False(t, order.IsFinal())

	order.MarkApproved(42)
	assert.True(t, order.IsApproved())
	assert.False(t, order.IsFinal())
	require.NotNil(t, order.ApprovedBy)
	assert.Equal(t, int64(42), *order.ApprovedBy)
	assert.NotNil(t, order.ApprovedAt)

	order.MarkExecuted(43)
	assert.True(t, order.IsFinal())
	require.NotNil(t, order.ExecutedBy)
	assert.Equal(t, int64(43), *order.ExecutedBy)
	assert.NotNil(t, order.ExecutedAt)
}

func TestOrderRejectionIsFinal(t *testing.T) {
	order := NewOrder(1, "ACME", OrderSideBuy, 5, dec("10"))
	order.MarkRejected(42, "exceeds position limit")

	assert.Equal(t, OrderStatusRejected, order.Status)
	assert.True(t, order.IsFinal())
	assert.False(t, order.IsPending())
	assert.False(t, order.IsApproved())
	assert.Equal(t, "exceeds position limit", order.RejectionNotes)
	require.NotNil(t, order.RejectedBy)
	assert.Equal(t, int64(42), *order.RejectedBy)
}
