package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage-api/internal/models"
)

func TestSubmitOrderRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		request SubmitOrderRequest
		wantErr bool
	}{
		{
			name:    "valid buy",
			request: SubmitOrderRequest{CompanySymbol: "ACME", Side: "buy", Quantity: 10, Price: "50.25"},
		},
		{
			name:    "valid sell",
			request: SubmitOrderRequest{CompanySymbol: "ACME", Side: "sell", Quantity: 1, Price: "0.01"},
		},
		{
			name:    "missing symbol",
			request: SubmitOrderRequest{Side: "buy", Quantity: 10, Price: "50"},
			wantErr: true,
		},
		{
			name:    "unknown side",
			request: SubmitOrderRequest{CompanySymbol: "ACME", Side: "short", Quantity: 10, Price: "50"},
			wantErr: true,
		},
		{
			name:    "zero quantity",
			request: SubmitOrderRequest{CompanySymbol: "ACME", Side: "buy", Quantity: 0, Price: "50"},
			wantErr: true,
		},
		{
			name:    "unparseable price",
			request: SubmitOrderRequest{CompanySymbol: "ACME", Side: "buy", Quantity: 10, Price: "fifty"},
			wantErr: true,
		},
		{
			name:    "zero price",
			request: SubmitOrderRequest{CompanySymbol: "ACME", Side: "buy", Quantity: 10, Price: "0"},
			wantErr: true,
		},
		{
			name:    "negative price",
			request: SubmitOrderRequest{CompanySymbol: "ACME", Side: "buy", Quantity: 10, Price: "-5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, price.Equal(decimal.RequireFromString(tt.request.Price)))
		})
	}
}

func TestRejectOrderRequestValidate(t *testing.T) {
	assert.Error(t, (&RejectOrderRequest{}).Validate())
	assert.NoError(t, (&RejectOrderRequest{Notes: "too risky"}).Validate())
}

func TestFromOrder(t *testing.T) {
	order := models.NewOrder(7, "ACME", models.OrderSideBuy, 10, decimal.RequireFromString("50"))
	order.MarkApproved(42)

	response := FromOrder(order)

	assert.Equal(t, order.OrderNumber, response.OrderNumber)
	assert.Equal(t, int64(7), response.UserID)
	assert.Equal(t, "buy", response.Side)
	assert.Equal(t, "500", response.Total)
	assert.Equal(t, "approved", response.Status)
	require.NotNil(t, response.ApprovedBy)
	assert.Equal(t, int64(42), *response.ApprovedBy)
}
