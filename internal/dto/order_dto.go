package dto

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"brokerage-api/internal/models"
)

var validate = validator.New()

// SubmitOrderRequest is the payload for creating an order
type SubmitOrderRequest struct {
	CompanySymbol string `json:"company_symbol" validate:"required,min=1,max=10"`
	Side          string `json:"side" validate:"required,oneof=buy sell"`
	Quantity      int64  `json:"quantity" validate:"required,gt=0"`
	Price         string `json:"price" validate:"required"`
}

// Validate checks field constraints and parses the decimal price
func (r *SubmitOrderRequest) Validate() (decimal.Decimal, error) {
	if err := validate.Struct(r); err != nil {
		return decimal.Zero, err
	}

	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", r.Price, err)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("price must be positive")
	}

	return price, nil
}

// RejectOrderRequest carries the reviewer's notes
type RejectOrderRequest struct {
	Notes string `json:"notes" validate:"required,min=1"`
}

func (r *RejectOrderRequest) Validate() error {
	return validate.Struct(r)
}

// OrderResponse is the wire representation of an order
type OrderResponse struct {
	ID             string     `json:"id"`
	OrderNumber    string     `json:"order_number"`
	UserID         int64      `json:"user_id"`
	CompanySymbol  string     `json:"company_symbol"`
	Side           string     `json:"side"`
	Quantity       int64      `json:"quantity"`
	Price          string     `json:"price"`
	Total          string     `json:"total"`
	Status         string     `json:"status"`
	ApprovedBy     *int64     `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	RejectedBy     *int64     `json:"rejected_by,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
	RejectionNotes string     `json:"rejection_notes,omitempty"`
	ExecutedBy     *int64     `json:"executed_by,omitempty"`
	ExecutedAt     *time.Time `json:"executed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FromOrder converts a model order to its response form
func FromOrder(order *models.Order) *OrderResponse {
	return &OrderResponse{
		ID:             order.ID.Hex(),
		OrderNumber:    order.OrderNumber,
		UserID:         order.UserID,
		CompanySymbol:  order.CompanySymbol,
		Side:           string(order.Side),
		Quantity:       order.Quantity,
		Price:          order.Price.String(),
		Total:          order.Total.String(),
		Status:         string(order.Status),
		ApprovedBy:     order.ApprovedBy,
		ApprovedAt:     order.ApprovedAt,
		RejectedBy:     order.RejectedBy,
		RejectedAt:     order.RejectedAt,
		RejectionNotes: order.RejectionNotes,
		ExecutedBy:     order.ExecutedBy,
		ExecutedAt:     order.ExecutedAt,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

// OrderListResponse is a paginated order listing
type OrderListResponse struct {
	Orders []*OrderResponse `json:"orders"`
	Total  int64            `json:"total"`
	Limit  int64            `json:"limit"`
	Offset int64            `json:"offset"`
}

// FromOrders converts a slice of model orders
func FromOrders(orders []*models.Order) []*OrderResponse {
	responses := make([]*OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, FromOrder(order))
	}
	return responses
}
