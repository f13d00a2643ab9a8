package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderSide represents the direction of an order
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
	OrderStatusExecuted OrderStatus = "executed"
)

// Order represents a client order for shares of a listed company.
// Orders move pending -> approved -> executed; rejection is terminal.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber   string             `bson:"order_number" json:"order_number"`
	UserID        int64              `bson:"user_id" json:"user_id"`
	CompanySymbol string             `bson:"company_symbol" json:"company_symbol"`
	Side          OrderSide          `bson:"side" json:"side"`
	Quantity      int64              `bson:"quantity" json:"quantity"`
	Price         decimal.Decimal    `bson:"price" json:"price"`
	Total         decimal.Decimal    `bson:"total" json:"total"`
	Status        OrderStatus        `bson:"status" json:"status"`

	ApprovedBy *int64     `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	RejectedBy *int64     `bson:"rejected_by,omitempty" json:"rejected_by,omitempty"`
	RejectedAt *time.Time `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
	ExecutedBy *int64     `bson:"executed_by,omitempty" json:"executed_by,omitempty"`
	ExecutedAt *time.Time `bson:"executed_at,omitempty" json:"executed_at,omitempty"`

	RejectionNotes string `bson:"rejection_notes,omitempty" json:"rejection_notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewOrder creates a pending order with the total recomputed server side.
func NewOrder(userID int64, symbol string, side OrderSide, quantity int64, price decimal.Decimal) *Order {
	now := time.Now()
	return &Order{
		OrderNumber:   generateOrderNumber(userID, now),
		UserID:        userID,
		CompanySymbol: symbol,
		Side:          side,
		Quantity:      quantity,
		Price:         price,
		Total:         price.Mul(decimal.NewFromInt(quantity)),
		Status:        OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func generateOrderNumber(userID int64, now time.Time) string {
	return fmt.Sprintf("ORD-%d-%d-%d", now.Year(), userID, now.UnixNano())
}

// Validate checks structural invariants of the order
func (o *Order) Validate() error {
	if o.UserID <= 0 {
		return fmt.Errorf("user ID must be positive")
	}
	if o.CompanySymbol == "" {
		return fmt.Errorf("company symbol is required")
	}
	if o.Side != OrderSideBuy && o.Side != OrderSideSell {
		return fmt.Errorf("invalid order side: %s", o.Side)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if o.Price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("price must be positive")
	}
	return nil
}

// IsPending returns true if the order has not been reviewed yet
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsApproved returns true if the order is approved and awaiting execution
func (o *Order) IsApproved() bool {
	return o.Status == OrderStatusApproved
}

// IsFinal returns true if the order reached a terminal state
func (o *Order) IsFinal() bool {
	return o.Status == OrderStatusRejected || o.Status == OrderStatusExecuted
}

// MarkApproved transitions a pending order to approved
func (o *Order) MarkApproved(actorID int64) {
	now := time.Now()
	o.Status = OrderStatusApproved
	o.ApprovedBy = &actorID
	o.ApprovedAt = &now
	o.UpdatedAt = now
}

// MarkRejected transitions a pending order to rejected with reviewer notes
func (o *Order) MarkRejected(actorID int64, notes string) {
	now := time.Now()
	o.Status = OrderStatusRejected
	o.RejectedBy = &actorID
	o.RejectedAt = &now
	o.RejectionNotes = notes
	o.UpdatedAt = now
}

// MarkExecuted transitions an approved order to executed
func (o *Order) MarkExecuted(actorID int64) {
	now := time.Now()
	o.Status = OrderStatusExecuted
	o.ExecutedBy = &actorID
	o.ExecutedAt = &now
	o.UpdatedAt = now
}
