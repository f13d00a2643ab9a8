package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"brokerage-api/internal/dto"
	"brokerage-api/internal/ledger"
	"brokerage-api/internal/models"
	"brokerage-api/internal/monitoring"
	"brokerage-api/internal/repositories"
)

type OrderHandler struct {
	service *ledger.Service
	metrics monitoring.MetricsService
}

func NewOrderHandler(service *ledger.Service, metrics monitoring.MetricsService) *OrderHandler {
	return &OrderHandler{
		service: service,
		metrics: metrics,
	}
}

// SubmitOrder creates a pending order for the authenticated user
func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body", err)
		return
	}

	price, err := req.Validate()
	if err != nil {
		respondBadRequest(c, "invalid order request", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	start := time.Now()
	order, err := h.service.Submit(ctx, ledger.SubmitOrderCommand{
		UserID:        userID,
		CompanySymbol: req.CompanySymbol,
		Side:          models.OrderSide(req.Side),
		Quantity:      req.Quantity,
		Price:         price,
	})
	h.metrics.RecordLedgerOperation("submit", statusLabel(err), time.Since(start))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromOrder(order))
}

// GetOrder returns a single order, restricted to its owner or staff
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.service.GetOrder(ctx, c.Param("id"))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	if order.UserID != userID && !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "access denied",
			"code":    "AUTH_ACCESS_DENIED",
			"message": "You can only access your own orders",
		})
		return
	}

	c.JSON(http.StatusOK, dto.FromOrder(order))
}

// ListOrders returns the authenticated user's orders with optional filters
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := repositories.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Side:   models.OrderSide(c.Query("side")),
		Limit:  parseInt64Query(c, "limit", 50),
		Offset: parseInt64Query(c, "offset", 0),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, total, err := h.service.ListOrders(ctx, userID, filter)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderListResponse{
		Orders: dto.FromOrders(orders),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// ApproveOrder moves a pending order to approved. Broker only.
func (h *OrderHandler) ApproveOrder(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	order, err := h.service.Approve(ctx, c.Param("id"), actorID)
	h.metrics.RecordLedgerOperation("approve", statusLabel(err), time.Since(start))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromOrder(order))
}

// RejectOrder moves a pending order to rejected with notes. Broker only.
func (h *OrderHandler) RejectOrder(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	order, err := h.service.Reject(ctx, c.Param("id"), actorID, req.Notes)
	h.metrics.RecordLedgerOperation("reject", statusLabel(err), time.Since(start))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromOrder(order))
}

// ExecuteOrder settles an approved order. Broker only.
func (h *OrderHandler) ExecuteOrder(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	start := time.Now()
	result, err := h.service.Execute(ctx, c.Param("id"), actorID)
	h.metrics.RecordLedgerOperation("execute", statusLabel(err), time.Since(start))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":       dto.FromOrder(result.Order),
		"transaction": dto.FromTransaction(result.Transaction),
	})
}

func parseInt64Query(c *gin.Context, key string, defaultValue int64) int64 {
	if value := c.Query(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
