package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"brokerage-api/internal/models"
)

// Publisher emits order lifecycle notifications over RabbitMQ. Publishing is
// best effort: the ledger logs failures and never rolls back a committed
// trade because a notification could not be delivered.
type Publisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	config     *MessagingConfig
}

type MessagingConfig struct {
	URL           string
	Exchange      string
	RetryAttempts int
	RetryDelay    time.Duration
	Persistent    bool
}

type EventMessage struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Source     string      `json:"source"`
	Subject    string      `json:"subject"`
	Data       interface{} `json:"data"`
	Timestamp  time.Time   `json:"timestamp"`
	Version    string      `json:"version"`
	RoutingKey string      `json:"routing_key"`
	Exchange   string      `json:"exchange"`
	Priority   uint8       `json:"priority"`
}

type OrderEvent struct {
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        int64     `json:"user_id"`
	Side          string    `json:"side"`
	Status        string    `json:"status"`
	CompanySymbol string    `json:"company_symbol"`
	Quantity      int64     `json:"quantity"`
	Price         string    `json:"price"`
	Total         string    `json:"total"`
	Notes         string    `json:"notes,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewPublisher(config *MessagingConfig) (*Publisher, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	publisher := &Publisher{
		connection: conn,
		channel:    ch,
		config:     config,
	}

	if err := publisher.setupExchange(); err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to setup exchange: %w", err)
	}

	return publisher, nil
}

func (p *Publisher) setupExchange() error {
	err := p.channel.ExchangeDeclare(
		p.config.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", p.config.Exchange, err)
	}

	logrus.Infof("Exchange %s declared successfully", p.config.Exchange)
	return nil
}

// PublishOrderSubmitted notifies brokers that a new order awaits review
func (p *Publisher) PublishOrderSubmitted(ctx context.Context, order *models.Order) error {
	return p.publishOrderEvent(ctx, order, "orders.submitted", 5, "")
}

// PublishOrderApproved notifies the client that their order was approved
func (p *Publisher) PublishOrderApproved(ctx context.Context, order *models.Order) error {
	return p.publishOrderEvent(ctx, order, "orders.approved", 6, "")
}

// PublishOrderRejected notifies the client with the reviewer's notes
func (p *Publisher) PublishOrderRejected(ctx context.Context, order *models.Order) error {
	return p.publishOrderEvent(ctx, order, "orders.rejected", 6, order.RejectionNotes)
}

// PublishOrderExecuted notifies the client that the trade settled
func (p *Publisher) PublishOrderExecuted(ctx context.Context, order *models.Order) error {
	return p.publishOrderEvent(ctx, order, "orders.executed", 8, "")
}

func (p *Publisher) publishOrderEvent(ctx context.Context, order *models.Order, eventType string, priority uint8, notes string) error {
	event := &OrderEvent{
		OrderID:       order.ID.Hex(),
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Side:          string(order.Side),
		Status:        string(order.Status),
		CompanySymbol: order.CompanySymbol,
		Quantity:      order.Quantity,
		Price:         order.Price.String(),
		Total:         order.Total.String(),
		Notes:         notes,
		Timestamp:     time.Now(),
	}

	message := &EventMessage{
		ID:         fmt.Sprintf("%s_%s_%d", eventType, order.ID.Hex(), time.Now().UnixNano()),
		Type:       eventType,
		Source:     "brokerage-api",
		Subject:    fmt.Sprintf("order.%s", order.ID.Hex()),
		Data:       event,
		Timestamp:  time.Now(),
		Version:    "1.0",
		RoutingKey: eventType,
		Exchange:   p.config.Exchange,
		Priority:   priority,
	}

	return p.PublishWithRetry(ctx, message, p.config.RetryAttempts)
}

func (p *Publisher) publishMessage(ctx context.Context, message *EventMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	publishing := amqp.Publishing{
		Headers: amqp.Table{
			"message_id":   message.ID,
			"message_type": message.Type,
			"source":       message.Source,
			"version":      message.Version,
			"timestamp":    message.Timestamp.Unix(),
		},
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Priority:     message.Priority,
		MessageId:    message.ID,
		Timestamp:    message.Timestamp,
		Type:         message.Type,
		Body:         body,
	}

	if p.config.Persistent {
		publishing.DeliveryMode = amqp.Persistent
	}

	return p.channel.PublishWithContext(
		ctx,
		message.Exchange,
		message.RoutingKey,
		false, // mandatory
		false, // immediate
		publishing,
	)
}

func (p *Publisher) PublishWithRetry(ctx context.Context, message *EventMessage, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := p.publishMessage(ctx, message)
		if err == nil {
			return nil
		}

		lastErr = err
		logrus.Warnf("Failed to publish message (attempt %d/%d): %v", attempt+1, maxRetries+1, err)

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.RetryDelay * time.Duration(attempt+1)):
				continue
			}
		}
	}

	return fmt.Errorf("failed to publish message after %d attempts: %w", maxRetries+1, lastErr)
}

func (p *Publisher) HealthCheck() error {
	if p.connection == nil || p.connection.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}

	if p.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			logrus.Warnf("Error closing channel: %v", err)
		}
	}

	if p.connection != nil {
		if err := p.connection.Close(); err != nil {
			logrus.Warnf("Error closing connection: %v", err)
			return err
		}
	}

	return nil
}
