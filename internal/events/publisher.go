package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/medikart/medikart-backend/internal/config"
	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/models"
)

// EventType names an order lifecycle event.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"
)

// OrderEvent is the published payload. Publishing is best-effort: the
// request path never depends on delivery.
type OrderEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// OrderEventPublisher emits order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
	PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error
	Close() error
}

// KafkaPublisher publishes order events to the configured topic, keyed
// by order id.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logging.Logger
}

var _ OrderEventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logging.NewLogger("order-events"),
	}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderCreated, order, data))
}

func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	payload := struct {
		Order          *models.Order      `json:"order"`
		PreviousStatus models.OrderStatus `json:"previous_status"`
		NewStatus      models.OrderStatus `json:"new_status"`
	}{
		Order:          order,
		PreviousStatus: previousStatus,
		NewStatus:      order.OrderStatus,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderStatusChanged, order, data))
}

func (p *KafkaPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {
	payload := struct {
		Order  *models.Order `json:"order"`
		Reason string        `json:"reason"`
	}{
		Order:  order,
		Reason: reason,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderCancelled, order, data))
}

func newEvent(eventType EventType, order *models.Order, data []byte) *OrderEvent {
	return &OrderEvent{
		ID:        "evt_" + uuid.NewString(),
		Type:      eventType,
		OrderID:   order.ID.Hex(),
		UserID:    order.UserID.Hex(),
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": string(event.Type),
			"order_id":   event.OrderID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Debug("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": string(event.Type),
		"order_id":   event.OrderID,
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops all events. Used when order events are disabled.
type NoopPublisher struct{}

var _ OrderEventPublisher = NoopPublisher{}

func (NoopPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	return nil
}

func (NoopPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	return nil
}

func (NoopPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

// MockPublisher records events for assertions in tests.
type MockPublisher struct {
	Events []*OrderEvent
}

var _ OrderEventPublisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]*OrderEvent, 0)}
}

func (m *MockPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	m.Events = append(m.Events, &OrderEvent{Type: EventTypeOrderCreated, OrderID: order.ID.Hex()})
	return nil
}

func (m *MockPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	m.Events = append(m.Events, &OrderEvent{Type: EventTypeOrderStatusChanged, OrderID: order.ID.Hex()})
	return nil
}

func (m *MockPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {
	m.Events = append(m.Events, &OrderEvent{Type: EventTypeOrderCancelled, OrderID: order.ID.Hex()})
	return nil
}

func (m *MockPublisher) Close() error { return nil }
