package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	EventTypeOrderConfirmed = "order.confirmed"
	DefaultTopic            = "storefront-orders"
)

// OrderConfirmedEvent is the payload written for every confirmed checkout.
type OrderConfirmedEvent struct {
	OrderID       string              `json:"order_id"`
	UserID        string              `json:"user_id"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod domain.PaymentKind  `json:"payment_method"`
	Items         []domain.CartLine   `json:"items"`
	Delivery      domain.DeliveryInfo `json:"delivery"`
	CreatedAt     time.Time           `json:"created_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second}
}

// PublishOrderConfirmed keys the message by order id so all events of one
// order land on the same partition.
func (p *KafkaPublisher) PublishOrderConfirmed(ctx context.Context, userID string, o domain.Order) error {
	payload, err := json.Marshal(OrderConfirmedEvent{
		OrderID:       o.ID,
		UserID:        userID,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		Items:         o.Items,
		Delivery:      o.DeliveryInfo,
		CreatedAt:     o.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(o.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderConfirmed)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %s: %w", o.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
