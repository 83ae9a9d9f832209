package kafka

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// eventSender: часть Producer, нужная паблишеру.
type eventSender interface {
	PublishEvent(topic string, key string, event any) error
}

// OrderPublisher публикует события заказа в заданный Kafka topic.
type OrderPublisher struct {
	sender eventSender
	topic  string
}

// NewOrderPublisher создаёт паблишер; пустой topic заменяется TopicOrderEvents.
func NewOrderPublisher(producer *Producer, topic string) *OrderPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	var sender eventSender
	if producer != nil {
		sender = producer
	}
	return &OrderPublisher{
		sender: sender,
		topic:  topic,
	}
}

// Topic возвращает topic публикации.
func (p *OrderPublisher) Topic() string {
	return p.topic
}

// PublishOrderCreated отправляет order.created с ключом = id заказа.
func (p *OrderPublisher) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	if p == nil || p.sender == nil {
		return fmt.Errorf("kafka order publisher is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.sender.PublishEvent(p.topic, order.ID, NewOrderCreatedEvent(order))
}

var _ domain.OrderEventPublisher = (*OrderPublisher)(nil)
