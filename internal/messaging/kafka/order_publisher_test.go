package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func testOrder() domain.Order {
	return domain.Order{
		ID:         "order-1",
		CustomerID: "customer-1",
		Items: []domain.OrderItem{
			{ID: "item-1", Name: "Product 1", Price: decimal.NewFromInt(10), ProductID: "product-1", Quantity: 2},
			{ID: "item-2", Name: "Product 2", Price: decimal.RequireFromString("0.5"), ProductID: "product-2", Quantity: 3},
		},
	}
}

func TestOrderPublisher_PublishOrderCreated(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	publisher := NewOrderPublisher(NewProducerWithClient(mockProducer), "")

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicOrderEvents {
			return fmt.Errorf("unexpected topic %q", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "order-1" {
			return fmt.Errorf("unexpected key %q", key)
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event OrderCreatedEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeOrderCreated {
			return fmt.Errorf("unexpected event type %q", event.EventType)
		}
		if !event.Total.Equal(decimal.RequireFromString("21.5")) {
			return fmt.Errorf("unexpected total %s", event.Total)
		}
		if len(event.Items) != 2 || !event.Items[1].Price.Equal(decimal.RequireFromString("0.5")) {
			return fmt.Errorf("unexpected items %+v", event.Items)
		}
		return nil
	})

	if err := publisher.PublishOrderCreated(context.Background(), testOrder()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderPublisher_CustomTopic(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	publisher := NewOrderPublisher(NewProducerWithClient(mockProducer), "custom.topic")

	if publisher.Topic() != "custom.topic" {
		t.Fatalf("expected custom topic, got %s", publisher.Topic())
	}

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "custom.topic" {
			return fmt.Errorf("unexpected topic %q", msg.Topic)
		}
		return nil
	})

	if err := publisher.PublishOrderCreated(context.Background(), testOrder()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderPublisher_SendFailure(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	publisher := NewOrderPublisher(NewProducerWithClient(mockProducer), "")

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := publisher.PublishOrderCreated(context.Background(), testOrder())
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers in chain, got %v", err)
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderPublisher_NotInitialized(t *testing.T) {
	publisher := NewOrderPublisher(nil, "")
	if err := publisher.PublishOrderCreated(context.Background(), testOrder()); err == nil {
		t.Fatal("expected error for publisher without producer")
	}

	var nilPublisher *OrderPublisher
	if err := nilPublisher.PublishOrderCreated(context.Background(), testOrder()); err == nil {
		t.Fatal("expected error for nil publisher")
	}
}

func TestOrderPublisher_CanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	publisher := NewOrderPublisher(NewProducerWithClient(mockProducer), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := publisher.PublishOrderCreated(ctx, testOrder()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderCreatedEvent(t *testing.T) {
	order := testOrder()
	event := NewOrderCreatedEvent(order)

	if event.EventType != EventTypeOrderCreated {
		t.Errorf("expected event type %s, got %s", EventTypeOrderCreated, event.EventType)
	}
	if event.OrderID != order.ID || event.CustomerID != order.CustomerID {
		t.Errorf("unexpected ids: %+v", event)
	}
	if event.EventID == "" {
		t.Error("event id should be generated")
	}
	if len(event.Items) != len(order.Items) {
		t.Fatalf("expected %d items, got %d", len(order.Items), len(event.Items))
	}
	if event.Items[0].Quantity != 2 || event.Items[0].ProductID != "product-1" {
		t.Errorf("unexpected first item: %+v", event.Items[0])
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}
