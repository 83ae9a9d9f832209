package kafka

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// EventType определяет тип события.
type EventType string

// EventTypeOrderCreated публикуется после успешного сохранения заказа.
const EventTypeOrderCreated EventType = "order.created"

// TopicOrderEvents: topic событий заказов по умолчанию.
const TopicOrderEvents = "checkout.order.events"

// OrderItemPayload: позиция заказа в событии; цена за единицу.
type OrderItemPayload struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ProductID string          `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderCreatedEvent: событие order.created.
type OrderCreatedEvent struct {
	EventID    string             `json:"event_id"`
	EventType  EventType          `json:"event_type"`
	OrderID    string             `json:"order_id"`
	CustomerID string             `json:"customer_id"`
	Total      decimal.Decimal    `json:"total"`
	Items      []OrderItemPayload `json:"items"`
	Timestamp  time.Time          `json:"timestamp"`
}

// NewOrderCreatedEvent строит событие из сохранённого заказа.
func NewOrderCreatedEvent(order domain.Order) *OrderCreatedEvent {
	items := make([]OrderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemPayload{
			ID:        item.ID,
			Name:      item.Name,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	return &OrderCreatedEvent{
		EventID:    uuid.NewString(),
		EventType:  EventTypeOrderCreated,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total(),
		Items:      items,
		Timestamp:  time.Now().UTC(),
	}
}
