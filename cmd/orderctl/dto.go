package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type itemDTO struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ProductID string          `json:"product_id"`
	Quantity  int32           `json:"quantity"`
}

type orderDTO struct {
	ID         string          `json:"id,omitempty"`
	CustomerID string          `json:"customer_id"`
	Items      []itemDTO       `json:"items"`
	Total      decimal.Decimal `json:"total"`
}

// decodeOrder читает заказ из JSON; пустые id заменяются сгенерированными UUID.
func decodeOrder(r io.Reader) (domain.Order, error) {
	var dto orderDTO
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dto); err != nil {
		return domain.Order{}, fmt.Errorf("decode order: %w", err)
	}

	order := domain.Order{
		ID:         dto.ID,
		CustomerID: dto.CustomerID,
		Items:      make([]domain.OrderItem, 0, len(dto.Items)),
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	for _, item := range dto.Items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:        item.ID,
			Name:      item.Name,
			Price:     item.Price,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return order, nil
}

func toDTO(order domain.Order) orderDTO {
	items := make([]itemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemDTO{
			ID:        item.ID,
			Name:      item.Name,
			Price:     item.Price,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return orderDTO{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Items:      items,
		Total:      order.Total(),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
