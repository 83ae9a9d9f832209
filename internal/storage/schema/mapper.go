package schema

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// ErrCorruptItem: в хранилище лежит позиция, из которой нельзя восстановить цену за единицу.
var ErrCorruptItem = errors.New("stored order item is corrupt")

// FromDomain переводит агрегат в записи хранилища.
// Price позиции сохраняется как LineTotal: цена за единицу * количество.
func FromDomain(order domain.Order) OrderRecord {
	items := make([]OrderItemRecord, 0, len(order.Items))
	for i, item := range order.Items {
		items = append(items, OrderItemRecord{
			ID:        item.ID,
			Name:      item.Name,
			Price:     item.LineTotal(),
			Quantity:  item.Quantity,
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Position:  i,
		})
	}

	return OrderRecord{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total(),
		Items:      items,
	}
}

// ToDomain восстанавливает агрегат из записей.
// Цена за единицу вычисляется обратно как сохранённая сумма позиции / количество.
func (r OrderRecord) ToDomain() (domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, rec := range r.Items {
		price, err := UnitPrice(rec.Price, rec.Quantity)
		if err != nil {
			return domain.Order{}, fmt.Errorf("order %s item %s: %w", r.ID, rec.ID, err)
		}
		items = append(items, domain.OrderItem{
			ID:        rec.ID,
			Name:      rec.Name,
			Price:     price,
			ProductID: rec.ProductID,
			Quantity:  rec.Quantity,
		})
	}

	return domain.Order{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		Items:      items,
	}, nil
}

// UnitPrice делит сумму позиции на количество.
func UnitPrice(lineTotal decimal.Decimal, quantity int32) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: quantity %d", ErrCorruptItem, quantity)
	}
	return lineTotal.Div(decimal.NewFromInt32(quantity)), nil
}

// ToDomainList применяет ToDomain к списку записей, сохраняя порядок.
func ToDomainList(records []OrderRecord) ([]domain.Order, error) {
	orders := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		order, err := rec.ToDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}
