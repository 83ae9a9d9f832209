package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID позиции, уникален в рамках заказа.
	ID string
	// Name: название товара на момент оформления заказа (денормализованная копия).
	Name string
	// Price: цена за единицу товара.
	Price decimal.Decimal
	// ProductID: ссылка на товар из каталога, заказом не владеет.
	ProductID string
	// Quantity: количество единиц товара, всегда больше нуля.
	Quantity int32
}

// LineTotal возвращает стоимость позиции: цена за единицу * количество.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt32(i.Quantity))
}

// Order является корнем агрегата: заказ клиента вместе с его позициями.
// После сохранения заказ не изменяется.
type Order struct {
	ID         string
	CustomerID string
	Items      []OrderItem
}

// NewOrder собирает заказ и проверяет его инварианты.
func NewOrder(id, customerID string, items []OrderItem) (Order, error) {
	order := Order{
		ID:         id,
		CustomerID: customerID,
		Items:      items,
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return Order{}, errors.Join(errs...)
	}
	return order, nil
}

// Total возвращает сумму заказа как сумму LineTotal всех позиций.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o Order) ValidateInvariants() []error {
	var errs []error

	if strings.TrimSpace(o.ID) == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if strings.TrimSpace(o.CustomerID) == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	for _, item := range o.Items {
		if strings.TrimSpace(item.ID) == "" {
			errs = append(errs, ErrItemIDRequired)
		}
		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, ErrItemNameRequired)
		}
		if strings.TrimSpace(item.ProductID) == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Price.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	return errs
}
