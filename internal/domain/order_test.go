package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// helper для создания базового заказа с двумя позициями.
func makeOrder() domain.Order {
	return domain.Order{
		ID:         "order-1",
		CustomerID: "customer-1",
		Items: []domain.OrderItem{
			{ID: "item-1", Name: "Product 1", Price: decimal.NewFromInt(10), ProductID: "product-1", Quantity: 2},
			{ID: "item-2", Name: "Product 2", Price: decimal.RequireFromString("1.25"), ProductID: "product-2", Quantity: 3},
		},
	}
}

func TestOrderTotal(t *testing.T) {
	order := makeOrder()

	want := decimal.RequireFromString("23.75")
	if got := order.Total(); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}
}

func TestOrderTotal_Empty(t *testing.T) {
	order := domain.Order{ID: "order-empty", CustomerID: "customer-1"}
	if !order.Total().IsZero() {
		t.Fatalf("expected zero total, got %s", order.Total())
	}
}

func TestOrderItemLineTotal(t *testing.T) {
	item := domain.OrderItem{Price: decimal.NewFromInt(10), Quantity: 2}
	if got := item.LineTotal(); !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected line total 20, got %s", got)
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
		want error
	}{
		{
			name: "no id",
			mut:  func(o *domain.Order) { o.ID = " " },
			want: domain.ErrOrderIDRequired,
		},
		{
			name: "no customer",
			mut:  func(o *domain.Order) { o.CustomerID = "" },
			want: domain.ErrCustomerRequired,
		},
		{
			name: "no items",
			mut:  func(o *domain.Order) { o.Items = nil },
			want: domain.ErrItemsRequired,
		},
		{
			name: "item without id",
			mut:  func(o *domain.Order) { o.Items[0].ID = "" },
			want: domain.ErrItemIDRequired,
		},
		{
			name: "item without name",
			mut:  func(o *domain.Order) { o.Items[0].Name = "" },
			want: domain.ErrItemNameRequired,
		},
		{
			name: "item without product",
			mut:  func(o *domain.Order) { o.Items[1].ProductID = "" },
			want: domain.ErrItemProductRequired,
		},
		{
			name: "zero quantity",
			mut:  func(o *domain.Order) { o.Items[0].Quantity = 0 },
			want: domain.ErrItemQtyInvalid,
		},
		{
			name: "negative price",
			mut:  func(o *domain.Order) { o.Items[1].Price = decimal.NewFromInt(-1) },
			want: domain.ErrItemPriceInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)
			errs := order.ValidateInvariants()
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if !errors.Is(errors.Join(errs...), tc.want) {
				t.Fatalf("expected %v in %v", tc.want, errs)
			}
		})
	}
}

func TestNewOrder(t *testing.T) {
	items := makeOrder().Items

	order, err := domain.NewOrder("order-1", "customer-1", items)
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	if order.ID != "order-1" || order.CustomerID != "customer-1" || len(order.Items) != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}

	_, err = domain.NewOrder("", "", nil)
	for _, want := range []error{domain.ErrOrderIDRequired, domain.ErrCustomerRequired, domain.ErrItemsRequired} {
		if !errors.Is(err, want) {
			t.Fatalf("expected %v in %v", want, err)
		}
	}
}
