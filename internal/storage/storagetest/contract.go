// Package storagetest содержит общий набор контрактных тестов для реализаций
// domain.OrderRepository. Каждое хранилище подключает его из своего _test.go.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/storage/schema"
)

// Backend описывает тестируемое хранилище и доступ к его сырым данным.
type Backend struct {
	Repo domain.OrderRepository
	// SeedCustomer и SeedProduct создают строки, на которые ссылаются внешние ключи.
	// nil, если хранилище внешние ключи не проверяет.
	SeedCustomer func(t *testing.T, id, name string)
	SeedProduct  func(t *testing.T, id, name string, price decimal.Decimal)
	// Inspect читает сохранённую проекцию заказа в обход маппера.
	Inspect func(t *testing.T, id string) (schema.OrderRecord, bool)
	// Count возвращает количество строк заказов и позиций.
	Count func(t *testing.T) (orders, items int)
	// EnforcesForeignKeys: хранилище отклоняет позиции с несуществующим товаром.
	EnforcesForeignKeys bool
}

// Factory создаёт чистое хранилище для каждого теста.
type Factory func(t *testing.T) Backend

// Run запускает контрактный набор против хранилища, созданного factory.
func Run(t *testing.T, factory Factory) {
	t.Helper()
	suite.Run(t, &OrderRepositorySuite{newBackend: factory})
}

// OrderRepositorySuite проверяет контракт OrderRepository.
type OrderRepositorySuite struct {
	suite.Suite

	newBackend Factory
	backend    Backend
	ctx        context.Context
	cancel     context.CancelFunc
}

func (s *OrderRepositorySuite) SetupTest() {
	// Контекст создаётся до фабрики: она может вызвать t.Skip, а TearDownTest выполнится всё равно.
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 30*time.Second)
	s.backend = s.newBackend(s.T())

	s.seedCustomer("1", "Customer 1")
	s.seedProduct("2", "Product 1", decimal.NewFromInt(10))
}

func (s *OrderRepositorySuite) TearDownTest() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *OrderRepositorySuite) seedCustomer(id, name string) {
	if s.backend.SeedCustomer != nil {
		s.backend.SeedCustomer(s.T(), id, name)
	}
}

func (s *OrderRepositorySuite) seedProduct(id, name string, price decimal.Decimal) {
	if s.backend.SeedProduct != nil {
		s.backend.SeedProduct(s.T(), id, name, price)
	}
}

// baseOrder возвращает заказ "123" клиента "1" с позицией "3": товар "2", цена 10, количество 2.
func baseOrder() domain.Order {
	return domain.Order{
		ID:         "123",
		CustomerID: "1",
		Items: []domain.OrderItem{
			{ID: "3", Name: "Product 1", Price: decimal.NewFromInt(10), ProductID: "2", Quantity: 2},
		},
	}
}

func (s *OrderRepositorySuite) TestCreate_StoresLineTotal() {
	order := baseOrder()
	s.Require().NoError(s.backend.Repo.Create(s.ctx, order))

	rec, ok := s.backend.Inspect(s.T(), order.ID)
	s.Require().True(ok, "order row must exist")

	s.Equal("123", rec.ID)
	s.Equal("1", rec.CustomerID)
	s.True(rec.Total.Equal(decimal.NewFromInt(20)), "total=%s", rec.Total)
	s.Require().Len(rec.Items, 1)

	item := rec.Items[0]
	s.Equal("3", item.ID)
	s.Equal("Product 1", item.Name)
	s.True(item.Price.Equal(decimal.NewFromInt(20)), "stored price=%s", item.Price)
	s.Equal(int32(2), item.Quantity)
	s.Equal("123", item.OrderID)
	s.Equal("2", item.ProductID)
}

func (s *OrderRepositorySuite) TestFind_RecoversUnitPrice() {
	order := baseOrder()
	s.Require().NoError(s.backend.Repo.Create(s.ctx, order))

	found, err := s.backend.Repo.Find(s.ctx, order.ID)
	s.Require().NoError(err)

	RequireOrdersEqual(s.T(), order, found)
	s.True(found.Items[0].Price.Equal(decimal.NewFromInt(10)), "price=%s", found.Items[0].Price)
	s.True(found.Total().Equal(decimal.NewFromInt(20)))
}

func (s *OrderRepositorySuite) TestRoundTrip_ManyItems() {
	s.seedProduct("p-a", "Pen", decimal.RequireFromString("1.25"))
	s.seedProduct("p-b", "Paper", decimal.RequireFromString("0.35"))
	s.seedProduct("p-c", "Desk", decimal.RequireFromString("199.99"))

	order := domain.Order{
		ID:         "multi",
		CustomerID: "1",
		Items: []domain.OrderItem{
			{ID: "m-3", Name: "Desk", Price: decimal.RequireFromString("199.99"), ProductID: "p-c", Quantity: 1},
			{ID: "m-1", Name: "Pen", Price: decimal.RequireFromString("1.25"), ProductID: "p-a", Quantity: 7},
			{ID: "m-2", Name: "Paper", Price: decimal.RequireFromString("0.35"), ProductID: "p-b", Quantity: 3},
			{ID: "m-4", Name: "Pen", Price: decimal.Zero, ProductID: "p-a", Quantity: 1},
		},
	}
	s.Require().NoError(s.backend.Repo.Create(s.ctx, order))

	found, err := s.backend.Repo.Find(s.ctx, order.ID)
	s.Require().NoError(err)
	RequireOrdersEqual(s.T(), order, found)
}

func (s *OrderRepositorySuite) TestCreate_TotalConsistency() {
	s.seedProduct("p-x", "X", decimal.RequireFromString("2.50"))

	order := domain.Order{
		ID:         "totals",
		CustomerID: "1",
		Items: []domain.OrderItem{
			{ID: "t-1", Name: "Product 1", Price: decimal.NewFromInt(10), ProductID: "2", Quantity: 2},
			{ID: "t-2", Name: "X", Price: decimal.RequireFromString("2.50"), ProductID: "p-x", Quantity: 5},
		},
	}
	s.Require().NoError(s.backend.Repo.Create(s.ctx, order))

	rec, ok := s.backend.Inspect(s.T(), order.ID)
	s.Require().True(ok)

	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	s.True(rec.Total.Equal(sum), "stored total %s, expected %s", rec.Total, sum)
	s.True(rec.Total.Equal(decimal.RequireFromString("32.5")))
}

func (s *OrderRepositorySuite) TestCreate_WritesExactlyOneAggregate() {
	s.seedProduct("p-y", "Y", decimal.NewFromInt(1))

	order := domain.Order{
		ID:         "three-items",
		CustomerID: "1",
		Items: []domain.OrderItem{
			{ID: "y-1", Name: "Y", Price: decimal.NewFromInt(1), ProductID: "p-y", Quantity: 1},
			{ID: "y-2", Name: "Y", Price: decimal.NewFromInt(1), ProductID: "p-y", Quantity: 2},
			{ID: "y-3", Name: "Product 1", Price: decimal.NewFromInt(10), ProductID: "2", Quantity: 3},
		},
	}
	s.Require().NoError(s.backend.Repo.Create(s.ctx, order))

	orders, items := s.backend.Count(s.T())
	s.Equal(1, orders)
	s.Equal(3, items)

	rec, ok := s.backend.Inspect(s.T(), order.ID)
	s.Require().True(ok)
	for _, item := range rec.Items {
		s.Equal(order.ID, item.OrderID)
	}
}

func (s *OrderRepositorySuite) TestCreate_RollsBackOnItemFailure() {
	if !s.backend.EnforcesForeignKeys {
		s.T().Skip("backend does not enforce foreign keys")
	}

	order := domain.Order{
		ID:         "broken",
		CustomerID: "1",
		Items: []domain.OrderItem{
			{ID: "b-1", Name: "Product 1", Price: decimal.NewFromInt(10), ProductID: "2", Quantity: 1},
			{ID: "b-2", Name: "Ghost", Price: decimal.NewFromInt(10), ProductID: "missing-product", Quantity: 1},
		},
	}
	s.Require().Error(s.backend.Repo.Create(s.ctx, order))

	orders, items := s.backend.Count(s.T())
	s.Equal(0, orders)
	s.Equal(0, items)

	_, err := s.backend.Repo.Find(s.ctx, order.ID)
	s.True(domain.IsNotFound(err), "expected not found, got %v", err)
}

func (s *OrderRepositorySuite) TestCreate_UnknownCustomerFails() {
	if !s.backend.EnforcesForeignKeys {
		s.T().Skip("backend does not enforce foreign keys")
	}

	order := baseOrder()
	order.CustomerID = "missing-customer"
	s.Require().Error(s.backend.Repo.Create(s.ctx, order))

	orders, items := s.backend.Count(s.T())
	s.Equal(0, orders)
	s.Equal(0, items)
}

func (s *OrderRepositorySuite) TestCreate_DuplicateIDFails() {
	order := baseOrder()
	s.Require().NoError(s.backend.Repo.Create(s.ctx, order))

	again := baseOrder()
	again.Items[0].ID = "another-item"
	s.Require().Error(s.backend.Repo.Create(s.ctx, again))

	orders, items := s.backend.Count(s.T())
	s.Equal(1, orders)
	s.Equal(1, items)

	found, err := s.backend.Repo.Find(s.ctx, order.ID)
	s.Require().NoError(err)
	RequireOrdersEqual(s.T(), order, found)
}

func (s *OrderRepositorySuite) TestUpdate_AlwaysFails() {
	order := baseOrder()

	err := s.backend.Repo.Update(s.ctx, order)
	s.Require().Error(err)
	s.EqualError(err, "Order can't be updated")

	s.Require().NoError(s.backend.Repo.Create(s.ctx, order))

	changed := baseOrder()
	changed.CustomerID = "2"
	changed.Items[0].Quantity = 5
	changed.Items[0].Price = decimal.NewFromInt(99)

	for _, candidate := range []domain.Order{order, changed, {}} {
		err := s.backend.Repo.Update(s.ctx, candidate)
		s.Require().Error(err)
		s.EqualError(err, "Order can't be updated")
		s.True(domain.IsOperationNotSupported(err))
	}

	found, err := s.backend.Repo.Find(s.ctx, order.ID)
	s.Require().NoError(err)
	RequireOrdersEqual(s.T(), order, found)
}

func (s *OrderRepositorySuite) TestFind_NotFound() {
	_, err := s.backend.Repo.Find(s.ctx, "does-not-exist")
	s.Require().Error(err)
	s.True(domain.IsNotFound(err), "expected ErrOrderNotFound, got %v", err)
}

func (s *OrderRepositorySuite) TestFindAll_ReturnsEveryOrder() {
	order := baseOrder()
	s.Require().NoError(s.backend.Repo.Create(s.ctx, order))

	s.seedCustomer("2", "Customer 1")
	s.seedProduct("3", "Product 1", decimal.NewFromInt(10))
	order2 := domain.Order{
		ID:         "456",
		CustomerID: "2",
		Items: []domain.OrderItem{
			{ID: "4", Name: "Product 1", Price: decimal.NewFromInt(10), ProductID: "3", Quantity: 3},
		},
	}
	s.Require().NoError(s.backend.Repo.Create(s.ctx, order2))

	found, err := s.backend.Repo.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(found, 2)

	RequireOrdersEqual(s.T(), order, found[0])
	RequireOrdersEqual(s.T(), order2, found[1])
}

// LargeOrderItems превышает число позиций, которое влезает в один INSERT
// с 7 параметрами на строку (лимит SQLite: 32766 параметров).
const LargeOrderItems = 5000

func (s *OrderRepositorySuite) TestCreate_LargeOrder() {
	order := domain.Order{ID: "large", CustomerID: "1"}
	for i := 0; i < LargeOrderItems; i++ {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        fmt.Sprintf("large-%d", i),
			Name:      "Product 1",
			Price:     decimal.NewFromInt(10),
			ProductID: "2",
			Quantity:  1,
		})
	}
	s.Require().NoError(s.backend.Repo.Create(s.ctx, order))

	orders, items := s.backend.Count(s.T())
	s.Equal(1, orders)
	s.Equal(LargeOrderItems, items)

	found, err := s.backend.Repo.Find(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Len(found.Items, LargeOrderItems)
	s.Equal("large-0", found.Items[0].ID)
	s.Equal(fmt.Sprintf("large-%d", LargeOrderItems-1), found.Items[LargeOrderItems-1].ID)
	s.True(found.Total().Equal(decimal.NewFromInt(10*LargeOrderItems)), "total=%s", found.Total())
}

func (s *OrderRepositorySuite) TestFindAll_Empty() {
	found, err := s.backend.Repo.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *OrderRepositorySuite) TestCreate_ConcurrentDistinctIDs() {
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			order := baseOrder()
			order.ID = fmt.Sprintf("concurrent-%d", n)
			order.Items[0].ID = fmt.Sprintf("concurrent-item-%d", n)
			errs <- s.backend.Repo.Create(s.ctx, order)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	found, err := s.backend.Repo.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Len(found, workers)
}

// RequireOrdersEqual сравнивает заказы поле за полем; цены сравниваются как числа.
func RequireOrdersEqual(t *testing.T, want, got domain.Order) {
	t.Helper()

	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.CustomerID, got.CustomerID)
	require.Len(t, got.Items, len(want.Items), "items of order %s", want.ID)
	for i := range want.Items {
		w, g := want.Items[i], got.Items[i]
		require.Equal(t, w.ID, g.ID)
		require.Equal(t, w.Name, g.Name)
		require.Equal(t, w.ProductID, g.ProductID)
		require.Equal(t, w.Quantity, g.Quantity)
		require.True(t, w.Price.Equal(g.Price), "item %s price: want %s got %s", w.ID, w.Price, g.Price)
	}
}
