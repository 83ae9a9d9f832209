package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/storage/schema"
)

// OrderRepository: in-memory реализация domain.OrderRepository.
// Хранит те же записи, что и SQL-хранилища, поэтому проекция суммы позиции
// проходит через schema и здесь.
type OrderRepository struct {
	mu    sync.RWMutex
	items map[string]schema.OrderRecord
	order []string
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		items: make(map[string]schema.OrderRecord),
	}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrDuplicateOrder
	}
	// FromDomain строит новые слайсы, внешние мутации заказа сюда не протекают.
	r.items[order.ID] = schema.FromDomain(order)
	r.order = append(r.order, order.ID)
	return nil
}

// Update всегда отказывает: заказы неизменяемы.
func (r *OrderRepository) Update(context.Context, domain.Order) error {
	return domain.ErrOrderUpdateNotSupported
}

// Find возвращает заказ или ErrOrderNotFound, если его нет.
func (r *OrderRepository) Find(ctx context.Context, id string) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	r.mu.RLock()
	rec, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return rec.ToDomain()
}

// FindAll возвращает все заказы в порядке создания.
func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	records := make([]schema.OrderRecord, 0, len(r.order))
	for _, id := range r.order {
		records = append(records, r.items[id])
	}
	r.mu.RUnlock()

	return schema.ToDomainList(records)
}

// Record возвращает копию сохранённой записи без обратного маппинга.
func (r *OrderRepository) Record(id string) (schema.OrderRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		return schema.OrderRecord{}, false
	}
	rec.Items = append([]schema.OrderItemRecord(nil), rec.Items...)
	return rec, true
}

// Ping всегда успешен: хранилище в памяти процесса.
func (r *OrderRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
