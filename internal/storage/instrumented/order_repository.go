// Package instrumented оборачивает репозиторий заказов метриками и логами.
package instrumented

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
)

// OrderRepository: декоратор domain.OrderRepository.
type OrderRepository struct {
	next    domain.OrderRepository
	metrics *metrics.RepositoryMetrics
	logger  *log.Entry
	now     func() time.Time
}

// NewOrderRepository оборачивает next. Пустой logger заменяется компонентным.
func NewOrderRepository(next domain.OrderRepository, m *metrics.RepositoryMetrics, logger *log.Entry) *OrderRepository {
	if logger == nil {
		logger = log.WithField("component", "order-repository")
	}
	return &OrderRepository{
		next:    next,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Create сохраняет заказ и учитывает число записанных позиций.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	start := r.now()
	err := r.next.Create(ctx, order)
	r.observe(metrics.OpCreate, order.ID, start, err)
	if err == nil && r.metrics != nil {
		r.metrics.RecordItemsCreated(len(order.Items))
	}
	return err
}

// Update проксирует вызов; отказ фиксируется как not_supported.
func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	start := r.now()
	err := r.next.Update(ctx, order)
	r.observe(metrics.OpUpdate, order.ID, start, err)
	return err
}

// Find возвращает заказ по id.
func (r *OrderRepository) Find(ctx context.Context, id string) (domain.Order, error) {
	start := r.now()
	order, err := r.next.Find(ctx, id)
	r.observe(metrics.OpFind, id, start, err)
	return order, err
}

// FindAll возвращает все заказы.
func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	start := r.now()
	orders, err := r.next.FindAll(ctx)
	r.observe(metrics.OpFindAll, "", start, err)
	return orders, err
}

func (r *OrderRepository) observe(operation, orderID string, start time.Time, err error) {
	result := Classify(err)
	if r.metrics != nil {
		r.metrics.RecordOperation(operation, result, r.now().Sub(start))
	}
	if result != metrics.ResultError {
		return
	}

	entry := r.logger.WithError(err).WithField("operation", operation)
	if orderID != "" {
		entry = entry.WithField("order_id", orderID)
	}
	entry.Warn("order repository operation failed")
}

// Classify сводит ошибку репозитория к значению label "result".
func Classify(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domain.ErrOrderNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, domain.ErrOperationNotSupported):
		return metrics.ResultNotSupported
	default:
		return metrics.ResultError
	}
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
