// Package checkout: прикладной сервис оформления и чтения заказов.
package checkout

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
)

// Service оформляет заказы поверх domain.OrderRepository.
type Service struct {
	orders  domain.OrderRepository
	events  domain.OrderEventPublisher
	metrics *metrics.RepositoryMetrics
	logger  *log.Entry
}

// NewService создаёт сервис. events и m могут быть nil.
func NewService(
	orders domain.OrderRepository,
	events domain.OrderEventPublisher,
	m *metrics.RepositoryMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Service{
		orders:  orders,
		events:  events,
		metrics: m,
		logger:  logger,
	}
}

// PlaceOrder проверяет инварианты, сохраняет заказ и публикует order.created.
// Ошибка публикации не откатывает сохранённый заказ.
func (s *Service) PlaceOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, fmt.Errorf("invalid order: %w", errors.Join(errs...))
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("create order %s: %w", order.ID, err)
	}

	logger := s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"items":       len(order.Items),
	})
	logger.Info("order created")

	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			if s.metrics != nil {
				s.metrics.RecordEventFailed()
			}
			logger.WithError(err).Warn("failed to publish order.created")
		}
	}

	return order, nil
}

// GetOrder возвращает заказ по id.
func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.orders.Find(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("find order %s: %w", id, err)
	}
	return order, nil
}

// ListOrders возвращает все заказы.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// AmendOrder передаёт изменение в хранилище; сохранённые заказы неизменяемы,
// поэтому результат всегда domain.ErrOrderUpdateNotSupported.
func (s *Service) AmendOrder(ctx context.Context, order domain.Order) error {
	err := s.orders.Update(ctx, order)
	if err == nil {
		return nil
	}

	if domain.IsOperationNotSupported(err) {
		s.logger.WithField("order_id", order.ID).WithError(err).Info("order amendment rejected")
		return err
	}
	return fmt.Errorf("update order %s: %w", order.ID, err)
}
