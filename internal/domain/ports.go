package domain

import "context"

// OrderEventPublisher публикует события о заказах во внешние системы.
type OrderEventPublisher interface {
	// PublishOrderCreated сообщает о созданном заказе; должен быть идемпотентным по order.ID.
	PublishOrderCreated(ctx context.Context, order Order) error
}

// Pinger проверяет доступность хранилища для health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
