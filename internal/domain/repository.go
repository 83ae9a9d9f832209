package domain

import "context"

// OrderRepository описывает требования к хранилищу заказов.
// Агрегат (заказ + все позиции) пишется и читается целиком.
type OrderRepository interface {
	// Create сохраняет заказ вместе с позициями атомарно: либо всё, либо ничего.
	// Ошибки хранилища (дубликат ID, нарушение внешних ключей) возвращаются как есть.
	Create(ctx context.Context, order Order) error
	// Update всегда возвращает ErrOrderUpdateNotSupported и не обращается к хранилищу.
	Update(ctx context.Context, order Order) error
	// Find возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Find(ctx context.Context, id string) (Order, error)
	// FindAll возвращает все заказы в порядке их создания.
	FindAll(ctx context.Context) ([]Order, error)
}
