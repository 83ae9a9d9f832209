package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order id is required")
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отсутствующего идентификатора позиции.
	ErrItemIDRequired = errors.New("item id is required")
	// Ошибка отсутствующего названия позиции.
	ErrItemNameRequired = errors.New("item name is required")
	// Ошибка отсутствующей ссылки на товар.
	ErrItemProductRequired = errors.New("item product_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder: заказ с таким ID уже сохранён (in-memory хранилище).
	ErrDuplicateOrder = errors.New("order already exists")
	// ErrOperationNotSupported: класс ошибок для операций, которые политика хранилища запрещает.
	ErrOperationNotSupported = errors.New("operation not supported")
	// ErrOrderUpdateNotSupported возвращается любым Update: заказ неизменяем после создания.
	ErrOrderUpdateNotSupported error = &UnsupportedOperationError{
		Operation: "update",
		Message:   "Order can't be updated",
	}
)

// UnsupportedOperationError описывает отказ в операции по политике, а не из-за сбоя.
// Такие ошибки не ретраятся.
type UnsupportedOperationError struct {
	Operation string
	Message   string
}

func (e *UnsupportedOperationError) Error() string {
	return e.Message
}

// Is позволяет сопоставлять ошибку с ErrOperationNotSupported через errors.Is.
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrOperationNotSupported
}

// IsNotFound проверяет, является ли ошибка отсутствием заказа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

// IsOperationNotSupported проверяет, отклонена ли операция политикой хранилища.
func IsOperationNotSupported(err error) bool {
	return errors.Is(err, ErrOperationNotSupported)
}
