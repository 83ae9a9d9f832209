// Package schema описывает реляционную проекцию агрегата заказа
// и единственный маппер между записями хранилища и доменными типами.
package schema

import (
	"github.com/shopspring/decimal"
)

// Имена таблиц, общие для SQL-хранилищ.
const (
	TableOrders     = "orders"
	TableOrderItems = "order_items"
)

// OrderRecord: строка таблицы orders вместе с позициями.
type OrderRecord struct {
	ID         string
	CustomerID string
	// Total: сумма заказа на момент создания.
	Total decimal.Decimal
	Items []OrderItemRecord
}

// OrderItemRecord: строка таблицы order_items.
type OrderItemRecord struct {
	ID   string
	Name string
	// Price хранит сумму позиции (цена за единицу * количество), а не цену за единицу.
	Price     decimal.Decimal
	Quantity  int32
	OrderID   string
	ProductID string
	// Position: индекс позиции в Order.Items.
	Position int
}

// MaxItemsPerInsert: предел позиций в одном INSERT (7 параметров на позицию,
// ниже лимитов SQLite и PostgreSQL на число параметров).
const MaxItemsPerInsert = 100

// ItemBatches режет позиции на пачки не длиннее size, сохраняя порядок.
func ItemBatches(items []OrderItemRecord, size int) [][]OrderItemRecord {
	if size <= 0 {
		size = MaxItemsPerInsert
	}
	batches := make([][]OrderItemRecord, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}
