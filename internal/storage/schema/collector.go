package schema

import (
	"database/sql"
	"sort"

	"github.com/shopspring/decimal"
)

// JoinedRow: одна строка LEFT JOIN orders × order_items.
// Колонки позиции пустые, если у заказа нет позиций.
type JoinedRow struct {
	OrderID       string
	CustomerID    string
	Total         decimal.Decimal
	ItemID        sql.NullString
	ItemName      sql.NullString
	ItemPrice     decimal.NullDecimal
	ItemQuantity  sql.NullInt32
	ItemProductID sql.NullString
	ItemPosition  sql.NullInt64
}

// Dest возвращает указатели для rows.Scan в порядке колонок JoinedColumns.
func (r *JoinedRow) Dest() []any {
	return []any{
		&r.OrderID, &r.CustomerID, &r.Total,
		&r.ItemID, &r.ItemName, &r.ItemPrice, &r.ItemQuantity, &r.ItemProductID, &r.ItemPosition,
	}
}

// JoinedColumns: список колонок для SELECT, согласованный с JoinedRow.Dest.
const JoinedColumns = `o.id, o.customer_id, o.total,
		i.id, i.name, i.price, i.quantity, i.product_id, i.position`

// Collector собирает плоские строки join-запроса в записи заказов.
type Collector struct {
	index   map[string]int
	records []OrderRecord
}

// NewCollector создаёт пустой Collector.
func NewCollector() *Collector {
	return &Collector{index: make(map[string]int)}
}

// Add добавляет строку; заказы сохраняют порядок первого появления.
func (c *Collector) Add(row JoinedRow) {
	idx, ok := c.index[row.OrderID]
	if !ok {
		idx = len(c.records)
		c.index[row.OrderID] = idx
		c.records = append(c.records, OrderRecord{
			ID:         row.OrderID,
			CustomerID: row.CustomerID,
			Total:      row.Total,
			Items:      make([]OrderItemRecord, 0, 1),
		})
	}

	if !row.ItemID.Valid {
		return
	}
	c.records[idx].Items = append(c.records[idx].Items, OrderItemRecord{
		ID:        row.ItemID.String,
		Name:      row.ItemName.String,
		Price:     row.ItemPrice.Decimal,
		Quantity:  row.ItemQuantity.Int32,
		OrderID:   row.OrderID,
		ProductID: row.ItemProductID.String,
		Position:  int(row.ItemPosition.Int64),
	})
}

// Records возвращает собранные записи; позиции отсортированы по Position.
func (c *Collector) Records() []OrderRecord {
	for i := range c.records {
		items := c.records[i].Items
		sort.SliceStable(items, func(a, b int) bool { return items[a].Position < items[b].Position })
	}
	return c.records
}

// Len возвращает количество собранных заказов.
func (c *Collector) Len() int {
	return len(c.records)
}
