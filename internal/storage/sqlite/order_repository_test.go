package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/storage/schema"
	"github.com/vladislavdragonenkov/checkout/internal/storage/storagetest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := Open(ctx, MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestOrderRepository_SQLiteContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Backend {
		store := openTestStore(t)
		return storagetest.Backend{
			Repo:                NewOrderRepository(store),
			SeedCustomer:        func(t *testing.T, id, name string) { seedCustomer(t, store, id, name) },
			SeedProduct:         func(t *testing.T, id, name string, price decimal.Decimal) { seedProduct(t, store, id, name, price) },
			Inspect:             func(t *testing.T, id string) (schema.OrderRecord, bool) { return inspectOrder(t, store, id) },
			Count:               func(t *testing.T) (int, int) { return countRows(t, store) },
			EnforcesForeignKeys: true,
		}
	})
}

func TestOrderRepository_SQLiteDriverErrorsPropagate(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)
	seedCustomer(t, store, "c-1", "Customer")
	seedProduct(t, store, "p-1", "Product", decimal.NewFromInt(5))

	ctx := context.Background()
	order := domain.Order{
		ID:         "dup",
		CustomerID: "c-1",
		Items: []domain.OrderItem{
			{ID: "dup-1", Name: "Product", Price: decimal.NewFromInt(5), ProductID: "p-1", Quantity: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, order))

	err := repo.Create(ctx, order)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err), "expected unique violation, got %v", err)
	assert.False(t, IsForeignKeyViolation(err))

	order.ID = "fk"
	order.Items[0].ID = "fk-1"
	order.Items[0].ProductID = "missing"
	err = repo.Create(ctx, order)
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err), "expected foreign key violation, got %v", err)

	assert.False(t, IsUniqueViolation(errors.New("plain error")))
}

func TestOrderRepository_SQLiteStoresDecimalsAsText(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)
	seedCustomer(t, store, "c-1", "Customer")
	seedProduct(t, store, "p-1", "Product", decimal.RequireFromString("0.1"))

	ctx := context.Background()
	order := domain.Order{
		ID:         "cents",
		CustomerID: "c-1",
		Items: []domain.OrderItem{
			{ID: "cents-1", Name: "Product", Price: decimal.RequireFromString("0.1"), ProductID: "p-1", Quantity: 3},
		},
	}
	require.NoError(t, repo.Create(ctx, order))

	var total, price string
	require.NoError(t, store.DB().QueryRowContext(ctx,
		`SELECT o.total, i.price FROM orders o JOIN order_items i ON i.order_id = o.id WHERE o.id = ?`, order.ID,
	).Scan(&total, &price))
	assert.Equal(t, "0.3", total)
	assert.Equal(t, "0.3", price)

	found, err := repo.Find(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.Items[0].Price.Equal(decimal.RequireFromString("0.1")), "price=%s", found.Items[0].Price)
}

func TestOrderRepository_SQLiteCanceledContext(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindAll(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
}

func seedCustomer(t *testing.T, store *Store, id, name string) {
	t.Helper()
	_, err := store.DB().ExecContext(context.Background(), `INSERT INTO customers (id, name) VALUES (?, ?)`, id, name)
	require.NoError(t, err, "seed customer %s", id)
}

func seedProduct(t *testing.T, store *Store, id, name string, price decimal.Decimal) {
	t.Helper()
	_, err := store.DB().ExecContext(context.Background(), `INSERT INTO products (id, name, price) VALUES (?, ?, ?)`, id, name, price)
	require.NoError(t, err, "seed product %s", id)
}

func inspectOrder(t *testing.T, store *Store, id string) (schema.OrderRecord, bool) {
	t.Helper()

	rows, err := store.DB().QueryContext(context.Background(), `
		SELECT `+schema.JoinedColumns+`
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.id = ?
		ORDER BY i.position
	`, id)
	require.NoError(t, err)
	defer rows.Close()

	c := schema.NewCollector()
	for rows.Next() {
		var row schema.JoinedRow
		require.NoError(t, rows.Scan(row.Dest()...))
		c.Add(row)
	}
	require.NoError(t, rows.Err())

	if c.Len() == 0 {
		return schema.OrderRecord{}, false
	}
	return c.Records()[0], true
}

func countRows(t *testing.T, store *Store) (int, int) {
	t.Helper()

	var orders, items int
	require.NoError(t, store.DB().QueryRowContext(context.Background(), `
		SELECT (SELECT COUNT(*) FROM orders), (SELECT COUNT(*) FROM order_items)
	`).Scan(&orders, &items))
	return orders, items
}
