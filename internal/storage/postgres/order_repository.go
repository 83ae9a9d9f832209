package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/storage/schema"
)

const (
	opTimeout = 5 * time.Second

	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"

	itemColumns = 7
)

// OrderRepository: PostgreSQL-реализация domain.OrderRepository.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{db: store.DB()}
}

// Create пишет строку заказа и все позиции одной транзакцией.
// Ошибки драйвера (*pgconn.PgError) остаются в цепочке.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rec := schema.FromDomain(order)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, total) VALUES ($1, $2, $3)
	`, rec.ID, rec.CustomerID, rec.Total); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, batch := range schema.ItemBatches(rec.Items, schema.MaxItemsPerInsert) {
		query, args := insertItemsQuery(batch)
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

// Update всегда отказывает: заказ после создания неизменяем.
func (r *OrderRepository) Update(context.Context, domain.Order) error {
	return domain.ErrOrderUpdateNotSupported
}

// Find возвращает заказ с позициями одним join-запросом.
func (r *OrderRepository) Find(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	records, err := r.query(ctx, `
		SELECT `+schema.JoinedColumns+`
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.id = $1
		ORDER BY i.position ASC
	`, id)
	if err != nil {
		return domain.Order{}, err
	}
	if len(records) == 0 {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	return records[0].ToDomain()
}

// FindAll возвращает все заказы в порядке вставки.
func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	records, err := r.query(ctx, `
		SELECT `+schema.JoinedColumns+`
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		ORDER BY o.seq ASC, i.position ASC
	`)
	if err != nil {
		return nil, err
	}

	return schema.ToDomainList(records)
}

func (r *OrderRepository) query(ctx context.Context, query string, args ...any) ([]schema.OrderRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	collector := schema.NewCollector()
	for rows.Next() {
		var row schema.JoinedRow
		if err := rows.Scan(row.Dest()...); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		collector.Add(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return collector.Records(), nil
}

// insertItemsQuery строит один многострочный INSERT для всех позиций заказа.
func insertItemsQuery(items []schema.OrderItemRecord) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO order_items (id, name, price, quantity, order_id, product_id, position) VALUES `)

	args := make([]any, 0, len(items)*itemColumns)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * itemColumns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, item.ID, item.Name, item.Price, item.Quantity, item.OrderID, item.ProductID, item.Position)
	}

	return sb.String(), args
}

// IsUniqueViolation сообщает, что запись с таким ключом уже существует.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolationCode)
}

// IsForeignKeyViolation сообщает, что заказ ссылается на несуществующего клиента или товар.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolationCode)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
