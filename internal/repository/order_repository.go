package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisphere/unisphere-api/internal/models"
)

const orderColumns = `id, user_id, items, subtotal, tax, total, status, notes, receipt_status, receipt_path, created_at, updated_at`

var orderSorts = sortSpec{
	columns: map[string]string{
		"createdAt": "created_at",
		"total":     "total",
		"status":    "status",
	},
	defaultKey:   "createdAt",
	defaultOrder: "DESC",
}

// OrderRepository persists cafeteria orders.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository constructs the repository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// List returns orders matching the filter.
func (r *OrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	var where whereClause
	if filter.UserID != "" {
		where.equals("user_id", filter.UserID)
	}
	if filter.Status != "" {
		where.equals("status", filter.Status)
	}
	where.search(filter.Search, "notes", "items::text")

	base := "FROM orders WHERE 1=1" + where.String()
	query := fmt.Sprintf("SELECT %s %s %s %s", orderColumns, base, orderSorts.clause(filter.ListOptions), pageClause(filter.ListOptions))

	var orders []models.Order
	if err := r.db.SelectContext(ctx, &orders, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	return orders, total, nil
}

// FindByID returns an order.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	var order models.Order
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create inserts an order.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	const query = `INSERT INTO orders (id, user_id, items, subtotal, tax, total, status, notes, receipt_status, receipt_path, created_at, updated_at) VALUES (:id, :user_id, :items, :subtotal, :tax, :total, :status, :notes, :receipt_status, :receipt_path, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// UpdateStatus moves an order from one status to another. It returns
// sql.ErrNoRows when the order is no longer in status from.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	const query = `UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check order status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateReceipt records the outcome of receipt rendering.
func (r *OrderRepository) UpdateReceipt(ctx context.Context, id string, status models.ReceiptStatus, path *string) error {
	const query = `UPDATE orders SET receipt_status = $2, receipt_path = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, path, time.Now().UTC()); err != nil {
		return fmt.Errorf("update order receipt: %w", err)
	}
	return nil
}
