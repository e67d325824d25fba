package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unisphere/unisphere-api/internal/models"
)

const menuColumns = `id, name, description, category, price, image_url, available, created_at, updated_at`

var menuSorts = sortSpec{
	columns: map[string]string{
		"name":      "name",
		"price":     "price",
		"category":  "category",
		"createdAt": "created_at",
	},
	defaultKey:   "name",
	defaultOrder: "ASC",
}

// MenuRepository persists cafeteria menu items.
type MenuRepository struct {
	db *sqlx.DB
}

// NewMenuRepository constructs the repository.
func NewMenuRepository(db *sqlx.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// List returns menu items matching the filter.
func (r *MenuRepository) List(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, int, error) {
	var where whereClause
	if filter.Category != "" {
		where.equalsFold("category", filter.Category)
	}
	if filter.Available != nil {
		where.equals("available", *filter.Available)
	}
	where.search(filter.Search, "name", "description", "category")

	base := "FROM menu_items WHERE 1=1" + where.String()
	query := fmt.Sprintf("SELECT %s %s %s %s", menuColumns, base, menuSorts.clause(filter.ListOptions), pageClause(filter.ListOptions))

	var items []models.MenuItem
	if err := r.db.SelectContext(ctx, &items, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list menu items: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count menu items: %w", err)
	}
	return items, total, nil
}

// FindByID returns a menu item.
func (r *MenuRepository) FindByID(ctx context.Context, id string) (*models.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`
	var item models.MenuItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDs loads several menu items at once. Missing IDs are simply absent.
func (r *MenuRepository) FindByIDs(ctx context.Context, ids []string) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + menuColumns + ` FROM menu_items WHERE id = ANY($1)`
	var items []models.MenuItem
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find menu items: %w", err)
	}
	return items, nil
}

// Create inserts a menu item.
func (r *MenuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	const query = `INSERT INTO menu_items (id, name, description, category, price, image_url, available, created_at, updated_at) VALUES (:id, :name, :description, :category, :price, :image_url, :available, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	return nil
}

// Update modifies a menu item.
func (r *MenuRepository) Update(ctx context.Context, item *models.MenuItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE menu_items SET name = :name, description = :description, category = :category, price = :price, image_url = :image_url, available = :available, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	return nil
}

// Delete removes a menu item.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}
