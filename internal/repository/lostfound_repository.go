package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisphere/unisphere-api/internal/models"
)

const lostFoundColumns = `id, item_name, item_type, category, location, item_date, reporter_name, contact_number, description, status, image_url, reported_by, created_at, updated_at`

var lostFoundSorts = sortSpec{
	columns: map[string]string{
		"date":      "item_date",
		"itemName":  "item_name",
		"status":    "status",
		"createdAt": "created_at",
	},
	defaultKey:   "date",
	defaultOrder: "DESC",
}

// LostFoundRepository persists lost & found reports.
type LostFoundRepository struct {
	db *sqlx.DB
}

// NewLostFoundRepository constructs the repository.
func NewLostFoundRepository(db *sqlx.DB) *LostFoundRepository {
	return &LostFoundRepository{db: db}
}

// List returns reports matching the filter.
func (r *LostFoundRepository) List(ctx context.Context, filter models.LostFoundFilter) ([]models.LostFoundItem, int, error) {
	var where whereClause
	if filter.ItemType != "" {
		where.equals("item_type", filter.ItemType)
	}
	if filter.Status != "" {
		where.equals("status", filter.Status)
	}
	if filter.Category != "" {
		where.equalsFold("category", filter.Category)
	}
	where.search(filter.Search, "item_name", "location", "description")

	base := "FROM lost_found_items WHERE 1=1" + where.String()
	query := fmt.Sprintf("SELECT %s %s %s %s", lostFoundColumns, base, lostFoundSorts.clause(filter.ListOptions), pageClause(filter.ListOptions))

	var items []models.LostFoundItem
	if err := r.db.SelectContext(ctx, &items, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list lost found items: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count lost found items: %w", err)
	}
	return items, total, nil
}

// FindByID returns a report.
func (r *LostFoundRepository) FindByID(ctx context.Context, id string) (*models.LostFoundItem, error) {
	query := `SELECT ` + lostFoundColumns + ` FROM lost_found_items WHERE id = $1`
	var item models.LostFoundItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a report.
func (r *LostFoundRepository) Create(ctx context.Context, item *models.LostFoundItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	const query = `INSERT INTO lost_found_items (id, item_name, item_type, category, location, item_date, reporter_name, contact_number, description, status, image_url, reported_by, created_at, updated_at) VALUES (:id, :item_name, :item_type, :category, :location, :item_date, :reporter_name, :contact_number, :description, :status, :image_url, :reported_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create lost found item: %w", err)
	}
	return nil
}

// Update modifies a report.
func (r *LostFoundRepository) Update(ctx context.Context, item *models.LostFoundItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lost_found_items SET item_name = :item_name, item_type = :item_type, category = :category, location = :location, item_date = :item_date, reporter_name = :reporter_name, contact_number = :contact_number, description = :description, status = :status, image_url = :image_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update lost found item: %w", err)
	}
	return nil
}

// UpdateStatus changes only the handling status.
func (r *LostFoundRepository) UpdateStatus(ctx context.Context, id string, status models.ItemStatus) error {
	const query = `UPDATE lost_found_items SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update lost found status: %w", err)
	}
	return nil
}

// UpdateImage sets the image URL of a report.
func (r *LostFoundRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	const query = `UPDATE lost_found_items SET image_url = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, imageURL, time.Now().UTC()); err != nil {
		return fmt.Errorf("update lost found image: %w", err)
	}
	return nil
}

// Delete removes a report.
func (r *LostFoundRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lost_found_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lost found item: %w", err)
	}
	return nil
}
