package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisphere/unisphere-api/internal/models"
)

const buildingColumns = `id, name, code, description, latitude, longitude, category, floors, image_url, created_at, updated_at`

var buildingSorts = sortSpec{
	columns: map[string]string{
		"name":     "name",
		"code":     "code",
		"category": "category",
	},
	defaultKey:   "name",
	defaultOrder: "ASC",
}

// BuildingRepository persists campus map markers.
type BuildingRepository struct {
	db *sqlx.DB
}

// NewBuildingRepository constructs the repository.
func NewBuildingRepository(db *sqlx.DB) *BuildingRepository {
	return &BuildingRepository{db: db}
}

// List returns buildings matching the filter.
func (r *BuildingRepository) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, int, error) {
	var where whereClause
	if filter.Category != "" {
		where.equalsFold("category", filter.Category)
	}
	where.search(filter.Search, "name", "code", "description")

	base := "FROM buildings WHERE 1=1" + where.String()
	query := fmt.Sprintf("SELECT %s %s %s %s", buildingColumns, base, buildingSorts.clause(filter.ListOptions), pageClause(filter.ListOptions))

	var buildings []models.Building
	if err := r.db.SelectContext(ctx, &buildings, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list buildings: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count buildings: %w", err)
	}
	return buildings, total, nil
}

// ListAll returns every building for distance calculations.
func (r *BuildingRepository) ListAll(ctx context.Context) ([]models.Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings`
	var buildings []models.Building
	if err := r.db.SelectContext(ctx, &buildings, query); err != nil {
		return nil, fmt.Errorf("list all buildings: %w", err)
	}
	return buildings, nil
}

// FindByID returns a building.
func (r *BuildingRepository) FindByID(ctx context.Context, id string) (*models.Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings WHERE id = $1`
	var building models.Building
	if err := r.db.GetContext(ctx, &building, query, id); err != nil {
		return nil, err
	}
	return &building, nil
}

// Create inserts a building.
func (r *BuildingRepository) Create(ctx context.Context, building *models.Building) error {
	if building.ID == "" {
		building.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if building.CreatedAt.IsZero() {
		building.CreatedAt = now
	}
	building.UpdatedAt = now

	const query = `INSERT INTO buildings (id, name, code, description, latitude, longitude, category, floors, image_url, created_at, updated_at) VALUES (:id, :name, :code, :description, :latitude, :longitude, :category, :floors, :image_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, building); err != nil {
		return fmt.Errorf("create building: %w", err)
	}
	return nil
}

// Update modifies a building.
func (r *BuildingRepository) Update(ctx context.Context, building *models.Building) error {
	building.UpdatedAt = time.Now().UTC()
	const query = `UPDATE buildings SET name = :name, code = :code, description = :description, latitude = :latitude, longitude = :longitude, category = :category, floors = :floors, image_url = :image_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, building); err != nil {
		return fmt.Errorf("update building: %w", err)
	}
	return nil
}

// Delete removes a building.
func (r *BuildingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM buildings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete building: %w", err)
	}
	return nil
}
