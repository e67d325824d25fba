package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisphere/unisphere-api/internal/models"
)

const facultyColumns = `id, name, department, position, email, phone, office_hours, office, education, expertise, social, image_url, available, created_at, updated_at`

var facultySorts = sortSpec{
	columns: map[string]string{
		"name":       "name",
		"department": "department",
		"position":   "position",
		"createdAt":  "created_at",
	},
	defaultKey:   "name",
	defaultOrder: "ASC",
}

// FacultyRepository persists the faculty directory.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs the repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// List returns faculty members matching the filter.
func (r *FacultyRepository) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error) {
	var where whereClause
	if filter.Department != "" {
		where.equalsFold("department", filter.Department)
	}
	if filter.Available != nil {
		where.equals("available", *filter.Available)
	}
	where.search(filter.Search, "name", "department", "position")

	base := "FROM faculty WHERE 1=1" + where.String()
	query := fmt.Sprintf("SELECT %s %s %s %s", facultyColumns, base, facultySorts.clause(filter.ListOptions), pageClause(filter.ListOptions))

	var members []models.Faculty
	if err := r.db.SelectContext(ctx, &members, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list faculty: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count faculty: %w", err)
	}
	return members, total, nil
}

// FindByID returns a faculty member.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	query := `SELECT ` + facultyColumns + ` FROM faculty WHERE id = $1`
	var member models.Faculty
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// Create inserts a faculty member.
func (r *FacultyRepository) Create(ctx context.Context, member *models.Faculty) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now

	const query = `INSERT INTO faculty (id, name, department, position, email, phone, office_hours, office, education, expertise, social, image_url, available, created_at, updated_at) VALUES (:id, :name, :department, :position, :email, :phone, :office_hours, :office, :education, :expertise, :social, :image_url, :available, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// Update modifies a faculty member.
func (r *FacultyRepository) Update(ctx context.Context, member *models.Faculty) error {
	member.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faculty SET name = :name, department = :department, position = :position, email = :email, phone = :phone, office_hours = :office_hours, office = :office, education = :education, expertise = :expertise, social = :social, image_url = :image_url, available = :available, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	return nil
}

// Delete removes a faculty member.
func (r *FacultyRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM faculty WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	return nil
}
