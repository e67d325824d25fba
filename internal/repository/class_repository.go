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

const classColumns = `id, department, course_code, name, description, credits, days, time_slot, location, professor, learning_outcomes, materials, textbooks, assignments, grade_breakdown, created_at, updated_at`

var classSorts = sortSpec{
	columns: map[string]string{
		"courseCode": "course_code",
		"name":       "name",
		"department": "department",
		"credits":    "credits",
		"createdAt":  "created_at",
	},
	defaultKey:   "courseCode",
	defaultOrder: "ASC",
}

// ClassRepository manages persistence for class schedules.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes matching filter criteria.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassSchedule, int, error) {
	var where whereClause
	if filter.Department != "" {
		where.equalsFold("department", filter.Department)
	}
	if filter.Day != "" {
		where.contains("days", filter.Day)
	}
	where.search(filter.Search, "name", "course_code", "professor->>'name'")

	base := "FROM class_schedules WHERE 1=1" + where.String()
	query := fmt.Sprintf("SELECT %s %s %s %s", classColumns, base, classSorts.clause(filter.ListOptions), pageClause(filter.ListOptions))

	var classes []models.ClassSchedule
	if err := r.db.SelectContext(ctx, &classes, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindByID returns a class record by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ClassSchedule, error) {
	query := `SELECT ` + classColumns + ` FROM class_schedules WHERE id = $1`
	var class models.ClassSchedule
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ExistsByCourseCode checks if a class with the same course code already exists.
func (r *ClassRepository) ExistsByCourseCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM class_schedules WHERE LOWER(course_code) = LOWER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create persists a class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.ClassSchedule) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO class_schedules (id, department, course_code, name, description, credits, days, time_slot, location, professor, learning_outcomes, materials, textbooks, assignments, grade_breakdown, created_at, updated_at) VALUES (:id, :department, :course_code, :name, :description, :credits, :days, :time_slot, :location, :professor, :learning_outcomes, :materials, :textbooks, :assignments, :grade_breakdown, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies a class record.
func (r *ClassRepository) Update(ctx context.Context, class *models.ClassSchedule) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_schedules SET department = :department, course_code = :course_code, name = :name, description = :description, credits = :credits, days = :days, time_slot = :time_slot, location = :location, professor = :professor, learning_outcomes = :learning_outcomes, materials = :materials, textbooks = :textbooks, assignments = :assignments, grade_breakdown = :grade_breakdown, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class record.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM class_schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}
