package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisphere/unisphere-api/internal/models"
)

const busColumns = `id, route_name, route_number, origin, destination, departure_time, arrival_time, stops, days, driver_name, driver_contact, active, created_at, updated_at`

var busSorts = sortSpec{
	columns: map[string]string{
		"departureTime": "departure_time",
		"arrivalTime":   "arrival_time",
		"routeName":     "route_name",
		"routeNumber":   "route_number",
	},
	defaultKey:   "departureTime",
	defaultOrder: "ASC",
}

// BusRepository persists shuttle schedules.
type BusRepository struct {
	db *sqlx.DB
}

// NewBusRepository constructs the repository.
func NewBusRepository(db *sqlx.DB) *BusRepository {
	return &BusRepository{db: db}
}

// List returns schedules matching the filter.
func (r *BusRepository) List(ctx context.Context, filter models.BusFilter) ([]models.BusSchedule, int, error) {
	var where whereClause
	if filter.Route != "" {
		where.raw("(LOWER(route_number) = LOWER($%[1]d) OR LOWER(route_name) = LOWER($%[1]d))", filter.Route)
	}
	if filter.Day != "" {
		where.contains("days", filter.Day)
	}
	if filter.Active != nil {
		where.equals("active", *filter.Active)
	}
	where.search(filter.Search, "route_name", "origin", "destination")

	base := "FROM bus_schedules WHERE 1=1" + where.String()
	query := fmt.Sprintf("SELECT %s %s %s %s", busColumns, base, busSorts.clause(filter.ListOptions), pageClause(filter.ListOptions))

	var schedules []models.BusSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list bus schedules: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count bus schedules: %w", err)
	}
	return schedules, total, nil
}

// FindByID returns a schedule.
func (r *BusRepository) FindByID(ctx context.Context, id string) (*models.BusSchedule, error) {
	query := `SELECT ` + busColumns + ` FROM bus_schedules WHERE id = $1`
	var schedule models.BusSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Create inserts a schedule.
func (r *BusRepository) Create(ctx context.Context, schedule *models.BusSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO bus_schedules (id, route_name, route_number, origin, destination, departure_time, arrival_time, stops, days, driver_name, driver_contact, active, created_at, updated_at) VALUES (:id, :route_name, :route_number, :origin, :destination, :departure_time, :arrival_time, :stops, :days, :driver_name, :driver_contact, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create bus schedule: %w", err)
	}
	return nil
}

// Update modifies a schedule.
func (r *BusRepository) Update(ctx context.Context, schedule *models.BusSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bus_schedules SET route_name = :route_name, route_number = :route_number, origin = :origin, destination = :destination, departure_time = :departure_time, arrival_time = :arrival_time, stops = :stops, days = :days, driver_name = :driver_name, driver_contact = :driver_contact, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update bus schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule.
func (r *BusRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bus_schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete bus schedule: %w", err)
	}
	return nil
}
