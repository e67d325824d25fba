package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/unisphere/unisphere-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the admin dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// Summary gathers portal-wide counters as of now.
func (r *DashboardRepository) Summary(ctx context.Context, now time.Time) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{
		LostFoundByState: map[string]int{},
		OrdersByStatus:   map[string]int{},
		GeneratedAt:      now,
	}

	counts := []struct {
		label string
		query string
		args  []interface{}
		dest  *int
	}{
		{"users", `SELECT COUNT(*) FROM users WHERE active = TRUE`, nil, &summary.Users},
		{"classes", `SELECT COUNT(*) FROM class_schedules`, nil, &summary.Classes},
		{"faculty", `SELECT COUNT(*) FROM faculty`, nil, &summary.Faculty},
		{"events", `SELECT COUNT(*) FROM events WHERE start_date >= $1`, []interface{}{now}, &summary.UpcomingEvents},
		{"clubs", `SELECT COUNT(*) FROM clubs`, nil, &summary.Clubs},
		{"menu", `SELECT COUNT(*) FROM menu_items`, nil, &summary.MenuItems},
		{"bus", `SELECT COUNT(*) FROM bus_schedules WHERE active = TRUE`, nil, &summary.BusRoutes},
	}
	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dest, c.query, c.args...); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.label, err)
		}
	}

	var lostFound []statusCount
	if err := r.db.SelectContext(ctx, &lostFound, `SELECT status, COUNT(*) AS count FROM lost_found_items GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count lost found by status: %w", err)
	}
	for _, row := range lostFound {
		summary.LostFoundByState[row.Status] = row.Count
	}

	var orders []statusCount
	if err := r.db.SelectContext(ctx, &orders, `SELECT status, COUNT(*) AS count FROM orders GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	for _, row := range orders {
		summary.OrdersByStatus[row.Status] = row.Count
	}

	if err := r.db.GetContext(ctx, &summary.Revenue, `SELECT COALESCE(SUM(total), 0) FROM orders WHERE status = 'completed'`); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	return summary, nil
}
