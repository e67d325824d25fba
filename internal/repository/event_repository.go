package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisphere/unisphere-api/internal/models"
)

// ErrEventFull is returned when an attending RSVP would exceed capacity.
var ErrEventFull = errors.New("event is at capacity")

const eventColumns = `id, title, description, start_date, end_date, location, organizer, capacity, tags, image_url, created_at, updated_at`

const attendingCountColumn = `(SELECT COUNT(*) FROM event_attendees a WHERE a.event_id = events.id AND a.rsvp_status = 'attending') AS attending_count`

var eventSorts = sortSpec{
	columns: map[string]string{
		"startDate": "start_date",
		"title":     "title",
		"createdAt": "created_at",
	},
	defaultKey:   "startDate",
	defaultOrder: "ASC",
}

// EventRepository persists events and their RSVPs.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events matching the filter with attending counts.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	var where whereClause
	if filter.Tag != "" {
		where.contains("tags", filter.Tag)
	}
	if filter.Upcoming {
		now := filter.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		where.raw("start_date >= $%d", now)
	}
	where.search(filter.Search, "title", "location", "organizer")

	base := "FROM events WHERE 1=1" + where.String()
	query := fmt.Sprintf("SELECT %s, %s %s %s %s", eventColumns, attendingCountColumn, base, eventSorts.clause(filter.ListOptions), pageClause(filter.ListOptions))

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// FindByID returns an event with its attending count.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + `, ` + attendingCountColumn + ` FROM events WHERE id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO events (id, title, description, start_date, end_date, location, organizer, capacity, tags, image_url, created_at, updated_at) VALUES (:id, :title, :description, :start_date, :end_date, :location, :organizer, :capacity, :tags, :image_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update modifies an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET title = :title, description = :description, start_date = :start_date, end_date = :end_date, location = :location, organizer = :organizer, capacity = :capacity, tags = :tags, image_url = :image_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event; attendees cascade.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListAttendees returns RSVPs for an event ordered by response time.
func (r *EventRepository) ListAttendees(ctx context.Context, eventID string) ([]models.EventAttendee, error) {
	const query = `SELECT event_id, user_id, name, rsvp_status, responded_at FROM event_attendees WHERE event_id = $1 ORDER BY responded_at ASC`
	var attendees []models.EventAttendee
	if err := r.db.SelectContext(ctx, &attendees, query, eventID); err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return attendees, nil
}

// UpsertAttendee records an RSVP. Attending responses are checked against
// capacity while the event row is locked.
func (r *EventRepository) UpsertAttendee(ctx context.Context, attendee *models.EventAttendee) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rsvp transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity int
	if err = tx.GetContext(ctx, &capacity, `SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, attendee.EventID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock event: %w", err)
	}

	if attendee.RSVPStatus == models.RSVPAttending && capacity > 0 {
		var attending int
		const countQuery = `SELECT COUNT(*) FROM event_attendees WHERE event_id = $1 AND rsvp_status = 'attending' AND user_id <> $2`
		if err = tx.GetContext(ctx, &attending, countQuery, attendee.EventID, attendee.UserID); err != nil {
			return fmt.Errorf("count attending: %w", err)
		}
		if attending >= capacity {
			err = ErrEventFull
			return err
		}
	}

	if attendee.RespondedAt.IsZero() {
		attendee.RespondedAt = time.Now().UTC()
	}
	const upsert = `INSERT INTO event_attendees (event_id, user_id, name, rsvp_status, responded_at) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (event_id, user_id) DO UPDATE SET name = EXCLUDED.name, rsvp_status = EXCLUDED.rsvp_status, responded_at = EXCLUDED.responded_at`
	if _, err = tx.ExecContext(ctx, upsert, attendee.EventID, attendee.UserID, attendee.Name, attendee.RSVPStatus, attendee.RespondedAt); err != nil {
		return fmt.Errorf("upsert attendee: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rsvp: %w", err)
	}
	return nil
}

// RemoveAttendee deletes an RSVP, returning sql.ErrNoRows when none existed.
func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("remove attendee: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check attendee delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
