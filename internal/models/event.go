package models

import (
	"time"

	"github.com/lib/pq"
)

// RSVPStatus is an attendee's response to an event.
type RSVPStatus string

const (
	RSVPAttending RSVPStatus = "attending"
	RSVPMaybe     RSVPStatus = "maybe"
	RSVPDeclined  RSVPStatus = "declined"
)

// Event is a campus event with RSVP tracking.
type Event struct {
	ID             string          `db:"id" json:"id"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	StartDate      time.Time       `db:"start_date" json:"startDate"`
	EndDate        time.Time       `db:"end_date" json:"endDate"`
	Location       string          `db:"location" json:"location"`
	Organizer      string          `db:"organizer" json:"organizer"`
	Capacity       int             `db:"capacity" json:"capacity"`
	Tags           pq.StringArray  `db:"tags" json:"tags"`
	ImageURL       string          `db:"image_url" json:"imageUrl"`
	AttendingCount int             `db:"attending_count" json:"attendingCount"`
	Attendees      []EventAttendee `db:"-" json:"attendees,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

// EventAttendee stores one user's RSVP.
type EventAttendee struct {
	EventID     string     `db:"event_id" json:"eventId"`
	UserID      string     `db:"user_id" json:"userId"`
	Name        string     `db:"name" json:"name"`
	RSVPStatus  RSVPStatus `db:"rsvp_status" json:"rsvpStatus"`
	RespondedAt time.Time  `db:"responded_at" json:"respondedAt"`
}

// EventFilter defines filter criteria for listing events.
type EventFilter struct {
	ListOptions
	Tag      string
	Upcoming bool
	Now      time.Time
}
