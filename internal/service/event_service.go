package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/repository"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	ListAttendees(ctx context.Context, eventID string) ([]models.EventAttendee, error)
	UpsertAttendee(ctx context.Context, attendee *models.EventAttendee) error
	RemoveAttendee(ctx context.Context, eventID, userID string) error
}

// EventRequest is the create/update payload for an event.
type EventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required"`
	Location    string    `json:"location" validate:"required,max=200"`
	Organizer   string    `json:"organizer" validate:"max=200"`
	Capacity    int       `json:"capacity" validate:"min=0"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"imageUrl" validate:"omitempty,max=500"`
}

// RSVPRequest records the caller's response to an event.
type RSVPRequest struct {
	Status models.RSVPStatus `json:"status" validate:"required,oneof=attending maybe declined"`
}

// EventService manages events and RSVPs.
type EventService struct {
	repo      eventRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService constructs the service.
func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// List returns events, by default in chronological order.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	if filter.Upcoming && filter.Now.IsZero() {
		filter.Now = s.now().UTC()
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list events")
	}
	return events, models.NewPagination(filter.ListOptions, total), nil
}

// Get returns an event with its attendee list.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "event not found", "failed to load event")
	}
	attendees, err := s.repo.ListAttendees(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load attendees")
	}
	event.Attendees = attendees
	return event, nil
}

// Create adds an event.
func (s *EventService) Create(ctx context.Context, req EventRequest) (*models.Event, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	event := &models.Event{}
	applyEventRequest(event, req)
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Internal(err, "failed to create event")
	}
	return event, nil
}

// Update modifies an event. Capacity may not drop below the current attending count.
func (s *EventService) Update(ctx context.Context, id string, req EventRequest) (*models.Event, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "event not found", "failed to load event")
	}
	if req.Capacity > 0 && req.Capacity < event.AttendingCount {
		return nil, appErrors.Validation(nil, "invalid event payload", map[string]string{"capacity": "capacity is below the number of attendees"})
	}
	applyEventRequest(event, req)
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Internal(err, "failed to update event")
	}
	return event, nil
}

// Delete removes an event and its RSVPs.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "event not found", "failed to load event")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete event")
	}
	return nil
}

// RSVP upserts the caller's attendance and returns the refreshed event.
func (s *EventService) RSVP(ctx context.Context, eventID string, claims *models.JWTClaims, req RSVPRequest) (*models.Event, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid rsvp payload")
	}
	attendee := &models.EventAttendee{
		EventID:    eventID,
		UserID:     claims.UserID,
		Name:       claims.Name,
		RSVPStatus: req.Status,
	}
	if err := s.repo.UpsertAttendee(ctx, attendee); err != nil {
		if errors.Is(err, repository.ErrEventFull) {
			return nil, appErrors.Clone(appErrors.ErrCapacityReached, "event is at capacity")
		}
		return nil, lookupError(err, "event not found", "failed to record rsvp")
	}
	s.logger.Debug("rsvp recorded", zap.String("event_id", eventID), zap.String("user_id", claims.UserID), zap.String("status", string(req.Status)))
	return s.Get(ctx, eventID)
}

// CancelRSVP removes the caller's attendance.
func (s *EventService) CancelRSVP(ctx context.Context, eventID, userID string) error {
	if err := s.repo.RemoveAttendee(ctx, eventID, userID); err != nil {
		return lookupError(err, "rsvp not found", "failed to remove rsvp")
	}
	return nil
}

func (s *EventService) validate(req EventRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "invalid event payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return appErrors.Validation(nil, "invalid event payload", map[string]string{"endDate": "endDate must not be before startDate"})
	}
	return nil
}

func applyEventRequest(event *models.Event, req EventRequest) {
	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.StartDate = req.StartDate.UTC()
	event.EndDate = req.EndDate.UTC()
	event.Location = strings.TrimSpace(req.Location)
	event.Organizer = strings.TrimSpace(req.Organizer)
	event.Capacity = req.Capacity
	event.Tags = stringList(req.Tags)
	event.ImageURL = req.ImageURL
}
