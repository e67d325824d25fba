package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

type busRepository interface {
	List(ctx context.Context, filter models.BusFilter) ([]models.BusSchedule, int, error)
	FindByID(ctx context.Context, id string) (*models.BusSchedule, error)
	Create(ctx context.Context, schedule *models.BusSchedule) error
	Update(ctx context.Context, schedule *models.BusSchedule) error
	Delete(ctx context.Context, id string) error
}

// BusScheduleRequest is the create/update payload for a shuttle departure.
type BusScheduleRequest struct {
	RouteName     string   `json:"routeName" validate:"required,max=120"`
	RouteNumber   string   `json:"routeNumber" validate:"required,max=20"`
	Origin        string   `json:"origin" validate:"required,max=120"`
	Destination   string   `json:"destination" validate:"required,max=120"`
	DepartureTime string   `json:"departureTime" validate:"required,datetime=15:04"`
	ArrivalTime   string   `json:"arrivalTime" validate:"required,datetime=15:04"`
	Stops         []string `json:"stops"`
	Days          []string `json:"days" validate:"dive,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	DriverName    string   `json:"driverName" validate:"max=120"`
	DriverContact string   `json:"driverContact" validate:"max=40"`
	Active        *bool    `json:"active"`
}

// BusService manages the campus shuttle timetable.
type BusService struct {
	repo      busRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBusService constructs the service.
func NewBusService(repo busRepository, validate *validator.Validate, logger *zap.Logger) *BusService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusService{repo: repo, validator: validate, logger: logger}
}

// List returns schedules ordered by departure time.
func (s *BusService) List(ctx context.Context, filter models.BusFilter) ([]models.BusSchedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list bus schedules")
	}
	return schedules, models.NewPagination(filter.ListOptions, total), nil
}

// Get returns one schedule.
func (s *BusService) Get(ctx context.Context, id string) (*models.BusSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "bus schedule not found", "failed to load bus schedule")
	}
	return schedule, nil
}

// Create adds a schedule.
func (s *BusService) Create(ctx context.Context, req BusScheduleRequest) (*models.BusSchedule, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	schedule := &models.BusSchedule{Active: true}
	applyBusRequest(schedule, req)
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Internal(err, "failed to create bus schedule")
	}
	return schedule, nil
}

// Update modifies a schedule.
func (s *BusService) Update(ctx context.Context, id string, req BusScheduleRequest) (*models.BusSchedule, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "bus schedule not found", "failed to load bus schedule")
	}
	applyBusRequest(schedule, req)
	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, appErrors.Internal(err, "failed to update bus schedule")
	}
	return schedule, nil
}

// Delete removes a schedule.
func (s *BusService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "bus schedule not found", "failed to load bus schedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete bus schedule")
	}
	return nil
}

func (s *BusService) validate(req BusScheduleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "invalid bus schedule payload")
	}
	// HH:MM strings order lexically.
	if req.ArrivalTime <= req.DepartureTime {
		return appErrors.Validation(nil, "invalid bus schedule payload", map[string]string{"arrivalTime": "arrivalTime must be after departureTime"})
	}
	return nil
}

func applyBusRequest(schedule *models.BusSchedule, req BusScheduleRequest) {
	schedule.RouteName = strings.TrimSpace(req.RouteName)
	schedule.RouteNumber = strings.TrimSpace(req.RouteNumber)
	schedule.Origin = strings.TrimSpace(req.Origin)
	schedule.Destination = strings.TrimSpace(req.Destination)
	schedule.DepartureTime = req.DepartureTime
	schedule.ArrivalTime = req.ArrivalTime
	schedule.Stops = stringList(req.Stops)
	schedule.Days = stringList(req.Days)
	schedule.DriverName = req.DriverName
	schedule.DriverContact = req.DriverContact
	if req.Active != nil {
		schedule.Active = *req.Active
	}
}
