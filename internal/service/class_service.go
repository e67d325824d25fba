package service

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassSchedule, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassSchedule, error)
	ExistsByCourseCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, class *models.ClassSchedule) error
	Update(ctx context.Context, class *models.ClassSchedule) error
	Delete(ctx context.Context, id string) error
}

// ClassRequest captures the create and update payload for a class schedule.
type ClassRequest struct {
	Department       string                  `json:"department" validate:"required,max=120"`
	CourseCode       string                  `json:"courseCode" validate:"required,max=20"`
	Name             string                  `json:"name" validate:"required,max=200"`
	Description      string                  `json:"description"`
	Credits          int                     `json:"credits" validate:"min=0,max=30"`
	Days             []string                `json:"days" validate:"dive,required"`
	Time             string                  `json:"time" validate:"max=60"`
	Location         string                  `json:"location" validate:"max=120"`
	Professor        models.ProfessorContact `json:"professor"`
	LearningOutcomes []string                `json:"learningOutcomes"`
	Materials        []string                `json:"materials"`
	Textbooks        []string                `json:"textbooks"`
	Assignments      []models.Assignment     `json:"assignments" validate:"dive"`
	GradeBreakdown   map[string]float64      `json:"gradeBreakdown"`
}

// ClassService coordinates class schedule operations.
type ClassService struct {
	repo      classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, validator: validate, logger: logger}
}

// List returns classes with pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassSchedule, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list classes")
	}
	return classes, models.NewPagination(filter.ListOptions, total), nil
}

// Get returns a class by id.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassSchedule, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "class not found", "failed to load class")
	}
	return class, nil
}

// Create adds a new class.
func (s *ClassService) Create(ctx context.Context, req ClassRequest) (*models.ClassSchedule, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByCourseCode(ctx, req.CourseCode, "")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	}

	class := &models.ClassSchedule{}
	applyClassRequest(class, req)
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Internal(err, "failed to create class")
	}
	return class, nil
}

// Update modifies a class record.
func (s *ClassService) Update(ctx context.Context, id string, req ClassRequest) (*models.ClassSchedule, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "class not found", "failed to load class")
	}

	exists, err := s.repo.ExistsByCourseCode(ctx, req.CourseCode, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	}

	applyClassRequest(class, req)
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Internal(err, "failed to update class")
	}
	return class, nil
}

// Delete removes a class.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "class not found", "failed to load class")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete class")
	}
	return nil
}

func (s *ClassService) validate(req ClassRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "invalid class payload")
	}
	if len(req.GradeBreakdown) == 0 {
		return nil
	}
	var total float64
	for label, weight := range req.GradeBreakdown {
		if weight < 0 || weight > 100 {
			return appErrors.Validation(nil, "invalid class payload", map[string]string{"gradeBreakdown": label + " must be between 0 and 100"})
		}
		total += weight
	}
	if math.Abs(total-100) > 0.01 {
		return appErrors.Validation(nil, "invalid class payload", map[string]string{"gradeBreakdown": "grade breakdown must sum to 100"})
	}
	return nil
}

func applyClassRequest(class *models.ClassSchedule, req ClassRequest) {
	class.Department = strings.TrimSpace(req.Department)
	class.CourseCode = strings.ToUpper(strings.TrimSpace(req.CourseCode))
	class.Name = strings.TrimSpace(req.Name)
	class.Description = req.Description
	class.Credits = req.Credits
	class.Days = stringList(req.Days)
	class.Time = req.Time
	class.Location = req.Location
	class.Professor = req.Professor
	class.LearningOutcomes = stringList(req.LearningOutcomes)
	class.Materials = stringList(req.Materials)
	class.Textbooks = stringList(req.Textbooks)
	class.Assignments = make(models.Assignments, len(req.Assignments))
	for i, a := range req.Assignments {
		if a.Status == "" {
			a.Status = models.AssignmentPending
		}
		class.Assignments[i] = a
	}
	class.GradeBreakdown = models.GradeBreakdown(req.GradeBreakdown)
}
