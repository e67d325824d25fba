package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

type facultyRepository interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	Create(ctx context.Context, member *models.Faculty) error
	Update(ctx context.Context, member *models.Faculty) error
	Delete(ctx context.Context, id string) error
}

// FacultyRequest is the create/update payload for a directory entry.
type FacultyRequest struct {
	Name        string             `json:"name" validate:"required,max=120"`
	Department  string             `json:"department" validate:"required,max=120"`
	Position    string             `json:"position" validate:"max=120"`
	Email       string             `json:"email" validate:"omitempty,email"`
	Phone       string             `json:"phone" validate:"max=40"`
	OfficeHours string             `json:"officeHours" validate:"max=120"`
	Office      string             `json:"office" validate:"max=120"`
	Education   string             `json:"education"`
	Expertise   []string           `json:"expertise"`
	Social      models.SocialLinks `json:"social"`
	ImageURL    string             `json:"imageUrl" validate:"omitempty,max=500"`
	Available   *bool              `json:"available"`
}

// FacultyService manages the faculty directory.
type FacultyService struct {
	repo      facultyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService constructs the service.
func NewFacultyService(repo facultyRepository, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, validator: validate, logger: logger}
}

// List returns faculty members with pagination metadata.
func (s *FacultyService) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, *models.Pagination, error) {
	members, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list faculty")
	}
	return members, models.NewPagination(filter.ListOptions, total), nil
}

// Get returns one faculty member.
func (s *FacultyService) Get(ctx context.Context, id string) (*models.Faculty, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "faculty member not found", "failed to load faculty member")
	}
	return member, nil
}

// Create adds a faculty member. New entries are available unless stated otherwise.
func (s *FacultyService) Create(ctx context.Context, req FacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid faculty payload")
	}
	member := &models.Faculty{Available: true}
	applyFacultyRequest(member, req)
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Internal(err, "failed to create faculty member")
	}
	return member, nil
}

// Update modifies a faculty member.
func (s *FacultyService) Update(ctx context.Context, id string, req FacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid faculty payload")
	}
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "faculty member not found", "failed to load faculty member")
	}
	applyFacultyRequest(member, req)
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, appErrors.Internal(err, "failed to update faculty member")
	}
	return member, nil
}

// Delete removes a faculty member.
func (s *FacultyService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "faculty member not found", "failed to load faculty member")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete faculty member")
	}
	return nil
}

func applyFacultyRequest(member *models.Faculty, req FacultyRequest) {
	member.Name = strings.TrimSpace(req.Name)
	member.Department = strings.TrimSpace(req.Department)
	member.Position = req.Position
	member.Email = strings.ToLower(strings.TrimSpace(req.Email))
	member.Phone = req.Phone
	member.OfficeHours = req.OfficeHours
	member.Office = req.Office
	member.Education = req.Education
	member.Expertise = stringList(req.Expertise)
	member.Social = req.Social
	member.ImageURL = req.ImageURL
	if req.Available != nil {
		member.Available = *req.Available
	}
}
