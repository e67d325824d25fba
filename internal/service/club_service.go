package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

type clubRepository interface {
	List(ctx context.Context, filter models.ClubFilter) ([]models.Club, int, error)
	FindByID(ctx context.Context, id string) (*models.Club, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, club *models.Club) error
	Update(ctx context.Context, club *models.Club) error
	Delete(ctx context.Context, id string) error
	ListMembers(ctx context.Context, clubID string) ([]models.ClubMember, error)
	UpsertMember(ctx context.Context, member *models.ClubMember) error
	RemoveMember(ctx context.Context, clubID, email string) error
}

// ClubRequest is the create/update payload for a club.
type ClubRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category" validate:"required,max=60"`
	Logo        string `json:"logo" validate:"omitempty,max=500"`
}

// ClubMemberRequest adds or updates a member by email.
type ClubMemberRequest struct {
	Email string          `json:"email" validate:"required,email"`
	Role  models.ClubRole `json:"role" validate:"omitempty,oneof=president officer member"`
}

// ClubService manages clubs and their rosters.
type ClubService struct {
	repo      clubRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClubService constructs the service.
func NewClubService(repo clubRepository, validate *validator.Validate, logger *zap.Logger) *ClubService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClubService{repo: repo, validator: validate, logger: logger}
}

// List returns clubs with member counts.
func (s *ClubService) List(ctx context.Context, filter models.ClubFilter) ([]models.Club, *models.Pagination, error) {
	clubs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list clubs")
	}
	return clubs, models.NewPagination(filter.ListOptions, total), nil
}

// Get returns a club with its roster.
func (s *ClubService) Get(ctx context.Context, id string) (*models.Club, error) {
	club, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "club not found", "failed to load club")
	}
	members, err := s.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load club members")
	}
	club.Members = members
	return club, nil
}

// Create adds a club. Names are unique case-insensitively.
func (s *ClubService) Create(ctx context.Context, req ClubRequest) (*models.Club, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid club payload")
	}
	if err := s.ensureUniqueName(ctx, req.Name, ""); err != nil {
		return nil, err
	}
	club := &models.Club{}
	applyClubRequest(club, req)
	if err := s.repo.Create(ctx, club); err != nil {
		return nil, appErrors.Internal(err, "failed to create club")
	}
	return club, nil
}

// Update modifies a club.
func (s *ClubService) Update(ctx context.Context, id string, req ClubRequest) (*models.Club, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid club payload")
	}
	club, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "club not found", "failed to load club")
	}
	if err := s.ensureUniqueName(ctx, req.Name, id); err != nil {
		return nil, err
	}
	applyClubRequest(club, req)
	if err := s.repo.Update(ctx, club); err != nil {
		return nil, appErrors.Internal(err, "failed to update club")
	}
	return club, nil
}

// Delete removes a club and its roster.
func (s *ClubService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "club not found", "failed to load club")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete club")
	}
	return nil
}

// AddMember adds or re-roles a member. Role defaults to member.
func (s *ClubService) AddMember(ctx context.Context, clubID string, req ClubMemberRequest) (*models.Club, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid member payload")
	}
	if _, err := s.repo.FindByID(ctx, clubID); err != nil {
		return nil, lookupError(err, "club not found", "failed to load club")
	}
	role := req.Role
	if role == "" {
		role = models.ClubRoleMember
	}
	member := &models.ClubMember{ClubID: clubID, Email: strings.ToLower(strings.TrimSpace(req.Email)), Role: role}
	if err := s.repo.UpsertMember(ctx, member); err != nil {
		return nil, appErrors.Internal(err, "failed to save club member")
	}
	return s.Get(ctx, clubID)
}

// RemoveMember drops a member by email.
func (s *ClubService) RemoveMember(ctx context.Context, clubID, email string) error {
	if err := s.repo.RemoveMember(ctx, clubID, strings.ToLower(strings.TrimSpace(email))); err != nil {
		return lookupError(err, "club member not found", "failed to remove club member")
	}
	return nil
}

// Join adds the caller as a plain member. Existing roles are preserved.
func (s *ClubService) Join(ctx context.Context, clubID string, claims *models.JWTClaims) (*models.Club, error) {
	if claims == nil || claims.Email == "" {
		return nil, appErrors.ErrUnauthorized
	}
	club, err := s.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(claims.Email)
	for _, m := range club.Members {
		if m.Email == email {
			return club, nil
		}
	}
	return s.AddMember(ctx, clubID, ClubMemberRequest{Email: email, Role: models.ClubRoleMember})
}

func (s *ClubService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, strings.TrimSpace(name), excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check club name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "club name already exists")
	}
	return nil
}

func applyClubRequest(club *models.Club, req ClubRequest) {
	club.Name = strings.TrimSpace(req.Name)
	club.Description = req.Description
	club.Category = strings.TrimSpace(req.Category)
	club.Logo = req.Logo
}
