package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

type menuRepository interface {
	List(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, int, error)
	FindByID(ctx context.Context, id string) (*models.MenuItem, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id string) error
}

// MenuItemRequest is the create/update payload for a menu item.
type MenuItemRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=1000"`
	Category    string  `json:"category" validate:"required,max=60"`
	Price       float64 `json:"price" validate:"gt=0"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,max=500"`
	Available   *bool   `json:"available"`
}

// MenuService manages the cafeteria menu.
type MenuService struct {
	repo      menuRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMenuService constructs the service.
func NewMenuService(repo menuRepository, validate *validator.Validate, logger *zap.Logger) *MenuService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuService{repo: repo, validator: validate, logger: logger}
}

// List returns menu items.
func (s *MenuService) List(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list menu items")
	}
	return items, models.NewPagination(filter.ListOptions, total), nil
}

// Get returns one menu item.
func (s *MenuService) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "menu item not found", "failed to load menu item")
	}
	return item, nil
}

// Create adds a menu item.
func (s *MenuService) Create(ctx context.Context, req MenuItemRequest) (*models.MenuItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid menu item payload")
	}
	item := &models.MenuItem{Available: true}
	applyMenuRequest(item, req)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Internal(err, "failed to create menu item")
	}
	return item, nil
}

// Update modifies a menu item.
func (s *MenuService) Update(ctx context.Context, id string, req MenuItemRequest) (*models.MenuItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid menu item payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "menu item not found", "failed to load menu item")
	}
	applyMenuRequest(item, req)
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Internal(err, "failed to update menu item")
	}
	return item, nil
}

// Delete removes a menu item.
func (s *MenuService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "menu item not found", "failed to load menu item")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete menu item")
	}
	return nil
}

func applyMenuRequest(item *models.MenuItem, req MenuItemRequest) {
	item.Name = strings.TrimSpace(req.Name)
	item.Description = req.Description
	item.Category = strings.TrimSpace(req.Category)
	item.Price = roundCents(req.Price)
	item.ImageURL = req.ImageURL
	if req.Available != nil {
		item.Available = *req.Available
	}
}
