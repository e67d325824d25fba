package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/storage"
)

const dashboardCachePattern = "dashboard:*"

type lostFoundRepository interface {
	List(ctx context.Context, filter models.LostFoundFilter) ([]models.LostFoundItem, int, error)
	FindByID(ctx context.Context, id string) (*models.LostFoundItem, error)
	Create(ctx context.Context, item *models.LostFoundItem) error
	Update(ctx context.Context, item *models.LostFoundItem) error
	UpdateStatus(ctx context.Context, id string, status models.ItemStatus) error
	UpdateImage(ctx context.Context, id, imageURL string) error
	Delete(ctx context.Context, id string) error
}

type fileStore interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
}

// LostFoundRequest is the create/update payload for a report.
type LostFoundRequest struct {
	ItemName      string            `json:"itemName" validate:"required,max=200"`
	ItemType      models.ItemType   `json:"itemType" validate:"required,oneof=lost found"`
	Category      string            `json:"category" validate:"max=60"`
	Location      string            `json:"location" validate:"required,max=200"`
	Date          time.Time         `json:"date" validate:"required"`
	ReporterName  string            `json:"reporterName" validate:"required,max=120"`
	ContactNumber string            `json:"contactNumber" validate:"max=40"`
	Description   string            `json:"description" validate:"max=5000"`
	Status        models.ItemStatus `json:"status" validate:"omitempty,oneof=pending in-progress resolved"`
	ImageURL      string            `json:"imageUrl" validate:"omitempty,max=500"`
}

// LostFoundStatusRequest changes the handling state of a report.
type LostFoundStatusRequest struct {
	Status models.ItemStatus `json:"status" validate:"required,oneof=pending in-progress resolved"`
}

// UploadPolicy bounds image uploads.
type UploadPolicy struct {
	MaxBytes     int64
	AllowedMIMEs []string
	PublicPrefix string
}

// LostFoundService manages lost & found reports.
type LostFoundService struct {
	repo      lostFoundRepository
	files     fileStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	policy    UploadPolicy
}

// NewLostFoundService constructs the service. files may be nil, which disables uploads.
func NewLostFoundService(repo lostFoundRepository, files fileStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger, policy UploadPolicy) *LostFoundService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.PublicPrefix == "" {
		policy.PublicPrefix = "/uploads"
	}
	return &LostFoundService{repo: repo, files: files, cache: cache, validator: validate, logger: logger, policy: policy}
}

// List returns reports, newest item date first by default.
func (s *LostFoundService) List(ctx context.Context, filter models.LostFoundFilter) ([]models.LostFoundItem, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list lost & found items")
	}
	return items, models.NewPagination(filter.ListOptions, total), nil
}

// Get returns a single report.
func (s *LostFoundService) Get(ctx context.Context, id string) (*models.LostFoundItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "item not found", "failed to load item")
	}
	return item, nil
}

// Create files a report. reportedBy is the authenticated reporter, empty for admin entry.
func (s *LostFoundService) Create(ctx context.Context, req LostFoundRequest, reportedBy string) (*models.LostFoundItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid lost & found payload")
	}
	item := &models.LostFoundItem{Status: models.ItemStatusPending}
	applyLostFoundRequest(item, req)
	if reportedBy != "" {
		item.ReportedBy = &reportedBy
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Internal(err, "failed to create item")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return item, nil
}

// Update modifies a report.
func (s *LostFoundService) Update(ctx context.Context, id string, req LostFoundRequest) (*models.LostFoundItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid lost & found payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "item not found", "failed to load item")
	}
	applyLostFoundRequest(item, req)
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Internal(err, "failed to update item")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return item, nil
}

// UpdateStatus moves a report to a new handling state.
func (s *LostFoundService) UpdateStatus(ctx context.Context, id string, req LostFoundStatusRequest) (*models.LostFoundItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid status payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "item not found", "failed to load item")
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Internal(err, "failed to update item status")
	}
	item.Status = req.Status
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return item, nil
}

// Delete removes a report.
func (s *LostFoundService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "item not found", "failed to load item")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete item")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}

// UploadImage validates data as an image, stores it and points the report at it.
// Only the reporter or an admin may attach an image.
func (s *LostFoundService) UploadImage(ctx context.Context, id string, claims *models.JWTClaims, data []byte) (*models.LostFoundItem, error) {
	if s.files == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "uploads are not configured")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "item not found", "failed to load item")
	}
	if !claims.IsAdmin() && (item.ReportedBy == nil || claims == nil || *item.ReportedBy != claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the reporter can attach an image")
	}

	_, ext, err := storage.DetectImage(data, s.policy.MaxBytes, s.policy.AllowedMIMEs)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("image exceeds %d bytes", s.policy.MaxBytes))
		}
		return nil, appErrors.Validation(err, "invalid image", map[string]string{"image": err.Error()})
	}

	name, err := s.files.Save(fmt.Sprintf("lostfound/%s%s", uuid.NewString(), ext), data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store image")
	}
	url := strings.TrimRight(s.policy.PublicPrefix, "/") + "/" + name
	if err := s.repo.UpdateImage(ctx, id, url); err != nil {
		if delErr := s.files.Delete(name); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("file", name), zap.Error(delErr))
		}
		return nil, appErrors.Internal(err, "failed to attach image")
	}
	item.ImageURL = url
	return item, nil
}

func applyLostFoundRequest(item *models.LostFoundItem, req LostFoundRequest) {
	item.ItemName = strings.TrimSpace(req.ItemName)
	item.ItemType = req.ItemType
	item.Category = strings.TrimSpace(req.Category)
	item.Location = strings.TrimSpace(req.Location)
	item.Date = req.Date.UTC()
	item.ReporterName = strings.TrimSpace(req.ReporterName)
	item.ContactNumber = req.ContactNumber
	item.Description = req.Description
	if req.Status != "" {
		item.Status = req.Status
	}
	if req.ImageURL != "" {
		item.ImageURL = req.ImageURL
	}
}
