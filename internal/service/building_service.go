package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/geo"
)

const defaultNearbyRadiusMeters = 1000

type buildingRepository interface {
	List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, int, error)
	ListAll(ctx context.Context) ([]models.Building, error)
	FindByID(ctx context.Context, id string) (*models.Building, error)
	Create(ctx context.Context, building *models.Building) error
	Update(ctx context.Context, building *models.Building) error
	Delete(ctx context.Context, id string) error
}

// BuildingRequest is the create/update payload for a campus building.
type BuildingRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Code        string  `json:"code" validate:"max=20"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude" validate:"latitude"`
	Longitude   float64 `json:"longitude" validate:"longitude"`
	Category    string  `json:"category" validate:"max=60"`
	Floors      int     `json:"floors" validate:"min=0,max=200"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,max=500"`
}

// CampusService backs the campus navigation map.
type CampusService struct {
	repo            buildingRepository
	validator       *validator.Validate
	logger          *zap.Logger
	detectionRadius float64
}

// NewCampusService constructs the service. detectionRadius is the distance in
// meters under which a building counts as the user's current location.
func NewCampusService(repo buildingRepository, validate *validator.Validate, logger *zap.Logger, detectionRadius float64) *CampusService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if detectionRadius <= 0 {
		detectionRadius = 100
	}
	return &CampusService{repo: repo, validator: validate, logger: logger, detectionRadius: detectionRadius}
}

// List returns buildings.
func (s *CampusService) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, *models.Pagination, error) {
	buildings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list buildings")
	}
	return buildings, models.NewPagination(filter.ListOptions, total), nil
}

// Get returns one building.
func (s *CampusService) Get(ctx context.Context, id string) (*models.Building, error) {
	building, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "building not found", "failed to load building")
	}
	return building, nil
}

// Create adds a building.
func (s *CampusService) Create(ctx context.Context, req BuildingRequest) (*models.Building, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid building payload")
	}
	building := &models.Building{}
	applyBuildingRequest(building, req)
	if err := s.repo.Create(ctx, building); err != nil {
		return nil, appErrors.Internal(err, "failed to create building")
	}
	return building, nil
}

// Update modifies a building.
func (s *CampusService) Update(ctx context.Context, id string, req BuildingRequest) (*models.Building, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid building payload")
	}
	building, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "building not found", "failed to load building")
	}
	applyBuildingRequest(building, req)
	if err := s.repo.Update(ctx, building); err != nil {
		return nil, appErrors.Internal(err, "failed to update building")
	}
	return building, nil
}

// Delete removes a building.
func (s *CampusService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "building not found", "failed to load building")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete building")
	}
	return nil
}

// Nearby returns buildings within radius meters of origin, closest first.
// Buildings inside the detection radius are flagged as detected.
func (s *CampusService) Nearby(ctx context.Context, origin geo.Point, radius float64) ([]models.NearbyBuilding, error) {
	if !origin.Valid() {
		return nil, appErrors.Validation(nil, "invalid coordinates", map[string]string{"lat": "lat must be within [-90, 90] and lng within [-180, 180]"})
	}
	if radius <= 0 {
		radius = defaultNearbyRadiusMeters
	}

	buildings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load buildings")
	}

	nearby := make([]models.NearbyBuilding, 0, len(buildings))
	for _, b := range buildings {
		d := geo.Distance(origin, geo.Point{Lat: b.Latitude, Lng: b.Longitude})
		if d > radius {
			continue
		}
		nearby = append(nearby, models.NearbyBuilding{
			Building:       b,
			DistanceMeters: d,
			Detected:       d <= s.detectionRadius,
		})
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})
	return nearby, nil
}

// Distance returns the great-circle distance in meters between two points.
func (s *CampusService) Distance(from, to geo.Point) (float64, error) {
	if !from.Valid() || !to.Valid() {
		return 0, appErrors.Validation(nil, "invalid coordinates", map[string]string{"coordinates": "latitude must be within [-90, 90] and longitude within [-180, 180]"})
	}
	return geo.Distance(from, to), nil
}

func applyBuildingRequest(building *models.Building, req BuildingRequest) {
	building.Name = strings.TrimSpace(req.Name)
	building.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	building.Description = req.Description
	building.Latitude = req.Latitude
	building.Longitude = req.Longitude
	building.Category = req.Category
	building.Floors = req.Floors
	building.ImageURL = req.ImageURL
}
