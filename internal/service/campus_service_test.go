package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/geo"
)

type mockBuildingRepo struct {
	buildings []models.Building
}

func (m *mockBuildingRepo) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, int, error) {
	return m.buildings, len(m.buildings), nil
}

func (m *mockBuildingRepo) ListAll(ctx context.Context) ([]models.Building, error) {
	return m.buildings, nil
}

func (m *mockBuildingRepo) FindByID(ctx context.Context, id string) (*models.Building, error) {
	for _, b := range m.buildings {
		if b.ID == id {
			copy := b
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockBuildingRepo) Create(ctx context.Context, building *models.Building) error {
	building.ID = building.Code
	m.buildings = append(m.buildings, *building)
	return nil
}

func (m *mockBuildingRepo) Update(ctx context.Context, building *models.Building) error {
	for i := range m.buildings {
		if m.buildings[i].ID == building.ID {
			m.buildings[i] = *building
		}
	}
	return nil
}

func (m *mockBuildingRepo) Delete(ctx context.Context, id string) error {
	for i := range m.buildings {
		if m.buildings[i].ID == id {
			m.buildings = append(m.buildings[:i], m.buildings[i+1:]...)
			return nil
		}
	}
	return nil
}

func TestCampusServiceNearbySortsAndFlagsDetected(t *testing.T) {
	origin := geo.Point{Lat: 40.0, Lng: -75.0}
	repo := &mockBuildingRepo{buildings: []models.Building{
		{ID: "far", Name: "Stadium", Latitude: 40.0072, Longitude: -75.0},     // ~800 m north
		{ID: "near", Name: "Library", Latitude: 40.0005, Longitude: -75.0},    // ~56 m north
		{ID: "away", Name: "Observatory", Latitude: 40.1, Longitude: -75.0},   // ~11 km north
		{ID: "mid", Name: "Science Hall", Latitude: 40.0018, Longitude: -75.0}, // ~200 m north
	}}
	svc := NewCampusService(repo, nil, nil, 100)

	got, err := svc.Nearby(context.Background(), origin, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "near", got[0].ID)
	assert.True(t, got[0].Detected)
	assert.Equal(t, "mid", got[1].ID)
	assert.False(t, got[1].Detected)
	assert.Equal(t, "far", got[2].ID)
	assert.InDelta(t, 55.6, got[0].DistanceMeters, 1)

	tight, err := svc.Nearby(context.Background(), origin, 100)
	require.NoError(t, err)
	assert.Len(t, tight, 1)
}

func TestCampusServiceRejectsInvalidCoordinates(t *testing.T) {
	svc := NewCampusService(&mockBuildingRepo{}, nil, nil, 0)

	_, err := svc.Nearby(context.Background(), geo.Point{Lat: 91}, 10)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Distance(geo.Point{}, geo.Point{Lng: 181})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	d, err := svc.Distance(geo.Point{Lat: 1, Lng: 1}, geo.Point{Lat: 1, Lng: 1})
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestCampusServiceCRUD(t *testing.T) {
	repo := &mockBuildingRepo{}
	svc := NewCampusService(repo, nil, nil, 100)
	ctx := context.Background()

	b, err := svc.Create(ctx, BuildingRequest{Name: "Library", Code: "lib", Latitude: 40, Longitude: -75})
	require.NoError(t, err)
	assert.Equal(t, "LIB", b.Code)

	_, err = svc.Create(ctx, BuildingRequest{Name: "Nowhere", Latitude: 95})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	updated, err := svc.Update(ctx, b.ID, BuildingRequest{Name: "Main Library", Code: "lib", Latitude: 40, Longitude: -75, Floors: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Floors)

	require.NoError(t, svc.Delete(ctx, b.ID))
	_, err = svc.Get(ctx, b.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
