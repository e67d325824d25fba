package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
)

type staticBuildings struct {
	items []models.Building
}

func (s staticBuildings) List(context.Context, models.BuildingFilter) ([]models.Building, int, error) {
	return s.items, len(s.items), nil
}

func (s staticBuildings) ListAll(context.Context) ([]models.Building, error) {
	return s.items, nil
}

func (s staticBuildings) FindByID(context.Context, string) (*models.Building, error) {
	return &s.items[0], nil
}

func (staticBuildings) Create(context.Context, *models.Building) error { return nil }
func (staticBuildings) Update(context.Context, *models.Building) error { return nil }
func (staticBuildings) Delete(context.Context, string) error           { return nil }

func newCampusHandler() *CampusHandler {
	repo := staticBuildings{items: []models.Building{
		{ID: "lib", Name: "Library", Latitude: 40.0005, Longitude: -75.0},
		{ID: "gym", Name: "Gym", Latitude: 40.007, Longitude: -75.0},
		{ID: "far", Name: "Observatory", Latitude: 41.0, Longitude: -75.0},
	}}
	return NewCampusHandler(service.NewCampusService(repo, nil, nil, 100))
}

func TestCampusHandlerNearby(t *testing.T) {
	handler := newCampusHandler()
	c, rec := newTestContext(http.MethodGet, "/campus/nearby?lat=40&lng=-75", nil)

	handler.Nearby(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var nearby []models.NearbyBuilding
	decodeData(t, rec, &nearby)
	require.Len(t, nearby, 2)
	assert.Equal(t, "lib", nearby[0].ID)
	assert.True(t, nearby[0].Detected)
	assert.False(t, nearby[1].Detected)
}

func TestCampusHandlerNearbyRejectsBadCoordinates(t *testing.T) {
	handler := newCampusHandler()

	c, rec := newTestContext(http.MethodGet, "/campus/nearby?lat=abc&lng=-75", nil)
	handler.Nearby(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "lat")

	c, rec = newTestContext(http.MethodGet, "/campus/nearby?lat=95&lng=-75", nil)
	handler.Nearby(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampusHandlerDistance(t *testing.T) {
	handler := newCampusHandler()
	c, rec := newTestContext(http.MethodGet, "/campus/distance?fromLat=0&fromLng=0&toLat=0&toLng=1", nil)

	handler.Distance(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		DistanceMeters float64 `json:"distanceMeters"`
	}
	decodeData(t, rec, &body)
	assert.InDelta(t, 111195, body.DistanceMeters, 10)
}
