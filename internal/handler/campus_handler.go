package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/geo"
	"github.com/unisphere/unisphere-api/pkg/response"
)

// CampusHandler serves buildings and navigation helpers.
type CampusHandler struct {
	service *service.CampusService
}

// NewCampusHandler constructs the handler.
func NewCampusHandler(svc *service.CampusService) *CampusHandler {
	return &CampusHandler{service: svc}
}

// List godoc
// @Summary List campus buildings
// @Tags Campus
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Search name or code"
// @Success 200 {object} response.Envelope
// @Router /campus/buildings [get]
func (h *CampusHandler) List(c *gin.Context) {
	filter := models.BuildingFilter{ListOptions: listOptions(c), Category: c.Query("category")}
	buildings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buildings, pagination)
}

// Get godoc
// @Summary Get building
// @Tags Campus
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} response.Envelope
// @Router /campus/buildings/{id} [get]
func (h *CampusHandler) Get(c *gin.Context) {
	building, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, building, nil)
}

// Create godoc
// @Summary Create building
// @Tags Campus
// @Accept json
// @Produce json
// @Param payload body service.BuildingRequest true "Building"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /campus/buildings [post]
func (h *CampusHandler) Create(c *gin.Context) {
	var req service.BuildingRequest
	if !bindJSON(c, &req) {
		return
	}
	building, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, building)
}

// Update godoc
// @Summary Update building
// @Tags Campus
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Param payload body service.BuildingRequest true "Building"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /campus/buildings/{id} [put]
func (h *CampusHandler) Update(c *gin.Context) {
	var req service.BuildingRequest
	if !bindJSON(c, &req) {
		return
	}
	building, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, building, nil)
}

// Delete godoc
// @Summary Delete building
// @Tags Campus
// @Param id path string true "Building ID"
// @Success 204
// @Security BearerAuth
// @Router /campus/buildings/{id} [delete]
func (h *CampusHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Nearby godoc
// @Summary Buildings near a position
// @Tags Campus
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Search radius in meters (default 1000)"
// @Success 200 {object} response.Envelope
// @Router /campus/nearby [get]
func (h *CampusHandler) Nearby(c *gin.Context) {
	origin, ok := pointFromQuery(c, "lat", "lng")
	if !ok {
		return
	}
	var radius float64
	if raw := c.Query("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, appErrors.Validation(err, "invalid radius", map[string]string{"radius": "must be a number"}))
			return
		}
		radius = parsed
	}
	buildings, err := h.service.Nearby(c.Request.Context(), origin, radius)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buildings, nil)
}

// Distance godoc
// @Summary Great-circle distance between two points
// @Tags Campus
// @Produce json
// @Param fromLat query number true "Origin latitude"
// @Param fromLng query number true "Origin longitude"
// @Param toLat query number true "Destination latitude"
// @Param toLng query number true "Destination longitude"
// @Success 200 {object} response.Envelope
// @Router /campus/distance [get]
func (h *CampusHandler) Distance(c *gin.Context) {
	from, ok := pointFromQuery(c, "fromLat", "fromLng")
	if !ok {
		return
	}
	to, ok := pointFromQuery(c, "toLat", "toLng")
	if !ok {
		return
	}
	meters, err := h.service.Distance(from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"from": from, "to": to, "distanceMeters": meters}, nil)
}

func pointFromQuery(c *gin.Context, latKey, lngKey string) (geo.Point, bool) {
	fields := map[string]string{}
	lat, err := strconv.ParseFloat(c.Query(latKey), 64)
	if err != nil {
		fields[latKey] = "must be a number"
	}
	lng, err := strconv.ParseFloat(c.Query(lngKey), 64)
	if err != nil {
		fields[lngKey] = "must be a number"
	}
	if len(fields) > 0 {
		response.Error(c, appErrors.Validation(nil, "invalid coordinates", fields))
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lng: lng}, true
}
