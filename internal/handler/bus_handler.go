package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
	"github.com/unisphere/unisphere-api/pkg/response"
)

// BusHandler serves campus shuttle timetables.
type BusHandler struct {
	service *service.BusService
}

// NewBusHandler constructs the handler.
func NewBusHandler(svc *service.BusService) *BusHandler {
	return &BusHandler{service: svc}
}

// List godoc
// @Summary List bus schedules
// @Tags Bus
// @Produce json
// @Param route query string false "Route name or number"
// @Param day query string false "Operating day"
// @Param active query bool false "Active schedules only"
// @Param search query string false "Search route, origin or destination"
// @Success 200 {object} response.Envelope
// @Router /bus [get]
func (h *BusHandler) List(c *gin.Context) {
	filter := models.BusFilter{
		ListOptions: listOptions(c),
		Route:       c.Query("route"),
		Day:         c.Query("day"),
		Active:      optionalBool(c, "active"),
	}
	schedules, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get bus schedule
// @Tags Bus
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /bus/{id} [get]
func (h *BusHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Create godoc
// @Summary Create bus schedule
// @Tags Bus
// @Accept json
// @Produce json
// @Param payload body service.BusScheduleRequest true "Schedule"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /bus [post]
func (h *BusHandler) Create(c *gin.Context) {
	var req service.BusScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Update bus schedule
// @Tags Bus
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body service.BusScheduleRequest true "Schedule"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /bus/{id} [put]
func (h *BusHandler) Update(c *gin.Context) {
	var req service.BusScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	schedule, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete bus schedule
// @Tags Bus
// @Param id path string true "Schedule ID"
// @Success 204
// @Security BearerAuth
// @Router /bus/{id} [delete]
func (h *BusHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
