package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
	"github.com/unisphere/unisphere-api/pkg/response"
)

// MenuHandler serves the cafeteria menu.
type MenuHandler struct {
	service *service.MenuService
}

// NewMenuHandler constructs the handler.
func NewMenuHandler(svc *service.MenuService) *MenuHandler {
	return &MenuHandler{service: svc}
}

// List godoc
// @Summary List menu items
// @Tags Cafeteria
// @Produce json
// @Param category query string false "Category"
// @Param available query bool false "Only available items"
// @Param search query string false "Search name, description or category"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /menu [get]
func (h *MenuHandler) List(c *gin.Context) {
	filter := models.MenuFilter{
		ListOptions: listOptions(c),
		Category:    c.Query("category"),
		Available:   optionalBool(c, "available"),
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get menu item
// @Tags Cafeteria
// @Produce json
// @Param id path string true "Menu item ID"
// @Success 200 {object} response.Envelope
// @Router /menu/{id} [get]
func (h *MenuHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create menu item
// @Tags Cafeteria
// @Accept json
// @Produce json
// @Param payload body service.MenuItemRequest true "Menu item"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /menu [post]
func (h *MenuHandler) Create(c *gin.Context) {
	var req service.MenuItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update menu item
// @Tags Cafeteria
// @Accept json
// @Produce json
// @Param id path string true "Menu item ID"
// @Param payload body service.MenuItemRequest true "Menu item"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /menu/{id} [put]
func (h *MenuHandler) Update(c *gin.Context) {
	var req service.MenuItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete menu item
// @Tags Cafeteria
// @Param id path string true "Menu item ID"
// @Success 204
// @Security BearerAuth
// @Router /menu/{id} [delete]
func (h *MenuHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
