package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/response"
)

const imageFormField = "image"

// LostFoundHandler serves lost & found reports for admins and the public.
type LostFoundHandler struct {
	service        *service.LostFoundService
	maxUploadBytes int64
}

// NewLostFoundHandler constructs the handler. maxUploadBytes bounds how much
// of a multipart file is read before the service rejects it as too large.
func NewLostFoundHandler(svc *service.LostFoundService, maxUploadBytes int64) *LostFoundHandler {
	return &LostFoundHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// List godoc
// @Summary List lost & found items
// @Tags LostFound
// @Produce json
// @Param itemType query string false "lost or found"
// @Param status query string false "pending, in-progress or resolved"
// @Param category query string false "Category"
// @Param search query string false "Search item name, location or description"
// @Param sort query string false "Sort field, e.g. date"
// @Success 200 {object} response.Envelope
// @Router /lostfound/items [get]
func (h *LostFoundHandler) List(c *gin.Context) {
	filter := models.LostFoundFilter{
		ListOptions: listOptions(c),
		ItemType:    models.ItemType(c.Query("itemType")),
		Status:      models.ItemStatus(c.Query("status")),
		Category:    c.Query("category"),
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get lost & found item
// @Tags LostFound
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Router /lostfound/items/{id} [get]
func (h *LostFoundHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Report a lost or found item
// @Tags LostFound
// @Accept json
// @Produce json
// @Param payload body service.LostFoundRequest true "Report"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /lostfound/items [post]
func (h *LostFoundHandler) Create(c *gin.Context) {
	var req service.LostFoundRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update a lost & found item
// @Tags LostFound
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body service.LostFoundRequest true "Report"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/lostfound/items/{id} [put]
func (h *LostFoundHandler) Update(c *gin.Context) {
	var req service.LostFoundRequest
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

// UpdateStatus godoc
// @Summary Change the handling status of an item
// @Tags LostFound
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body service.LostFoundStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/lostfound/items/{id}/status [patch]
func (h *LostFoundHandler) UpdateStatus(c *gin.Context) {
	var req service.LostFoundStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a lost & found item
// @Tags LostFound
// @Param id path string true "Item ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/lostfound/items/{id} [delete]
func (h *LostFoundHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadImage godoc
// @Summary Attach a photo to a report
// @Tags LostFound
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Item ID"
// @Param image formData file true "Image file"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Security BearerAuth
// @Router /lostfound/items/{id}/image [post]
func (h *LostFoundHandler) UploadImage(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	fileHeader, err := c.FormFile(imageFormField)
	if err != nil {
		response.Error(c, appErrors.Validation(err, "image file is required", map[string]string{imageFormField: "required"}))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read upload"))
		return
	}
	defer file.Close()

	var reader io.Reader = file
	if h.maxUploadBytes > 0 {
		// one byte past the limit lets the service report the overflow
		reader = io.LimitReader(file, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read upload"))
		return
	}

	item, err := h.service.UploadImage(c.Request.Context(), c.Param("id"), claims, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
