package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
	"github.com/unisphere/unisphere-api/pkg/response"
)

type exportService interface {
	Orders(ctx context.Context, format string, filter models.OrderFilter) (*service.ExportFile, error)
	LostFound(ctx context.Context, format string, filter models.LostFoundFilter) (*service.ExportFile, error)
}

// ExportHandler streams admin reports as downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Orders godoc
// @Summary Export orders
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "Order status"
// @Param userId query string false "User"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /admin/exports/orders [get]
func (h *ExportHandler) Orders(c *gin.Context) {
	filter := models.OrderFilter{
		ListOptions: models.ListOptions{Search: c.Query("search"), SortBy: c.Query("sort"), SortOrder: c.Query("order")},
		UserID:      c.Query("userId"),
		Status:      models.OrderStatus(c.Query("status")),
	}
	file, err := h.service.Orders(c.Request.Context(), c.Query("format"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// LostFound godoc
// @Summary Export lost & found items
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param itemType query string false "lost or found"
// @Param status query string false "Status"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /admin/exports/lostfound [get]
func (h *ExportHandler) LostFound(c *gin.Context) {
	filter := models.LostFoundFilter{
		ListOptions: models.ListOptions{Search: c.Query("search"), SortBy: c.Query("sort"), SortOrder: c.Query("order")},
		ItemType:    models.ItemType(c.Query("itemType")),
		Status:      models.ItemStatus(c.Query("status")),
		Category:    c.Query("category"),
	}
	file, err := h.service.LostFound(c.Request.Context(), c.Query("format"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
