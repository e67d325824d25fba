package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/response"
)

// OrderHandler exposes cafeteria checkout and order tracking.
type OrderHandler struct {
	service *service.OrderService
}

// NewOrderHandler constructs the handler.
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{service: svc}
}

// Checkout godoc
// @Summary Place an order from the cart
// @Tags Cafeteria
// @Accept json
// @Produce json
// @Param payload body service.CheckoutRequest true "Cart"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /orders [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.service.Checkout(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// List godoc
// @Summary List orders
// @Description Regular users see their own orders; admins see all and may filter by user.
// @Tags Cafeteria
// @Produce json
// @Param status query string false "Order status"
// @Param userId query string false "User filter (admin only)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	filter := models.OrderFilter{
		ListOptions: listOptions(c),
		UserID:      c.Query("userId"),
		Status:      models.OrderStatus(c.Query("status")),
	}
	orders, pagination, err := h.service.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders, pagination)
}

// Get godoc
// @Summary Get order
// @Tags Cafeteria
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	order, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// UpdateStatus godoc
// @Summary Advance an order through the kitchen workflow
// @Tags Cafeteria
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param payload body service.OrderStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req service.OrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// Cancel godoc
// @Summary Cancel a pending order
// @Tags Cafeteria
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	order, err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// Receipt godoc
// @Summary Signed download link for the order receipt
// @Tags Cafeteria
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope "Receipt not rendered yet"
// @Security BearerAuth
// @Router /orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	link, err := h.service.ReceiptLink(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// DownloadReceipt godoc
// @Summary Download a receipt PDF by signed token
// @Tags Cafeteria
// @Produce application/pdf
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /receipts/download [get]
func (h *OrderHandler) DownloadReceipt(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "download token is required"))
		return
	}
	file, filename, err := h.service.OpenReceipt(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read receipt"))
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
		"Cache-Control":       "no-store",
	})
}
