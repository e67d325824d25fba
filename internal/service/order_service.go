package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/export"
	"github.com/unisphere/unisphere-api/pkg/jobs"
)

// DefaultTaxRate is the flat cafeteria tax applied at checkout.
const DefaultTaxRate = 0.08

const receiptJobType = "order_receipt"

type orderRepository interface {
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
	UpdateReceipt(ctx context.Context, id string, status models.ReceiptStatus, path *string) error
}

type menuLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.MenuItem, error)
}

type receiptStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type urlSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (resourceID, relPath string, expiresAt time.Time, err error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// CartItemRequest is one line of a checkout.
type CartItemRequest struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=1,max=100"`
}

// CheckoutRequest places an order.
type CheckoutRequest struct {
	Items []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes string            `json:"notes" validate:"max=500"`
}

// OrderStatusRequest moves an order through the kitchen lifecycle.
type OrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending preparing ready completed cancelled"`
}

// ReceiptLink is a time-limited download URL.
type ReceiptLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// OrderServiceConfig tunes checkout and receipts.
type OrderServiceConfig struct {
	TaxRate         float64
	DownloadBaseURL string
}

// OrderService handles cafeteria checkout and order lifecycle.
type OrderService struct {
	repo      orderRepository
	menu      menuLookup
	receipts  receiptStore
	signer    urlSigner
	queue     jobEnqueuer
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       OrderServiceConfig
	now       func() time.Time
}

// OrderServiceParams groups constructor dependencies.
type OrderServiceParams struct {
	Repo      orderRepository
	Menu      menuLookup
	Receipts  receiptStore
	Signer    urlSigner
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    OrderServiceConfig
}

// NewOrderService constructs the service.
func NewOrderService(p OrderServiceParams) *OrderService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Config.TaxRate <= 0 {
		p.Config.TaxRate = DefaultTaxRate
	}
	if p.Config.DownloadBaseURL == "" {
		p.Config.DownloadBaseURL = "/api/receipts/download"
	}
	return &OrderService{
		repo:      p.Repo,
		menu:      p.Menu,
		receipts:  p.Receipts,
		signer:    p.Signer,
		cache:     p.Cache,
		metrics:   p.Metrics,
		validator: p.Validator,
		logger:    p.Logger,
		cfg:       p.Config,
		now:       time.Now,
	}
}

// AttachQueue sets the queue receipt jobs are sent to.
func (s *OrderService) AttachQueue(q jobEnqueuer) {
	s.queue = q
}

// Checkout prices the cart, persists the order and queues its receipt.
func (s *OrderService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (*models.Order, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid checkout payload")
	}

	quantities := make(map[string]int, len(req.Items))
	ids := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		if _, seen := quantities[line.MenuItemID]; !seen {
			ids = append(ids, line.MenuItemID)
		}
		quantities[line.MenuItemID] += line.Quantity
	}

	items, err := s.menu.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load menu items")
	}
	byID := make(map[string]models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	lines := make(models.OrderLines, 0, len(ids))
	fields := map[string]string{}
	var subtotal float64
	for _, id := range ids {
		item, ok := byID[id]
		switch {
		case !ok:
			fields[id] = "menu item does not exist"
			continue
		case !item.Available:
			fields[id] = "menu item is not available"
			continue
		}
		qty := quantities[id]
		lineTotal := roundCents(item.Price * float64(qty))
		subtotal += lineTotal
		lines = append(lines, models.OrderLine{
			MenuItemID: id,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   qty,
			LineTotal:  lineTotal,
		})
	}
	if len(fields) > 0 {
		return nil, appErrors.Validation(nil, "some items cannot be ordered", fields)
	}

	subtotal = roundCents(subtotal)
	order := &models.Order{
		UserID:        userID,
		Items:         lines,
		Subtotal:      subtotal,
		Tax:           roundCents(subtotal * s.cfg.TaxRate),
		Total:         roundCents(subtotal * (1 + s.cfg.TaxRate)),
		Status:        models.OrderPending,
		Notes:         req.Notes,
		ReceiptStatus: models.ReceiptQueued,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, appErrors.Internal(err, "failed to place order")
	}
	s.metrics.IncOrders()
	s.cache.Invalidate(ctx, dashboardCachePattern)
	s.enqueueReceipt(order)
	s.logger.Info("order placed", zap.String("order_id", order.ID), zap.String("user_id", userID), zap.Float64("total", order.Total))
	return order, nil
}

// List returns orders. Non-admin callers only see their own.
func (s *OrderService) List(ctx context.Context, claims *models.JWTClaims, filter models.OrderFilter) ([]models.Order, *models.Pagination, error) {
	if claims == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if !claims.IsAdmin() {
		filter.UserID = claims.UserID
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list orders")
	}
	return orders, models.NewPagination(filter.ListOptions, total), nil
}

// Get returns an order visible to the caller.
func (s *OrderService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "order not found", "failed to load order")
	}
	if !canSeeOrder(order, claims) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "order belongs to another user")
	}
	return order, nil
}

// UpdateStatus applies a lifecycle transition.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, req OrderStatusRequest) (*models.Order, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid status payload")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "order not found", "failed to load order")
	}
	if !order.Status.CanTransition(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status))
	}
	if err := s.repo.UpdateStatus(ctx, id, order.Status, req.Status); err != nil {
		return nil, statusWriteError(err, "failed to update order status")
	}
	order.Status = req.Status
	order.UpdatedAt = s.now().UTC()
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return order, nil
}

// Cancel lets the owner withdraw an order that the kitchen has not started.
func (s *OrderService) Cancel(ctx context.Context, id string, claims *models.JWTClaims) (*models.Order, error) {
	order, err := s.Get(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only pending orders can be cancelled")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.OrderPending, models.OrderCancelled); err != nil {
		return nil, statusWriteError(err, "failed to cancel order")
	}
	order.Status = models.OrderCancelled
	order.UpdatedAt = s.now().UTC()
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return order, nil
}

// ReceiptLink returns a signed download URL once the receipt is rendered.
func (s *OrderService) ReceiptLink(ctx context.Context, id string, claims *models.JWTClaims) (*ReceiptLink, error) {
	order, err := s.Get(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	if order.ReceiptStatus != models.ReceiptReady || order.ReceiptPath == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("receipt is %s", order.ReceiptStatus))
	}
	token, expires, err := s.signer.Generate(order.ID, *order.ReceiptPath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign receipt url")
	}
	return &ReceiptLink{URL: s.cfg.DownloadBaseURL + "?token=" + url.QueryEscape(token), ExpiresAt: expires}, nil
}

// OpenReceipt resolves a signed token to the stored PDF.
func (s *OrderService) OpenReceipt(token string) (*os.File, string, error) {
	orderID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	file, err := s.receipts.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "receipt not found")
	}
	return file, fmt.Sprintf("receipt-%s.pdf", orderID), nil
}

// ProcessReceipt renders and stores the PDF receipt for the order in job.Payload.
func (s *OrderService) ProcessReceipt(ctx context.Context, job jobs.Job) error {
	orderID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected receipt payload %T", job.Payload)
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}
	data, err := export.Render(export.FormatPDF, receiptDataset(order))
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	path, err := s.receipts.Save(fmt.Sprintf("%s/%s.pdf", order.CreatedAt.UTC().Format("2006/01"), order.ID), data)
	if err != nil {
		return fmt.Errorf("store receipt: %w", err)
	}
	return s.repo.UpdateReceipt(ctx, order.ID, models.ReceiptReady, &path)
}

// ReceiptFailed marks a receipt as failed after the queue gives up.
func (s *OrderService) ReceiptFailed(job jobs.Job, cause error) {
	orderID, _ := job.Payload.(string)
	s.metrics.IncReceiptFailures()
	s.logger.Error("receipt rendering failed", zap.String("order_id", orderID), zap.Int("attempt", job.Attempt), zap.Error(cause))
	if orderID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.UpdateReceipt(ctx, orderID, models.ReceiptFailed, nil); err != nil {
		s.logger.Error("failed to flag receipt failure", zap.String("order_id", orderID), zap.Error(err))
	}
}

func (s *OrderService) enqueueReceipt(order *models.Order) {
	if s.queue == nil {
		return
	}
	job := jobs.Job{ID: order.ID, Type: receiptJobType, Payload: order.ID, Enqueued: s.now().UTC()}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to queue receipt", zap.String("order_id", order.ID), zap.Error(err))
		s.ReceiptFailed(job, err)
		order.ReceiptStatus = models.ReceiptFailed
	}
}

// statusWriteError reports a concurrent status change as PRECONDITION_FAILED.
func statusWriteError(err error, failure string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "order status changed concurrently, reload and retry")
	}
	return appErrors.Internal(err, failure)
}

func canSeeOrder(order *models.Order, claims *models.JWTClaims) bool {
	if claims == nil {
		return false
	}
	return claims.IsAdmin() || order.UserID == claims.UserID
}

func receiptDataset(order *models.Order) export.Dataset {
	headers := []string{"Item", "Unit price", "Qty", "Line total"}
	rows := make([]map[string]string, 0, len(order.Items))
	for _, line := range order.Items {
		rows = append(rows, map[string]string{
			"Item":       line.Name,
			"Unit price": fmt.Sprintf("%.2f", line.UnitPrice),
			"Qty":        fmt.Sprintf("%d", line.Quantity),
			"Line total": fmt.Sprintf("%.2f", line.LineTotal),
		})
	}
	return export.Dataset{
		Title:    "UniSphere Cafeteria Receipt",
		Subtitle: fmt.Sprintf("Order %s - %s", order.ID, order.CreatedAt.UTC().Format("2006-01-02 15:04 MST")),
		Headers:  headers,
		Rows:     rows,
		Summary: []export.SummaryLine{
			{Label: "Subtotal", Value: fmt.Sprintf("%.2f", order.Subtotal)},
			{Label: "Tax", Value: fmt.Sprintf("%.2f", order.Tax)},
			{Label: "Total", Value: fmt.Sprintf("%.2f", order.Total)},
		},
	}
}
