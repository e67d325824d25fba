package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/jobs"
	"github.com/unisphere/unisphere-api/pkg/storage"
)

type mockOrderRepo struct {
	orders       map[string]*models.Order
	lastFilter   models.OrderFilter
	beforeUpdate func(order *models.Order)
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: map[string]*models.Order{}}
}

func (m *mockOrderRepo) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	m.lastFilter = filter
	var out []models.Order
	for _, o := range m.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id string) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *o
	return &copy, nil
}

func (m *mockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = "ord-" + order.UserID
	order.CreatedAt = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	copy := *order
	m.orders[order.ID] = &copy
	return nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return sql.ErrNoRows
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(o)
	}
	if o.Status != from {
		return sql.ErrNoRows
	}
	o.Status = to
	return nil
}

func (m *mockOrderRepo) UpdateReceipt(ctx context.Context, id string, status models.ReceiptStatus, path *string) error {
	m.orders[id].ReceiptStatus = status
	m.orders[id].ReceiptPath = path
	return nil
}

type mockMenuLookup struct {
	items map[string]models.MenuItem
}

func (m *mockMenuLookup) FindByIDs(ctx context.Context, ids []string) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func newTestOrderService(t *testing.T) (*OrderService, *mockOrderRepo, *recordingQueue) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := newMockOrderRepo()
	menu := &mockMenuLookup{items: map[string]models.MenuItem{
		"burger": {ID: "burger", Name: "Burger", Price: 5.99, Available: true},
		"soda":   {ID: "soda", Name: "Soda", Price: 1.25, Available: true},
		"soup":   {ID: "soup", Name: "Soup", Price: 3.00, Available: false},
	}}
	svc := NewOrderService(OrderServiceParams{
		Repo:     repo,
		Menu:     menu,
		Receipts: store,
		Signer:   storage.NewSignedURLSigner("secret", time.Minute),
		Metrics:  NewMetricsService(),
	})
	queue := &recordingQueue{}
	svc.AttachQueue(queue)
	return svc, repo, queue
}

func TestOrderServiceCheckoutMergesCartAndAppliesTax(t *testing.T) {
	svc, _, queue := newTestOrderService(t)

	order, err := svc.Checkout(context.Background(), "alice", CheckoutRequest{Items: []CartItemRequest{
		{MenuItemID: "burger", Quantity: 1},
		{MenuItemID: "soda", Quantity: 2},
		{MenuItemID: "burger", Quantity: 1},
	}})
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "burger", order.Items[0].MenuItemID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.InDelta(t, 11.98, order.Items[0].LineTotal, 1e-9)
	assert.InDelta(t, 14.48, order.Subtotal, 1e-9)
	assert.InDelta(t, 1.16, order.Tax, 1e-9)
	assert.InDelta(t, 15.64, order.Total, 1e-9)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.ReceiptQueued, order.ReceiptStatus)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, order.ID, queue.jobs[0].Payload)
	assert.Equal(t, uint64(1), svc.metrics.Snapshot().OrdersPlaced)
}

func TestOrderServiceCheckoutRejectsUnknownOrUnavailableItems(t *testing.T) {
	svc, _, _ := newTestOrderService(t)

	_, err := svc.Checkout(context.Background(), "alice", CheckoutRequest{Items: []CartItemRequest{
		{MenuItemID: "soup", Quantity: 1},
		{MenuItemID: "pizza", Quantity: 1},
	}})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "soup")
	assert.Contains(t, appErr.Fields, "pizza")

	_, err = svc.Checkout(context.Background(), "alice", CheckoutRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Checkout(context.Background(), "alice", CheckoutRequest{Items: []CartItemRequest{{MenuItemID: "soda", Quantity: 0}}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestOrderServiceStatusLifecycle(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()
	order, err := svc.Checkout(ctx, "alice", CheckoutRequest{Items: []CartItemRequest{{MenuItemID: "soda", Quantity: 1}}})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, OrderStatusRequest{Status: models.OrderCompleted})
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	for _, next := range []models.OrderStatus{models.OrderPreparing, models.OrderReady, models.OrderCompleted} {
		updated, err := svc.UpdateStatus(ctx, order.ID, OrderStatusRequest{Status: next})
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = svc.UpdateStatus(ctx, order.ID, OrderStatusRequest{Status: models.OrderCancelled})
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestOrderServiceCancelOwnership(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()
	order, err := svc.Checkout(ctx, "alice", CheckoutRequest{Items: []CartItemRequest{{MenuItemID: "soda", Quantity: 1}}})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, order.ID, &models.JWTClaims{UserID: "mallory", Role: models.RoleUser})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	cancelled, err := svc.Cancel(ctx, order.ID, &models.JWTClaims{UserID: "alice", Role: models.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, order.ID, &models.JWTClaims{UserID: "alice", Role: models.RoleUser})
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestOrderServiceCancelLosesRaceWithKitchen(t *testing.T) {
	svc, repo, _ := newTestOrderService(t)
	ctx := context.Background()
	order, err := svc.Checkout(ctx, "alice", CheckoutRequest{Items: []CartItemRequest{{MenuItemID: "soda", Quantity: 1}}})
	require.NoError(t, err)

	// The kitchen advances the order between the read and the write.
	repo.beforeUpdate = func(o *models.Order) { o.Status = models.OrderReady }

	_, err = svc.Cancel(ctx, order.ID, &models.JWTClaims{UserID: "alice", Role: models.RoleUser})
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.OrderReady, repo.orders[order.ID].Status)
}

func TestOrderServiceUpdateStatusRejectsStaleTransition(t *testing.T) {
	svc, repo, _ := newTestOrderService(t)
	ctx := context.Background()
	order, err := svc.Checkout(ctx, "alice", CheckoutRequest{Items: []CartItemRequest{{MenuItemID: "soda", Quantity: 1}}})
	require.NoError(t, err)

	repo.beforeUpdate = func(o *models.Order) { o.Status = models.OrderCancelled }

	_, err = svc.UpdateStatus(ctx, order.ID, OrderStatusRequest{Status: models.OrderPreparing})
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.OrderCancelled, repo.orders[order.ID].Status)
}

func TestOrderServiceCheckoutMarksReceiptFailedWhenQueueRejects(t *testing.T) {
	svc, repo, queue := newTestOrderService(t)
	queue.err = errors.New("queue receipts full")

	order, err := svc.Checkout(context.Background(), "alice", CheckoutRequest{Items: []CartItemRequest{{MenuItemID: "soda", Quantity: 1}}})
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptFailed, order.ReceiptStatus)
	assert.Equal(t, models.ReceiptFailed, repo.orders[order.ID].ReceiptStatus)
}

func TestOrderServiceListScopesToCaller(t *testing.T) {
	svc, repo, _ := newTestOrderService(t)

	_, _, err := svc.List(context.Background(), &models.JWTClaims{UserID: "alice", Role: models.RoleUser}, models.OrderFilter{UserID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "alice", repo.lastFilter.UserID)

	_, _, err = svc.List(context.Background(), &models.JWTClaims{UserID: "root", Role: models.RoleAdmin}, models.OrderFilter{UserID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", repo.lastFilter.UserID)
}

func TestOrderServiceReceiptRoundTrip(t *testing.T) {
	svc, repo, queue := newTestOrderService(t)
	ctx := context.Background()
	owner := &models.JWTClaims{UserID: "alice", Role: models.RoleUser}

	order, err := svc.Checkout(ctx, "alice", CheckoutRequest{Items: []CartItemRequest{{MenuItemID: "burger", Quantity: 1}}})
	require.NoError(t, err)

	_, err = svc.ReceiptLink(ctx, order.ID, owner)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.ProcessReceipt(ctx, queue.jobs[0]))
	assert.Equal(t, models.ReceiptReady, repo.orders[order.ID].ReceiptStatus)
	require.NotNil(t, repo.orders[order.ID].ReceiptPath)
	assert.Equal(t, filepath.ToSlash(filepath.Join("2026", "10", order.ID+".pdf")), *repo.orders[order.ID].ReceiptPath)

	link, err := svc.ReceiptLink(ctx, order.ID, owner)
	require.NoError(t, err)
	assert.Contains(t, link.URL, "/api/receipts/download?token=")

	token := link.URL[len("/api/receipts/download?token="):]
	token, err = url.QueryUnescape(token)
	require.NoError(t, err)
	file, name, err := svc.OpenReceipt(token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "receipt-"+order.ID+".pdf", name)

	head := make([]byte, 4)
	_, err = file.Read(head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))

	_, _, err = svc.OpenReceipt("tampered." + token)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestOrderServiceReceiptFailureMarksOrder(t *testing.T) {
	svc, repo, _ := newTestOrderService(t)
	order, err := svc.Checkout(context.Background(), "alice", CheckoutRequest{Items: []CartItemRequest{{MenuItemID: "soda", Quantity: 1}}})
	require.NoError(t, err)

	svc.ReceiptFailed(jobs.Job{ID: order.ID, Payload: order.ID, Attempt: 3}, os.ErrPermission)
	assert.Equal(t, models.ReceiptFailed, repo.orders[order.ID].ReceiptStatus)
}
