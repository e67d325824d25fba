package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/export"
)

const (
	exportPageSize = 100
	maxExportRows  = 10000
)

type orderLister interface {
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error)
}

type lostFoundLister interface {
	List(ctx context.Context, filter models.LostFoundFilter) ([]models.LostFoundItem, int, error)
}

// ExportFile is a rendered attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders admin lists as CSV or PDF.
type ExportService struct {
	orders    orderLister
	lostFound lostFoundLister
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(orders orderLister, lostFound lostFoundLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{orders: orders, lostFound: lostFound, logger: logger, now: time.Now}
}

// Orders exports every order matching filter.
func (s *ExportService) Orders(ctx context.Context, format string, filter models.OrderFilter) (*ExportFile, error) {
	f, err := parseExportFormat(format)
	if err != nil {
		return nil, err
	}
	var (
		rows    []map[string]string
		revenue float64
	)
	for page := 1; len(rows) < maxExportRows; page++ {
		filter.Page, filter.PageSize = page, exportPageSize
		orders, total, err := s.orders.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load orders")
		}
		for _, o := range orders {
			if o.Status == models.OrderCompleted {
				revenue += o.Total
			}
			rows = append(rows, map[string]string{
				"Order":    o.ID,
				"User":     o.UserID,
				"Items":    fmt.Sprintf("%d", len(o.Items)),
				"Subtotal": fmt.Sprintf("%.2f", o.Subtotal),
				"Tax":      fmt.Sprintf("%.2f", o.Tax),
				"Total":    fmt.Sprintf("%.2f", o.Total),
				"Status":   string(o.Status),
				"Placed":   o.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		if len(orders) < exportPageSize || page*exportPageSize >= total {
			break
		}
	}

	data := export.Dataset{
		Title:    "Cafeteria Orders",
		Subtitle: s.subtitle(),
		Headers:  []string{"Order", "User", "Items", "Subtotal", "Tax", "Total", "Status", "Placed"},
		Rows:     rows,
		Summary: []export.SummaryLine{
			{Label: "Orders", Value: fmt.Sprintf("%d", len(rows))},
			{Label: "Completed revenue", Value: fmt.Sprintf("%.2f", roundCents(revenue))},
		},
	}
	return s.render(f, "orders", data)
}

// LostFound exports every lost & found report matching filter.
func (s *ExportService) LostFound(ctx context.Context, format string, filter models.LostFoundFilter) (*ExportFile, error) {
	f, err := parseExportFormat(format)
	if err != nil {
		return nil, err
	}
	var rows []map[string]string
	for page := 1; len(rows) < maxExportRows; page++ {
		filter.Page, filter.PageSize = page, exportPageSize
		items, total, err := s.lostFound.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load lost & found items")
		}
		for _, it := range items {
			rows = append(rows, map[string]string{
				"Item":     it.ItemName,
				"Type":     string(it.ItemType),
				"Category": it.Category,
				"Location": it.Location,
				"Date":     it.Date.UTC().Format("2006-01-02"),
				"Reporter": it.ReporterName,
				"Contact":  it.ContactNumber,
				"Status":   string(it.Status),
			})
		}
		if len(items) < exportPageSize || page*exportPageSize >= total {
			break
		}
	}

	data := export.Dataset{
		Title:    "Lost & Found Reports",
		Subtitle: s.subtitle(),
		Headers:  []string{"Item", "Type", "Category", "Location", "Date", "Reporter", "Contact", "Status"},
		Rows:     rows,
		Summary:  []export.SummaryLine{{Label: "Reports", Value: fmt.Sprintf("%d", len(rows))}},
	}
	return s.render(f, "lostfound", data)
}

func (s *ExportService) render(f export.Format, name string, data export.Dataset) (*ExportFile, error) {
	body, err := export.Render(f, data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	s.logger.Info("export rendered", zap.String("dataset", name), zap.String("format", string(f)), zap.Int("rows", len(data.Rows)))
	return &ExportFile{
		Filename:    fmt.Sprintf("%s-%s.%s", name, s.now().UTC().Format("20060102-150405"), f),
		ContentType: f.ContentType(),
		Data:        body,
	}, nil
}

func (s *ExportService) subtitle() string {
	return "Generated " + s.now().UTC().Format("2006-01-02 15:04 MST")
}

func parseExportFormat(raw string) (export.Format, error) {
	f, err := export.ParseFormat(raw)
	if err != nil {
		return "", appErrors.Validation(err, "invalid export format", map[string]string{"format": "format must be csv or pdf"})
	}
	return f, nil
}
