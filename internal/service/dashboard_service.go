package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

const dashboardSummaryKey = "dashboard:summary"

type dashboardRepository interface {
	Summary(ctx context.Context, now time.Time) (*models.DashboardSummary, error)
}

type presenceReader interface {
	Members(ctx context.Context) ([]string, error)
}

// DashboardService composes the admin dashboard and caches it.
type DashboardService struct {
	repo     dashboardRepository
	presence presenceReader
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Repo     dashboardRepository
	Presence presenceReader
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	CacheTTL time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(p DashboardServiceParams) *DashboardService {
	if p.CacheTTL <= 0 {
		p.CacheTTL = 5 * time.Minute
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &DashboardService{
		repo:     p.Repo,
		presence: p.Presence,
		cache:    p.Cache,
		metrics:  p.Metrics,
		logger:   p.Logger,
		ttl:      p.CacheTTL,
		now:      time.Now,
	}
}

// Summary returns portal-wide counters and whether they came from cache.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	var cached models.DashboardSummary
	if s.cache.Get(ctx, dashboardSummaryKey, &cached) {
		return &cached, true, nil
	}

	now := s.now().UTC()
	summary, err := s.repo.Summary(ctx, now)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to build dashboard")
	}
	summary.GeneratedAt = now

	if s.presence != nil {
		online, err := s.presence.Members(ctx)
		if err != nil {
			s.logger.Warn("presence lookup failed", zap.Error(err))
		}
		summary.OnlineUsers = len(online)
	}

	if s.metrics != nil {
		snap := s.metrics.Snapshot()
		summary.Extra = map[string]float64{
			"cacheHitRatio":            snap.CacheHitRatio,
			"averageRequestDurationMs": snap.AverageRequestDurationMs,
			"chatConnections":          float64(snap.ChatConnections),
		}
	}

	s.cache.Set(ctx, dashboardSummaryKey, summary, s.ttl)
	return summary, false, nil
}

// Metrics exposes the raw instrumentation snapshot.
func (s *DashboardService) Metrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}
