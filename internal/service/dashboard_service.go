package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cellgroup-api/internal/analytics"
	"github.com/noah-isme/cellgroup-api/internal/models"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
)

type cellGroupLister interface {
	List(ctx context.Context, filter models.CellGroupFilter) ([]models.CellGroup, error)
}

// DashboardService aggregates health across a filtered set of cell groups.
type DashboardService struct {
	groups  cellGroupLister
	metrics *MetricsService
	logger  *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(groups cellGroupLister, metrics *MetricsService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{groups: groups, metrics: metrics, logger: logger}
}

// Summary returns group and member totals, the one-decimal average health score and the tier distribution.
func (s *DashboardService) Summary(ctx context.Context, filter models.CellGroupFilter) (models.DashboardSummary, error) {
	filter.Search = strings.TrimSpace(filter.Search)

	start := time.Now()
	groups, err := s.groups.List(ctx, filter)
	observe(s.metrics, "cell_groups_list", start)
	if err != nil {
		return models.DashboardSummary{}, appErrors.Upstream(err, "list cell groups")
	}

	start = time.Now()
	summary := analytics.SummarizeGroups(groups)
	if s.metrics != nil {
		s.metrics.ObserveComputation("dashboard_summary", time.Since(start))
	}
	return summary, nil
}
