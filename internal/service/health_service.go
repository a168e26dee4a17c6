package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cellgroup-api/internal/analytics"
	"github.com/noah-isme/cellgroup-api/internal/dto"
	"github.com/noah-isme/cellgroup-api/internal/models"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
)

type healthHistoryRepository interface {
	AppendAndScore(ctx context.Context, record *models.HealthHistoryRecord) error
	ListByGroup(ctx context.Context, groupID string) ([]models.HealthHistoryRecord, error)
}

// HealthService records health submissions and summarises a group's health history.
type HealthService struct {
	history   healthHistoryRepository
	groups    cellGroupReader
	reports   reportLister
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewHealthService constructs a HealthService.
func NewHealthService(history healthHistoryRepository, groups cellGroupReader, reports reportLister, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *HealthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{history: history, groups: groups, reports: reports, validator: validate, metrics: metrics, logger: logger}
}

// Record appends a history row and makes its score the group's current health score.
func (s *HealthService) Record(ctx context.Context, groupID string, req dto.HealthRecordRequest) (*models.HealthHistoryRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid health history payload")
	}
	date, err := parseDate(req.ReportDate, "report_date")
	if err != nil {
		return nil, err
	}
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, lookupError(err, "cell group", groupID, "load cell group")
	}

	record := &models.HealthHistoryRecord{
		CellGroupID: group.ID,
		ReportDate:  date,
		HealthScore: analytics.ClampScore(*req.HealthScore),
		Attendance:  req.Attendance,
		Notes:       normalizeOptional(req.Notes),
	}
	if err := s.history.AppendAndScore(ctx, record); err != nil {
		return nil, lookupError(err, "cell group", group.ID, "append health history")
	}

	s.logger.Info("health recorded",
		zap.String("cell_group_id", group.ID),
		zap.Float64("health_score", record.HealthScore),
		zap.String("tier", string(analytics.Tier(record.HealthScore))),
	)
	return record, nil
}

// History returns a group's health rows oldest first.
func (s *HealthService) History(ctx context.Context, groupID string) ([]models.HealthHistoryRecord, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return nil, lookupError(err, "cell group", groupID, "load cell group")
	}
	start := time.Now()
	records, err := s.history.ListByGroup(ctx, groupID)
	observe(s.metrics, "health_history_by_group", start)
	if err != nil {
		return nil, appErrors.Upstream(err, "load health history")
	}
	if records == nil {
		records = []models.HealthHistoryRecord{}
	}
	return records, nil
}

// Summary returns the tier of the group's current score plus aggregated history and attendance rate.
func (s *HealthService) Summary(ctx context.Context, groupID string) (*dto.HealthSummaryResponse, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, lookupError(err, "cell group", groupID, "load cell group")
	}

	start := time.Now()
	records, err := s.history.ListByGroup(ctx, group.ID)
	observe(s.metrics, "health_history_by_group", start)
	if err != nil {
		return nil, appErrors.Upstream(err, "load health history")
	}

	start = time.Now()
	reports, err := s.reports.List(ctx, models.WeeklyReportFilter{CellGroupID: group.ID})
	observe(s.metrics, "weekly_reports_by_group", start)
	if err != nil {
		return nil, appErrors.Upstream(err, "list weekly reports")
	}

	start = time.Now()
	summary := &dto.HealthSummaryResponse{
		CellGroupID:    group.ID,
		HealthScore:    analytics.ClampScore(group.HealthScore),
		Tier:           analytics.Tier(group.HealthScore),
		History:        analytics.SummarizeSamples(analytics.HistorySamples(records)),
		AttendanceRate: analytics.SummarizeSamples(analytics.AttendanceRateSamples(reports)),
	}
	if s.metrics != nil {
		s.metrics.ObserveComputation("health_summary", time.Since(start))
	}
	return summary, nil
}
