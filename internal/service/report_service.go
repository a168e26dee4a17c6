package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cellgroup-api/internal/analytics"
	"github.com/noah-isme/cellgroup-api/internal/dto"
	"github.com/noah-isme/cellgroup-api/internal/models"
	"github.com/noah-isme/cellgroup-api/internal/repository"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
)

type weeklyReportRepository interface {
	List(ctx context.Context, filter models.WeeklyReportFilter) ([]models.WeeklyReport, error)
	FindByID(ctx context.Context, id string) (*models.WeeklyReport, error)
	Create(ctx context.Context, report *models.WeeklyReport) error
	Update(ctx context.Context, report *models.WeeklyReport, expected time.Time) error
	Delete(ctx context.Context, id string) error
}

type cellGroupReader interface {
	FindByID(ctx context.Context, id string) (*models.CellGroup, error)
}

type rosterReader interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.Member, error)
}

type visitorResolver interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Visitor, error)
}

// ReportService validates and persists weekly meeting reports.
type ReportService struct {
	reports   weeklyReportRepository
	groups    cellGroupReader
	members   rosterReader
	visitors  visitorResolver
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(reports weeklyReportRepository, groups cellGroupReader, members rosterReader, visitors visitorResolver, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports:   reports,
		groups:    groups,
		members:   members,
		visitors:  visitors,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
	}
}

// List returns reports ordered by meeting date then id.
func (s *ReportService) List(ctx context.Context, filter models.WeeklyReportFilter) ([]models.WeeklyReport, error) {
	start := time.Now()
	reports, err := s.reports.List(ctx, filter)
	observe(s.metrics, "weekly_reports_list", start)
	if err != nil {
		return nil, appErrors.Upstream(err, "list weekly reports")
	}
	return analytics.SortReports(reports), nil
}

// Get returns a single report.
func (s *ReportService) Get(ctx context.Context, id string) (*models.WeeklyReport, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "weekly report", id, "load weekly report")
	}
	return report, nil
}

// Create validates req against the group's current roster and stores the report with its
// absentee list frozen.
func (s *ReportService) Create(ctx context.Context, req dto.ReportRequest) (*models.WeeklyReport, error) {
	report, err := s.prepare(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, appErrors.Upstream(err, "create weekly report")
	}
	s.logger.Info("weekly report created",
		zap.String("report_id", report.ID),
		zap.String("cell_group_id", report.CellGroupID),
		zap.Int("attendees", len(report.Attendees)),
		zap.Int("absentees", len(report.Absentees)),
	)
	return report, nil
}

// Update replaces every field of a report. The caller's updated_at, when given, must match the
// stored version.
func (s *ReportService) Update(ctx context.Context, id string, req dto.ReportRequest) (*models.WeeklyReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid weekly report payload")
	}
	existing, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "weekly report", id, "load weekly report")
	}
	if strings.TrimSpace(req.CellGroupID) != existing.CellGroupID {
		return nil, appErrors.Validation("a report cannot move to another cell group", "cell_group_id", req.CellGroupID)
	}
	if req.UpdatedAt != nil && !req.UpdatedAt.Equal(existing.UpdatedAt) {
		return nil, staleReport(id)
	}

	report, err := s.prepare(ctx, req, existing)
	if err != nil {
		return nil, err
	}
	report.ID = existing.ID
	report.CreatedAt = existing.CreatedAt

	if err := s.reports.Update(ctx, report, existing.UpdatedAt); err != nil {
		if errors.Is(err, repository.ErrStaleReport) {
			return nil, staleReport(id)
		}
		return nil, lookupError(err, "weekly report", id, "update weekly report")
	}
	return report, nil
}

// Delete removes a report; derived aggregates drop it on their next computation.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		return lookupError(err, "weekly report", id, "delete weekly report")
	}
	s.logger.Info("weekly report deleted", zap.String("report_id", id))
	return nil
}

func (s *ReportService) prepare(ctx context.Context, req dto.ReportRequest, existing *models.WeeklyReport) (*models.WeeklyReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid weekly report payload")
	}
	date, err := parseDate(req.DateOfMeeting, "date_of_meeting")
	if err != nil {
		return nil, err
	}

	groupID := strings.TrimSpace(req.CellGroupID)
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, lookupError(err, "cell group", groupID, "load cell group")
	}

	start := time.Now()
	roster, err := s.members.ListByGroup(ctx, group.ID)
	observe(s.metrics, "members_by_group", start)
	if err != nil {
		return nil, appErrors.Upstream(err, "load roster")
	}
	rosterIDs := models.MemberIDs(roster)

	attendees := uniqueIDs(req.Attendees)
	if unknown := analytics.CheckRoster(rosterIDs, attendees); len(unknown) > 0 {
		return nil, appErrors.Validation("attendee is not a member of the cell group", "member_id", unknown[0])
	}

	leaderID, err := resolveLeader(group, rosterIDs, req.LeaderID)
	if err != nil {
		return nil, err
	}

	visitorIDs := uniqueIDs(req.Visitors)
	if err := s.checkVisitors(ctx, visitorIDs, existing); err != nil {
		return nil, err
	}

	report := &models.WeeklyReport{
		CellGroupID:   group.ID,
		DateOfMeeting: date,
		Attendees:     attendees,
		Absentees:     []string{},
		Visitors:      visitorIDs,
		Attendance:    req.Attendance,
		LeaderID:      leaderID,
		Topic:         strings.TrimSpace(req.Topic),
		ReportDetails: models.ReportDetails{
			Testimonies:    normalizeOptional(req.Testimonies),
			PrayerRequests: normalizeOptional(req.PrayerRequests),
			FollowUps:      normalizeOptional(req.FollowUps),
			Challenges:     normalizeOptional(req.Challenges),
			SupportNeeded:  normalizeOptional(req.SupportNeeded),
		},
	}
	if !report.HeadcountOnly() {
		report.Absentees = analytics.DeriveAbsentees(rosterIDs, attendees)
	}
	return report, nil
}

// checkVisitors requires every id to exist. Converted visitors may stay on a report that
// already lists them but cannot be newly added.
func (s *ReportService) checkVisitors(ctx context.Context, ids []string, existing *models.WeeklyReport) error {
	if len(ids) == 0 {
		return nil
	}
	start := time.Now()
	found, err := s.visitors.FindByIDs(ctx, ids)
	observe(s.metrics, "visitors_by_ids", start)
	if err != nil {
		return appErrors.Upstream(err, "load visitors")
	}
	byID := make(map[string]models.Visitor, len(found))
	for _, v := range found {
		byID[v.ID] = v
	}

	var already map[string]struct{}
	if existing != nil {
		already = make(map[string]struct{}, len(existing.Visitors))
		for _, id := range existing.Visitors {
			already[id] = struct{}{}
		}
	}

	for _, id := range ids {
		visitor, ok := byID[id]
		if !ok {
			return appErrors.NotFound("visitor", id)
		}
		if !visitor.Converted() {
			continue
		}
		if _, kept := already[id]; !kept {
			return appErrors.Validation("converted visitor cannot be added to a report", "visitor_id", id)
		}
	}
	return nil
}

// resolveLeader picks the report leader. An explicit leader must be the group's leader or on its
// roster; otherwise the group's own leader is used.
func resolveLeader(group *models.CellGroup, rosterIDs []string, requested string) (string, error) {
	groupLeader := ""
	if group.LeaderID != nil {
		groupLeader = strings.TrimSpace(*group.LeaderID)
	}

	requested = strings.TrimSpace(requested)
	if requested != "" {
		if requested == groupLeader {
			return requested, nil
		}
		for _, id := range rosterIDs {
			if id == requested {
				return requested, nil
			}
		}
		return "", appErrors.Validation("leader is not part of the cell group", "leader_id", requested)
	}
	if groupLeader != "" {
		return groupLeader, nil
	}
	return "", appErrors.Validation("cell group has no resolvable leader", "cell_group_id", group.ID)
}

func staleReport(id string) error {
	err := appErrors.Clone(appErrors.ErrConflict, "weekly report was modified by another request")
	err.Details = map[string]string{"kind": "weekly report", "id": id}
	return err
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
