package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cellgroup-api/internal/analytics"
	"github.com/noah-isme/cellgroup-api/internal/models"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
)

type reportLister interface {
	List(ctx context.Context, filter models.WeeklyReportFilter) ([]models.WeeklyReport, error)
}

type memberDirectory interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.Member, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Member, error)
}

type healthHistoryReader interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.HealthHistoryRecord, error)
}

type factNotifier interface {
	Notify(ctx context.Context, facts []models.Fact)
}

// AnalyticsService derives group, member, visitor and weekly analytics. Every call reads a fresh
// snapshot; nothing derived is cached between calls.
type AnalyticsService struct {
	groups   cellGroupReader
	members  memberDirectory
	reports  reportLister
	visitors visitorResolver
	history  healthHistoryReader
	notifier factNotifier
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewAnalyticsService constructs an analytics service. notifier may be nil.
func NewAnalyticsService(groups cellGroupReader, members memberDirectory, reports reportLister, visitors visitorResolver, history healthHistoryReader, notifier factNotifier, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		groups:   groups,
		members:  members,
		reports:  reports,
		visitors: visitors,
		history:  history,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// GroupView returns the annotated view of one cell group and hands its facts to the notifier.
func (s *AnalyticsService) GroupView(ctx context.Context, groupID string) (*models.GroupAnalytics, error) {
	view, err := s.buildView(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, analytics.Facts(view))
	}
	return view, nil
}

// MemberStreaks returns the consecutive-absence streak of every member of a group.
// It emits no facts.
func (s *AnalyticsService) MemberStreaks(ctx context.Context, groupID string) ([]models.MemberStreak, error) {
	view, err := s.buildView(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return view.Members, nil
}

// VisitorRecurrence returns visit counts and repeat flags for a group's visitors.
// It emits no facts.
func (s *AnalyticsService) VisitorRecurrence(ctx context.Context, groupID string) ([]models.VisitorRecurrence, error) {
	view, err := s.buildView(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return view.Visitors, nil
}

// Weeks buckets every report into Monday–Sunday weeks, oldest first.
func (s *AnalyticsService) Weeks(ctx context.Context) ([]models.WeekBucket, error) {
	reports, err := s.listReports(ctx, models.WeeklyReportFilter{}, "weekly_reports_all")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	buckets := analytics.BucketReports(reports)
	if s.metrics != nil {
		s.metrics.ObserveComputation("week_buckets", time.Since(start))
	}
	return buckets, nil
}

// WeeklyRanking ranks every report of the week named by label by attendance. An empty label
// selects the latest week that has reports.
func (s *AnalyticsService) WeeklyRanking(ctx context.Context, label string) (models.WeeklyRanking, error) {
	var (
		week    models.WeekBucket
		reports []models.WeeklyReport
		err     error
	)
	if label == "" {
		reports, err = s.listReports(ctx, models.WeeklyReportFilter{}, "weekly_reports_all")
		if err != nil {
			return models.WeeklyRanking{}, err
		}
		latest, ok := analytics.LatestWeek(analytics.BucketReports(reports))
		if !ok {
			return models.WeeklyRanking{Entries: []models.RankEntry{}}, nil
		}
		week = latest
	} else {
		week, err = analytics.ParseWeek(label)
		if err != nil {
			return models.WeeklyRanking{}, appErrors.Validation("invalid week label", "week", label)
		}
		from, to := week.Start, week.End
		reports, err = s.listReports(ctx, models.WeeklyReportFilter{DateFrom: &from, DateTo: &to}, "weekly_reports_in_week")
		if err != nil {
			return models.WeeklyRanking{}, err
		}
	}

	start := time.Now()
	ranking := analytics.RankWeek(reports, week)
	if s.metrics != nil {
		s.metrics.ObserveComputation("weekly_ranking", time.Since(start))
	}
	return ranking, nil
}

// SystemMetrics returns the current instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

// buildView computes a group's view without side effects.
func (s *AnalyticsService) buildView(ctx context.Context, groupID string) (*models.GroupAnalytics, error) {
	snapshot, err := s.loadSnapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	view, err := analytics.BuildGroupView(*snapshot)
	if s.metrics != nil {
		s.metrics.ObserveComputation("group_view", time.Since(start))
	}
	if err != nil {
		return nil, appErrors.Upstream(err, "build group view")
	}
	return view, nil
}

func (s *AnalyticsService) listReports(ctx context.Context, filter models.WeeklyReportFilter, label string) ([]models.WeeklyReport, error) {
	start := time.Now()
	reports, err := s.reports.List(ctx, filter)
	observe(s.metrics, label, start)
	if err != nil {
		return nil, appErrors.Upstream(err, "list weekly reports")
	}
	return reports, nil
}

func (s *AnalyticsService) loadSnapshot(ctx context.Context, groupID string) (*analytics.Snapshot, error) {
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

	reports, err := s.listReports(ctx, models.WeeklyReportFilter{CellGroupID: group.ID}, "weekly_reports_by_group")
	if err != nil {
		return nil, err
	}

	start = time.Now()
	history, err := s.history.ListByGroup(ctx, group.ID)
	observe(s.metrics, "health_history_by_group", start)
	if err != nil {
		return nil, appErrors.Upstream(err, "load health history")
	}

	snapshot := &analytics.Snapshot{
		Group:    *group,
		Roster:   roster,
		Reports:  reports,
		History:  history,
		Members:  map[string]models.Member{},
		Visitors: map[string]models.Visitor{},
	}

	if ids := analytics.HistoricalMemberIDs(reports, group.ID, roster); len(ids) > 0 {
		start = time.Now()
		former, err := s.members.FindByIDs(ctx, ids)
		observe(s.metrics, "members_by_ids", start)
		if err != nil {
			return nil, appErrors.Upstream(err, "resolve former members")
		}
		for _, m := range former {
			snapshot.Members[m.ID] = m
		}
	}

	if ids := analytics.ReferencedVisitorIDs(reports, group.ID); len(ids) > 0 {
		start = time.Now()
		visitors, err := s.visitors.FindByIDs(ctx, ids)
		observe(s.metrics, "visitors_by_ids", start)
		if err != nil {
			return nil, appErrors.Upstream(err, "resolve visitors")
		}
		for _, v := range visitors {
			snapshot.Visitors[v.ID] = v
		}
	}

	return snapshot, nil
}
