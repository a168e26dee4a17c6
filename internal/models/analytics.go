package models

import "time"

// WeekBucket is a Monday–Sunday span with the reports that fall inside it.
type WeekBucket struct {
	Label     string    `json:"label"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	ReportIDs []string  `json:"report_ids,omitempty"`
	Latest    bool      `json:"latest,omitempty"`
}

// Contains reports whether date falls within the bucket, inclusive on both ends.
func (w WeekBucket) Contains(date time.Time) bool {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !day.Before(w.Start) && !day.After(w.End)
}

// PerformanceTrend classifies attendance momentum against the prior meeting.
type PerformanceTrend string

const (
	TrendGrowing   PerformanceTrend = "growing"
	TrendDeclining PerformanceTrend = "declining"
	TrendStable    PerformanceTrend = "stable"
)

// HealthTier buckets a 0–100 health score.
type HealthTier string

const (
	TierExcellent HealthTier = "Excellent"
	TierGood      HealthTier = "Good"
	TierAverage   HealthTier = "Average"
	TierPoor      HealthTier = "Poor"
)

// HealthSummary aggregates historical samples as whole percentages.
type HealthSummary struct {
	HasData bool `json:"has_data"`
	Samples int  `json:"samples"`
	Average int  `json:"average"`
	Min     int  `json:"min"`
	Max     int  `json:"max"`
}

// MemberStreak is the consecutive-absence count of one member in one group.
type MemberStreak struct {
	MemberID      string `json:"member_id"`
	CellGroupID   string `json:"cell_group_id"`
	Name          string `json:"name,omitempty"`
	Unresolved    bool   `json:"unresolved,omitempty"`
	InRoster      bool   `json:"in_roster"`
	Streak        int    `json:"streak"`
	NeedsFollowUp bool   `json:"needs_follow_up"`
}

// ReportAnnotation carries the derived facts of a single report.
type ReportAnnotation struct {
	ReportID      string           `json:"report_id"`
	CellGroupID   string           `json:"cell_group_id"`
	DateOfMeeting time.Time        `json:"date_of_meeting"`
	Week          string           `json:"week"`
	Attendance    int              `json:"attendance"`
	AbsenteeCount int              `json:"absentee_count"`
	VisitorCount  int              `json:"visitor_count"`
	Trend         PerformanceTrend `json:"trend"`
	HighAbsentees bool             `json:"high_absentees"`
}

// RankEntry is one report's position in a weekly ranking.
type RankEntry struct {
	ReportID      string    `json:"report_id"`
	CellGroupID   string    `json:"cell_group_id"`
	DateOfMeeting time.Time `json:"date_of_meeting"`
	Attendance    int       `json:"attendance"`
}

// WeeklyRanking orders every report of a week by attendance, highest first.
type WeeklyRanking struct {
	Week    WeekBucket  `json:"week"`
	Entries []RankEntry `json:"entries"`
	Top     *RankEntry  `json:"top,omitempty"`
	Lowest  *RankEntry  `json:"lowest,omitempty"`
}

// DistinctLowest returns the lowest performer unless it is the same report as the top one.
func (w WeeklyRanking) DistinctLowest() *RankEntry {
	if w.Lowest == nil || w.Top == nil || w.Lowest.ReportID == w.Top.ReportID {
		return nil
	}
	return w.Lowest
}

// VisitorRecurrence counts how often a visitor came to one group.
type VisitorRecurrence struct {
	VisitorID   string        `json:"visitor_id"`
	CellGroupID string        `json:"cell_group_id"`
	Name        string        `json:"name,omitempty"`
	Status      VisitorStatus `json:"status,omitempty"`
	Unresolved  bool          `json:"unresolved,omitempty"`
	Visits      int           `json:"visits"`
	Repeat      bool          `json:"repeat"`
}

// GroupAnalytics is the annotated view of a cell group handed to presentation.
type GroupAnalytics struct {
	CellGroupID     string              `json:"cell_group_id"`
	Name            string              `json:"name"`
	HealthScore     float64             `json:"health_score"`
	Tier            HealthTier          `json:"tier"`
	HealthHistory   HealthSummary       `json:"health_history"`
	AttendanceRate  HealthSummary       `json:"attendance_rate"`
	ReportCount     int                 `json:"report_count"`
	LatestWeek      string              `json:"latest_week,omitempty"`
	Reports         []ReportAnnotation  `json:"reports"`
	Members         []MemberStreak      `json:"members"`
	Visitors        []VisitorRecurrence `json:"visitors"`
	FollowUpMembers []string            `json:"follow_up_members"`
	RepeatVisitors  []string            `json:"repeat_visitors"`
}

// DashboardSummary aggregates a filtered set of groups.
type DashboardSummary struct {
	TotalGroups        int                `json:"total_groups"`
	TotalMembers       int                `json:"total_members"`
	AverageHealthScore float64            `json:"average_health_score"`
	Tiers              map[HealthTier]int `json:"tiers"`
}

// FactKind names a condition surfaced to the notification collaborator.
type FactKind string

const (
	FactNeedsFollowUp FactKind = "needs_follow_up"
	FactRepeatVisitor FactKind = "repeat_visitor"
	FactHighAbsentees FactKind = "high_absentees"
)

// Fact is a derived condition that an external notifier may act on.
type Fact struct {
	Kind        FactKind  `json:"kind"`
	CellGroupID string    `json:"cell_group_id"`
	EntityID    string    `json:"entity_id"`
	Week        string    `json:"week"`
	Value       int       `json:"value"`
	ObservedAt  time.Time `json:"observed_at"`
}

// SystemMetrics represents instrumentation counters exposed over the API.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Computations             uint64    `json:"computations"`
	FactsPublished           uint64    `json:"facts_published"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
