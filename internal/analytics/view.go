package analytics

import (
	"fmt"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

// Snapshot is everything needed to annotate one cell group.
type Snapshot struct {
	Group   models.CellGroup
	Roster  []models.Member
	Reports []models.WeeklyReport
	History []models.HealthHistoryRecord
	// Members resolves absentees that are no longer on the roster.
	Members map[string]models.Member
	// Visitors resolves visitor ids referenced by the reports.
	Visitors map[string]models.Visitor
}

// MalformedSnapshotError reports a snapshot whose rows contradict each other.
type MalformedSnapshotError struct {
	Kind string
	ID   string
	Msg  string
}

func (e *MalformedSnapshotError) Error() string {
	return fmt.Sprintf("malformed snapshot: %s %s: %s", e.Kind, e.ID, e.Msg)
}

// BuildGroupView annotates a group from its snapshot.
func BuildGroupView(s Snapshot) (*models.GroupAnalytics, error) {
	for _, report := range s.Reports {
		if report.CellGroupID != s.Group.ID {
			return nil, &MalformedSnapshotError{Kind: "weekly report", ID: report.ID, Msg: "belongs to cell group " + report.CellGroupID}
		}
		if report.DateOfMeeting.IsZero() {
			return nil, &MalformedSnapshotError{Kind: "weekly report", ID: report.ID, Msg: "missing date_of_meeting"}
		}
	}

	view := &models.GroupAnalytics{
		CellGroupID:     s.Group.ID,
		Name:            s.Group.Name,
		HealthScore:     ClampScore(s.Group.HealthScore),
		Tier:            Tier(s.Group.HealthScore),
		HealthHistory:   SummarizeSamples(HistorySamples(s.History)),
		AttendanceRate:  SummarizeSamples(AttendanceRateSamples(s.Reports)),
		ReportCount:     len(s.Reports),
		Reports:         AnnotateReports(s.Reports),
		Members:         MemberStreaks(s.Reports, s.Group.ID, s.Roster, s.Members),
		Visitors:        VisitorRecurrences(s.Reports, s.Group.ID, s.Visitors),
		FollowUpMembers: []string{},
		RepeatVisitors:  []string{},
	}
	if latest, ok := LatestWeek(BucketReports(s.Reports)); ok {
		view.LatestWeek = latest.Label
	}
	for _, m := range view.Members {
		if m.NeedsFollowUp {
			view.FollowUpMembers = append(view.FollowUpMembers, m.MemberID)
		}
	}
	for _, v := range view.Visitors {
		if v.Repeat {
			view.RepeatVisitors = append(view.RepeatVisitors, v.VisitorID)
		}
	}
	return view, nil
}

// Facts lists the notifier-facing conditions of a view for its latest week.
func Facts(view *models.GroupAnalytics) []models.Fact {
	if view == nil {
		return nil
	}
	var facts []models.Fact
	for _, m := range view.Members {
		if m.NeedsFollowUp {
			facts = append(facts, models.Fact{Kind: models.FactNeedsFollowUp, CellGroupID: view.CellGroupID, EntityID: m.MemberID, Week: view.LatestWeek, Value: m.Streak})
		}
	}
	for _, v := range view.Visitors {
		if v.Repeat && v.Status != models.VisitorStatusConverted {
			facts = append(facts, models.Fact{Kind: models.FactRepeatVisitor, CellGroupID: view.CellGroupID, EntityID: v.VisitorID, Week: view.LatestWeek, Value: v.Visits})
		}
	}
	for _, r := range view.Reports {
		if r.HighAbsentees && r.Week == view.LatestWeek {
			facts = append(facts, models.Fact{Kind: models.FactHighAbsentees, CellGroupID: view.CellGroupID, EntityID: r.ReportID, Week: r.Week, Value: r.AbsenteeCount})
		}
	}
	return facts
}
