package analytics

import (
	"sort"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

// HighAbsenteeThreshold is the per-report absentee count above which a report is flagged.
const HighAbsenteeThreshold = 5

// HighAbsentees reports whether a report has more absentees than the threshold.
func HighAbsentees(report models.WeeklyReport) bool {
	return len(report.Absentees) > HighAbsenteeThreshold
}

// PreviousReport finds the latest report of the same group dated strictly before report.
func PreviousReport(reports []models.WeeklyReport, report models.WeeklyReport) (models.WeeklyReport, bool) {
	current := CalendarDate(report.DateOfMeeting)
	for _, candidate := range SortReportsDesc(ReportsForGroup(reports, report.CellGroupID)) {
		if candidate.ID == report.ID {
			continue
		}
		if CalendarDate(candidate.DateOfMeeting).Before(current) {
			return candidate, true
		}
	}
	return models.WeeklyReport{}, false
}

// TrendFor compares a report's attendance with the group's previous meeting.
// With no earlier meeting the trend is stable.
func TrendFor(reports []models.WeeklyReport, report models.WeeklyReport) models.PerformanceTrend {
	prev, ok := PreviousReport(reports, report)
	if !ok {
		return models.TrendStable
	}
	return compareAttendance(report.AttendanceCount(), prev.AttendanceCount())
}

func compareAttendance(current, previous int) models.PerformanceTrend {
	switch {
	case current > previous:
		return models.TrendGrowing
	case current < previous:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// AnnotateReports tags every report with its week, trend and absentee flag,
// ordered by meeting date then id.
func AnnotateReports(reports []models.WeeklyReport) []models.ReportAnnotation {
	sorted := SortReports(reports)
	annotations := make([]models.ReportAnnotation, 0, len(sorted))
	for _, report := range sorted {
		annotations = append(annotations, models.ReportAnnotation{
			ReportID:      report.ID,
			CellGroupID:   report.CellGroupID,
			DateOfMeeting: CalendarDate(report.DateOfMeeting),
			Week:          WeekLabel(report.DateOfMeeting),
			Attendance:    report.AttendanceCount(),
			AbsenteeCount: len(report.Absentees),
			VisitorCount:  len(report.Visitors),
			Trend:         TrendFor(sorted, report),
			HighAbsentees: HighAbsentees(report),
		})
	}
	return annotations
}

// RankWeek orders the reports of week by attendance, highest first. Equal
// attendance keeps meeting date then id order. With a single report Top and
// Lowest point at the same entry; use DistinctLowest to suppress the duplicate.
func RankWeek(reports []models.WeeklyReport, week models.WeekBucket) models.WeeklyRanking {
	inWeek := SortReports(ReportsInWeek(reports, week))
	week.ReportIDs = make([]string, 0, len(inWeek))
	for _, report := range inWeek {
		week.ReportIDs = append(week.ReportIDs, report.ID)
	}
	sort.SliceStable(inWeek, func(i, j int) bool {
		return inWeek[i].AttendanceCount() > inWeek[j].AttendanceCount()
	})

	ranking := models.WeeklyRanking{Week: week, Entries: make([]models.RankEntry, 0, len(inWeek))}
	for _, report := range inWeek {
		ranking.Entries = append(ranking.Entries, models.RankEntry{
			ReportID:      report.ID,
			CellGroupID:   report.CellGroupID,
			DateOfMeeting: CalendarDate(report.DateOfMeeting),
			Attendance:    report.AttendanceCount(),
		})
	}
	if n := len(ranking.Entries); n > 0 {
		top := ranking.Entries[0]
		lowest := ranking.Entries[n-1]
		ranking.Top = &top
		ranking.Lowest = &lowest
	}
	return ranking
}
