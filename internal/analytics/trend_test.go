package analytics_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/noah-isme/cellgroup-api/internal/analytics"
	"github.com/noah-isme/cellgroup-api/internal/models"
)

func withAttendance(id, group string, date time.Time, n int) models.WeeklyReport {
	return models.WeeklyReport{ID: id, CellGroupID: group, DateOfMeeting: date, Attendance: &n}
}

func TestTrendFor(t *testing.T) {
	Convey("Given a previous meeting with 10 attendees", t, func() {
		prev := withAttendance("p", "g1", day(2025, time.April, 6), 10)

		Convey("Then 12 is growing, 10 is stable and 8 is declining", func() {
			for n, want := range map[int]models.PerformanceTrend{12: models.TrendGrowing, 10: models.TrendStable, 8: models.TrendDeclining} {
				current := withAttendance("r", "g1", day(2025, time.April, 13), n)
				So(analytics.TrendFor([]models.WeeklyReport{prev, current}, current), ShouldEqual, want)
			}
		})
	})

	Convey("Given a group's first-ever report", t, func() {
		first := withAttendance("r", "g1", day(2025, time.April, 13), 3)
		other := withAttendance("o", "g2", day(2025, time.April, 6), 30)

		Convey("Then the trend is stable", func() {
			So(analytics.TrendFor([]models.WeeklyReport{first, other}, first), ShouldEqual, models.TrendStable)
		})
	})

	Convey("Given a same-day report from the same group", t, func() {
		a := withAttendance("a", "g1", day(2025, time.April, 13), 3)
		b := withAttendance("b", "g1", day(2025, time.April, 13), 9)

		Convey("Then it is not a baseline because it is not strictly earlier", func() {
			So(analytics.TrendFor([]models.WeeklyReport{a, b}, b), ShouldEqual, models.TrendStable)
		})
	})

	Convey("Attendee lists take precedence over the explicit figure", t, func() {
		n := 99
		r := models.WeeklyReport{Attendees: []string{"m1"}, Attendance: &n}
		So(r.AttendanceCount(), ShouldEqual, 1)
	})
}

func TestAnnotateReports(t *testing.T) {
	Convey("Given a group's reports", t, func() {
		many := []string{"a", "b", "c", "d", "e", "f"}
		reports := []models.WeeklyReport{
			{ID: "r2", CellGroupID: "g1", DateOfMeeting: day(2025, time.April, 13), Attendees: []string{"m1"}, Absentees: many},
			{ID: "r1", CellGroupID: "g1", DateOfMeeting: day(2025, time.April, 6), Attendees: []string{"m1", "m2"}, Absentees: many[:5], Visitors: []string{"v1"}},
		}

		annotations := analytics.AnnotateReports(reports)

		Convey("Then they come out oldest first with trend and absentee flags", func() {
			So(len(annotations), ShouldEqual, 2)
			So(annotations[0].ReportID, ShouldEqual, "r1")
			So(annotations[0].Trend, ShouldEqual, models.TrendStable)
			So(annotations[0].HighAbsentees, ShouldBeFalse)
			So(annotations[0].VisitorCount, ShouldEqual, 1)
			So(annotations[1].Trend, ShouldEqual, models.TrendDeclining)
			So(annotations[1].HighAbsentees, ShouldBeTrue)
			So(annotations[1].Week, ShouldEqual, "Apr 7–Apr 13, 2025")
		})
	})
}

func TestRankWeek(t *testing.T) {
	week := analytics.WeekOf(day(2025, time.April, 9))

	Convey("Given reports from several groups in one week", t, func() {
		reports := []models.WeeklyReport{
			withAttendance("r-a", "g1", day(2025, time.April, 8), 12),
			withAttendance("r-b", "g2", day(2025, time.April, 10), 20),
			withAttendance("r-c", "g3", day(2025, time.April, 13), 5),
			withAttendance("r-d", "g4", day(2025, time.April, 14), 50),
			withAttendance("r-e", "g5", day(2025, time.April, 9), 12),
		}

		ranking := analytics.RankWeek(reports, week)

		Convey("Then entries are sorted by attendance descending", func() {
			ids := []string{}
			for _, e := range ranking.Entries {
				ids = append(ids, e.ReportID)
			}
			So(ids, ShouldResemble, []string{"r-b", "r-a", "r-e", "r-c"})
		})

		Convey("And the top and lowest performers are the ends", func() {
			So(ranking.Top.CellGroupID, ShouldEqual, "g2")
			So(ranking.Lowest.CellGroupID, ShouldEqual, "g3")
			So(ranking.DistinctLowest(), ShouldNotBeNil)
			So(ranking.Week.ReportIDs, ShouldResemble, []string{"r-a", "r-e", "r-b", "r-c"})
		})
	})

	Convey("Given a week with a single report", t, func() {
		ranking := analytics.RankWeek([]models.WeeklyReport{withAttendance("only", "g1", day(2025, time.April, 8), 7)}, week)

		Convey("Then top and lowest are the same report and the duplicate is suppressible", func() {
			So(ranking.Top.ReportID, ShouldEqual, "only")
			So(ranking.Lowest.ReportID, ShouldEqual, "only")
			So(ranking.DistinctLowest(), ShouldBeNil)
		})
	})

	Convey("Given two reports with equal attendance", t, func() {
		ranking := analytics.RankWeek([]models.WeeklyReport{
			withAttendance("x", "g1", day(2025, time.April, 8), 7),
			withAttendance("y", "g2", day(2025, time.April, 8), 7),
		}, week)

		Convey("Then lowest differs from top by identity even though values match", func() {
			So(ranking.DistinctLowest(), ShouldNotBeNil)
			So(ranking.DistinctLowest().ReportID, ShouldEqual, "y")
		})
	})

	Convey("Given an empty week", t, func() {
		ranking := analytics.RankWeek(nil, week)
		So(ranking.Entries, ShouldBeEmpty)
		So(ranking.Top, ShouldBeNil)
	})
}
