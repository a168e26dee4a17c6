package analytics_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/noah-isme/cellgroup-api/internal/analytics"
	"github.com/noah-isme/cellgroup-api/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekOf(t *testing.T) {
	Convey("Given a meeting on Tuesday Aug 5, 2025", t, func() {
		week := analytics.WeekOf(day(2025, time.August, 5))

		Convey("Then the bucket runs Monday Aug 4 to Sunday Aug 10", func() {
			So(week.Start, ShouldEqual, day(2025, time.August, 4))
			So(week.End, ShouldEqual, day(2025, time.August, 10))
			So(week.Label, ShouldEqual, "Aug 4–Aug 10, 2025")
		})
	})

	Convey("Given a meeting on a Sunday", t, func() {
		sunday := day(2025, time.August, 10)
		monday := day(2025, time.August, 11)

		Convey("Then it anchors to the Monday six days earlier", func() {
			So(analytics.WeekOf(sunday).Start, ShouldEqual, day(2025, time.August, 4))
		})

		Convey("And the following Monday starts a new label", func() {
			So(analytics.WeekLabel(sunday), ShouldNotEqual, analytics.WeekLabel(monday))
			So(analytics.WeekLabel(monday), ShouldEqual, "Aug 11–Aug 17, 2025")
		})
	})

	Convey("Given every day of a year", t, func() {
		Convey("Then each date lies within its bucket and same-week dates share the label", func() {
			for d := day(2024, time.January, 1); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
				week := analytics.WeekOf(d)
				So(d.Before(week.Start), ShouldBeFalse)
				So(d.After(week.Start.AddDate(0, 0, 6)), ShouldBeFalse)
				So(week.Start.Weekday(), ShouldEqual, time.Monday)
				So(analytics.WeekLabel(week.Start.AddDate(0, 0, 3)), ShouldEqual, week.Label)
			}
		})
	})

	Convey("Given a time late in the evening in another location", t, func() {
		loc := time.FixedZone("UTC+8", 8*3600)
		late := time.Date(2025, time.August, 10, 23, 30, 0, 0, loc)

		Convey("Then the caller's calendar date decides the week", func() {
			So(analytics.WeekLabel(late), ShouldEqual, "Aug 4–Aug 10, 2025")
		})
	})

	Convey("Given a week spanning a year boundary", t, func() {
		week := analytics.WeekOf(day(2025, time.January, 1))

		Convey("Then the label carries the Sunday's year", func() {
			So(week.Label, ShouldEqual, "Dec 30–Jan 5, 2025")
		})
	})
}

func TestWeekLabelParsing(t *testing.T) {
	Convey("Given a label", t, func() {
		Convey("When it is well formed", func() {
			end, err := analytics.ParseWeekEnd("Dec 30–Jan 5, 2025")
			So(err, ShouldBeNil)
			So(end, ShouldEqual, day(2025, time.January, 5))

			week, err := analytics.ParseWeek("Dec 30–Jan 5, 2025")
			So(err, ShouldBeNil)
			So(week.Start, ShouldEqual, day(2024, time.December, 30))
		})

		Convey("When it is missing the separator", func() {
			_, err := analytics.ParseWeekEnd("Aug 10, 2025")
			So(err, ShouldNotBeNil)
		})

		Convey("When it does not describe a Monday–Sunday span", func() {
			_, err := analytics.ParseWeek("Aug 5–Aug 11, 2025")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given several labels", t, func() {
		labels := []string{"Dec 30–Jan 5, 2025", "Dec 23–Dec 29, 2024", "garbage", "Jan 6–Jan 12, 2025"}

		Convey("Then the latest is the one with the greatest Sunday", func() {
			latest, ok := analytics.LatestLabel(labels)
			So(ok, ShouldBeTrue)
			So(latest, ShouldEqual, "Jan 6–Jan 12, 2025")
		})

		Convey("And no labels yields nothing", func() {
			_, ok := analytics.LatestLabel(nil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestBucketReports(t *testing.T) {
	Convey("Given reports across two weeks out of order", t, func() {
		reports := []models.WeeklyReport{
			{ID: "r3", CellGroupID: "g1", DateOfMeeting: day(2025, time.January, 12)},
			{ID: "r2", CellGroupID: "g2", DateOfMeeting: day(2025, time.January, 7)},
			{ID: "r1", CellGroupID: "g1", DateOfMeeting: day(2025, time.January, 7)},
			{ID: "r0", CellGroupID: "g1", DateOfMeeting: day(2025, time.January, 3)},
		}

		buckets := analytics.BucketReports(reports)

		Convey("Then buckets are ordered oldest first with ids by date then id", func() {
			So(len(buckets), ShouldEqual, 2)
			So(buckets[0].Label, ShouldEqual, "Dec 30–Jan 5, 2025")
			So(buckets[0].ReportIDs, ShouldResemble, []string{"r0"})
			So(buckets[1].Label, ShouldEqual, "Jan 6–Jan 12, 2025")
			So(buckets[1].ReportIDs, ShouldResemble, []string{"r1", "r2", "r3"})
		})

		Convey("And only the newest bucket is flagged latest", func() {
			So(buckets[0].Latest, ShouldBeFalse)
			So(buckets[1].Latest, ShouldBeTrue)
		})
	})

	Convey("Given no reports", t, func() {
		So(analytics.BucketReports(nil), ShouldBeEmpty)
		_, ok := analytics.LatestWeek(nil)
		So(ok, ShouldBeFalse)
	})
}
