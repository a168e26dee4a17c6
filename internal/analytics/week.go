// Package analytics derives attendance, health, trend and visitor facts from a
// snapshot of persisted cell group data. Every function is pure: it reads the
// values it is given and returns new values.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

const (
	labelDayLayout  = "Jan 2"
	labelEndLayout  = "Jan 2, 2006"
	labelSeparator  = "–"
	daysAfterMonday = 6
)

// CalendarDate strips time-of-day and location, keeping the caller's calendar date.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekOf returns the Monday–Sunday bucket containing date.
func WeekOf(date time.Time) models.WeekBucket {
	day := CalendarDate(date)
	weekday := int(day.Weekday())
	diff := 1 - weekday
	if weekday == 0 {
		diff = -6
	}
	start := day.AddDate(0, 0, diff)
	end := start.AddDate(0, 0, daysAfterMonday)
	return models.WeekBucket{
		Label: start.Format(labelDayLayout) + labelSeparator + end.Format(labelEndLayout),
		Start: start,
		End:   end,
	}
}

// WeekLabel is the grouping key of the week containing date, e.g. "Aug 4–Aug 10, 2025".
func WeekLabel(date time.Time) string {
	return WeekOf(date).Label
}

// ParseWeekEnd recovers the Sunday end date encoded in a week label.
func ParseWeekEnd(label string) (time.Time, error) {
	idx := strings.Index(label, labelSeparator)
	if idx < 0 {
		return time.Time{}, fmt.Errorf("week label %q: missing separator", label)
	}
	end, err := time.Parse(labelEndLayout, strings.TrimSpace(label[idx+len(labelSeparator):]))
	if err != nil {
		return time.Time{}, fmt.Errorf("week label %q: %w", label, err)
	}
	return end, nil
}

// ParseWeek rebuilds the bucket a label was produced from.
func ParseWeek(label string) (models.WeekBucket, error) {
	end, err := ParseWeekEnd(label)
	if err != nil {
		return models.WeekBucket{}, err
	}
	week := WeekOf(end)
	if week.Label != label {
		return models.WeekBucket{}, fmt.Errorf("week label %q: not a Monday–Sunday span", label)
	}
	return week, nil
}

// BucketReports groups reports by week, ordered oldest week first. Report ids
// inside a bucket follow meeting date then id. The newest bucket is flagged Latest.
func BucketReports(reports []models.WeeklyReport) []models.WeekBucket {
	sorted := SortReports(reports)
	index := make(map[string]int)
	var buckets []models.WeekBucket
	for _, report := range sorted {
		week := WeekOf(report.DateOfMeeting)
		pos, ok := index[week.Label]
		if !ok {
			pos = len(buckets)
			index[week.Label] = pos
			buckets = append(buckets, week)
		}
		buckets[pos].ReportIDs = append(buckets[pos].ReportIDs, report.ID)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	if latest, ok := LatestWeek(buckets); ok {
		for i := range buckets {
			buckets[i].Latest = buckets[i].Label == latest.Label
		}
	}
	return buckets
}

// LatestWeek picks the bucket whose Sunday end date is greatest.
func LatestWeek(buckets []models.WeekBucket) (models.WeekBucket, bool) {
	if len(buckets) == 0 {
		return models.WeekBucket{}, false
	}
	latest := buckets[0]
	for _, b := range buckets[1:] {
		if b.End.After(latest.End) {
			latest = b
		}
	}
	return latest, true
}

// LatestLabel picks the label with the greatest parsed Sunday end date.
// Labels that cannot be parsed are skipped.
func LatestLabel(labels []string) (string, bool) {
	var (
		best    string
		bestEnd time.Time
		found   bool
	)
	for _, label := range labels {
		end, err := ParseWeekEnd(label)
		if err != nil {
			continue
		}
		if !found || end.After(bestEnd) {
			best, bestEnd, found = label, end, true
		}
	}
	return best, found
}

// ReportsInWeek returns the reports whose meeting date falls inside week.
func ReportsInWeek(reports []models.WeeklyReport, week models.WeekBucket) []models.WeeklyReport {
	var out []models.WeeklyReport
	for _, report := range reports {
		if week.Contains(report.DateOfMeeting) {
			out = append(out, report)
		}
	}
	return out
}
