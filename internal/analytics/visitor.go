package analytics

import (
	"sort"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

// VisitCount counts the group's reports that list visitorID.
func VisitCount(reports []models.WeeklyReport, cellGroupID, visitorID string) int {
	count := 0
	for _, report := range ReportsForGroup(reports, cellGroupID) {
		if contains(report.Visitors, visitorID) {
			count++
		}
	}
	return count
}

// IsRepeatVisitor reports whether a visitor came more than once.
func IsRepeatVisitor(visits int) bool {
	return visits > 1
}

// VisitorRecurrences counts visits for every visitor referenced by the group's
// reports. Visitors missing from known are flagged Unresolved. Converted
// visitors are kept so historical reports still render.
func VisitorRecurrences(reports []models.WeeklyReport, cellGroupID string, known map[string]models.Visitor) []models.VisitorRecurrence {
	counts := make(map[string]int)
	for _, report := range ReportsForGroup(reports, cellGroupID) {
		seen := make(map[string]struct{}, len(report.Visitors))
		for _, id := range report.Visitors {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			counts[id]++
		}
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.VisitorRecurrence, 0, len(ids))
	for _, id := range ids {
		entry := models.VisitorRecurrence{
			VisitorID:   id,
			CellGroupID: cellGroupID,
			Visits:      counts[id],
			Repeat:      IsRepeatVisitor(counts[id]),
		}
		if v, ok := known[id]; ok {
			entry.Name = v.Name
			entry.Status = v.Status
		} else {
			entry.Unresolved = true
		}
		out = append(out, entry)
	}
	return out
}

// ReferencedVisitorIDs lists every visitor id in the group's reports, sorted.
func ReferencedVisitorIDs(reports []models.WeeklyReport, cellGroupID string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, report := range ReportsForGroup(reports, cellGroupID) {
		for _, id := range report.Visitors {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ActiveVisitors drops converted visitors.
func ActiveVisitors(visitors []models.Visitor) []models.Visitor {
	active := make([]models.Visitor, 0, len(visitors))
	for _, v := range visitors {
		if v.Converted() {
			continue
		}
		active = append(active, v)
	}
	return active
}
