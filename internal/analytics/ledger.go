package analytics

import (
	"sort"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

// FollowUpStreakThreshold is the consecutive-absence count that prompts a member follow-up.
const FollowUpStreakThreshold = 3

// SortReports returns a copy ordered by meeting date ascending, ties broken by id.
func SortReports(reports []models.WeeklyReport) []models.WeeklyReport {
	sorted := make([]models.WeeklyReport, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := CalendarDate(sorted[i].DateOfMeeting), CalendarDate(sorted[j].DateOfMeeting)
		if di.Equal(dj) {
			return sorted[i].ID < sorted[j].ID
		}
		return di.Before(dj)
	})
	return sorted
}

// SortReportsDesc returns a copy ordered newest first; the tie-break stays id ascending.
func SortReportsDesc(reports []models.WeeklyReport) []models.WeeklyReport {
	sorted := make([]models.WeeklyReport, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := CalendarDate(sorted[i].DateOfMeeting), CalendarDate(sorted[j].DateOfMeeting)
		if di.Equal(dj) {
			return sorted[i].ID < sorted[j].ID
		}
		return di.After(dj)
	})
	return sorted
}

// ReportsForGroup keeps only the reports of one cell group.
func ReportsForGroup(reports []models.WeeklyReport, cellGroupID string) []models.WeeklyReport {
	var out []models.WeeklyReport
	for _, report := range reports {
		if report.CellGroupID == cellGroupID {
			out = append(out, report)
		}
	}
	return out
}

// CheckRoster returns the attendee ids that are not part of roster, in input order.
func CheckRoster(roster, attendees []string) []string {
	members := toSet(roster)
	var unknown []string
	for _, id := range attendees {
		if _, ok := members[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

// DeriveAbsentees returns roster \ attendees, preserving roster order.
func DeriveAbsentees(roster, attendees []string) []string {
	present := toSet(attendees)
	absentees := make([]string, 0, len(roster))
	seen := make(map[string]struct{}, len(roster))
	for _, id := range roster {
		if _, ok := present[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		absentees = append(absentees, id)
	}
	return absentees
}

// ConsecutiveAbsences walks the group's reports newest first and counts how many
// list memberID as absent before the first one that does not. Headcount-only
// reports are skipped: they neither extend nor break a streak.
func ConsecutiveAbsences(reports []models.WeeklyReport, cellGroupID, memberID string) int {
	streak := 0
	for _, report := range SortReportsDesc(ReportsForGroup(reports, cellGroupID)) {
		if report.HeadcountOnly() {
			continue
		}
		if !contains(report.Absentees, memberID) {
			break
		}
		streak++
	}
	return streak
}

// NeedsFollowUp reports whether a streak reaches the follow-up threshold.
func NeedsFollowUp(streak int) bool {
	return streak >= FollowUpStreakThreshold
}

// MemberStreaks computes streaks for the current roster plus any member that
// older reports still list as absent. known resolves names for members outside
// the roster; ids missing from both are flagged Unresolved rather than given a name.
func MemberStreaks(reports []models.WeeklyReport, cellGroupID string, roster []models.Member, known map[string]models.Member) []models.MemberStreak {
	groupReports := ReportsForGroup(reports, cellGroupID)
	streaks := make([]models.MemberStreak, 0, len(roster))
	seen := make(map[string]struct{}, len(roster))
	for _, member := range roster {
		if _, dup := seen[member.ID]; dup {
			continue
		}
		seen[member.ID] = struct{}{}
		streak := ConsecutiveAbsences(groupReports, cellGroupID, member.ID)
		streaks = append(streaks, models.MemberStreak{
			MemberID:      member.ID,
			CellGroupID:   cellGroupID,
			Name:          member.FullName(),
			InRoster:      true,
			Streak:        streak,
			NeedsFollowUp: NeedsFollowUp(streak),
		})
	}

	var historical []string
	for _, report := range SortReportsDesc(groupReports) {
		for _, id := range report.Absentees {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			historical = append(historical, id)
		}
	}
	sort.Strings(historical)
	for _, id := range historical {
		streak := ConsecutiveAbsences(groupReports, cellGroupID, id)
		entry := models.MemberStreak{
			MemberID:      id,
			CellGroupID:   cellGroupID,
			Streak:        streak,
			NeedsFollowUp: NeedsFollowUp(streak),
		}
		if member, ok := known[id]; ok {
			entry.Name = member.FullName()
		} else {
			entry.Unresolved = true
		}
		streaks = append(streaks, entry)
	}
	return streaks
}

// HistoricalMemberIDs lists absentee ids in the group's reports that are not on roster.
func HistoricalMemberIDs(reports []models.WeeklyReport, cellGroupID string, roster []models.Member) []string {
	onRoster := toSet(models.MemberIDs(roster))
	seen := make(map[string]struct{})
	var ids []string
	for _, report := range ReportsForGroup(reports, cellGroupID) {
		for _, id := range report.Absentees {
			if _, ok := onRoster[id]; ok {
				continue
			}
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

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
