package models

import "time"

// ReportDetails holds the optional free-text sections of a weekly report.
type ReportDetails struct {
	Testimonies    *string `db:"testimonies" json:"testimonies,omitempty"`
	PrayerRequests *string `db:"prayer_requests" json:"prayer_requests,omitempty"`
	FollowUps      *string `db:"follow_ups" json:"follow_ups,omitempty"`
	Challenges     *string `db:"challenges" json:"challenges,omitempty"`
	SupportNeeded  *string `db:"support_needed" json:"support_needed,omitempty"`
}

// WeeklyReport records one meeting instance of a cell group.
type WeeklyReport struct {
	ID            string    `json:"id"`
	CellGroupID   string    `json:"cell_group_id"`
	DateOfMeeting time.Time `json:"date_of_meeting"`
	Attendees     []string  `json:"attendees"`
	Absentees     []string  `json:"absentees"`
	Visitors      []string  `json:"visitors"`
	Attendance    *int      `json:"attendance,omitempty"`
	LeaderID      string    `json:"leader_id"`
	Topic         string    `json:"topic"`
	ReportDetails
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttendanceCount is the number of attendees, falling back to the explicit
// attendance figure when no attendee list was recorded.
func (r WeeklyReport) AttendanceCount() int {
	if r.HeadcountOnly() {
		return *r.Attendance
	}
	return len(r.Attendees)
}

// HeadcountOnly reports whether the report carries an attendance figure but no attendee list.
// Such a report says nothing about which members were present.
func (r WeeklyReport) HeadcountOnly() bool {
	return len(r.Attendees) == 0 && r.Attendance != nil
}

// WeeklyReportFilter scopes report listings.
type WeeklyReportFilter struct {
	CellGroupID string
	DateFrom    *time.Time
	DateTo      *time.Time
}

// HealthHistoryRecord is an append-only audit row of a group's health score.
type HealthHistoryRecord struct {
	ID          string    `db:"id" json:"id"`
	CellGroupID string    `db:"cell_group_id" json:"cell_group_id"`
	ReportDate  time.Time `db:"report_date" json:"report_date"`
	HealthScore float64   `db:"health_score" json:"health_score"`
	Attendance  int       `db:"attendance" json:"attendance"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
