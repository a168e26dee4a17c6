package dto

import "time"

// ReportRequest captures POST /reports and PUT /reports/:id payloads. Absentees are never
// accepted from the caller; they are derived from the roster at submission time.
type ReportRequest struct {
	CellGroupID    string   `json:"cell_group_id" validate:"required"`
	DateOfMeeting  string   `json:"date_of_meeting" validate:"required,datetime=2006-01-02"`
	Attendees      []string `json:"attendees" validate:"dive,required"`
	Visitors       []string `json:"visitors" validate:"dive,required"`
	Attendance     *int     `json:"attendance,omitempty" validate:"omitempty,min=0"`
	LeaderID       string   `json:"leader_id"`
	Topic          string   `json:"topic" validate:"max=255"`
	Testimonies    *string  `json:"testimonies,omitempty" validate:"omitempty,max=5000"`
	PrayerRequests *string  `json:"prayer_requests,omitempty" validate:"omitempty,max=5000"`
	FollowUps      *string  `json:"follow_ups,omitempty" validate:"omitempty,max=5000"`
	Challenges     *string  `json:"challenges,omitempty" validate:"omitempty,max=5000"`
	SupportNeeded  *string  `json:"support_needed,omitempty" validate:"omitempty,max=5000"`
	// UpdatedAt is the version the caller last read. Only used on update.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
