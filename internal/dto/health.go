package dto

import "github.com/noah-isme/cellgroup-api/internal/models"

// HealthRecordRequest captures POST /cell-groups/:id/health-history payload.
type HealthRecordRequest struct {
	ReportDate  string   `json:"report_date" validate:"required,datetime=2006-01-02"`
	HealthScore *float64 `json:"health_score" validate:"required,min=0,max=100"`
	Attendance  int      `json:"attendance" validate:"min=0"`
	Notes       *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// HealthSummaryResponse is the tier plus aggregated history of one group.
type HealthSummaryResponse struct {
	CellGroupID    string               `json:"cell_group_id"`
	HealthScore    float64              `json:"health_score"`
	Tier           models.HealthTier    `json:"tier"`
	History        models.HealthSummary `json:"history"`
	AttendanceRate models.HealthSummary `json:"attendance_rate"`
}
