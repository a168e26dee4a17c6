package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

var (
	// ErrStaleReport is returned when an update raced another writer.
	ErrStaleReport = errors.New("weekly report was modified concurrently")
	// ErrMalformedReport flags a persisted row the engine cannot order.
	ErrMalformedReport = errors.New("weekly report has no meeting date")
)

const weeklyReportColumns = `id, cell_group_id, date_of_meeting, attendees, absentees, visitors, attendance, leader_id, topic,
        testimonies, prayer_requests, follow_ups, challenges, support_needed, created_at, updated_at`

type weeklyReportRow struct {
	ID            string         `db:"id"`
	CellGroupID   string         `db:"cell_group_id"`
	DateOfMeeting time.Time      `db:"date_of_meeting"`
	Attendees     pq.StringArray `db:"attendees"`
	Absentees     pq.StringArray `db:"absentees"`
	Visitors      pq.StringArray `db:"visitors"`
	Attendance    *int           `db:"attendance"`
	LeaderID      string         `db:"leader_id"`
	Topic         string         `db:"topic"`
	models.ReportDetails
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row weeklyReportRow) toModel() (models.WeeklyReport, error) {
	if row.DateOfMeeting.IsZero() {
		return models.WeeklyReport{}, fmt.Errorf("report %s: %w", row.ID, ErrMalformedReport)
	}
	return models.WeeklyReport{
		ID:            row.ID,
		CellGroupID:   row.CellGroupID,
		DateOfMeeting: row.DateOfMeeting,
		Attendees:     nonNil(row.Attendees),
		Absentees:     nonNil(row.Absentees),
		Visitors:      nonNil(row.Visitors),
		Attendance:    row.Attendance,
		LeaderID:      row.LeaderID,
		Topic:         row.Topic,
		ReportDetails: row.ReportDetails,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func nonNil(ids pq.StringArray) []string {
	if ids == nil {
		return []string{}
	}
	return []string(ids)
}

// WeeklyReportRepository persists weekly meeting reports.
type WeeklyReportRepository struct {
	db *sqlx.DB
}

// NewWeeklyReportRepository constructs a WeeklyReportRepository.
func NewWeeklyReportRepository(db *sqlx.DB) *WeeklyReportRepository {
	return &WeeklyReportRepository{db: db}
}

// List returns reports matching filter ordered by meeting date then id.
func (r *WeeklyReportRepository) List(ctx context.Context, filter models.WeeklyReportFilter) ([]models.WeeklyReport, error) {
	var (
		conditions = []string{"1=1"}
		args       []interface{}
	)
	if filter.CellGroupID != "" {
		args = append(args, filter.CellGroupID)
		conditions = append(conditions, fmt.Sprintf("cell_group_id = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("date_of_meeting >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("date_of_meeting <= $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM weekly_reports WHERE %s ORDER BY date_of_meeting ASC, id ASC", weeklyReportColumns, strings.Join(conditions, " AND "))

	var rows []weeklyReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weekly reports: %w", err)
	}

	reports := make([]models.WeeklyReport, 0, len(rows))
	for _, row := range rows {
		report, err := row.toModel()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// FindByID fetches a report. Missing rows return sql.ErrNoRows.
func (r *WeeklyReportRepository) FindByID(ctx context.Context, id string) (*models.WeeklyReport, error) {
	query := "SELECT " + weeklyReportColumns + " FROM weekly_reports WHERE id = $1"
	var row weeklyReportRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find weekly report %s: %w", id, err)
	}
	report, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Create inserts a report, assigning id and timestamps.
func (r *WeeklyReportRepository) Create(ctx context.Context, report *models.WeeklyReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	report.CreatedAt = now
	report.UpdatedAt = now

	const query = `INSERT INTO weekly_reports (id, cell_group_id, date_of_meeting, attendees, absentees, visitors, attendance, leader_id, topic,
        testimonies, prayer_requests, follow_ups, challenges, support_needed, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.CellGroupID, report.DateOfMeeting,
		pq.Array(report.Attendees), pq.Array(report.Absentees), pq.Array(report.Visitors),
		report.Attendance, report.LeaderID, report.Topic,
		report.Testimonies, report.PrayerRequests, report.FollowUps, report.Challenges, report.SupportNeeded,
		report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create weekly report: %w", err)
	}
	return nil
}

// Update replaces every mutable field of a report when its stored version still equals expected.
// A missing row returns sql.ErrNoRows and a newer stored version returns ErrStaleReport.
func (r *WeeklyReportRepository) Update(ctx context.Context, report *models.WeeklyReport, expected time.Time) error {
	now := time.Now().UTC().Truncate(time.Microsecond)

	const query = `UPDATE weekly_reports SET date_of_meeting = $1, attendees = $2, absentees = $3, visitors = $4, attendance = $5,
        leader_id = $6, topic = $7, testimonies = $8, prayer_requests = $9, follow_ups = $10, challenges = $11,
        support_needed = $12, updated_at = $13 WHERE id = $14 AND updated_at = $15`
	result, err := r.db.ExecContext(ctx, query,
		report.DateOfMeeting, pq.Array(report.Attendees), pq.Array(report.Absentees), pq.Array(report.Visitors),
		report.Attendance, report.LeaderID, report.Topic,
		report.Testimonies, report.PrayerRequests, report.FollowUps, report.Challenges, report.SupportNeeded,
		now, report.ID, expected,
	)
	if err != nil {
		return fmt.Errorf("update weekly report %s: %w", report.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update weekly report %s: %w", report.ID, err)
	}
	if affected == 0 {
		var exists int
		if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM weekly_reports WHERE id = $1", report.ID); err != nil {
			if err == sql.ErrNoRows {
				return err
			}
			return fmt.Errorf("check weekly report %s: %w", report.ID, err)
		}
		return ErrStaleReport
	}
	report.UpdatedAt = now
	return nil
}

// Delete removes a report. Missing rows return sql.ErrNoRows.
func (r *WeeklyReportRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM weekly_reports WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete weekly report %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete weekly report %s: %w", id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
