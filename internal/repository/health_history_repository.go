package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

// HealthHistoryRepository appends and reads health audit rows. History rows are never updated or deleted.
type HealthHistoryRepository struct {
	db *sqlx.DB
}

// NewHealthHistoryRepository constructs a HealthHistoryRepository.
func NewHealthHistoryRepository(db *sqlx.DB) *HealthHistoryRepository {
	return &HealthHistoryRepository{db: db}
}

// AppendAndScore appends a history record and makes its score the group's current health score
// in one transaction. A missing group rolls the insert back and returns sql.ErrNoRows.
func (r *HealthHistoryRepository) AppendAndScore(ctx context.Context, record *models.HealthHistoryRecord) (err error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin health history transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO cell_group_health_history (id, cell_group_id, report_date, health_score, attendance, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err = tx.ExecContext(ctx, insertQuery, record.ID, record.CellGroupID, record.ReportDate, record.HealthScore, record.Attendance, record.Notes, record.CreatedAt); err != nil {
		return fmt.Errorf("create health history: %w", err)
	}

	const updateQuery = `UPDATE cell_groups SET health_score = $1, updated_at = $2 WHERE id = $3`
	result, err := tx.ExecContext(ctx, updateQuery, record.HealthScore, record.CreatedAt, record.CellGroupID)
	if err != nil {
		return fmt.Errorf("update health score %s: %w", record.CellGroupID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update health score %s: %w", record.CellGroupID, err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit health history: %w", err)
	}
	return nil
}

// ListByGroup returns a group's history oldest first.
func (r *HealthHistoryRepository) ListByGroup(ctx context.Context, groupID string) ([]models.HealthHistoryRecord, error) {
	const query = `SELECT id, cell_group_id, report_date, health_score, attendance, notes, created_at
        FROM cell_group_health_history WHERE cell_group_id = $1 ORDER BY report_date ASC, created_at ASC, id ASC`
	var records []models.HealthHistoryRecord
	if err := r.db.SelectContext(ctx, &records, query, groupID); err != nil {
		return nil, fmt.Errorf("list health history of %s: %w", groupID, err)
	}
	return records, nil
}
