package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

const visitorColumns = "id, cell_group_id, name, phone, status, follow_up_status, created_at, updated_at"

// VisitorRepository persists visitors and their workflow state.
type VisitorRepository struct {
	db *sqlx.DB
}

// NewVisitorRepository constructs a VisitorRepository.
func NewVisitorRepository(db *sqlx.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

// List returns active visitors. Converted visitors never appear in selection lists.
func (r *VisitorRepository) List(ctx context.Context, filter models.VisitorFilter) ([]models.Visitor, error) {
	args := []interface{}{models.VisitorStatusConverted}
	conditions := []string{"status <> $1"}
	if filter.CellGroupID != "" {
		args = append(args, filter.CellGroupID)
		conditions = append(conditions, fmt.Sprintf("cell_group_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM visitors WHERE %s ORDER BY name ASC, id ASC", visitorColumns, strings.Join(conditions, " AND "))
	var visitors []models.Visitor
	if err := r.db.SelectContext(ctx, &visitors, query, args...); err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	return visitors, nil
}

// FindByID fetches a visitor including converted ones. Missing rows return sql.ErrNoRows.
func (r *VisitorRepository) FindByID(ctx context.Context, id string) (*models.Visitor, error) {
	query := "SELECT " + visitorColumns + " FROM visitors WHERE id = $1"
	var visitor models.Visitor
	if err := r.db.GetContext(ctx, &visitor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find visitor %s: %w", id, err)
	}
	return &visitor, nil
}

// FindByIDs resolves visitors for report rendering, converted ones included.
func (r *VisitorRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Visitor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := "SELECT " + visitorColumns + " FROM visitors WHERE id = ANY($1) ORDER BY id ASC"
	var visitors []models.Visitor
	if err := r.db.SelectContext(ctx, &visitors, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find visitors: %w", err)
	}
	return visitors, nil
}

// Create inserts a visitor.
func (r *VisitorRepository) Create(ctx context.Context, visitor *models.Visitor) error {
	if visitor.ID == "" {
		visitor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if visitor.CreatedAt.IsZero() {
		visitor.CreatedAt = now
	}
	visitor.UpdatedAt = now
	const query = `INSERT INTO visitors (id, cell_group_id, name, phone, status, follow_up_status, created_at, updated_at)
        VALUES (:id, :cell_group_id, :name, :phone, :status, :follow_up_status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, visitor); err != nil {
		return fmt.Errorf("create visitor: %w", err)
	}
	return nil
}

// UpdateStatus sets the membership status of a visitor.
func (r *VisitorRepository) UpdateStatus(ctx context.Context, id string, status models.VisitorStatus) error {
	const query = `UPDATE visitors SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update visitor %s status: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update visitor %s status: %w", id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AdvanceFollowUp stores the next follow-up state and promotes a new visitor to followed_up in a
// single statement. Converted visitors are never touched; a missing or converted visitor returns
// sql.ErrNoRows. The stored visitor status is returned.
func (r *VisitorRepository) AdvanceFollowUp(ctx context.Context, id string, next models.FollowUpStatus) (models.VisitorStatus, error) {
	const query = `UPDATE visitors
        SET follow_up_status = $1,
            status = CASE WHEN status = $2 THEN $3 ELSE status END,
            updated_at = $4
        WHERE id = $5 AND status <> $6
        RETURNING status`
	var status string
	err := r.db.QueryRowxContext(ctx, query,
		string(next),
		string(models.VisitorStatusNew),
		string(models.VisitorStatusFollowedUp),
		time.Now().UTC(),
		id,
		string(models.VisitorStatusConverted),
	).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("advance visitor %s follow-up: %w", id, err)
	}
	return models.VisitorStatus(status), nil
}
