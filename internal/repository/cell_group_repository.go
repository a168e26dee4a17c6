package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

const cellGroupColumns = `g.id, g.name, g.zone_id, g.leader_id, g.location, g.status_id, g.health_score, g.created_at, g.updated_at,
        (SELECT COUNT(*) FROM members m WHERE m.cell_group_id = g.id) AS member_count`

// CellGroupRepository reads cell groups and writes their current health score.
type CellGroupRepository struct {
	db *sqlx.DB
}

// NewCellGroupRepository constructs a CellGroupRepository.
func NewCellGroupRepository(db *sqlx.DB) *CellGroupRepository {
	return &CellGroupRepository{db: db}
}

// List returns cell groups matching filter ordered by name.
func (r *CellGroupRepository) List(ctx context.Context, filter models.CellGroupFilter) ([]models.CellGroup, error) {
	var (
		conditions = []string{"1=1"}
		args       []interface{}
	)
	if filter.ZoneID != "" {
		args = append(args, filter.ZoneID)
		conditions = append(conditions, fmt.Sprintf("g.zone_id = $%d", len(args)))
	}
	if filter.StatusID != "" {
		args = append(args, filter.StatusID)
		conditions = append(conditions, fmt.Sprintf("g.status_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(g.name) LIKE $%d OR LOWER(g.location) LIKE $%d)", len(args), len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM cell_groups g WHERE %s ORDER BY g.name ASC, g.id ASC", cellGroupColumns, strings.Join(conditions, " AND "))

	var groups []models.CellGroup
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, fmt.Errorf("list cell groups: %w", err)
	}
	return groups, nil
}

// FindByID fetches a cell group. Missing rows return sql.ErrNoRows.
func (r *CellGroupRepository) FindByID(ctx context.Context, id string) (*models.CellGroup, error) {
	query := fmt.Sprintf("SELECT %s FROM cell_groups g WHERE g.id = $1", cellGroupColumns)
	var group models.CellGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find cell group %s: %w", id, err)
	}
	return &group, nil
}
