package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

const memberColumns = "id, cell_group_id, first_name, last_name, is_leader, created_at, updated_at"

// MemberRepository reads cell group rosters.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository constructs a MemberRepository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// ListByGroup returns the current roster of a cell group.
func (r *MemberRepository) ListByGroup(ctx context.Context, groupID string) ([]models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE cell_group_id = $1 ORDER BY first_name ASC, last_name ASC, id ASC"
	var members []models.Member
	if err := r.db.SelectContext(ctx, &members, query, groupID); err != nil {
		return nil, fmt.Errorf("list members of %s: %w", groupID, err)
	}
	return members, nil
}

// FindByIDs resolves members regardless of their current group. Unknown ids are simply absent.
func (r *MemberRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := "SELECT " + memberColumns + " FROM members WHERE id = ANY($1) ORDER BY id ASC"
	var members []models.Member
	if err := r.db.SelectContext(ctx, &members, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	return members, nil
}
