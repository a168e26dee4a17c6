package models

import "time"

// CellGroup is a small recurring fellowship group with a leader and a member roster.
type CellGroup struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	ZoneID      string    `db:"zone_id" json:"zone_id"`
	LeaderID    *string   `db:"leader_id" json:"leader_id,omitempty"`
	Location    string    `db:"location" json:"location"`
	StatusID    string    `db:"status_id" json:"status_id"`
	HealthScore float64   `db:"health_score" json:"health_score"`
	MemberCount int       `db:"member_count" json:"member_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CellGroupFilter scopes cell group listings.
type CellGroupFilter struct {
	ZoneID   string
	StatusID string
	Search   string
}

// Member belongs to exactly one cell group roster.
type Member struct {
	ID          string    `db:"id" json:"id"`
	CellGroupID string    `db:"cell_group_id" json:"cell_group_id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	IsLeader    bool      `db:"is_leader" json:"is_leader"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (m Member) FullName() string {
	switch {
	case m.LastName == "":
		return m.FirstName
	case m.FirstName == "":
		return m.LastName
	default:
		return m.FirstName + " " + m.LastName
	}
}

// MemberIDs returns the ids of the roster in order.
func MemberIDs(members []Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
