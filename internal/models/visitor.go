package models

import "time"

// VisitorStatus tracks how far a visitor has progressed toward membership.
type VisitorStatus string

const (
	VisitorStatusNew        VisitorStatus = "new"
	VisitorStatusFollowedUp VisitorStatus = "followed_up"
	VisitorStatusConverted  VisitorStatus = "converted"
)

// Valid returns true when the status is a supported value.
func (s VisitorStatus) Valid() bool {
	switch s {
	case VisitorStatusNew, VisitorStatusFollowedUp, VisitorStatusConverted:
		return true
	default:
		return false
	}
}

// FollowUpStatus is the cyclic follow-up workflow state of a visitor.
type FollowUpStatus string

const (
	FollowUpPending    FollowUpStatus = "pending"
	FollowUpInProgress FollowUpStatus = "in_progress"
	FollowUpDone       FollowUpStatus = "done"
)

// followUpTransitions wraps done back to pending.
var followUpTransitions = map[FollowUpStatus]FollowUpStatus{
	FollowUpPending:    FollowUpInProgress,
	FollowUpInProgress: FollowUpDone,
	FollowUpDone:       FollowUpPending,
}

// Normalize maps unknown or empty values to pending.
func (s FollowUpStatus) Normalize() FollowUpStatus {
	if _, ok := followUpTransitions[s]; ok {
		return s
	}
	return FollowUpPending
}

// Advance returns the next state in the cycle.
func (s FollowUpStatus) Advance() FollowUpStatus {
	return followUpTransitions[s.Normalize()]
}

// Visitor is a non-member who attended one or more meetings.
type Visitor struct {
	ID             string         `db:"id" json:"id"`
	CellGroupID    *string        `db:"cell_group_id" json:"cell_group_id,omitempty"`
	Name           string         `db:"name" json:"name"`
	Phone          *string        `db:"phone" json:"phone,omitempty"`
	Status         VisitorStatus  `db:"status" json:"status"`
	FollowUpStatus FollowUpStatus `db:"follow_up_status" json:"follow_up_status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Converted reports whether the visitor has become a member.
func (v Visitor) Converted() bool {
	return v.Status == VisitorStatusConverted
}

// VisitorFilter scopes active visitor queries.
type VisitorFilter struct {
	Search      string
	CellGroupID string
}
