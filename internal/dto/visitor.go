package dto

// CreateVisitorRequest captures POST /visitors payload.
type CreateVisitorRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	CellGroupID *string `json:"cell_group_id,omitempty"`
}
