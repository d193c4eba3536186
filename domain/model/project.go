package model

// Project statuses
const (
	ProjectStatusActive = "ACTIVE"
)

// Project is the root entity a user owns and scopes events and tasks under
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	OwnerID     string `json:"ownerId"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// ProjectUpdate is the typed partial update for a project
type ProjectUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Status      *string
}

// IsEmpty reports whether the update carries no fields
func (u ProjectUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Color == nil && u.Status == nil
}
