// Package model holds the plain entity types exchanged between the HTTP
// layer and the repositories. Entities never reference each other in memory;
// relationships live entirely in the persisted key layout.
package model

// Default display colors, matching what the frontend assigns
const (
	DefaultEventColor   = "#3788d8"
	DefaultProjectColor = "#FF9900"
)

// Event is a calendar event owned by a project and scoped to a user
type Event struct {
	UserID      string `json:"userId"`
	EventID     string `json:"eventId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	WeekOfYear  string `json:"weekOfYear"`
	AllDay      bool   `json:"allDay"`
	Color       string `json:"color"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`

	// Owning project plus fields denormalized onto the item for display
	ProjectID          string `json:"projectId,omitempty"`
	ProjectName        string `json:"projectName,omitempty"`
	ProjectDescription string `json:"projectDescription,omitempty"`
	OwnerID            string `json:"ownerId,omitempty"`
}

// EventUpdate is the typed partial update for an event. Nil fields are left
// untouched. A startDate change also moves the event's week label and its
// date-index sort key.
type EventUpdate struct {
	Title       *string
	Description *string
	StartDate   *string
	EndDate     *string
	AllDay      *bool
	Color       *string
}

// IsEmpty reports whether the update carries no fields
func (u EventUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.StartDate == nil &&
		u.EndDate == nil && u.AllDay == nil && u.Color == nil
}

// EventScope describes which events a read request is asking for. The
// repository picks the access path from whichever filters are present.
type EventScope struct {
	UserID     string
	ProjectID  string
	StartDate  string
	EndDate    string
	WeekOfYear string
}
