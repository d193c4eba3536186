package model

// Task statuses and priorities
const (
	TaskStatusTodo     = "TODO"
	TaskPriorityMedium = "MEDIUM"
)

// Task belongs to a project and is optionally assigned to a user. The task
// record itself is keyed by task id; the project and assignee linkages are
// separate relation records written alongside it.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	ProjectID   string `json:"projectId"`
	AssigneeID  string `json:"assigneeId,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// TaskUpdate is the typed partial update for a task. A non-nil AssigneeID
// also rewrites the user-task relation record; the empty string unassigns.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssigneeID  *string
	DueDate     *string
}

// IsEmpty reports whether the update carries no fields
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.AssigneeID == nil && u.DueDate == nil
}
