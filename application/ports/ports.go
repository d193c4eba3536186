// Package ports defines the interfaces the HTTP layer depends on, so
// handlers can be exercised against fakes.
package ports

import (
	"context"

	"calendar-backend/domain/model"
)

// EventRepository persists calendar events
type EventRepository interface {
	// Create writes a new event with a conditional put; an existing
	// (project, event) key pair fails with a duplicate-key error.
	Create(ctx context.Context, event *model.Event) error

	// Update applies a typed partial update to an existing event key.
	// Absent fields are untouched; the operation succeeds even when no
	// item matches (idempotent upsert of the named fields).
	Update(ctx context.Context, projectID, eventID string, fields model.EventUpdate) error

	// Delete removes an event; deleting a missing event succeeds.
	Delete(ctx context.Context, projectID, eventID string) error

	// List returns every event matching the scope, fully paged.
	List(ctx context.Context, scope model.EventScope) ([]model.Event, error)
}

// ProjectRepository persists projects and their memberships
type ProjectRepository interface {
	// Create writes the project and its OWNER membership in one
	// transactional write.
	Create(ctx context.Context, project *model.Project) error

	ListByUser(ctx context.Context, userID string) ([]model.Project, error)
	Update(ctx context.Context, projectID string, fields model.ProjectUpdate) error

	// Delete cascades: the project record, all memberships, all events and
	// all tasks in the partition, including task primary records and
	// assignee relations. Best-effort, not transactional.
	Delete(ctx context.Context, projectID string) error

	// GetMembership returns the membership record or nil when absent
	GetMembership(ctx context.Context, projectID, userID string) (*model.Membership, error)
}

// TaskRepository persists tasks and their relation records
type TaskRepository interface {
	// Create writes the task record, the project relation and, when an
	// assignee is set, the user relation in one transactional write.
	Create(ctx context.Context, task *model.Task) error

	// Get returns the task record or nil when absent
	Get(ctx context.Context, taskID string) (*model.Task, error)

	ListByProject(ctx context.Context, projectID string) ([]model.Task, error)
	ListByUser(ctx context.Context, userID string) ([]model.Task, error)

	// Update applies a typed partial update and keeps the assignee
	// relation record in step with assignee changes.
	Update(ctx context.Context, taskID string, fields model.TaskUpdate) error

	// Delete removes the task record and both relation records.
	// Best-effort: a partial failure can leave a stale relation behind.
	Delete(ctx context.Context, taskID string) error
}

// PermissionChecker resolves whether a user may mutate an entity
type PermissionChecker interface {
	CanManageProject(ctx context.Context, projectID, userID string) (bool, error)
	CanManageTask(ctx context.Context, taskID, userID string) (bool, error)
}

// EventPublisher emits entity-change notifications after successful
// mutations. Publishing is best-effort; failures must not fail the request.
type EventPublisher interface {
	Publish(ctx context.Context, detailType string, detail interface{}) error
}
