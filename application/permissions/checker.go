// Package permissions resolves what a caller may do to an entity. Checks are
// deny-by-default: a missing record or membership means no.
package permissions

import (
	"context"

	"calendar-backend/application/ports"

	"go.uber.org/zap"
)

// Checker answers permission questions from the persisted memberships
type Checker struct {
	projects ports.ProjectRepository
	tasks    ports.TaskRepository
	logger   *zap.Logger
}

// NewChecker creates a permission checker
func NewChecker(projects ports.ProjectRepository, tasks ports.TaskRepository, logger *zap.Logger) *Checker {
	return &Checker{projects: projects, tasks: tasks, logger: logger}
}

var _ ports.PermissionChecker = (*Checker)(nil)

// CanManageProject reports whether the user holds the OWNER role on the
// project. Non-owners and non-members cannot mutate or delete it.
func (c *Checker) CanManageProject(ctx context.Context, projectID, userID string) (bool, error) {
	membership, err := c.projects.GetMembership(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	if !membership.IsOwner() {
		c.logger.Debug("project mutation denied",
			zap.String("project_id", projectID),
			zap.String("user_id", userID),
		)
		return false, nil
	}
	return true, nil
}

// CanManageTask reports whether the user is the task's assignee or owns the
// task's project. A missing task is a denial, not an error; the handler
// decides how to surface it.
func (c *Checker) CanManageTask(ctx context.Context, taskID, userID string) (bool, error) {
	task, err := c.tasks.Get(ctx, taskID)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}
	if task.AssigneeID != "" && task.AssigneeID == userID {
		return true, nil
	}
	return c.CanManageProject(ctx, task.ProjectID, userID)
}
