package dynamodb

import (
	"context"

	"calendar-backend/application/ports"
	"calendar-backend/domain/keys"
	"calendar-backend/domain/model"
	apperrors "calendar-backend/pkg/errors"
	"calendar-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskRepository persists tasks, their project linkage and their assignee
// linkage. The canonical record is keyed by task id; the linkages are
// relation records in the project and user partitions.
type TaskRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewTaskRepository creates a task repository over the store
func NewTaskRepository(store *Store, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{store: store, logger: logger}
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

// Create writes the task record, the project relation and, when assigned,
// the user relation in one transaction.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = model.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = model.TaskPriorityMedium
	}

	now := utils.NowRFC3339()
	task.CreatedAt = now
	task.UpdatedAt = now

	record, err := marshalItem(newTaskItem(task))
	if err != nil {
		return apperrors.NewDatabaseError("marshal_task", err)
	}
	projectRel, err := marshalItem(newProjectTaskRelation(task.ProjectID, task.ID))
	if err != nil {
		return apperrors.NewDatabaseError("marshal_task_relation", err)
	}

	items := []Item{record, projectRel}
	if task.AssigneeID != "" {
		userRel, err := marshalItem(newUserTaskRelation(task.AssigneeID, task.ID))
		if err != nil {
			return apperrors.NewDatabaseError("marshal_task_relation", err)
		}
		items = append(items, userRel)
	}

	if err := r.store.TransactPut(ctx, items...); err != nil {
		return err
	}

	r.logger.Info("task created",
		zap.String("task_id", task.ID),
		zap.String("project_id", task.ProjectID),
		zap.String("assignee_id", task.AssigneeID),
	)
	return nil
}

// Get returns the canonical task record, or nil when absent
func (r *TaskRepository) Get(ctx context.Context, taskID string) (*model.Task, error) {
	raw, err := r.store.Get(ctx, Key{PK: keys.Task(taskID), SK: keys.Task(taskID)})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var item taskItem
	if err := unmarshalItem(raw, &item); err != nil {
		return nil, apperrors.NewDatabaseError("unmarshal_task", err)
	}
	task := item.toTask()
	return &task, nil
}

// ListByProject returns every task linked into the project partition
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	return r.listRelations(ctx, RouteTaskQuery("", projectID))
}

// ListByUser returns every task assigned to the user
func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	return r.listRelations(ctx, RouteTaskQuery(userID, ""))
}

// listRelations resolves the relation records of a partition to their
// canonical task records. A relation whose task is gone is skipped.
func (r *TaskRepository) listRelations(ctx context.Context, spec QuerySpec) ([]model.Task, error) {
	items, err := r.store.Query(ctx, spec)
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(items))
	for _, raw := range items {
		var rel relationItem
		if err := unmarshalItem(raw, &rel); err != nil {
			r.logger.Warn("skipping unreadable task relation", zap.Error(err))
			continue
		}
		taskID, err := rel.taskIDOf()
		if err != nil {
			continue
		}
		task, err := r.Get(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if task == nil {
			r.logger.Warn("task relation points at missing record",
				zap.String("task_id", taskID),
			)
			continue
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// Update applies a partial update. An assignee change rewrites the user
// relation record before touching the canonical record, so an interrupted
// update never strands an assignment on the record alone.
func (r *TaskRepository) Update(ctx context.Context, taskID string, fields model.TaskUpdate) error {
	if fields.IsEmpty() {
		return apperrors.NewValidationError("No fields to update")
	}

	current, err := r.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if current == nil {
		return apperrors.NewNotFoundError("Task")
	}

	set := Fieldset{"updatedAt": utils.NowRFC3339()}
	if fields.Title != nil {
		set["title"] = *fields.Title
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.Status != nil {
		set["status"] = *fields.Status
	}
	if fields.Priority != nil {
		set["priority"] = *fields.Priority
	}
	if fields.DueDate != nil {
		set["dueDate"] = *fields.DueDate
	}
	if fields.AssigneeID != nil {
		set["assigneeId"] = *fields.AssigneeID
		if err := r.moveAssignee(ctx, taskID, current.AssigneeID, *fields.AssigneeID); err != nil {
			return err
		}
	}

	key := Key{PK: keys.Task(taskID), SK: keys.Task(taskID)}
	if err := r.store.Update(ctx, key, set); err != nil {
		return err
	}

	r.logger.Info("task updated", zap.String("task_id", taskID))
	return nil
}

// Delete removes the canonical record and both relation records. Deleting a
// missing task succeeds.
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	task, err := r.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}

	delKeys := []Key{
		{PK: keys.Task(taskID), SK: keys.Task(taskID)},
		{PK: keys.Project(task.ProjectID), SK: keys.Task(taskID)},
	}
	if task.AssigneeID != "" {
		delKeys = append(delKeys, Key{PK: keys.User(task.AssigneeID), SK: keys.Task(taskID)})
	}

	if err := r.store.BatchDelete(ctx, delKeys); err != nil {
		return err
	}

	r.logger.Info("task deleted",
		zap.String("task_id", taskID),
		zap.String("project_id", task.ProjectID),
	)
	return nil
}

// moveAssignee keeps the user relation record in step with an assignee change
func (r *TaskRepository) moveAssignee(ctx context.Context, taskID, from, to string) error {
	if from == to {
		return nil
	}
	if from != "" {
		if err := r.store.Delete(ctx, Key{PK: keys.User(from), SK: keys.Task(taskID)}); err != nil {
			return err
		}
	}
	if to != "" {
		rel, err := marshalItem(newUserTaskRelation(to, taskID))
		if err != nil {
			return apperrors.NewDatabaseError("marshal_task_relation", err)
		}
		if err := r.store.Put(ctx, rel); err != nil {
			return err
		}
	}
	return nil
}
