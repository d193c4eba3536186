package dynamodb

import (
	"context"
	"strings"

	"calendar-backend/application/ports"
	"calendar-backend/domain/keys"
	"calendar-backend/domain/model"
	apperrors "calendar-backend/pkg/errors"
	"calendar-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectRepository persists projects and their memberships
type ProjectRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewProjectRepository creates a project repository over the store
func NewProjectRepository(store *Store, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{store: store, logger: logger}
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)

// Create writes the project record and the creator's OWNER membership in one
// transaction, so a project is never visible without its owner.
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.Color == "" {
		project.Color = model.DefaultProjectColor
	}
	if project.Status == "" {
		project.Status = model.ProjectStatusActive
	}

	now := utils.NowRFC3339()
	project.CreatedAt = now
	project.UpdatedAt = now

	membership := &model.Membership{
		ProjectID: project.ID,
		UserID:    project.OwnerID,
		Role:      model.RoleOwner,
		JoinedAt:  now,
	}

	projectItem, err := marshalItem(newProjectItem(project))
	if err != nil {
		return apperrors.NewDatabaseError("marshal_project", err)
	}
	memberItem, err := marshalItem(newMembershipItem(membership))
	if err != nil {
		return apperrors.NewDatabaseError("marshal_membership", err)
	}

	if err := r.store.TransactPut(ctx, projectItem, memberItem); err != nil {
		return err
	}

	r.logger.Info("project created",
		zap.String("project_id", project.ID),
		zap.String("owner_id", project.OwnerID),
	)
	return nil
}

// ListByUser returns every project the user owns. The user partition of the
// index also holds membership records with the same sort prefix, so the
// query filters on the entity type marker.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]model.Project, error) {
	items, err := r.store.Query(ctx, QuerySpec{
		Index:      IndexUser,
		Partition:  keys.User(userID),
		SortPrefix: keys.ProjectPrefix,
		Filters:    map[string]string{"entityType": entityProject},
	})
	if err != nil {
		return nil, err
	}

	projects := make([]model.Project, 0, len(items))
	for _, raw := range items {
		var item projectItem
		if err := unmarshalItem(raw, &item); err != nil {
			r.logger.Warn("skipping unreadable project item", zap.Error(err))
			continue
		}
		projects = append(projects, item.toProject())
	}
	return projects, nil
}

// Update applies a partial update to the project record
func (r *ProjectRepository) Update(ctx context.Context, projectID string, fields model.ProjectUpdate) error {
	if fields.IsEmpty() {
		return apperrors.NewValidationError("No fields to update")
	}

	set := Fieldset{"updatedAt": utils.NowRFC3339()}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.Color != nil {
		set["color"] = *fields.Color
	}
	if fields.Status != nil {
		set["status"] = *fields.Status
	}

	key := Key{PK: keys.Project(projectID), SK: keys.Project(projectID)}
	if err := r.store.Update(ctx, key, set); err != nil {
		return err
	}

	r.logger.Info("project updated", zap.String("project_id", projectID))
	return nil
}

// Delete removes the project and everything under it: memberships, events,
// task relations, plus each task's canonical record and assignee relation.
// The deletes are batched, not transactional.
func (r *ProjectRepository) Delete(ctx context.Context, projectID string) error {
	items, err := r.store.Query(ctx, QuerySpec{
		Index:          IndexPrimary,
		Partition:      keys.Project(projectID),
		ConsistentRead: true,
	})
	if err != nil {
		return err
	}

	var delKeys []Key
	for _, raw := range items {
		var probe struct {
			PK string `dynamodbav:"PK"`
			SK string `dynamodbav:"SK"`
		}
		if err := unmarshalItem(raw, &probe); err != nil {
			continue
		}
		delKeys = append(delKeys, Key{PK: probe.PK, SK: probe.SK})

		// A task relation in the partition also means a canonical task
		// record and possibly an assignee relation elsewhere.
		if strings.HasPrefix(probe.SK, keys.TaskPrefix) {
			taskID, err := keys.TaskID(probe.SK)
			if err != nil {
				continue
			}
			task, err := r.getTask(ctx, taskID)
			if err != nil {
				return err
			}
			if task == nil {
				continue
			}
			delKeys = append(delKeys, Key{PK: keys.Task(taskID), SK: keys.Task(taskID)})
			if task.AssigneeID != "" {
				delKeys = append(delKeys, Key{PK: keys.User(task.AssigneeID), SK: keys.Task(taskID)})
			}
		}
	}

	if len(delKeys) == 0 {
		return nil
	}
	if err := r.store.BatchDelete(ctx, delKeys); err != nil {
		return err
	}

	r.logger.Info("project deleted",
		zap.String("project_id", projectID),
		zap.Int("items_removed", len(delKeys)),
	)
	return nil
}

// GetMembership returns the user's membership on the project, or nil
func (r *ProjectRepository) GetMembership(ctx context.Context, projectID, userID string) (*model.Membership, error) {
	raw, err := r.store.Get(ctx, Key{
		PK: keys.Project(projectID),
		SK: keys.Member(userID),
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var item membershipItem
	if err := unmarshalItem(raw, &item); err != nil {
		return nil, apperrors.NewDatabaseError("unmarshal_membership", err)
	}
	membership := item.toMembership()
	return &membership, nil
}

func (r *ProjectRepository) getTask(ctx context.Context, taskID string) (*model.Task, error) {
	raw, err := r.store.Get(ctx, Key{
		PK: keys.Task(taskID),
		SK: keys.Task(taskID),
	})
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
