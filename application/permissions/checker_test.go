package permissions

import (
	"context"
	"testing"

	"calendar-backend/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProjectRepo struct {
	memberships map[string]*model.Membership // "projectID/userID"
}

func (f *fakeProjectRepo) Create(ctx context.Context, p *model.Project) error { return nil }
func (f *fakeProjectRepo) ListByUser(ctx context.Context, userID string) ([]model.Project, error) {
	return nil, nil
}
func (f *fakeProjectRepo) Update(ctx context.Context, projectID string, fields model.ProjectUpdate) error {
	return nil
}
func (f *fakeProjectRepo) Delete(ctx context.Context, projectID string) error { return nil }
func (f *fakeProjectRepo) GetMembership(ctx context.Context, projectID, userID string) (*model.Membership, error) {
	return f.memberships[projectID+"/"+userID], nil
}

type fakeTaskRepo struct {
	tasks map[string]*model.Task
}

func (f *fakeTaskRepo) Create(ctx context.Context, t *model.Task) error { return nil }
func (f *fakeTaskRepo) Get(ctx context.Context, taskID string) (*model.Task, error) {
	return f.tasks[taskID], nil
}
func (f *fakeTaskRepo) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	return nil, nil
}
func (f *fakeTaskRepo) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	return nil, nil
}
func (f *fakeTaskRepo) Update(ctx context.Context, taskID string, fields model.TaskUpdate) error {
	return nil
}
func (f *fakeTaskRepo) Delete(ctx context.Context, taskID string) error { return nil }

func newChecker(projects *fakeProjectRepo, tasks *fakeTaskRepo) *Checker {
	return NewChecker(projects, tasks, zap.NewNop())
}

func TestCanManageProject(t *testing.T) {
	projects := &fakeProjectRepo{memberships: map[string]*model.Membership{
		"proj-1/alice": {ProjectID: "proj-1", UserID: "alice", Role: model.RoleOwner},
		"proj-1/bob":   {ProjectID: "proj-1", UserID: "bob", Role: "MEMBER"},
	}}
	checker := newChecker(projects, &fakeTaskRepo{tasks: map[string]*model.Task{}})

	t.Run("owner can manage", func(t *testing.T) {
		ok, err := checker.CanManageProject(context.Background(), "proj-1", "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("non-owner member cannot manage", func(t *testing.T) {
		ok, err := checker.CanManageProject(context.Background(), "proj-1", "bob")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("non-member cannot manage", func(t *testing.T) {
		ok, err := checker.CanManageProject(context.Background(), "proj-1", "mallory")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown project denies", func(t *testing.T) {
		ok, err := checker.CanManageProject(context.Background(), "proj-404", "alice")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCanManageTask(t *testing.T) {
	projects := &fakeProjectRepo{memberships: map[string]*model.Membership{
		"proj-1/alice": {ProjectID: "proj-1", UserID: "alice", Role: model.RoleOwner},
	}}
	tasks := &fakeTaskRepo{tasks: map[string]*model.Task{
		"task-1": {ID: "task-1", ProjectID: "proj-1", AssigneeID: "carol"},
		"task-2": {ID: "task-2", ProjectID: "proj-1"},
	}}
	checker := newChecker(projects, tasks)

	t.Run("assignee can manage", func(t *testing.T) {
		ok, err := checker.CanManageTask(context.Background(), "task-1", "carol")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("project owner can manage", func(t *testing.T) {
		ok, err := checker.CanManageTask(context.Background(), "task-1", "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unrelated user cannot manage", func(t *testing.T) {
		ok, err := checker.CanManageTask(context.Background(), "task-1", "mallory")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unassigned task falls back to ownership", func(t *testing.T) {
		ok, err := checker.CanManageTask(context.Background(), "task-2", "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing task denies without error", func(t *testing.T) {
		ok, err := checker.CanManageTask(context.Background(), "task-404", "alice")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
