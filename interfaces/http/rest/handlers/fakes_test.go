package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"calendar-backend/domain/model"
	"calendar-backend/pkg/common"
	apperrors "calendar-backend/pkg/errors"
)

type fakeEventRepo struct {
	events    []model.Event
	lastScope model.EventScope
	createErr error
	updated   map[string]model.EventUpdate
	deleted   []string
	listErr   error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{updated: map[string]model.EventUpdate{}}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *model.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	if event.EventID == "" {
		event.EventID = "generated-id"
	}
	event.WeekOfYear = "2024-W23"
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, projectID, eventID string, fields model.EventUpdate) error {
	if fields.IsEmpty() {
		return apperrors.NewValidationError("No fields to update")
	}
	f.updated[projectID+"/"+eventID] = fields
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, projectID, eventID string) error {
	f.deleted = append(f.deleted, projectID+"/"+eventID)
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, scope model.EventScope) ([]model.Event, error) {
	f.lastScope = scope
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

type fakeProjectRepo struct {
	projects  []model.Project
	created   []model.Project
	updated   map[string]model.ProjectUpdate
	deleted   []string
	createErr error
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{updated: map[string]model.ProjectUpdate{}}
}

func (f *fakeProjectRepo) Create(ctx context.Context, project *model.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	if project.ID == "" {
		project.ID = "generated-id"
	}
	if project.Status == "" {
		project.Status = model.ProjectStatusActive
	}
	f.created = append(f.created, *project)
	return nil
}

func (f *fakeProjectRepo) ListByUser(ctx context.Context, userID string) ([]model.Project, error) {
	return f.projects, nil
}

func (f *fakeProjectRepo) Update(ctx context.Context, projectID string, fields model.ProjectUpdate) error {
	f.updated[projectID] = fields
	return nil
}

func (f *fakeProjectRepo) Delete(ctx context.Context, projectID string) error {
	f.deleted = append(f.deleted, projectID)
	return nil
}

func (f *fakeProjectRepo) GetMembership(ctx context.Context, projectID, userID string) (*model.Membership, error) {
	return nil, nil
}

type fakeTaskRepo struct {
	tasks     []model.Task
	byID      map[string]*model.Task
	created   []model.Task
	updated   map[string]model.TaskUpdate
	deleted   []string
	createErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		byID:    map[string]*model.Task{},
		updated: map[string]model.TaskUpdate{},
	}
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *model.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	if task.ID == "" {
		task.ID = "generated-id"
	}
	f.created = append(f.created, *task)
	return nil
}

func (f *fakeTaskRepo) Get(ctx context.Context, taskID string) (*model.Task, error) {
	return f.byID[taskID], nil
}

func (f *fakeTaskRepo) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	return f.tasks, nil
}

func (f *fakeTaskRepo) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	return f.tasks, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, taskID string, fields model.TaskUpdate) error {
	f.updated[taskID] = fields
	return nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, taskID string) error {
	f.deleted = append(f.deleted, taskID)
	return nil
}

// fakePermissions allows exactly the listed subjects
type fakePermissions struct {
	projectOwners map[string]string // projectID -> userID
	taskManagers  map[string]string // taskID -> userID
}

func (f *fakePermissions) CanManageProject(ctx context.Context, projectID, userID string) (bool, error) {
	return f.projectOwners[projectID] == userID, nil
}

func (f *fakePermissions) CanManageTask(ctx context.Context, taskID, userID string) (bool, error) {
	return f.taskManagers[taskID] == userID, nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(ctx context.Context, detailType string, detail interface{}) error {
	f.published = append(f.published, detailType)
	return nil
}

// serve runs req through handler with the user identity attached
func serve(handler http.Handler, req *http.Request, userID string) *httptest.ResponseRecorder {
	if userID != "" {
		req = req.WithContext(common.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
