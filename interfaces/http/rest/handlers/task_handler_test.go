package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"calendar-backend/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTaskRouter(repo *fakeTaskRepo, perms *fakePermissions, pub *fakePublisher) http.Handler {
	h := NewTaskHandler(repo, perms, pub, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/tasks", h.List)
	r.Post("/tasks", h.Create)
	r.Put("/tasks/{taskID}", h.Update)
	r.Delete("/tasks/{taskID}", h.Delete)
	r.Get("/projects/{projectID}/tasks", h.List)
	return r
}

func managerOf(taskID, userID string) *fakePermissions {
	return &fakePermissions{taskManagers: map[string]string{taskID: userID}}
}

func TestListTasks(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.tasks = []model.Task{{ID: "t1", Title: "ship it"}}
	router := newTaskRouter(repo, &fakePermissions{}, &fakePublisher{})

	t.Run("user scope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, decodeBody(t, rec)["count"])
	})

	t.Run("project scope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/projects/p1/tasks", nil)
		rec := serve(router, req, "u1")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCreateTask(t *testing.T) {
	t.Run("creates with 201", func(t *testing.T) {
		repo := newFakeTaskRepo()
		pub := &fakePublisher{}
		router := newTaskRouter(repo, &fakePermissions{}, pub)

		payload := `{"title":"ship it","projectId":"p1","assigneeId":"u2"}`
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(payload))
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Task created successfully", body["message"])
		require.Len(t, repo.created, 1)
		assert.Equal(t, "u2", repo.created[0].AssigneeID)
		assert.Equal(t, []string{"TaskCreated"}, pub.published)
	})

	t.Run("missing projectId is a field error", func(t *testing.T) {
		router := newTaskRouter(newFakeTaskRepo(), &fakePermissions{}, &fakePublisher{})

		payload := `{"title":"ship it"}`
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(payload))
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "projectId", decodeBody(t, rec)["field"])
	})
}

func TestUpdateTask(t *testing.T) {
	t.Run("manager updates", func(t *testing.T) {
		repo := newFakeTaskRepo()
		router := newTaskRouter(repo, managerOf("t1", "u1"), &fakePublisher{})

		payload := `{"status":"DONE","assigneeId":""}`
		req := httptest.NewRequest(http.MethodPut, "/tasks/t1", strings.NewReader(payload))
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Task updated successfully", decodeBody(t, rec)["message"])

		update := repo.updated["t1"]
		require.NotNil(t, update.Status)
		assert.Equal(t, "DONE", *update.Status)
		// Explicit empty assignee unassigns, so the pointer must survive
		require.NotNil(t, update.AssigneeID)
		assert.Equal(t, "", *update.AssigneeID)
	})

	t.Run("outsider gets 403", func(t *testing.T) {
		repo := newFakeTaskRepo()
		router := newTaskRouter(repo, managerOf("t1", "u1"), &fakePublisher{})

		payload := `{"status":"DONE"}`
		req := httptest.NewRequest(http.MethodPut, "/tasks/t1", strings.NewReader(payload))
		rec := serve(router, req, "intruder")

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, repo.updated)
	})

	t.Run("missing task denies like a permission failure", func(t *testing.T) {
		router := newTaskRouter(newFakeTaskRepo(), &fakePermissions{}, &fakePublisher{})

		payload := `{"status":"DONE"}`
		req := httptest.NewRequest(http.MethodPut, "/tasks/t404", strings.NewReader(payload))
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("manager deletes", func(t *testing.T) {
		repo := newFakeTaskRepo()
		pub := &fakePublisher{}
		router := newTaskRouter(repo, managerOf("t1", "u1"), pub)

		req := httptest.NewRequest(http.MethodDelete, "/tasks/t1", nil)
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Task deleted successfully", decodeBody(t, rec)["message"])
		assert.Equal(t, []string{"t1"}, repo.deleted)
		assert.Equal(t, []string{"TaskDeleted"}, pub.published)
	})

	t.Run("missing task gets 403", func(t *testing.T) {
		repo := newFakeTaskRepo()
		router := newTaskRouter(repo, &fakePermissions{}, &fakePublisher{})

		req := httptest.NewRequest(http.MethodDelete, "/tasks/t404", nil)
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, repo.deleted)
	})
}
