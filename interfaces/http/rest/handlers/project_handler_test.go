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

func newProjectRouter(repo *fakeProjectRepo, perms *fakePermissions, pub *fakePublisher) http.Handler {
	h := NewProjectHandler(repo, perms, pub, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/projects", h.List)
	r.Post("/projects", h.Create)
	r.Put("/projects/{projectID}", h.Update)
	r.Delete("/projects/{projectID}", h.Delete)
	return r
}

func ownerOf(projectID, userID string) *fakePermissions {
	return &fakePermissions{projectOwners: map[string]string{projectID: userID}}
}

func TestListProjects(t *testing.T) {
	repo := newFakeProjectRepo()
	repo.projects = []model.Project{{ID: "p1", Name: "alpha"}}
	router := newProjectRouter(repo, &fakePermissions{}, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	rec := serve(router, req, "u1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["count"])
}

func TestCreateProject(t *testing.T) {
	t.Run("creates with owner from identity", func(t *testing.T) {
		repo := newFakeProjectRepo()
		pub := &fakePublisher{}
		router := newProjectRouter(repo, &fakePermissions{}, pub)

		payload := `{"name":"alpha","color":"#112233"}`
		req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(payload))
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Project created successfully", body["message"])
		require.Len(t, repo.created, 1)
		assert.Equal(t, "u1", repo.created[0].OwnerID)
		assert.Equal(t, []string{"ProjectCreated"}, pub.published)
	})

	t.Run("missing name is a field error", func(t *testing.T) {
		router := newProjectRouter(newFakeProjectRepo(), &fakePermissions{}, &fakePublisher{})

		req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{}`))
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "name", decodeBody(t, rec)["field"])
	})
}

func TestUpdateProject(t *testing.T) {
	t.Run("owner updates", func(t *testing.T) {
		repo := newFakeProjectRepo()
		router := newProjectRouter(repo, ownerOf("p1", "u1"), &fakePublisher{})

		payload := `{"name":"renamed","status":"ARCHIVED"}`
		req := httptest.NewRequest(http.MethodPut, "/projects/p1", strings.NewReader(payload))
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Project updated successfully", decodeBody(t, rec)["message"])
		update := repo.updated["p1"]
		require.NotNil(t, update.Name)
		assert.Equal(t, "renamed", *update.Name)
		require.NotNil(t, update.Status)
		assert.Equal(t, "ARCHIVED", *update.Status)
	})

	t.Run("non-owner gets 403", func(t *testing.T) {
		repo := newFakeProjectRepo()
		router := newProjectRouter(repo, ownerOf("p1", "u1"), &fakePublisher{})

		payload := `{"name":"renamed"}`
		req := httptest.NewRequest(http.MethodPut, "/projects/p1", strings.NewReader(payload))
		rec := serve(router, req, "intruder")

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Insufficient permissions", decodeBody(t, rec)["error"])
		assert.Empty(t, repo.updated)
	})
}

func TestDeleteProject(t *testing.T) {
	t.Run("owner deletes", func(t *testing.T) {
		repo := newFakeProjectRepo()
		pub := &fakePublisher{}
		router := newProjectRouter(repo, ownerOf("p1", "u1"), pub)

		req := httptest.NewRequest(http.MethodDelete, "/projects/p1", nil)
		rec := serve(router, req, "u1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Project deleted successfully", decodeBody(t, rec)["message"])
		assert.Equal(t, []string{"p1"}, repo.deleted)
		assert.Equal(t, []string{"ProjectDeleted"}, pub.published)
	})

	t.Run("non-owner gets 403 and nothing is deleted", func(t *testing.T) {
		repo := newFakeProjectRepo()
		router := newProjectRouter(repo, ownerOf("p1", "u1"), &fakePublisher{})

		req := httptest.NewRequest(http.MethodDelete, "/projects/p1", nil)
		rec := serve(router, req, "intruder")

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, repo.deleted)
	})
}
