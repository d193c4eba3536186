package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"calendar-backend/application/ports"
	"calendar-backend/domain/model"
	"calendar-backend/pkg/common"
	"calendar-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProjectHandler serves the project endpoints
type ProjectHandler struct {
	projects    ports.ProjectRepository
	permissions ports.PermissionChecker
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewProjectHandler creates a project handler
func NewProjectHandler(projects ports.ProjectRepository, permissions ports.PermissionChecker, publisher ports.EventPublisher, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects:    projects,
		permissions: permissions,
		publisher:   publisher,
		logger:      logger,
	}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Status      string `json:"status"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Status      *string `json:"status"`
}

// List handles GET /projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	projects, err := h.projects.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

// Create handles POST /projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if err := utils.ValidateRequest(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	project := model.Project{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Status:      req.Status,
		OwnerID:     userID,
	}
	if err := h.projects.Create(r.Context(), &project); err != nil {
		h.logger.Error("failed to create project", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), "ProjectCreated", project)
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Project created successfully",
		"project": project,
	})
}

// Update handles PUT /projects/{projectID}, owner only
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	projectID := chi.URLParam(r, "projectID")

	allowed, err := h.permissions.CanManageProject(r.Context(), projectID, userID)
	if err != nil {
		h.logger.Error("permission check failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	if !allowed {
		common.RespondError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	update := model.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Status:      req.Status,
	}
	if err := h.projects.Update(r.Context(), projectID, update); err != nil {
		h.logger.Error("failed to update project",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), "ProjectUpdated", map[string]string{"projectId": projectID})
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Project updated successfully",
	})
}

// Delete handles DELETE /projects/{projectID}, owner only. Removes the
// project and everything scoped under it.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	projectID := chi.URLParam(r, "projectID")

	allowed, err := h.permissions.CanManageProject(r.Context(), projectID, userID)
	if err != nil {
		h.logger.Error("permission check failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	if !allowed {
		common.RespondError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	if err := h.projects.Delete(r.Context(), projectID); err != nil {
		h.logger.Error("failed to delete project",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), "ProjectDeleted", map[string]string{"projectId": projectID})
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Project deleted successfully",
	})
}

func (h *ProjectHandler) publish(ctx context.Context, detailType string, detail interface{}) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, detailType, detail); err != nil {
		h.logger.Warn("failed to publish entity change",
			zap.String("detail_type", detailType),
			zap.Error(err),
		)
	}
}
