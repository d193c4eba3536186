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

// TaskHandler serves the task endpoints
type TaskHandler struct {
	tasks       ports.TaskRepository
	permissions ports.PermissionChecker
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewTaskHandler creates a task handler
func NewTaskHandler(tasks ports.TaskRepository, permissions ports.PermissionChecker, publisher ports.EventPublisher, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		permissions: permissions,
		publisher:   publisher,
		logger:      logger,
	}
}

type createTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	ProjectID   string `json:"projectId" validate:"required"`
	AssigneeID  string `json:"assigneeId"`
	DueDate     string `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssigneeID  *string `json:"assigneeId"`
	DueDate     *string `json:"dueDate"`
}

// List handles GET /tasks and GET /projects/{projectID}/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		projectID = r.URL.Query().Get("projectId")
	}

	var (
		tasks []model.Task
		err   error
	)
	if projectID != "" {
		tasks, err = h.tasks.ListByProject(r.Context(), projectID)
	} else {
		tasks, err = h.tasks.ListByUser(r.Context(), userID)
	}
	if err != nil {
		h.logger.Error("failed to list tasks", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// Create handles POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.GetUserID(r.Context()); !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if err := utils.ValidateRequest(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	task := model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}
	if err := h.tasks.Create(r.Context(), &task); err != nil {
		h.logger.Error("failed to create task", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), "TaskCreated", task)
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Task created successfully",
		"task":    task,
	})
}

// Update handles PUT /tasks/{taskID}. Allowed for the assignee or the
// owner of the task's project; a missing task denies the same way.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	taskID := chi.URLParam(r, "taskID")

	allowed, err := h.permissions.CanManageTask(r.Context(), taskID, userID)
	if err != nil {
		h.logger.Error("permission check failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	if !allowed {
		common.RespondError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	update := model.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}
	if err := h.tasks.Update(r.Context(), taskID, update); err != nil {
		h.logger.Error("failed to update task",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), "TaskUpdated", map[string]string{"taskId": taskID})
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Task updated successfully",
	})
}

// Delete handles DELETE /tasks/{taskID}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	taskID := chi.URLParam(r, "taskID")

	allowed, err := h.permissions.CanManageTask(r.Context(), taskID, userID)
	if err != nil {
		h.logger.Error("permission check failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	if !allowed {
		common.RespondError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	if err := h.tasks.Delete(r.Context(), taskID); err != nil {
		h.logger.Error("failed to delete task",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), "TaskDeleted", map[string]string{"taskId": taskID})
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Task deleted successfully",
	})
}

func (h *TaskHandler) publish(ctx context.Context, detailType string, detail interface{}) {
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
