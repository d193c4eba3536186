// Package handlers implements the HTTP endpoints. Handlers decode and
// validate requests, resolve the caller from the context, and delegate to
// the repositories; they never touch the table layout directly.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"calendar-backend/application/ports"
	"calendar-backend/domain/model"
	"calendar-backend/pkg/common"
	apperrors "calendar-backend/pkg/errors"
	"calendar-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EventHandler serves the calendar event endpoints
type EventHandler struct {
	events    ports.EventRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewEventHandler creates an event handler
func NewEventHandler(events ports.EventRepository, publisher ports.EventPublisher, logger *zap.Logger) *EventHandler {
	return &EventHandler{events: events, publisher: publisher, logger: logger}
}

type createEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate" validate:"required"`
	ProjectID   string `json:"projectId"`
	AllDay      bool   `json:"allDay"`
	Color       string `json:"color"`
	EventID     string `json:"eventId"`

	ProjectName        string `json:"projectName"`
	ProjectDescription string `json:"projectDescription"`
	OwnerID            string `json:"ownerId"`
}

type upsertEventRequest struct {
	ID        string `json:"id"`
	EventID   string `json:"eventId"`
	ProjectID string `json:"projectId"`

	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	AllDay      *bool   `json:"allDay"`
	Color       *string `json:"color"`

	// Only used by the create half; updates never touch the
	// denormalized project fields
	ProjectName        string `json:"projectName"`
	ProjectDescription string `json:"projectDescription"`
	OwnerID            string `json:"ownerId"`
}

// List handles GET /events and GET /projects/{projectID}/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	scope := model.EventScope{
		UserID:     userID,
		ProjectID:  chi.URLParam(r, "projectID"),
		StartDate:  query.Get("startDate"),
		EndDate:    query.Get("endDate"),
		WeekOfYear: query.Get("weekOfYear"),
	}
	if scope.ProjectID == "" {
		scope.ProjectID = query.Get("projectId")
	}

	events, err := h.events.List(r.Context(), scope)
	if err != nil {
		h.logger.Error("failed to list events", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// Create handles POST /events and POST /projects/{projectID}/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if err := utils.ValidateRequest(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	// The project-scoped route carries the project in the path and wins
	// over anything in the body
	if projectID := chi.URLParam(r, "projectID"); projectID != "" {
		req.ProjectID = projectID
	}
	if req.ProjectID == "" {
		common.RespondFieldError(w, "projectId is required", "projectId")
		return
	}

	event := model.Event{
		UserID:      userID,
		EventID:     req.EventID,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		AllDay:      req.AllDay,
		Color:       req.Color,

		ProjectID:          req.ProjectID,
		ProjectName:        req.ProjectName,
		ProjectDescription: req.ProjectDescription,
		OwnerID:            req.OwnerID,
	}

	if err := h.events.Create(r.Context(), &event); err != nil {
		if apperrors.IsDuplicateKey(err) {
			common.RespondError(w, http.StatusConflict, "Duplicate event detected")
			return
		}
		h.logger.Error("failed to create event", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), "EventCreated", event)
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Event created successfully",
		"event":   event,
	})
}

// Upsert handles PUT /events. A body without an event id creates; otherwise
// the named fields are updated in place.
func (h *EventHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req upsertEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	eventID := req.EventID
	if eventID == "" {
		eventID = req.ID
	}
	if eventID == "" {
		h.createFromUpsert(w, r, userID, req)
		return
	}

	if req.ProjectID == "" {
		common.RespondFieldError(w, "projectId is required", "projectId")
		return
	}

	update := model.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		AllDay:      req.AllDay,
		Color:       req.Color,
	}
	if err := h.events.Update(r.Context(), req.ProjectID, eventID, update); err != nil {
		if !apperrors.IsValidation(err) {
			h.logger.Error("failed to update event",
				zap.String("event_id", eventID),
				zap.Error(err),
			)
		}
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), "EventUpdated", map[string]string{
		"eventId":   eventID,
		"projectId": req.ProjectID,
	})
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Event updated successfully",
		"eventId": eventID,
	})
}

// createFromUpsert services the create half of PUT /events
func (h *EventHandler) createFromUpsert(w http.ResponseWriter, r *http.Request, userID string, req upsertEventRequest) {
	create := createEventRequest{ProjectID: req.ProjectID}
	if req.Title != nil {
		create.Title = *req.Title
	}
	if req.Description != nil {
		create.Description = *req.Description
	}
	if req.StartDate != nil {
		create.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		create.EndDate = *req.EndDate
	}
	if req.AllDay != nil {
		create.AllDay = *req.AllDay
	}
	if req.Color != nil {
		create.Color = *req.Color
	}
	if err := utils.ValidateRequest(create); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if create.ProjectID == "" {
		common.RespondFieldError(w, "projectId is required", "projectId")
		return
	}

	event := model.Event{
		UserID:      userID,
		Title:       create.Title,
		Description: create.Description,
		StartDate:   create.StartDate,
		EndDate:     create.EndDate,
		AllDay:      create.AllDay,
		Color:       create.Color,

		ProjectID:          create.ProjectID,
		ProjectName:        req.ProjectName,
		ProjectDescription: req.ProjectDescription,
		OwnerID:            req.OwnerID,
	}
	if err := h.events.Create(r.Context(), &event); err != nil {
		if apperrors.IsDuplicateKey(err) {
			common.RespondError(w, http.StatusConflict, "Duplicate event detected")
			return
		}
		h.logger.Error("failed to create event", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), "EventCreated", event)
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Event created successfully",
		"event":   event,
	})
}

// Delete handles DELETE /projects/{projectID}/events/{eventID}. Deleting an
// event that is already gone still returns 204.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.GetUserID(r.Context()); !ok {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	projectID := chi.URLParam(r, "projectID")
	eventID := chi.URLParam(r, "eventID")

	if err := h.events.Delete(r.Context(), projectID, eventID); err != nil {
		h.logger.Error("failed to delete event",
			zap.String("project_id", projectID),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), "EventDeleted", map[string]string{
		"eventId":   eventID,
		"projectId": projectID,
	})
	common.RespondJSON(w, http.StatusNoContent, nil)
}

// publish emits a change notification; failures are logged and swallowed
func (h *EventHandler) publish(ctx context.Context, detailType string, detail interface{}) {
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
