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

// EventRepository persists events in the single table
type EventRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewEventRepository creates an event repository over the store
func NewEventRepository(store *Store, logger *zap.Logger) *EventRepository {
	return &EventRepository{store: store, logger: logger}
}

var _ ports.EventRepository = (*EventRepository)(nil)

// Create writes a new event. The id, week label, color and timestamps are
// filled in here; a duplicate (project, event) key fails with a conflict.
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Color == "" {
		event.Color = model.DefaultEventColor
	}

	start, err := utils.ParseEventTime(event.StartDate)
	if err != nil {
		return apperrors.NewValidationError("Invalid date format").
			WithField("startDate").WithCause(err)
	}
	event.WeekOfYear = utils.ISOWeekLabel(start)

	now := utils.NowRFC3339()
	event.CreatedAt = now
	event.UpdatedAt = now

	item, err := marshalItem(newEventItem(event))
	if err != nil {
		return apperrors.NewDatabaseError("marshal_event", err)
	}

	if err := r.store.Create(ctx, item); err != nil {
		if apperrors.IsDuplicateKey(err) {
			r.logger.Warn("duplicate event rejected",
				zap.String("project_id", event.ProjectID),
				zap.String("event_id", event.EventID),
			)
		}
		return err
	}

	r.logger.Info("event created",
		zap.String("project_id", event.ProjectID),
		zap.String("event_id", event.EventID),
		zap.String("week_of_year", event.WeekOfYear),
	)
	return nil
}

// Update applies a partial update. A startDate change moves the week label
// and the date-index sort key with it, keeping range reads correct.
func (r *EventRepository) Update(ctx context.Context, projectID, eventID string, fields model.EventUpdate) error {
	if fields.IsEmpty() {
		return apperrors.NewValidationError("No fields to update")
	}

	set := Fieldset{"updatedAt": utils.NowRFC3339()}
	if fields.Title != nil {
		set["title"] = *fields.Title
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.EndDate != nil {
		set["endDate"] = *fields.EndDate
	}
	if fields.AllDay != nil {
		set["allDay"] = *fields.AllDay
	}
	if fields.Color != nil {
		set["color"] = *fields.Color
	}
	if fields.StartDate != nil {
		start, err := utils.ParseEventTime(*fields.StartDate)
		if err != nil {
			return apperrors.NewValidationError("Invalid date format").
				WithField("startDate").WithCause(err)
		}
		set["startDate"] = *fields.StartDate
		set["weekOfYear"] = utils.ISOWeekLabel(start)
		set["GSI2SK"] = *fields.StartDate
	}

	key := Key{PK: keys.Project(projectID), SK: keys.Event(eventID)}
	if err := r.store.Update(ctx, key, set); err != nil {
		return err
	}

	r.logger.Info("event updated",
		zap.String("project_id", projectID),
		zap.String("event_id", eventID),
	)
	return nil
}

// Delete removes an event. Missing events delete cleanly.
func (r *EventRepository) Delete(ctx context.Context, projectID, eventID string) error {
	key := Key{PK: keys.Project(projectID), SK: keys.Event(eventID)}
	if err := r.store.Delete(ctx, key); err != nil {
		return err
	}
	r.logger.Info("event deleted",
		zap.String("project_id", projectID),
		zap.String("event_id", eventID),
	)
	return nil
}

// List returns every event in scope, routed to the narrowest access path
func (r *EventRepository) List(ctx context.Context, scope model.EventScope) ([]model.Event, error) {
	items, err := r.store.Query(ctx, RouteEventQuery(scope))
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(items))
	for _, raw := range items {
		var item eventItem
		if err := unmarshalItem(raw, &item); err != nil {
			r.logger.Warn("skipping unreadable event item", zap.Error(err))
			continue
		}
		events = append(events, item.toEvent())
	}
	return events, nil
}
