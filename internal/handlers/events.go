package handlers

import (
	"context"
	"time"

	"github.com/agendamaconica/calendar-api/internal/auth"
	"github.com/agendamaconica/calendar-api/internal/models"
	"github.com/agendamaconica/calendar-api/internal/policy"
	"github.com/agendamaconica/calendar-api/internal/workflow"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

// EventHandler owns the event CRUD surface. There is deliberately no delete
// operation: events are soft-cancelled and kept.
type EventHandler struct {
	db          *gorm.DB
	workflow    *workflow.Service
	authHandler *auth.AuthHandler
}

func NewEventHandler(db *gorm.DB, wf *workflow.Service, authHandler *auth.AuthHandler) *EventHandler {
	return &EventHandler{db: db, workflow: wf, authHandler: authHandler}
}

type EventResponse struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	LodgeID       *uint     `json:"lodge_id,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Address       string    `json:"address"`
	GoogleEventID string    `json:"google_event_id,omitempty"`
	IsCancelled   bool      `json:"is_cancelled"`
	CreatedAt     time.Time `json:"created_at"`
}

func eventResponse(e models.Event) EventResponse {
	return EventResponse{
		ID:            e.ID,
		UserID:        e.UserID,
		LodgeID:       e.LodgeID,
		Title:         e.Title,
		Description:   e.Description,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		Address:       e.Address,
		GoogleEventID: e.GoogleEventID,
		IsCancelled:   e.IsCancelled,
		CreatedAt:     e.CreatedAt,
	}
}

// memberOfLodge reports whether the actor holds at least one membership in
// the lodge. Operators skip this check.
func (h *EventHandler) memberOfLodge(actor auth.Actor, lodgeID uint) bool {
	if actor.Privileged {
		return true
	}
	var count int64
	h.db.Model(&models.UserLodge{}).
		Where("user_id = ? AND lodge_id = ?", actor.ID, lodgeID).
		Count(&count)
	return count > 0
}

type CreateEventInput struct {
	auth.AuthInput
	Body struct {
		Title       string    `json:"title" required:"true"`
		Description string    `json:"description,omitempty"`
		StartTime   time.Time `json:"start_time" required:"true"`
		EndTime     time.Time `json:"end_time" required:"true"`
		Address     string    `json:"address" required:"true"`
		LodgeID     uint      `json:"lodge_id" required:"true"`
	}
}

type CreateEventOutput struct {
	Body struct {
		Event    EventResponse `json:"event"`
		Status   string        `json:"status"`
		Warnings []string      `json:"warnings,omitempty"`
	}
}

func (h *EventHandler) HandleCreateEvent(ctx context.Context, input *CreateEventInput) (*CreateEventOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if !input.Body.StartTime.Before(input.Body.EndTime) {
		return nil, huma.Error400BadRequest("A data e hora de início do evento deve ser anterior à data e hora de término.")
	}

	var lodge models.Lodge
	if err := h.db.First(&lodge, input.Body.LodgeID).Error; err != nil {
		return nil, huma.Error404NotFound("Lodge not found")
	}
	if !h.memberOfLodge(actor, lodge.ID) {
		return nil, huma.Error403Forbidden("You can only schedule events for lodges you belong to")
	}

	event := models.Event{
		UserID:      actor.ID,
		LodgeID:     &lodge.ID,
		Lodge:       &lodge,
		Title:       input.Body.Title,
		Description: input.Body.Description,
		StartTime:   input.Body.StartTime,
		EndTime:     input.Body.EndTime,
		Address:     input.Body.Address,
	}
	if err := h.db.Create(&event).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create event")
	}

	result, err := h.workflow.EventCreated(ctx, &event)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to sync event: " + err.Error())
	}

	res := &CreateEventOutput{}
	res.Body.Event = eventResponse(event)
	res.Body.Status = result.Status.String()
	res.Body.Warnings = result.Warnings
	return res, nil
}

type ListEventsInput struct {
	auth.AuthInput
	Cancelled *bool `query:"cancelled"`
}

type ListEventsOutput struct {
	Body []EventResponse
}

func (h *EventHandler) HandleListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	query := h.db.Model(&models.Event{}).Order("start_time")
	if !actor.Privileged {
		query = query.Where("user_id = ?", actor.ID)
	}
	if input.Cancelled != nil {
		query = query.Where("is_cancelled = ?", *input.Cancelled)
	}

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list events")
	}

	res := &ListEventsOutput{Body: make([]EventResponse, 0, len(events))}
	for _, e := range events {
		res.Body = append(res.Body, eventResponse(e))
	}
	return res, nil
}

type GetEventInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

type GetEventOutput struct {
	Body EventResponse
}

func (h *EventHandler) findEvent(actor auth.Actor, id uint) (*models.Event, error) {
	var event models.Event
	query := h.db.Preload("Lodge").Where("id = ?", id)
	if !actor.Privileged {
		query = query.Where("user_id = ?", actor.ID)
	}
	if err := query.First(&event).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	return &event, nil
}

func (h *EventHandler) HandleGetEvent(ctx context.Context, input *GetEventInput) (*GetEventOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	event, err := h.findEvent(actor, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetEventOutput{Body: eventResponse(*event)}, nil
}

type UpdateEventInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Title       *string    `json:"title,omitempty"`
		Description *string    `json:"description,omitempty"`
		StartTime   *time.Time `json:"start_time,omitempty"`
		EndTime     *time.Time `json:"end_time,omitempty"`
		Address     *string    `json:"address,omitempty"`
		LodgeID     *uint      `json:"lodge_id,omitempty"`
		UserID      *uint      `json:"user_id,omitempty"`
		IsCancelled *bool      `json:"is_cancelled,omitempty"`
	}
}

type UpdateEventOutput struct {
	Body struct {
		Event    EventResponse `json:"event"`
		Status   string        `json:"status"`
		Warnings []string      `json:"warnings,omitempty"`
	}
}

func (h *EventHandler) HandleUpdateEvent(ctx context.Context, input *UpdateEventInput) (*UpdateEventOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	event, err := h.findEvent(actor, input.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Body.Title != nil {
		fields["title"] = *input.Body.Title
	}
	if input.Body.Description != nil {
		fields["description"] = *input.Body.Description
	}
	if input.Body.StartTime != nil {
		fields["start_time"] = *input.Body.StartTime
	}
	if input.Body.EndTime != nil {
		fields["end_time"] = *input.Body.EndTime
	}
	if input.Body.Address != nil {
		fields["address"] = *input.Body.Address
	}
	if input.Body.LodgeID != nil {
		fields["lodge_id"] = *input.Body.LodgeID
	}
	if input.Body.UserID != nil {
		fields["user_id"] = *input.Body.UserID
	}
	if input.Body.IsCancelled != nil {
		fields["is_cancelled"] = *input.Body.IsCancelled
	}

	state := policy.EventState(event.IsCancelled)
	allowed := policy.Events.Filter(state, policy.RoleFor(actor.Privileged), fields)
	if len(fields) > 0 && len(allowed) == 0 {
		return nil, huma.Error403Forbidden("Event is read-only")
	}

	start, end := event.StartTime, event.EndTime
	if v, ok := allowed["start_time"]; ok {
		start = v.(time.Time)
	}
	if v, ok := allowed["end_time"]; ok {
		end = v.(time.Time)
	}
	if !start.Before(end) {
		return nil, huma.Error400BadRequest("A data e hora de início do evento deve ser anterior à data e hora de término.")
	}

	if v, ok := allowed["lodge_id"]; ok {
		lodgeID := v.(uint)
		if !h.memberOfLodge(actor, lodgeID) {
			return nil, huma.Error403Forbidden("You can only schedule events for lodges you belong to")
		}
	}

	if err := h.db.Model(event).Updates(allowed).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update event")
	}
	event, err = h.findEvent(actor, input.ID)
	if err != nil {
		return nil, err
	}

	result, err := h.workflow.EventUpdated(ctx, event)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to sync event: " + err.Error())
	}

	res := &UpdateEventOutput{}
	res.Body.Event = eventResponse(*event)
	res.Body.Status = result.Status.String()
	res.Body.Warnings = result.Warnings
	return res, nil
}
