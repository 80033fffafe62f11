package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/auth"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/repositories"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/validation"
)

// EventService manages calendar events
type EventService interface {
	Create(ctx context.Context, caller *models.User, req *dto.EventRequest) (*dto.EventResponse, error)
	Get(ctx context.Context, caller *models.User, id int64) (*dto.EventResponse, error)
	Update(ctx context.Context, caller *models.User, id int64, req *dto.EventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, caller *models.User, id int64) error
	ListUpcoming(ctx context.Context, caller *models.User, limit int) ([]*dto.EventResponse, error)
}

type eventService struct {
	eventRepo repositories.IEventRepository
	urls      dto.URLFunc
	now       func() time.Time
	logger    zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repositories.IEventRepository, urls dto.URLFunc, logger zerolog.Logger) EventService {
	return &eventService{eventRepo: eventRepo, urls: urls, now: time.Now, logger: logger}
}

// isGlobalEvent reports whether everyone sees the event, i.e. an administrator created it.
func isGlobalEvent(e *models.Event) bool {
	return e.Creator != nil && (e.Creator.Role == models.RoleAdmin || e.Creator.IsSuperuser)
}

// canSeeEvent: own events, global events, and administrators see everything.
func canSeeEvent(e *models.Event, viewer *models.User) bool {
	return e.UserID == viewer.ID || isGlobalEvent(e) || auth.IsAdministrator(viewer)
}

func eventFields(req *dto.EventRequest, e *models.Event) error {
	title, err := requiredText("title", req.Title, validation.TitleMaxLength)
	if err != nil {
		return err
	}
	if req.StartAt.IsZero() {
		return apperrors.NewValidationError("startAt", "start is required")
	}
	if req.EndAt.IsZero() {
		return apperrors.NewValidationError("endAt", "end is required")
	}

	category := models.EventCategory(strings.TrimSpace(req.Category))
	if category == "" {
		category = models.EventCategoryGeneral
	}
	if !category.Valid() {
		return apperrors.NewValidationError("category", "unknown category")
	}

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = validation.DefaultEventColor
	}
	if !validation.IsHexColor(color) {
		return apperrors.NewValidationError("color", "color must look like #rrggbb")
	}

	// End before start is accepted as entered.
	e.Title = title
	e.Description = strings.TrimSpace(req.Description)
	e.StartAt, e.EndAt = req.StartAt, req.EndAt
	e.Category, e.Color = category, strings.ToLower(color)
	return nil
}

// Create adds an event owned by the caller. Administrator events are visible to everyone.
func (s *eventService) Create(ctx context.Context, caller *models.User, req *dto.EventRequest) (*dto.EventResponse, error) {
	e := &models.Event{UserID: caller.ID}
	if err := eventFields(req, e); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	e.Creator = caller
	s.logger.Debug().Int64("eventID", e.ID).Int64("userID", caller.ID).Str("category", string(e.Category)).Msg("Event created")
	return dto.NewEventResponse(e, isGlobalEvent(e), s.urls), nil
}

// Get returns an event the caller is allowed to see. Hidden events read as missing.
func (s *eventService) Get(ctx context.Context, caller *models.User, id int64) (*dto.EventResponse, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSeeEvent(e, caller) {
		return nil, apperrors.ErrEventNotFound
	}
	return dto.NewEventResponse(e, isGlobalEvent(e), s.urls), nil
}

// Update replaces the event's fields (owner or administrator).
func (s *eventService) Update(ctx context.Context, caller *models.User, id int64, req *dto.EventRequest) (*dto.EventResponse, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSeeEvent(e, caller) {
		return nil, apperrors.ErrEventNotFound
	}
	if err := auth.RequireOwnerOrAdministrator(e, caller); err != nil {
		return nil, err
	}
	if err := eventFields(req, e); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return dto.NewEventResponse(e, isGlobalEvent(e), s.urls), nil
}

// Delete removes an event (owner or administrator).
func (s *eventService) Delete(ctx context.Context, caller *models.User, id int64) error {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canSeeEvent(e, caller) {
		return apperrors.ErrEventNotFound
	}
	if err := auth.RequireOwnerOrAdministrator(e, caller); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug().Int64("eventID", id).Int64("deletedBy", caller.ID).Msg("Event deleted")
	return nil
}

// ListUpcoming returns the next visible events.
func (s *eventService) ListUpcoming(ctx context.Context, caller *models.User, limit int) ([]*dto.EventResponse, error) {
	if limit <= 0 {
		limit = 5
	}
	events, err := s.eventRepo.ListUpcomingVisible(ctx, caller.ID, s.now(), uint64(limit))
	if err != nil {
		return nil, err
	}
	out := make([]*dto.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.NewEventResponse(e, isGlobalEvent(e), s.urls))
	}
	return out, nil
}
