package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/services"
	"github.com/selvaalegre/portal/internal/middleware"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/helpers"
)

const defaultUpcomingLimit = 20

// CalendarController serves the month view and event CRUD
type CalendarController struct {
	calendarService services.CalendarService
	eventService    services.EventService
	location        *time.Location
	logger          zerolog.Logger
}

// NewCalendarController creates a new CalendarController. location is the zone used when no tz is requested.
func NewCalendarController(
	calendarService services.CalendarService,
	eventService services.EventService,
	location *time.Location,
	logger zerolog.Logger,
) *CalendarController {
	return &CalendarController{
		calendarService: calendarService,
		eventService:    eventService,
		location:        location,
		logger:          logger,
	}
}

// GetMonth renders a calendar month
// @Summary Calendar month view
// @Description Month grid with the events visible to the caller. Missing year or month means the current one.
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Param tz query string false "IANA time zone, e.g. America/Guayaquil"
// @Success 200 {object} dto.APIResponse{data=dto.CalendarMonthResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid year, month or zone"
// @Router /calendar [get]
func (c *CalendarController) GetMonth(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	loc, err := helpers.LoadLocation(ctx.Query("tz"), c.location)
	if err != nil {
		c.logger.Debug().Err(err).Str("tz", ctx.Query("tz")).Msg("Unknown time zone requested")
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("tz", "tz is not a known time zone"))
		return
	}
	year, yearSet, err := helpers.ParseOptionalIntQuery(ctx, "year")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if yearSet && (year < 1 || year > 9999) {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("year", "year must be between 1 and 9999"))
		return
	}
	month, monthSet, err := helpers.ParseOptionalIntQuery(ctx, "month")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	// 0 means "current" to the service, so an explicit 0 has to be refused here.
	if monthSet && (month < 1 || month > 12) {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("month", "month must be between 1 and 12"))
		return
	}

	view, err := c.calendarService.RenderMonth(ctx.Request.Context(), user, year, month, loc)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(view))
}

// ListEvents lists the caller's upcoming visible events
// @Summary Upcoming events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of events" default(20)
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse}
// @Router /events [get]
func (c *CalendarController) ListEvents(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	limit, set, err := helpers.ParseOptionalIntQuery(ctx, "limit")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if !set || limit <= 0 || limit > helpers.MaxPageSize {
		limit = defaultUpcomingLimit
	}

	events, err := c.eventService.ListUpcoming(ctx.Request.Context(), user, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// CreateEvent creates an event
// @Summary Create event
// @Description Events created by administrators are shown to everyone; others only to their creator.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /events [post]
func (c *CalendarController) CreateEvent(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	event, err := c.eventService.Create(ctx.Request.Context(), user, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("userID", user.ID).Int64("eventID", event.ID).Msg("Event created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(event))
}

// GetEvent retrieves an event
// @Summary Get event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *CalendarController) GetEvent(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	event, err := c.eventService.Get(ctx.Request.Context(), user, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event))
}

// UpdateEvent replaces an event
// @Summary Update event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.EventRequest true "Event"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [put]
func (c *CalendarController) UpdateEvent(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	event, err := c.eventService.Update(ctx.Request.Context(), user, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event))
}

// DeleteEvent removes an event
// @Summary Delete event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [delete]
func (c *CalendarController) DeleteEvent(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.eventService.Delete(ctx.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("userID", user.ID).Int64("eventID", id).Msg("Event deleted")
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("Event deleted successfully"))
}
