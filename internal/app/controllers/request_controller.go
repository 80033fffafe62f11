package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/services"
	"github.com/selvaalegre/portal/internal/middleware"
	"github.com/selvaalegre/portal/internal/pkg/helpers"
)

// RequestController handles resident requests
type RequestController struct {
	requestService services.RequestService
	logger         zerolog.Logger
}

// NewRequestController creates a new RequestController
func NewRequestController(requestService services.RequestService, logger zerolog.Logger) *RequestController {
	return &RequestController{requestService: requestService, logger: logger}
}

// ListRequests lists requests
// @Summary List requests
// @Description Administrators see every request and the pending count; residents see their own.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "pendiente, en_proceso, aprobada or rechazada"
// @Success 200 {object} dto.APIResponse{data=dto.RequestListResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Router /requests [get]
func (c *RequestController) ListRequests(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var filter dto.RequestFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	list, err := c.requestService.List(ctx.Request.Context(), user, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// SubmitRequest files a new request
// @Summary Submit request
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitRequestRequest true "Request"
// @Success 201 {object} dto.APIResponse{data=dto.RequestResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /requests [post]
func (c *RequestController) SubmitRequest(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.SubmitRequestRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	created, err := c.requestService.Submit(ctx.Request.Context(), user, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("userID", user.ID).Int64("requestID", created.ID).Str("type", created.Type).Msg("Request submitted")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(created))
}

// GetRequest retrieves a request
// @Summary Get request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse{data=dto.RequestResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the submitter"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /requests/{id} [get]
func (c *RequestController) GetRequest(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	found, err := c.requestService.Get(ctx.Request.Context(), user, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(found))
}

// ResolveRequest sets a request's status
// @Summary Resolve request
// @Description Any known status may be set from any status. The submitter is notified by email.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body dto.ResolveRequestRequest true "New status and response"
// @Success 200 {object} dto.APIResponse{data=dto.RequestResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 403 {object} dto.ErrorResponse "Administrator only"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /requests/{id}/resolve [put]
func (c *RequestController) ResolveRequest(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.ResolveRequestRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resolved, err := c.requestService.Resolve(ctx.Request.Context(), user, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("adminID", user.ID).Int64("requestID", id).Str("status", resolved.Status).Msg("Request resolved")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resolved))
}

// DeleteRequest removes a request
// @Summary Delete request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the submitter"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /requests/{id} [delete]
func (c *RequestController) DeleteRequest(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.requestService.Delete(ctx.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("Request deleted successfully"))
}
