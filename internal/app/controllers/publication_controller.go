package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/services"
	"github.com/selvaalegre/portal/internal/middleware"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/helpers"
)

// PublicationController handles the bulletin board
type PublicationController struct {
	publicationService services.PublicationService
	logger             zerolog.Logger
}

// NewPublicationController creates a new PublicationController
func NewPublicationController(publicationService services.PublicationService, logger zerolog.Logger) *PublicationController {
	return &PublicationController{publicationService: publicationService, logger: logger}
}

func attachments(ctx *gin.Context) (services.Attachments, bool) {
	var files services.Attachments
	var err error
	if files.Image, err = optionalFile(ctx, "image"); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("image", "image could not be read"))
		return files, false
	}
	if files.Document, err = optionalFile(ctx, "document"); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("document", "document could not be read"))
		return files, false
	}
	return files, true
}

// ListPublications lists publications newest first
// @Summary List publications
// @Tags publications
// @Produce json
// @Security BearerAuth
// @Param type query string false "anuncio, noticia, finanzas or mantenimiento"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PublicationListResponse}
// @Router /publications [get]
func (c *PublicationController) ListPublications(ctx *gin.Context) {
	if _, ok := caller(ctx); !ok {
		return
	}

	filter := dto.PublicationFilter{Type: ctx.Query("type")}
	filter.Page, filter.Size = helpers.ParsePaginationParams(ctx)

	list, err := c.publicationService.List(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// GetPublication retrieves a publication
// @Summary Get publication
// @Tags publications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Publication ID"
// @Success 200 {object} dto.APIResponse{data=dto.PublicationResponse}
// @Failure 404 {object} dto.ErrorResponse "Publication not found"
// @Router /publications/{id} [get]
func (c *PublicationController) GetPublication(ctx *gin.Context) {
	if _, ok := caller(ctx); !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pub, err := c.publicationService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(pub))
}

// CreatePublication publishes a new item
// @Summary Create publication
// @Tags publications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param body formData string true "Body"
// @Param type formData string true "anuncio, noticia, finanzas or mantenimiento"
// @Param image formData file false "Image"
// @Param document formData file false "PDF document"
// @Success 201 {object} dto.APIResponse{data=dto.PublicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Administrator only"
// @Router /publications [post]
func (c *PublicationController) CreatePublication(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.CreatePublicationRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	files, ok := attachments(ctx)
	if !ok {
		return
	}

	pub, err := c.publicationService.Create(ctx.Request.Context(), user, &req, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("adminID", user.ID).Int64("publicationID", pub.ID).Msg("Publication created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(pub))
}

// UpdatePublication updates the submitted fields of a publication
// @Summary Update publication
// @Description Only submitted fields change. Attachments are replaced only when a new file is sent.
// @Tags publications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Publication ID"
// @Param title formData string false "Title"
// @Param body formData string false "Body"
// @Param type formData string false "anuncio, noticia, finanzas or mantenimiento"
// @Param image formData file false "Image"
// @Param document formData file false "PDF document"
// @Success 200 {object} dto.APIResponse{data=dto.PublicationResponse}
// @Failure 403 {object} dto.ErrorResponse "Administrator only"
// @Failure 404 {object} dto.ErrorResponse "Publication not found"
// @Router /publications/{id} [put]
func (c *PublicationController) UpdatePublication(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdatePublicationRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	files, ok := attachments(ctx)
	if !ok {
		return
	}

	pub, err := c.publicationService.Update(ctx.Request.Context(), user, id, &req, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(pub))
}

// DeletePublication removes a publication and its files
// @Summary Delete publication
// @Tags publications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Publication ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Administrator only"
// @Failure 404 {object} dto.ErrorResponse "Publication not found"
// @Router /publications/{id} [delete]
func (c *PublicationController) DeletePublication(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.publicationService.Delete(ctx.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("Publication deleted successfully"))
}
