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

// UserController handles user-related operations
type UserController struct {
	userService services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new user controller
func NewUserController(userService services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetProfile retrieves the authenticated user's profile
// @Summary Get current user profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	profile, err := c.userService.GetProfile(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// UpdateProfile updates the authenticated user's contact details
// @Summary Update current user profile
// @Description Residents may change their email and phone; everything else is administered.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile details"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Router /profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	profile, err := c.userService.UpdateProfile(ctx.Request.Context(), user, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// ChangePassword changes the authenticated user's password
// @Summary Change password
// @Description Requires the current password. All refresh tokens of the user are revoked.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /profile/password [put]
func (c *UserController) ChangePassword(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	if err := c.userService.ChangePassword(ctx.Request.Context(), user, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("userID", user.ID).Msg("Password changed")
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("Password updated successfully"))
}

// UploadProfilePhoto replaces the authenticated user's profile photo
// @Summary Upload profile photo
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photo formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or unsupported file"
// @Router /profile/photo [post]
func (c *UserController) UploadProfilePhoto(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	file, err := optionalFile(ctx, "photo")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("photo", "photo could not be read"))
		return
	}
	if file == nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("photo", "photo is required"))
		return
	}

	profile, err := c.userService.UpdateProfilePhoto(ctx.Request.Context(), user, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// ListNeighbors lists the active residents
// @Summary Neighbor directory
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.UserBasicResponse}
// @Router /neighbors [get]
func (c *UserController) ListNeighbors(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	neighbors, err := c.userService.ListNeighbors(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(neighbors))
}

// ListUsers lists accounts for administration
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "admin or vecino"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Matches username, names or unit"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse}
// @Failure 403 {object} dto.ErrorResponse "Administrator only"
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var filter dto.UserFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	filter.Page, filter.Size = helpers.ParsePaginationParams(ctx)

	users, err := c.userService.ListUsers(ctx.Request.Context(), user, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users))
}

// CreateUser provisions a new account
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "New account"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Administrator only"
// @Failure 409 {object} dto.ErrorResponse "Username or email already exists"
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	created, err := c.userService.CreateUser(ctx.Request.Context(), user, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("adminID", user.ID).Int64("userID", created.ID).Msg("User created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(created))
}

// GetUser retrieves an account by ID
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	found, err := c.userService.GetUser(ctx.Request.Context(), user, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(found))
}

// UpdateUser replaces an account's administered fields
// @Summary Update user
// @Description An empty password keeps the current one.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Account fields"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Username or email already exists"
// @Router /users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	updated, err := c.userService.UpdateUser(ctx.Request.Context(), user, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(updated))
}

// SetUserActive enables or disables an account
// @Summary Enable or disable user
// @Description Disabling revokes the account's refresh tokens.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.SetActiveRequest true "Active flag"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id}/active [put]
func (c *UserController) SetUserActive(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.SetActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	updated, err := c.userService.SetActive(ctx.Request.Context(), user, id, *req.IsActive)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(updated))
}

// DeleteUser removes an account
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Cannot delete own account"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.userService.DeleteUser(ctx.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("adminID", user.ID).Int64("userID", id).Msg("User deleted")
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("User deleted successfully"))
}
