package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/services"
	"github.com/selvaalegre/portal/internal/middleware"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/helpers"
)

// RegistryController handles the pet and vehicle registry
type RegistryController struct {
	petService     services.PetService
	vehicleService services.VehicleService
	logger         zerolog.Logger
}

// NewRegistryController creates a new RegistryController
func NewRegistryController(petService services.PetService, vehicleService services.VehicleService, logger zerolog.Logger) *RegistryController {
	return &RegistryController{petService: petService, vehicleService: vehicleService, logger: logger}
}

func (c *RegistryController) photo(ctx *gin.Context) (*multipart.FileHeader, bool) {
	file, err := optionalFile(ctx, "photo")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("photo", "photo could not be read"))
		return nil, false
	}
	return file, true
}

// ListPets lists active pets
// @Summary List pets
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param unit query string false "Unit"
// @Param species query string false "perro, gato, ave or otro"
// @Success 200 {object} dto.APIResponse{data=[]dto.PetResponse}
// @Router /pets [get]
func (c *RegistryController) ListPets(ctx *gin.Context) {
	if _, ok := caller(ctx); !ok {
		return
	}

	var filter dto.PetFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	pets, err := c.petService.List(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(pets))
}

// CreatePet registers a pet
// @Summary Register pet
// @Description The caller becomes the owner; an empty unit defaults to the caller's.
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param unit formData string false "Unit"
// @Param name formData string true "Name"
// @Param ownerName formData string true "Owner name"
// @Param species formData string true "perro, gato, ave or otro"
// @Param description formData string false "Description"
// @Param photo formData file false "Photo"
// @Success 201 {object} dto.APIResponse{data=dto.PetResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /pets [post]
func (c *RegistryController) CreatePet(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.CreatePetRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	photo, ok := c.photo(ctx)
	if !ok {
		return
	}

	pet, err := c.petService.Create(ctx.Request.Context(), user, &req, photo)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("userID", user.ID).Int64("petID", pet.ID).Bool("photo", photo != nil).Msg("Pet registered")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(pet))
}

// GetPet retrieves a pet
// @Summary Get pet
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pet ID"
// @Success 200 {object} dto.APIResponse{data=dto.PetResponse}
// @Failure 404 {object} dto.ErrorResponse "Pet not found"
// @Router /pets/{id} [get]
func (c *RegistryController) GetPet(ctx *gin.Context) {
	if _, ok := caller(ctx); !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pet, err := c.petService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(pet))
}

// UpdatePet updates a pet
// @Summary Update pet
// @Description Blank fields keep their value, except description which is always replaced. The photo is replaced only when a new one is sent.
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pet ID"
// @Param unit formData string false "Unit"
// @Param name formData string false "Name"
// @Param ownerName formData string false "Owner name"
// @Param species formData string false "perro, gato, ave or otro"
// @Param description formData string false "Description"
// @Param isActive formData bool false "Active flag"
// @Param photo formData file false "Photo"
// @Success 200 {object} dto.APIResponse{data=dto.PetResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Pet not found"
// @Router /pets/{id} [put]
func (c *RegistryController) UpdatePet(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdatePetRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	photo, ok := c.photo(ctx)
	if !ok {
		return
	}

	pet, err := c.petService.Update(ctx.Request.Context(), user, id, &req, photo)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(pet))
}

// DeletePet removes a pet and its photo
// @Summary Delete pet
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pet ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Pet not found"
// @Router /pets/{id} [delete]
func (c *RegistryController) DeletePet(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.petService.Delete(ctx.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("Pet deleted successfully"))
}

// ListVehicles lists vehicles
// @Summary List vehicles
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param unit query string false "Unit"
// @Success 200 {object} dto.APIResponse{data=[]dto.VehicleResponse}
// @Router /vehicles [get]
func (c *RegistryController) ListVehicles(ctx *gin.Context) {
	if _, ok := caller(ctx); !ok {
		return
	}

	var filter dto.VehicleFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	vehicles, err := c.vehicleService.List(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(vehicles))
}

// CreateVehicle registers a vehicle
// @Summary Register vehicle
// @Tags vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.VehicleRequest true "Vehicle"
// @Success 201 {object} dto.APIResponse{data=dto.VehicleResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Plate already registered"
// @Router /vehicles [post]
func (c *RegistryController) CreateVehicle(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.VehicleRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	vehicle, err := c.vehicleService.Create(ctx.Request.Context(), user, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(vehicle))
}

// GetVehicle retrieves a vehicle
// @Summary Get vehicle
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Success 200 {object} dto.APIResponse{data=dto.VehicleResponse}
// @Failure 404 {object} dto.ErrorResponse "Vehicle not found"
// @Router /vehicles/{id} [get]
func (c *RegistryController) GetVehicle(ctx *gin.Context) {
	if _, ok := caller(ctx); !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	vehicle, err := c.vehicleService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(vehicle))
}

// UpdateVehicle replaces a vehicle
// @Summary Update vehicle
// @Tags vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Param request body dto.VehicleRequest true "Vehicle"
// @Success 200 {object} dto.APIResponse{data=dto.VehicleResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Vehicle not found"
// @Failure 409 {object} dto.ErrorResponse "Plate already registered"
// @Router /vehicles/{id} [put]
func (c *RegistryController) UpdateVehicle(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.VehicleRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	vehicle, err := c.vehicleService.Update(ctx.Request.Context(), user, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(vehicle))
}

// DeleteVehicle removes a vehicle
// @Summary Delete vehicle
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Vehicle not found"
// @Router /vehicles/{id} [delete]
func (c *RegistryController) DeleteVehicle(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.vehicleService.Delete(ctx.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("userID", user.ID).Int64("vehicleID", id).Msg("Vehicle deleted")
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("Vehicle deleted successfully"))
}
