package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/auth"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/repositories"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/validation"
)

// VehicleService manages the vehicle registry. Plates are unique across the registry.
type VehicleService interface {
	Create(ctx context.Context, caller *models.User, req *dto.VehicleRequest) (*dto.VehicleResponse, error)
	Get(ctx context.Context, id int64) (*dto.VehicleResponse, error)
	List(ctx context.Context, filter *dto.VehicleFilter) ([]*dto.VehicleResponse, error)
	Update(ctx context.Context, caller *models.User, id int64, req *dto.VehicleRequest) (*dto.VehicleResponse, error)
	Delete(ctx context.Context, caller *models.User, id int64) error
}

type vehicleService struct {
	vehicleRepo repositories.IVehicleRepository
	logger      zerolog.Logger
}

// NewVehicleService creates a new VehicleService
func NewVehicleService(vehicleRepo repositories.IVehicleRepository, logger zerolog.Logger) VehicleService {
	return &vehicleService{vehicleRepo: vehicleRepo, logger: logger}
}

func vehicleFields(req *dto.VehicleRequest, v *models.Vehicle, defaultUnit string) error {
	unit, err := optionalText("unit", req.Unit, validation.UnitMaxLength)
	if err != nil {
		return err
	}
	if unit == "" {
		unit = defaultUnit
	}
	if unit == "" {
		return apperrors.NewValidationError("unit", "unit is required")
	}

	plate := validation.NormalizePlate(req.Plate)
	if plate == "" {
		return apperrors.NewValidationError("plate", "plate is required")
	}
	if !validation.CompiledPatterns.Plate.MatchString(plate) {
		return apperrors.NewValidationError("plate", "plate may only contain letters, digits and dashes (max 10)")
	}

	owner, err := requiredText("ownerName", req.OwnerName, ownerNameMaxLength)
	if err != nil {
		return err
	}
	brand, err := requiredText("make", req.Make, 50)
	if err != nil {
		return err
	}
	model, err := requiredText("model", req.Model, 50)
	if err != nil {
		return err
	}
	color, err := requiredText("color", req.Color, 30)
	if err != nil {
		return err
	}

	v.Unit, v.Plate, v.OwnerName = unit, plate, owner
	v.Make, v.Model, v.Color = brand, model, color
	return nil
}

// ensurePlateFree is the early check; the unique constraint still decides races.
func (s *vehicleService) ensurePlateFree(ctx context.Context, plate string, excludeID int64) error {
	taken, err := s.vehicleRepo.PlateExists(ctx, plate, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.ErrPlateAlreadyExists
	}
	return nil
}

func (s *vehicleService) Create(ctx context.Context, caller *models.User, req *dto.VehicleRequest) (*dto.VehicleResponse, error) {
	ownerID := caller.ID
	v := &models.Vehicle{OwnerID: &ownerID}
	if err := vehicleFields(req, v, caller.Unit); err != nil {
		return nil, err
	}
	if err := s.ensurePlateFree(ctx, v.Plate, 0); err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.Create(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("vehicleID", v.ID).Str("plate", v.Plate).Int64("userID", caller.ID).Msg("Vehicle registered")
	return dto.NewVehicleResponse(v), nil
}

func (s *vehicleService) Get(ctx context.Context, id int64) (*dto.VehicleResponse, error) {
	v, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewVehicleResponse(v), nil
}

func (s *vehicleService) List(ctx context.Context, filter *dto.VehicleFilter) ([]*dto.VehicleResponse, error) {
	vehicles, err := s.vehicleRepo.List(ctx, strings.TrimSpace(filter.Unit))
	if err != nil {
		return nil, err
	}
	out := make([]*dto.VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, dto.NewVehicleResponse(v))
	}
	return out, nil
}

func (s *vehicleService) Update(ctx context.Context, caller *models.User, id int64, req *dto.VehicleRequest) (*dto.VehicleResponse, error) {
	v, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdministrator(v, caller); err != nil {
		return nil, err
	}
	if err := vehicleFields(req, v, v.Unit); err != nil {
		return nil, err
	}
	if err := s.ensurePlateFree(ctx, v.Plate, v.ID); err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	return dto.NewVehicleResponse(v), nil
}

func (s *vehicleService) Delete(ctx context.Context, caller *models.User, id int64) error {
	v, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwnerOrAdministrator(v, caller); err != nil {
		return err
	}
	return s.vehicleRepo.Delete(ctx, id)
}
