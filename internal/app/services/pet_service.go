package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/auth"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/repositories"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/filestorage"
	"github.com/selvaalegre/portal/internal/pkg/validation"
)

const (
	petNameMaxLength   = 100
	ownerNameMaxLength = 150
)

// PetService manages the pet registry
type PetService interface {
	Create(ctx context.Context, caller *models.User, req *dto.CreatePetRequest, photo *multipart.FileHeader) (*dto.PetResponse, error)
	Get(ctx context.Context, id int64) (*dto.PetResponse, error)
	List(ctx context.Context, filter *dto.PetFilter) ([]*dto.PetResponse, error)
	// Update merges: a field is overwritten only when the submitted value is non-blank,
	// except description, which is always overwritten.
	Update(ctx context.Context, caller *models.User, id int64, req *dto.UpdatePetRequest, photo *multipart.FileHeader) (*dto.PetResponse, error)
	Delete(ctx context.Context, caller *models.User, id int64) error
}

type petService struct {
	petRepo repositories.IPetRepository
	storage filestorage.Storage
	logger  zerolog.Logger
}

// NewPetService creates a new PetService
func NewPetService(petRepo repositories.IPetRepository, storage filestorage.Storage, logger zerolog.Logger) PetService {
	return &petService{petRepo: petRepo, storage: storage, logger: logger}
}

func parseSpecies(value string) (models.Species, error) {
	species := models.Species(strings.TrimSpace(value))
	if !species.Valid() {
		return "", apperrors.NewValidationError("species", "species must be perro, gato, ave or otro")
	}
	return species, nil
}

func (s *petService) Create(ctx context.Context, caller *models.User, req *dto.CreatePetRequest, photo *multipart.FileHeader) (*dto.PetResponse, error) {
	unit, err := optionalText("unit", req.Unit, validation.UnitMaxLength)
	if err != nil {
		return nil, err
	}
	if unit == "" {
		unit = caller.Unit
	}
	name, err := requiredText("name", req.Name, petNameMaxLength)
	if err != nil {
		return nil, err
	}
	owner, err := requiredText("ownerName", req.OwnerName, ownerNameMaxLength)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Species) == "" {
		return nil, apperrors.NewValidationError("species", "species is required")
	}
	species, err := parseSpecies(req.Species)
	if err != nil {
		return nil, err
	}

	ref, err := storeUpload(s.storage, "photo", photo, "pets", filestorage.KindImage)
	if err != nil {
		return nil, err
	}

	ownerID := caller.ID
	pet := &models.Pet{
		Unit:        unit,
		Name:        name,
		OwnerName:   owner,
		Species:     species,
		Description: strings.TrimSpace(req.Description),
		PhotoURL:    ref,
		IsActive:    true,
		OwnerID:     &ownerID,
	}
	if err := s.petRepo.Create(ctx, pet); err != nil {
		removeFile(s.storage, ref, s.logger)
		return nil, err
	}
	s.logger.Info().Int64("petID", pet.ID).Str("unit", pet.Unit).Int64("userID", caller.ID).Msg("Pet registered")
	return dto.NewPetResponse(pet, s.storage.URL), nil
}

func (s *petService) Get(ctx context.Context, id int64) (*dto.PetResponse, error) {
	pet, err := s.petRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPetResponse(pet, s.storage.URL), nil
}

func (s *petService) List(ctx context.Context, filter *dto.PetFilter) ([]*dto.PetResponse, error) {
	var species models.Species
	if strings.TrimSpace(filter.Species) != "" {
		var err error
		if species, err = parseSpecies(filter.Species); err != nil {
			return nil, err
		}
	}
	pets, err := s.petRepo.List(ctx, strings.TrimSpace(filter.Unit), species)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PetResponse, 0, len(pets))
	for _, p := range pets {
		out = append(out, dto.NewPetResponse(p, s.storage.URL))
	}
	return out, nil
}

func (s *petService) Update(ctx context.Context, caller *models.User, id int64, req *dto.UpdatePetRequest, photo *multipart.FileHeader) (*dto.PetResponse, error) {
	pet, err := s.petRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdministrator(pet, caller); err != nil {
		return nil, err
	}

	if unit, err := optionalText("unit", req.Unit, validation.UnitMaxLength); err != nil {
		return nil, err
	} else if unit != "" {
		pet.Unit = unit
	}
	if name, err := optionalText("name", req.Name, petNameMaxLength); err != nil {
		return nil, err
	} else if name != "" {
		pet.Name = name
	}
	if owner, err := optionalText("ownerName", req.OwnerName, ownerNameMaxLength); err != nil {
		return nil, err
	} else if owner != "" {
		pet.OwnerName = owner
	}
	if strings.TrimSpace(req.Species) != "" {
		if pet.Species, err = parseSpecies(req.Species); err != nil {
			return nil, err
		}
	}
	pet.Description = strings.TrimSpace(req.Description)
	if req.IsActive != nil {
		pet.IsActive = *req.IsActive
	}

	oldPhoto := pet.PhotoURL
	ref, err := storeUpload(s.storage, "photo", photo, "pets", filestorage.KindImage)
	if err != nil {
		return nil, err
	}
	if ref != nil {
		pet.PhotoURL = ref
	}

	if err := s.petRepo.Update(ctx, pet); err != nil {
		removeFile(s.storage, ref, s.logger)
		return nil, err
	}
	if ref != nil {
		removeFile(s.storage, oldPhoto, s.logger)
	}
	return dto.NewPetResponse(pet, s.storage.URL), nil
}

func (s *petService) Delete(ctx context.Context, caller *models.User, id int64) error {
	pet, err := s.petRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwnerOrAdministrator(pet, caller); err != nil {
		return err
	}
	if err := s.petRepo.Delete(ctx, id); err != nil {
		return err
	}
	removeFile(s.storage, pet.PhotoURL, s.logger)
	s.logger.Info().Int64("petID", id).Int64("deletedBy", caller.ID).Msg("Pet removed")
	return nil
}
