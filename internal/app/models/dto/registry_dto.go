package dto

import (
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
)

// CreatePetRequest registers a pet. Unit defaults to the caller's unit.
type CreatePetRequest struct {
	Unit        string `form:"unit" json:"unit" binding:"max=14"`
	Name        string `form:"name" json:"name" binding:"required,max=100"`
	OwnerName   string `form:"ownerName" json:"ownerName" binding:"required,max=150"`
	Species     string `form:"species" json:"species" binding:"required"`
	Description string `form:"description" json:"description"`
}

// UpdatePetRequest edits a pet. Blank fields keep the stored value, except
// Description which is always written.
type UpdatePetRequest struct {
	Unit        string `form:"unit" json:"unit" binding:"max=14"`
	Name        string `form:"name" json:"name" binding:"max=100"`
	OwnerName   string `form:"ownerName" json:"ownerName" binding:"max=150"`
	Species     string `form:"species" json:"species"`
	Description string `form:"description" json:"description"`
	IsActive    *bool  `form:"isActive" json:"isActive"`
}

// PetFilter narrows the pet listing.
type PetFilter struct {
	Unit    string `form:"unit"`
	Species string `form:"species"`
}

// PetResponse is a registered pet.
type PetResponse struct {
	ID           int64     `json:"id"`
	Unit         string    `json:"unit"`
	Name         string    `json:"name"`
	OwnerName    string    `json:"ownerName"`
	Species      string    `json:"species"`
	Description  string    `json:"description"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	IsActive     bool      `json:"isActive"`
	OwnerID      *int64    `json:"ownerId,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// NewPetResponse converts a pet model.
func NewPetResponse(p *models.Pet, urls URLFunc) *PetResponse {
	return &PetResponse{
		ID:           p.ID,
		Unit:         p.Unit,
		Name:         p.Name,
		OwnerName:    p.OwnerName,
		Species:      string(p.Species),
		Description:  p.Description,
		PhotoURL:     resolveURL(urls, p.PhotoURL),
		IsActive:     p.IsActive,
		OwnerID:      p.OwnerID,
		RegisteredAt: p.RegisteredAt,
	}
}

// VehicleRequest creates or fully replaces a vehicle.
type VehicleRequest struct {
	Unit      string `form:"unit" json:"unit" binding:"max=14"`
	OwnerName string `form:"ownerName" json:"ownerName" binding:"required,max=150"`
	Plate     string `form:"plate" json:"plate" binding:"required,max=10"`
	Make      string `form:"make" json:"make" binding:"required,max=50"`
	Model     string `form:"model" json:"model" binding:"required,max=50"`
	Color     string `form:"color" json:"color" binding:"required,max=30"`
}

// VehicleFilter narrows the vehicle listing.
type VehicleFilter struct {
	Unit string `form:"unit"`
}

// VehicleResponse is a registered vehicle.
type VehicleResponse struct {
	ID           int64     `json:"id"`
	Unit         string    `json:"unit"`
	OwnerName    string    `json:"ownerName"`
	Plate        string    `json:"plate"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Color        string    `json:"color"`
	OwnerID      *int64    `json:"ownerId,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// NewVehicleResponse converts a vehicle model.
func NewVehicleResponse(v *models.Vehicle) *VehicleResponse {
	return &VehicleResponse{
		ID:           v.ID,
		Unit:         v.Unit,
		OwnerName:    v.OwnerName,
		Plate:        v.Plate,
		Make:         v.Make,
		Model:        v.Model,
		Color:        v.Color,
		OwnerID:      v.OwnerID,
		RegisteredAt: v.RegisteredAt,
	}
}
