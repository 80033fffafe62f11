package models

import "time"

// Vehicle is a car registered to a residence unit. Plates are unique across the registry.
type Vehicle struct {
	ID           int64     `json:"id" db:"id"`
	Unit         string    `json:"unit" db:"unit"`
	OwnerName    string    `json:"ownerName" db:"owner_name"`
	Plate        string    `json:"plate" db:"plate"`
	Make         string    `json:"make" db:"make"`
	Model        string    `json:"model" db:"model"`
	Color        string    `json:"color" db:"color"`
	OwnerID      *int64    `json:"ownerId,omitempty" db:"owner_id"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
}

func (v *Vehicle) OwnerUserID() *int64 {
	return v.OwnerID
}
