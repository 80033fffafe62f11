package models

import "time"

// Species of a registered pet.
type Species string

const (
	SpeciesDog   Species = "perro"
	SpeciesCat   Species = "gato"
	SpeciesBird  Species = "ave"
	SpeciesOther Species = "otro"
)

func (s Species) Valid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesOther:
		return true
	}
	return false
}

// Pet is a pet registered to a residence unit. OwnerID is nil on legacy rows.
type Pet struct {
	ID           int64     `json:"id" db:"id"`
	Unit         string    `json:"unit" db:"unit"`
	Name         string    `json:"name" db:"name"`
	OwnerName    string    `json:"ownerName" db:"owner_name"`
	Species      Species   `json:"species" db:"species"`
	Description  string    `json:"description" db:"description"`
	PhotoURL     *string   `json:"photoUrl,omitempty" db:"photo"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	OwnerID      *int64    `json:"ownerId,omitempty" db:"owner_id"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
}

func (p *Pet) OwnerUserID() *int64 {
	return p.OwnerID
}
