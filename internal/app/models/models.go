package models

// Role is the community role of an account. Wire values keep the portal's Spanish vocabulary.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "vecino"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleResident
}

// Ownable is implemented by records that may belong to a user.
// A nil owner means the record has none (legacy rows).
type Ownable interface {
	OwnerUserID() *int64
}

func ownerPtr(id int64) *int64 {
	return &id
}
