package models

import (
	"strings"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID              int64      `json:"id" db:"id" example:"1"`
	Username        string     `json:"username" db:"username" example:"rosa.mena"`
	Email           string     `json:"email" db:"email" example:"rosa@example.com"`
	Password        string     `json:"-" db:"password"`
	FirstName       string     `json:"firstName" db:"first_name" example:"Rosa"`
	LastName        string     `json:"lastName" db:"last_name" example:"Mena"`
	Unit            string     `json:"unit" db:"unit" example:"Casa 7"`
	Role            Role       `json:"role" db:"role" example:"vecino" enums:"admin,vecino"`
	Phone           *string    `json:"phone,omitempty" db:"phone" example:"0991234567"`
	ProfilePhotoURL *string    `json:"profilePhotoUrl,omitempty" db:"profile_photo" example:"/uploads/profiles/1.jpg"`
	IsActive        bool       `json:"isActive" db:"is_active" example:"true"`
	IsSuperuser     bool       `json:"isSuperuser" db:"is_superuser" example:"false"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName returns "First Last", falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// OwnerUserID makes a user the owner of their own account record.
func (u *User) OwnerUserID() *int64 {
	return ownerPtr(u.ID)
}
