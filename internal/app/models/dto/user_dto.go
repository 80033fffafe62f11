package dto

import (
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int    `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken"`
	RefreshTokenExpiresIn int    `json:"refreshTokenExpiresIn"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	FullName        string     `json:"fullName"`
	Unit            string     `json:"unit"`
	Role            string     `json:"role"`
	Phone           string     `json:"phone,omitempty"`
	ProfilePhotoURL string     `json:"profilePhotoUrl,omitempty"`
	IsActive        bool       `json:"isActive"`
	IsSuperuser     bool       `json:"isSuperuser"`
	IsAdministrator bool       `json:"isAdministrator"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// UserBasicResponse is the compact view used inside other payloads.
type UserBasicResponse struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	FullName        string `json:"fullName"`
	Unit            string `json:"unit"`
	ProfilePhotoURL string `json:"profilePhotoUrl,omitempty"`
}

// NewUserResponse converts a user model. urls resolves the profile photo.
func NewUserResponse(u *models.User, urls URLFunc) *UserResponse {
	if u == nil {
		return nil
	}
	resp := &UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		FullName:        u.FullName(),
		Unit:            u.Unit,
		Role:            string(u.Role),
		ProfilePhotoURL: resolveURL(urls, u.ProfilePhotoURL),
		IsActive:        u.IsActive,
		IsSuperuser:     u.IsSuperuser,
		IsAdministrator: u.Role == models.RoleAdmin || u.IsSuperuser,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
	}
	if u.Phone != nil {
		resp.Phone = *u.Phone
	}
	return resp
}

// NewUserBasicResponse converts a user model to its compact form.
func NewUserBasicResponse(u *models.User, urls URLFunc) *UserBasicResponse {
	if u == nil {
		return nil
	}
	return &UserBasicResponse{
		ID:              u.ID,
		Username:        u.Username,
		FullName:        u.FullName(),
		Unit:            u.Unit,
		ProfilePhotoURL: resolveURL(urls, u.ProfilePhotoURL),
	}
}

// CreateUserRequest is the administrator provisioning form.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,username"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"max=150"`
	LastName  string `json:"lastName" binding:"max=150"`
	Unit      string `json:"unit" binding:"required,max=14"`
	Role      string `json:"role" binding:"omitempty,oneof=admin vecino"`
	Phone     string `json:"phone" binding:"omitempty,phone"`
	IsActive  *bool  `json:"isActive"`
}

// UpdateUserRequest replaces every editable field of an account. Password is
// changed only when non-empty.
type UpdateUserRequest struct {
	Username  string `json:"username" binding:"required,username"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"omitempty,min=8"`
	FirstName string `json:"firstName" binding:"max=150"`
	LastName  string `json:"lastName" binding:"max=150"`
	Unit      string `json:"unit" binding:"required,max=14"`
	Role      string `json:"role" binding:"required,oneof=admin vecino"`
	Phone     string `json:"phone" binding:"omitempty,phone"`
	IsActive  *bool  `json:"isActive" binding:"required"`
}

// SetActiveRequest toggles an account.
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// UserFilter holds the administrator listing filters.
type UserFilter struct {
	Role     string `form:"role" binding:"omitempty,oneof=admin vecino"`
	IsActive *bool  `form:"active"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	Size     int    `form:"size"`
}

// UserListResponse represents a page of users
type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	Pagination PaginationInfo  `json:"pagination"`
}

// UpdateProfileRequest is the self-service profile form.
type UpdateProfileRequest struct {
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"omitempty,phone"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}
