// Package auth holds the capability checks every mutating operation goes through.
package auth

import (
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
)

// accessDenied never says which capability failed.
const accessDenied = "Access denied"

// IsAdministrator reports whether user holds the administrator role or the superuser flag.
func IsAdministrator(user *models.User) bool {
	if user == nil || !user.IsActive {
		return false
	}
	return user.Role == models.RoleAdmin || user.IsSuperuser
}

// IsOwnerOrAdministrator reports whether user owns record or is an administrator.
// Records without an owner are administrator-only.
func IsOwnerOrAdministrator(record models.Ownable, user *models.User) bool {
	if user == nil || !user.IsActive {
		return false
	}
	if IsAdministrator(user) {
		return true
	}
	if record == nil {
		return false
	}
	owner := record.OwnerUserID()
	return owner != nil && *owner == user.ID
}

// RequireAdministrator returns ErrPermissionDenied unless user is an administrator.
func RequireAdministrator(user *models.User) error {
	if !IsAdministrator(user) {
		return apperrors.NewForbiddenError(accessDenied)
	}
	return nil
}

// RequireOwnerOrAdministrator returns ErrPermissionDenied unless user may modify record.
func RequireOwnerOrAdministrator(record models.Ownable, user *models.User) error {
	if !IsOwnerOrAdministrator(record, user) {
		return apperrors.NewForbiddenError(accessDenied)
	}
	return nil
}
