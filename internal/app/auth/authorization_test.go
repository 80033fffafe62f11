package auth

import (
	"testing"

	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestIsAdministrator(t *testing.T) {
	assert.True(t, IsAdministrator(&models.User{Role: models.RoleAdmin, IsActive: true}))
	assert.True(t, IsAdministrator(&models.User{Role: models.RoleResident, IsSuperuser: true, IsActive: true}))
	assert.False(t, IsAdministrator(&models.User{Role: models.RoleResident, IsActive: true}))
	assert.False(t, IsAdministrator(&models.User{Role: models.RoleAdmin, IsActive: false}))
	assert.False(t, IsAdministrator(nil))
}

func TestIsOwnerOrAdministrator(t *testing.T) {
	owner := &models.User{ID: 5, Role: models.RoleResident, IsActive: true}
	other := &models.User{ID: 6, Role: models.RoleResident, IsActive: true}
	admin := &models.User{ID: 1, Role: models.RoleAdmin, IsActive: true}

	owned := &models.Pet{ID: 1, OwnerID: ptr(5)}
	assert.True(t, IsOwnerOrAdministrator(owned, owner))
	assert.False(t, IsOwnerOrAdministrator(owned, other))
	assert.True(t, IsOwnerOrAdministrator(owned, admin))

	legacy := &models.Pet{ID: 2, Unit: "Casa 12", Name: "Rex"}
	assert.False(t, IsOwnerOrAdministrator(legacy, owner))
	assert.False(t, IsOwnerOrAdministrator(legacy, other))
	assert.True(t, IsOwnerOrAdministrator(legacy, admin))
}

func TestRequireReturnsGenericPermissionDenied(t *testing.T) {
	resident := &models.User{ID: 7, Role: models.RoleResident, IsActive: true}

	err := RequireAdministrator(resident)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Equal(t, "Access denied", err.Error())

	err = RequireOwnerOrAdministrator(&models.Vehicle{OwnerID: ptr(8)}, resident)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	assert.NoError(t, RequireOwnerOrAdministrator(&models.Vehicle{OwnerID: ptr(7)}, resident))
}
