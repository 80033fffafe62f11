package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidationError(t *testing.T) {
	type form struct {
		Title string `validate:"required"`
		Color string `validate:"omitempty,hexcolor"`
	}
	err := validator.New().Struct(form{Color: "blue"})
	require.Error(t, err)

	detail := HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, "title", detail.Field)
	assert.Equal(t, "title is required", detail.Message)

	fields, ok := detail.Details.([]FieldError)
	require.True(t, ok)
	assert.Len(t, fields, 2)
	assert.Equal(t, "color", fields[1].Field)
}

func TestHandleValidationErrorNonValidator(t *testing.T) {
	detail := HandleValidationError(assert.AnError)
	assert.Equal(t, "Invalid request format", detail.Message)
}

func TestUserResponseResolvesPhoto(t *testing.T) {
	ref := "profiles/a.png"
	phone := "0991234567"
	u := &models.User{ID: 3, Username: "ana", Role: models.RoleResident, ProfilePhotoURL: &ref, Phone: &phone, IsSuperuser: true}

	resp := NewUserResponse(u, func(r string) string { return "/uploads/" + r })
	assert.Equal(t, "/uploads/profiles/a.png", resp.ProfilePhotoURL)
	assert.Equal(t, "0991234567", resp.Phone)
	assert.True(t, resp.IsAdministrator)
	assert.Nil(t, NewUserResponse(nil, nil))
}
