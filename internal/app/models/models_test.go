package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumsValid(t *testing.T) {
	assert.True(t, RoleResident.Valid())
	assert.False(t, Role("owner").Valid())
	assert.True(t, RequestStatusInProgress.Valid())
	assert.False(t, RequestStatus("closed").Valid())
	assert.True(t, RequestTypeComplaint.Valid())
	assert.True(t, SpeciesBird.Valid())
	assert.False(t, Species("pez").Valid())
	assert.True(t, EventCategoryPayment.Valid())
	assert.True(t, PublicationTypeFinance.Valid())
	assert.False(t, PublicationType("").Valid())
}

func TestOwnership(t *testing.T) {
	legacy := &Pet{ID: 1}
	assert.Nil(t, legacy.OwnerUserID())

	ev := &Event{UserID: 9}
	assert.Equal(t, int64(9), *ev.OwnerUserID())
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Rosa Mena", (&User{FirstName: "Rosa", LastName: "Mena"}).FullName())
	assert.Equal(t, "rosa", (&User{Username: "rosa"}).FullName())
}
