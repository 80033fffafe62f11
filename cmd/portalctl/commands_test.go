package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	app := newApp()

	for _, name := range []string{"migrate", "create-superuser", "list-users", "neighbors", "cleanup-tokens"} {
		assert.NotNil(t, app.Command(name), name)
	}
}

func TestCreateSuperuserRequiresFlags(t *testing.T) {
	app := newApp()
	app.Writer, app.ErrWriter = io.Discard, io.Discard

	err := app.Run([]string{"portalctl", "create-superuser", "--email", "a@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "username")
}

func TestListUsersRejectsUnknownRole(t *testing.T) {
	app := newApp()
	app.Writer, app.ErrWriter = io.Discard, io.Discard

	err := app.Run([]string{"portalctl", "list-users", "--role", "owner"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner")
}

func TestWriteUsers(t *testing.T) {
	var buf bytes.Buffer
	writeUsers(&buf, []*models.User{
		{ID: 3, Unit: "Casa 1", Username: "ana", FirstName: "Ana", LastName: "Paz", Role: models.RoleResident, IsActive: true},
	})

	out := buf.String()
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "Casa 1")
}
