package services

import (
	"context"
	"testing"
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventFixture struct {
	users  *fakeUserRepo
	events *fakeEventRepo
	svc    EventService
	admin  *models.User
	rosa   *models.User
	luis   *models.User
}

func newEventFixture() *eventFixture {
	users := newFakeUserRepo()
	events := newFakeEventRepo(users)
	return &eventFixture{
		users:  users,
		events: events,
		svc:    NewEventService(events, newFakeStorage().URL, testLogger),
		admin:  users.add("admin", models.RoleAdmin, "", true),
		rosa:   users.add("rosa", models.RoleResident, "", true),
		luis:   users.add("luis", models.RoleResident, "", true),
	}
}

func eventAt(title string, start time.Time) *dto.EventRequest {
	return &dto.EventRequest{Title: title, StartAt: start, EndAt: start.Add(time.Hour)}
}

func TestCreateEventDefaults(t *testing.T) {
	f := newEventFixture()
	start := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	resp, err := f.svc.Create(context.Background(), f.rosa, &dto.EventRequest{
		Title: "  Cumpleaños  ", StartAt: start, EndAt: start.Add(-time.Hour), Color: "#AABBCC",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cumpleaños", resp.Title)
	assert.Equal(t, string(models.EventCategoryGeneral), resp.Category)
	assert.Equal(t, "#aabbcc", resp.Color)
	assert.False(t, resp.IsGlobal)
	// End before start is stored as entered.
	assert.True(t, resp.EndAt.Before(resp.StartAt))

	resp, err = f.svc.Create(context.Background(), f.admin, eventAt("Asamblea", start))
	require.NoError(t, err)
	assert.True(t, resp.IsGlobal)
	assert.Equal(t, "#3788d8", resp.Color)
}

func TestCreateEventValidation(t *testing.T) {
	f := newEventFixture()
	start := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.rosa, eventAt(" ", start))
	assert.Equal(t, "title", apperrors.FieldOf(err))

	_, err = f.svc.Create(ctx, f.rosa, &dto.EventRequest{Title: "x", EndAt: start})
	assert.Equal(t, "startAt", apperrors.FieldOf(err))

	req := eventAt("x", start)
	req.Category = "fiesta"
	_, err = f.svc.Create(ctx, f.rosa, req)
	assert.Equal(t, "category", apperrors.FieldOf(err))

	req = eventAt("x", start)
	req.Color = "blue"
	_, err = f.svc.Create(ctx, f.rosa, req)
	assert.Equal(t, "color", apperrors.FieldOf(err))
}

func TestEventVisibility(t *testing.T) {
	f := newEventFixture()
	start := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	ctx := context.Background()

	private, err := f.svc.Create(ctx, f.rosa, eventAt("Privado", start))
	require.NoError(t, err)
	global, err := f.svc.Create(ctx, f.admin, eventAt("Asamblea", start))
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.luis, private.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)

	got, err := f.svc.Get(ctx, f.luis, global.ID)
	require.NoError(t, err)
	assert.True(t, got.IsGlobal)

	_, err = f.svc.Get(ctx, f.admin, private.ID)
	assert.NoError(t, err)
}

func TestEventUpdateAndDeletePermissions(t *testing.T) {
	f := newEventFixture()
	start := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	ctx := context.Background()

	global, err := f.svc.Create(ctx, f.admin, eventAt("Asamblea", start))
	require.NoError(t, err)

	// Residents see administrator events but cannot change them.
	_, err = f.svc.Update(ctx, f.rosa, global.ID, eventAt("Cambiado", start))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.rosa, global.ID), apperrors.ErrPermissionDenied)

	own, err := f.svc.Create(ctx, f.rosa, eventAt("Mío", start))
	require.NoError(t, err)
	updated, err := f.svc.Update(ctx, f.rosa, own.ID, eventAt("Mío v2", start.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "Mío v2", updated.Title)

	require.NoError(t, f.svc.Delete(ctx, f.admin, own.ID))
	_, err = f.svc.Get(ctx, f.rosa, own.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestListUpcoming(t *testing.T) {
	f := newEventFixture()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	f.svc.(*eventService).now = func() time.Time { return now }
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.rosa, eventAt("Pasado", now.Add(-time.Hour)))
	require.NoError(t, err)
	for i := 3; i >= 1; i-- {
		_, err := f.svc.Create(ctx, f.admin, eventAt("Evento", now.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	_, err = f.svc.Create(ctx, f.luis, eventAt("De Luis", now.Add(time.Minute)))
	require.NoError(t, err)

	list, err := f.svc.ListUpcoming(ctx, f.rosa, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, now.Add(time.Hour), list[0].StartAt)
	assert.Equal(t, now.Add(2*time.Hour), list[1].StartAt)
}
