package services

import (
	"context"
	"testing"
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCalendarFixture(t *testing.T) (*fakeEventRepo, *calendarService, *models.User, *models.User) {
	t.Helper()
	users := newFakeUserRepo()
	events := newFakeEventRepo(users)
	svc := NewCalendarService(events, time.Monday, newFakeStorage().URL).(*calendarService)
	admin := users.add("admin", models.RoleAdmin, "", true)
	rosa := users.add("rosa", models.RoleResident, "", true)
	return events, svc, admin, rosa
}

func addEvent(t *testing.T, repo *fakeEventRepo, owner *models.User, title string, start time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.Event{
		UserID: owner.ID, Title: title, StartAt: start, EndAt: start.Add(time.Hour),
		Category: models.EventCategoryGeneral, Color: "#3788d8",
	}))
}

func TestEventsForMonthBucketsByLocalDay(t *testing.T) {
	events, svc, admin, rosa := newCalendarFixture(t)
	guayaquil := time.FixedZone("ECT", -5*60*60)

	// 03:00 UTC on March 1st is still February 29th in the community.
	addEvent(t, events, admin, "Late", time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC))
	addEvent(t, events, rosa, "Evening", time.Date(2024, 2, 16, 4, 30, 0, 0, time.UTC))
	addEvent(t, events, rosa, "Morning", time.Date(2024, 2, 15, 14, 0, 0, 0, time.UTC))

	byDay, err := svc.EventsForMonth(context.Background(), rosa, 2024, 2, guayaquil)
	require.NoError(t, err)

	require.Len(t, byDay[29], 1)
	assert.Equal(t, "Late", byDay[29][0].Title)
	require.Len(t, byDay[15], 2)
	assert.Equal(t, "Morning", byDay[15][0].Title)
	assert.Equal(t, "Evening", byDay[15][1].Title)
	assert.Empty(t, byDay[16])

	march, err := svc.EventsForMonth(context.Background(), rosa, 2024, 3, guayaquil)
	require.NoError(t, err)
	assert.Empty(t, march)
}

func TestEventsForMonthHidesOtherResidents(t *testing.T) {
	events, svc, _, rosa := newCalendarFixture(t)
	luis := events.users.add("luis", models.RoleResident, "", true)
	addEvent(t, events, luis, "Privado", time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))

	byDay, err := svc.EventsForMonth(context.Background(), rosa, 2024, 2, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, byDay)
}

func TestRenderMonthGrid(t *testing.T) {
	events, svc, _, rosa := newCalendarFixture(t)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }
	addEvent(t, events, rosa, "Reunión", time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC))

	month, err := svc.RenderMonth(context.Background(), rosa, 0, 0, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 2024, month.Year)
	assert.Equal(t, 3, month.Month)
	assert.Equal(t, "marzo", month.MonthName)
	assert.Equal(t, "lun", month.Weekdays[0])
	assert.Equal(t, "UTC", month.Timezone)

	// March 1st 2024 is a Friday.
	first := month.Weeks[0]
	for i := 0; i < 4; i++ {
		assert.Nil(t, first[i])
	}
	require.NotNil(t, first[4])
	assert.Equal(t, 1, first[4].Day)
	require.Len(t, first[4].Events, 1)
	assert.Equal(t, "Reunión", first[4].Events[0].Title)

	var today []int
	for _, week := range month.Weeks {
		for _, day := range week {
			if day != nil && day.IsToday {
				today = append(today, day.Day)
			}
		}
	}
	assert.Equal(t, []int{15}, today)
}

func TestRenderMonthNavigationWrapsYears(t *testing.T) {
	_, svc, _, rosa := newCalendarFixture(t)
	ctx := context.Background()

	dec, err := svc.RenderMonth(ctx, rosa, 2024, 12, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2024, dec.Previous.Year)
	assert.Equal(t, 11, dec.Previous.Month)
	assert.Equal(t, 2025, dec.Next.Year)
	assert.Equal(t, 1, dec.Next.Month)

	jan, err := svc.RenderMonth(ctx, rosa, 2025, 1, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2024, jan.Previous.Year)
	assert.Equal(t, 12, jan.Previous.Month)
	assert.Equal(t, 2025, jan.Next.Year)
	assert.Equal(t, 2, jan.Next.Month)
}

func TestRenderMonthRejectsBadMonth(t *testing.T) {
	_, svc, _, rosa := newCalendarFixture(t)

	_, err := svc.RenderMonth(context.Background(), rosa, 2024, 13, time.UTC)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "month", apperrors.FieldOf(err))
}
