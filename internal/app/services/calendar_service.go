package services

import (
	"context"
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/repositories"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/calendar"
)

// CalendarService renders the community calendar
type CalendarService interface {
	// RenderMonth builds the month grid with the viewer's events. Zero year or month means the current one in loc.
	RenderMonth(ctx context.Context, viewer *models.User, year, month int, loc *time.Location) (*dto.CalendarMonthResponse, error)
	// EventsForMonth buckets the events visible to viewer by local day of month.
	EventsForMonth(ctx context.Context, viewer *models.User, year, month int, loc *time.Location) (map[int][]*models.Event, error)
}

type calendarService struct {
	eventRepo repositories.IEventRepository
	weekStart time.Weekday
	urls      dto.URLFunc
	now       func() time.Time
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(eventRepo repositories.IEventRepository, weekStart time.Weekday, urls dto.URLFunc) CalendarService {
	return &calendarService{eventRepo: eventRepo, weekStart: weekStart, urls: urls, now: time.Now}
}

func checkMonth(year, month int) error {
	if month < 1 || month > 12 {
		return apperrors.NewValidationError("month", "month must be between 1 and 12")
	}
	if !calendar.ValidMonth(year, month) {
		return apperrors.NewValidationError("year", "year is out of range")
	}
	return nil
}

func (s *calendarService) EventsForMonth(ctx context.Context, viewer *models.User, year, month int, loc *time.Location) (map[int][]*models.Event, error) {
	if err := checkMonth(year, month); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	from, to := calendar.MonthBounds(year, month, loc)
	events, err := s.eventRepo.ListVisibleInRange(ctx, viewer.ID, from, to)
	if err != nil {
		return nil, err
	}

	// Buckets use the local calendar day, not the UTC one. Events arrive sorted by start.
	byDay := make(map[int][]*models.Event)
	for _, e := range events {
		local := e.StartAt.In(loc)
		if local.Year() != year || int(local.Month()) != month {
			continue
		}
		byDay[local.Day()] = append(byDay[local.Day()], e)
	}
	return byDay, nil
}

func (s *calendarService) RenderMonth(ctx context.Context, viewer *models.User, year, month int, loc *time.Location) (*dto.CalendarMonthResponse, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := s.now().In(loc)
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = int(today.Month())
	}

	byDay, err := s.EventsForMonth(ctx, viewer, year, month, loc)
	if err != nil {
		return nil, err
	}

	grid := calendar.MonthGrid(year, month, s.weekStart)
	isCurrentMonth := today.Year() == year && int(today.Month()) == month

	weeks := make([][]*dto.CalendarDay, 0, len(grid))
	for _, row := range grid {
		week := make([]*dto.CalendarDay, 7)
		for i, day := range row {
			if day == 0 {
				continue
			}
			cell := &dto.CalendarDay{Day: day, IsToday: isCurrentMonth && today.Day() == day}
			for _, e := range byDay[day] {
				cell.Events = append(cell.Events, dto.NewEventResponse(e, isGlobalEvent(e), s.urls))
			}
			week[i] = cell
		}
		weeks = append(weeks, week)
	}

	py, pm, ny, nm := calendar.Adjacent(year, month)
	return &dto.CalendarMonthResponse{
		Year:      year,
		Month:     month,
		MonthName: calendar.MonthName(month),
		Timezone:  loc.String(),
		Weekdays:  calendar.WeekdayLabels(s.weekStart),
		Weeks:     weeks,
		Previous:  dto.MonthRef{Year: py, Month: pm},
		Next:      dto.MonthRef{Year: ny, Month: nm},
	}, nil
}
