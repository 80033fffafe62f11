package dto

import (
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
)

// EventRequest creates or fully replaces an event.
type EventRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"startAt" binding:"required"`
	EndAt       time.Time `json:"endAt" binding:"required"`
	Category    string    `json:"category" binding:"omitempty,oneof=general reunion mantenimiento social pago"`
	Color       string    `json:"color" binding:"omitempty,hexcolor"`
}

// EventResponse is an event as seen by a viewer.
type EventResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	StartAt     time.Time          `json:"startAt"`
	EndAt       time.Time          `json:"endAt"`
	Category    string             `json:"category"`
	Color       string             `json:"color"`
	Creator     *UserBasicResponse `json:"creator,omitempty"`
	IsGlobal    bool               `json:"isGlobal"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NewEventResponse converts an event; global marks administrator-created events.
func NewEventResponse(e *models.Event, global bool, urls URLFunc) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		Category:    string(e.Category),
		Color:       e.Color,
		Creator:     NewUserBasicResponse(e.Creator, urls),
		IsGlobal:    global,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// MonthRef names a year/month pair.
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// CalendarDay is one slot of the grid. Day 0 is a slot outside the month.
type CalendarDay struct {
	Day     int              `json:"day"`
	IsToday bool             `json:"isToday,omitempty"`
	Events  []*EventResponse `json:"events,omitempty"`
}

// CalendarMonthResponse is a rendered month.
type CalendarMonthResponse struct {
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	MonthName string           `json:"monthName"`
	Timezone  string           `json:"timezone"`
	Weekdays  []string         `json:"weekdays"`
	Weeks     [][]*CalendarDay `json:"weeks"`
	Previous  MonthRef         `json:"previous"`
	Next      MonthRef         `json:"next"`
}
