package models

import "time"

// EventCategory classifies calendar events.
type EventCategory string

const (
	EventCategoryGeneral     EventCategory = "general"
	EventCategoryMeeting     EventCategory = "reunion"
	EventCategoryMaintenance EventCategory = "mantenimiento"
	EventCategorySocial      EventCategory = "social"
	EventCategoryPayment     EventCategory = "pago"
)

// Valid reports whether c is a known category.
func (c EventCategory) Valid() bool {
	switch c {
	case EventCategoryGeneral, EventCategoryMeeting, EventCategoryMaintenance, EventCategorySocial, EventCategoryPayment:
		return true
	}
	return false
}

// Event is a calendar entry created by a user. Events created by
// administrators are visible to everyone.
type Event struct {
	ID          int64         `json:"id" db:"id"`
	UserID      int64         `json:"userId" db:"user_id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	StartAt     time.Time     `json:"startAt" db:"start_at"`
	EndAt       time.Time     `json:"endAt" db:"end_at"`
	Category    EventCategory `json:"category" db:"category"`
	Color       string        `json:"color" db:"color"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`

	Creator *User `json:"creator,omitempty"`
}

func (e *Event) OwnerUserID() *int64 {
	return ownerPtr(e.UserID)
}
