package models

import "time"

// PublicationType classifies bulletin posts.
type PublicationType string

const (
	PublicationTypeAnnouncement PublicationType = "anuncio"
	PublicationTypeNews         PublicationType = "noticia"
	PublicationTypeFinance      PublicationType = "finanzas"
	PublicationTypeMaintenance  PublicationType = "mantenimiento"
)

func (t PublicationType) Valid() bool {
	switch t {
	case PublicationTypeAnnouncement, PublicationTypeNews, PublicationTypeFinance, PublicationTypeMaintenance:
		return true
	}
	return false
}

// Publication is a bulletin board post. ImageRef and DocumentRef are storage references.
type Publication struct {
	ID          int64           `json:"id" db:"id"`
	AuthorID    *int64          `json:"authorId,omitempty" db:"author_id"`
	Title       string          `json:"title" db:"title"`
	Body        string          `json:"body" db:"body"`
	Type        PublicationType `json:"type" db:"type"`
	ImageRef    *string         `json:"-" db:"image"`
	DocumentRef *string         `json:"-" db:"document"`
	PublishedAt time.Time       `json:"publishedAt" db:"published_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`

	Author *User `json:"author,omitempty"`
}
