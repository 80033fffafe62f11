package dto

import (
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
)

// CreatePublicationRequest is the multipart form for a new post.
type CreatePublicationRequest struct {
	Title string `form:"title" binding:"required,max=200"`
	Body  string `form:"body" binding:"required"`
	Type  string `form:"type" binding:"required"`
}

// UpdatePublicationRequest is a partial edit: nil fields are left untouched.
type UpdatePublicationRequest struct {
	Title *string `form:"title" binding:"omitempty,max=200"`
	Body  *string `form:"body"`
	Type  *string `form:"type"`
}

// PublicationFilter narrows and pages the bulletin listing.
type PublicationFilter struct {
	Type string `form:"type"`
	Page int    `form:"page"`
	Size int    `form:"size"`
}

// PublicationResponse is a bulletin post.
type PublicationResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Body        string             `json:"body"`
	Type        string             `json:"type"`
	ImageURL    string             `json:"imageUrl,omitempty"`
	DocumentURL string             `json:"documentUrl,omitempty"`
	Author      *UserBasicResponse `json:"author,omitempty"`
	PublishedAt time.Time          `json:"publishedAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// PublicationListResponse is a page of posts, newest first.
type PublicationListResponse struct {
	Publications []*PublicationResponse `json:"publications"`
	Pagination   PaginationInfo         `json:"pagination"`
}

// NewPublicationResponse converts a publication model.
func NewPublicationResponse(p *models.Publication, urls URLFunc) *PublicationResponse {
	return &PublicationResponse{
		ID:          p.ID,
		Title:       p.Title,
		Body:        p.Body,
		Type:        string(p.Type),
		ImageURL:    resolveURL(urls, p.ImageRef),
		DocumentURL: resolveURL(urls, p.DocumentRef),
		Author:      NewUserBasicResponse(p.Author, urls),
		PublishedAt: p.PublishedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
