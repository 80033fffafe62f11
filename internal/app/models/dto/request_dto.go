package dto

import (
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
)

// SubmitRequestRequest is a resident's new request.
type SubmitRequestRequest struct {
	Type        string `json:"type" form:"type" binding:"required"`
	Title       string `json:"title" form:"title" binding:"required,max=200"`
	Description string `json:"description" form:"description" binding:"required"`
}

// ResolveRequestRequest moves a request to a new status.
type ResolveRequestRequest struct {
	Status   string `json:"status" form:"status" binding:"required"`
	Response string `json:"response" form:"response"`
}

// RequestFilter narrows the administrator listing.
type RequestFilter struct {
	Status string `form:"status"`
}

// RequestResponse is a request with its submitter.
type RequestResponse struct {
	ID            int64              `json:"id"`
	Type          string             `json:"type"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Status        string             `json:"status"`
	AdminResponse *string            `json:"adminResponse,omitempty"`
	Submitter     *UserBasicResponse `json:"submitter,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// RequestListResponse is a listing plus the pending count visible to the caller.
type RequestListResponse struct {
	Requests     []*RequestResponse `json:"requests"`
	PendingCount int                `json:"pendingCount"`
}

// NewRequestResponse converts a request model.
func NewRequestResponse(r *models.Request, urls URLFunc) *RequestResponse {
	return &RequestResponse{
		ID:            r.ID,
		Type:          string(r.Type),
		Title:         r.Title,
		Description:   r.Description,
		Status:        string(r.Status),
		AdminResponse: r.AdminResponse,
		Submitter:     NewUserBasicResponse(r.Submitter, urls),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
