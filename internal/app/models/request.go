package models

import "time"

// RequestType classifies resident requests.
type RequestType string

const (
	RequestTypeMaintenance RequestType = "mantenimiento"
	RequestTypePermit      RequestType = "permiso"
	RequestTypeComplaint   RequestType = "queja"
	RequestTypeSuggestion  RequestType = "sugerencia"
	RequestTypeOther       RequestType = "otro"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestTypeMaintenance, RequestTypePermit, RequestTypeComplaint, RequestTypeSuggestion, RequestTypeOther:
		return true
	}
	return false
}

// RequestStatus is the review state of a request. Any state may move to any other.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pendiente"
	RequestStatusInProgress RequestStatus = "en_proceso"
	RequestStatusApproved   RequestStatus = "aprobada"
	RequestStatusRejected   RequestStatus = "rechazada"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// Request is an administrative request submitted by a resident.
type Request struct {
	ID            int64         `json:"id" db:"id"`
	UserID        int64         `json:"userId" db:"user_id"`
	Type          RequestType   `json:"type" db:"type"`
	Title         string        `json:"title" db:"title"`
	Description   string        `json:"description" db:"description"`
	Status        RequestStatus `json:"status" db:"status"`
	AdminResponse *string       `json:"adminResponse,omitempty" db:"admin_response"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`

	Submitter *User `json:"submitter,omitempty"`
}

func (r *Request) OwnerUserID() *int64 {
	return ownerPtr(r.UserID)
}
