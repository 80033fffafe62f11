package dto

// DashboardResponse aggregates the landing page for the caller.
type DashboardResponse struct {
	User               *UserResponse          `json:"user"`
	UnreadMessages     int                    `json:"unreadMessages"`
	PendingRequests    int                    `json:"pendingRequests"`
	UpcomingEvents     []*EventResponse       `json:"upcomingEvents"`
	LatestPublications []*PublicationResponse `json:"latestPublications"`
	ActiveResidents    *int                   `json:"activeResidents,omitempty"`
}
