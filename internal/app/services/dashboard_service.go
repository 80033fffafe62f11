package services

import (
	"context"

	"github.com/selvaalegre/portal/internal/app/auth"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/repositories"
)

const dashboardItems = 5

// DashboardService assembles the landing summary
type DashboardService interface {
	Build(ctx context.Context, caller *models.User) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	userRepo     repositories.IUserRepository
	events       EventService
	requests     RequestService
	messages     MessageService
	publications PublicationService
	urls         dto.URLFunc
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	userRepo repositories.IUserRepository,
	events EventService,
	requests RequestService,
	messages MessageService,
	publications PublicationService,
	urls dto.URLFunc,
) DashboardService {
	return &dashboardService{
		userRepo:     userRepo,
		events:       events,
		requests:     requests,
		messages:     messages,
		publications: publications,
		urls:         urls,
	}
}

func (s *dashboardService) Build(ctx context.Context, caller *models.User) (*dto.DashboardResponse, error) {
	unread, err := s.messages.UnreadTotal(ctx, caller)
	if err != nil {
		return nil, err
	}
	pending, err := s.requests.PendingCount(ctx, caller)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.events.ListUpcoming(ctx, caller, dashboardItems)
	if err != nil {
		return nil, err
	}
	latest, err := s.publications.List(ctx, &dto.PublicationFilter{Page: 1, Size: dashboardItems})
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		User:               dto.NewUserResponse(caller, s.urls),
		UnreadMessages:     unread,
		PendingRequests:    pending,
		UpcomingEvents:     upcoming,
		LatestPublications: latest.Publications,
	}
	if auth.IsAdministrator(caller) {
		residents, err := s.userRepo.CountActiveResidents(ctx)
		if err != nil {
			return nil, err
		}
		resp.ActiveResidents = &residents
	}
	return resp, nil
}
