package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/auth"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/repositories"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/email"
	"github.com/selvaalegre/portal/internal/pkg/validation"
)

// RequestService tracks resident requests through administrator review
type RequestService interface {
	Submit(ctx context.Context, caller *models.User, req *dto.SubmitRequestRequest) (*dto.RequestResponse, error)
	// Resolve sets any known status, from any status, with an optional response.
	Resolve(ctx context.Context, caller *models.User, id int64, req *dto.ResolveRequestRequest) (*dto.RequestResponse, error)
	List(ctx context.Context, caller *models.User, filter *dto.RequestFilter) (*dto.RequestListResponse, error)
	Get(ctx context.Context, caller *models.User, id int64) (*dto.RequestResponse, error)
	Delete(ctx context.Context, caller *models.User, id int64) error
	PendingCount(ctx context.Context, caller *models.User) (int, error)
}

type requestService struct {
	requestRepo repositories.IRequestRepository
	notifier    email.Notifier
	urls        dto.URLFunc
	logger      zerolog.Logger
}

// NewRequestService creates a new RequestService
func NewRequestService(requestRepo repositories.IRequestRepository, notifier email.Notifier, urls dto.URLFunc, logger zerolog.Logger) RequestService {
	return &requestService{requestRepo: requestRepo, notifier: notifier, urls: urls, logger: logger}
}

func (s *requestService) Submit(ctx context.Context, caller *models.User, req *dto.SubmitRequestRequest) (*dto.RequestResponse, error) {
	reqType := models.RequestType(strings.TrimSpace(req.Type))
	if reqType == "" {
		return nil, apperrors.NewValidationError("type", "type is required")
	}
	if !reqType.Valid() {
		return nil, apperrors.NewValidationError("type", "unknown request type")
	}
	title, err := requiredText("title", req.Title, validation.TitleMaxLength)
	if err != nil {
		return nil, err
	}
	description, err := requiredText("description", req.Description, 0)
	if err != nil {
		return nil, err
	}

	r := &models.Request{
		UserID:      caller.ID,
		Type:        reqType,
		Title:       title,
		Description: description,
		Status:      models.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	r.Submitter = caller
	s.logger.Info().Int64("requestID", r.ID).Int64("userID", caller.ID).Str("type", string(r.Type)).Msg("Request submitted")
	return dto.NewRequestResponse(r, s.urls), nil
}

func (s *requestService) Resolve(ctx context.Context, caller *models.User, id int64, req *dto.ResolveRequestRequest) (*dto.RequestResponse, error) {
	if err := auth.RequireAdministrator(caller); err != nil {
		return nil, err
	}

	status := models.RequestStatus(strings.TrimSpace(req.Status))
	if status == "" {
		return nil, apperrors.NewValidationError("status", "status is required")
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown status")
	}
	var response *string
	if text := strings.TrimSpace(req.Response); text != "" {
		response = &text
	}

	resolved, err := s.requestRepo.Resolve(ctx, id, status, response)
	if err != nil {
		return nil, err
	}

	full, err := s.requestRepo.GetByID(ctx, resolved.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("requestID", id).Int64("adminID", caller.ID).Str("status", string(status)).Msg("Request resolved")
	s.notifySubmitter(full)
	return dto.NewRequestResponse(full, s.urls), nil
}

// notifySubmitter is best effort.
func (s *requestService) notifySubmitter(r *models.Request) {
	if r.Submitter == nil {
		return
	}
	response := ""
	if r.AdminResponse != nil {
		response = *r.AdminResponse
	}
	if err := s.notifier.SendRequestResolvedEmail(r.Submitter.Email, r.Submitter.FullName(), r.Title, string(r.Status), response); err != nil {
		s.logger.Warn().Err(err).Int64("requestID", r.ID).Msg("Failed to notify request submitter")
	}
}

// List shows administrators every request and residents only their own, newest first.
func (s *requestService) List(ctx context.Context, caller *models.User, filter *dto.RequestFilter) (*dto.RequestListResponse, error) {
	status := models.RequestStatus(strings.TrimSpace(filter.Status))
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown status")
	}

	var owner *int64
	if !auth.IsAdministrator(caller) {
		owner = &caller.ID
	}
	list, err := s.requestRepo.List(ctx, owner, status)
	if err != nil {
		return nil, err
	}
	pending, err := s.requestRepo.CountByStatus(ctx, owner, models.RequestStatusPending)
	if err != nil {
		return nil, err
	}

	resp := &dto.RequestListResponse{
		Requests:     make([]*dto.RequestResponse, 0, len(list)),
		PendingCount: pending,
	}
	for _, r := range list {
		resp.Requests = append(resp.Requests, dto.NewRequestResponse(r, s.urls))
	}
	return resp, nil
}

func (s *requestService) Get(ctx context.Context, caller *models.User, id int64) (*dto.RequestResponse, error) {
	r, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdministrator(r, caller); err != nil {
		return nil, err
	}
	return dto.NewRequestResponse(r, s.urls), nil
}

func (s *requestService) Delete(ctx context.Context, caller *models.User, id int64) error {
	r, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwnerOrAdministrator(r, caller); err != nil {
		return err
	}
	return s.requestRepo.Delete(ctx, id)
}

// PendingCount is global for administrators and per-submitter for residents.
func (s *requestService) PendingCount(ctx context.Context, caller *models.User) (int, error) {
	var owner *int64
	if !auth.IsAdministrator(caller) {
		owner = &caller.ID
	}
	return s.requestRepo.CountByStatus(ctx, owner, models.RequestStatusPending)
}
