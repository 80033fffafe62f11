package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/auth"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/repositories"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/filestorage"
	"github.com/selvaalegre/portal/internal/pkg/helpers"
	"github.com/selvaalegre/portal/internal/pkg/validation"
)

// Attachments groups the optional files of a publication submission.
type Attachments struct {
	Image    *multipart.FileHeader
	Document *multipart.FileHeader
}

// PublicationService manages the bulletin board
type PublicationService interface {
	Create(ctx context.Context, caller *models.User, req *dto.CreatePublicationRequest, files Attachments) (*dto.PublicationResponse, error)
	// Update overwrites only the fields present in req; attachments are replaced only when a new file is given.
	Update(ctx context.Context, caller *models.User, id int64, req *dto.UpdatePublicationRequest, files Attachments) (*dto.PublicationResponse, error)
	Delete(ctx context.Context, caller *models.User, id int64) error
	Get(ctx context.Context, id int64) (*dto.PublicationResponse, error)
	List(ctx context.Context, filter *dto.PublicationFilter) (*dto.PublicationListResponse, error)
}

type publicationService struct {
	pubRepo repositories.IPublicationRepository
	storage filestorage.Storage
	logger  zerolog.Logger
}

// NewPublicationService creates a new PublicationService
func NewPublicationService(pubRepo repositories.IPublicationRepository, storage filestorage.Storage, logger zerolog.Logger) PublicationService {
	return &publicationService{pubRepo: pubRepo, storage: storage, logger: logger}
}

func parsePublicationType(value string) (models.PublicationType, error) {
	t := models.PublicationType(strings.TrimSpace(value))
	if !t.Valid() {
		return "", apperrors.NewValidationError("type", "type must be anuncio, noticia, finanzas or mantenimiento")
	}
	return t, nil
}

// storeAttachments stores whichever files were submitted. On error nothing is left behind.
func (s *publicationService) storeAttachments(files Attachments) (image, document *string, err error) {
	if image, err = storeUpload(s.storage, "image", files.Image, "publications/images", filestorage.KindImage); err != nil {
		return nil, nil, err
	}
	if document, err = storeUpload(s.storage, "document", files.Document, "publications/documents", filestorage.KindPDF); err != nil {
		removeFile(s.storage, image, s.logger)
		return nil, nil, err
	}
	return image, document, nil
}

func (s *publicationService) Create(ctx context.Context, caller *models.User, req *dto.CreatePublicationRequest, files Attachments) (*dto.PublicationResponse, error) {
	if err := auth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	title, err := requiredText("title", req.Title, validation.TitleMaxLength)
	if err != nil {
		return nil, err
	}
	body, err := requiredText("body", req.Body, 0)
	if err != nil {
		return nil, err
	}
	pubType, err := parsePublicationType(req.Type)
	if err != nil {
		return nil, err
	}

	image, document, err := s.storeAttachments(files)
	if err != nil {
		return nil, err
	}

	authorID := caller.ID
	pub := &models.Publication{
		AuthorID:    &authorID,
		Title:       title,
		Body:        body,
		Type:        pubType,
		ImageRef:    image,
		DocumentRef: document,
	}
	if err := s.pubRepo.Create(ctx, pub); err != nil {
		removeFile(s.storage, image, s.logger)
		removeFile(s.storage, document, s.logger)
		return nil, err
	}
	pub.Author = caller
	s.logger.Info().Int64("publicationID", pub.ID).Int64("authorID", caller.ID).Msg("Publication created")
	return dto.NewPublicationResponse(pub, s.storage.URL), nil
}

func (s *publicationService) Update(ctx context.Context, caller *models.User, id int64, req *dto.UpdatePublicationRequest, files Attachments) (*dto.PublicationResponse, error) {
	if err := auth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	pub, err := s.pubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if pub.Title, err = requiredText("title", *req.Title, validation.TitleMaxLength); err != nil {
			return nil, err
		}
	}
	if req.Body != nil {
		if pub.Body, err = requiredText("body", *req.Body, 0); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		if pub.Type, err = parsePublicationType(*req.Type); err != nil {
			return nil, err
		}
	}

	image, document, err := s.storeAttachments(files)
	if err != nil {
		return nil, err
	}
	oldImage, oldDocument := pub.ImageRef, pub.DocumentRef
	if image != nil {
		pub.ImageRef = image
	}
	if document != nil {
		pub.DocumentRef = document
	}

	if err := s.pubRepo.Update(ctx, pub); err != nil {
		removeFile(s.storage, image, s.logger)
		removeFile(s.storage, document, s.logger)
		return nil, err
	}
	if image != nil {
		removeFile(s.storage, oldImage, s.logger)
	}
	if document != nil {
		removeFile(s.storage, oldDocument, s.logger)
	}
	return dto.NewPublicationResponse(pub, s.storage.URL), nil
}

func (s *publicationService) Delete(ctx context.Context, caller *models.User, id int64) error {
	if err := auth.RequireAdministrator(caller); err != nil {
		return err
	}
	pub, err := s.pubRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.pubRepo.Delete(ctx, id); err != nil {
		return err
	}
	removeFile(s.storage, pub.ImageRef, s.logger)
	removeFile(s.storage, pub.DocumentRef, s.logger)
	return nil
}

func (s *publicationService) Get(ctx context.Context, id int64) (*dto.PublicationResponse, error) {
	pub, err := s.pubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPublicationResponse(pub, s.storage.URL), nil
}

// List returns publications newest first; every authenticated user sees all of them.
func (s *publicationService) List(ctx context.Context, filter *dto.PublicationFilter) (*dto.PublicationListResponse, error) {
	var pubType models.PublicationType
	if strings.TrimSpace(filter.Type) != "" {
		var err error
		if pubType, err = parsePublicationType(filter.Type); err != nil {
			return nil, err
		}
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	pubs, total, err := s.pubRepo.List(ctx, pubType, offset, limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.PublicationListResponse{
		Publications: make([]*dto.PublicationResponse, 0, len(pubs)),
		Pagination:   helpers.NewPaginationInfo(total, filter.Page, filter.Size),
	}
	for _, p := range pubs {
		resp.Publications = append(resp.Publications, dto.NewPublicationResponse(p, s.storage.URL))
	}
	return resp, nil
}
