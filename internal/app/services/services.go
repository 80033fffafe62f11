package services

import (
	"fmt"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/filestorage"
)

// Services defined in this package:
// - AuthService: login, refresh token rotation, logout
// - UserService: administrator provisioning, profile self-service, neighbor directory
// - CalendarService / EventService: month rendering and event CRUD
// - RequestService: resident requests and their review
// - PetService / VehicleService: the unit registry
// - PublicationService: the bulletin board
// - MessageService: direct messages with read tracking
// - DashboardService: the landing summary

// requiredText trims value and checks it is present and at most max runes long (max <= 0 means unbounded).
func requiredText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewValidationError(field, field+" is required")
	}
	if max > 0 && utf8.RuneCountInString(value) > max {
		return "", apperrors.NewValidationError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return value, nil
}

// optionalText trims value and bounds its length.
func optionalText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if max > 0 && utf8.RuneCountInString(value) > max {
		return "", apperrors.NewValidationError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return value, nil
}

// storeUpload maps storage type rejections to validation errors on field.
func storeUpload(store filestorage.Storage, field string, fh *multipart.FileHeader, subdir string, kind filestorage.Kind) (*string, error) {
	if fh == nil {
		return nil, nil
	}
	ref, err := store.Store(fh, subdir, kind)
	if err != nil {
		if apperrors.Is(err, filestorage.ErrUnsupportedType) {
			return nil, apperrors.NewValidationError(field, fmt.Sprintf("%s must be %s", field, kindLabel(kind)))
		}
		return nil, fmt.Errorf("failed to store %s: %w", field, err)
	}
	return &ref, nil
}

func kindLabel(kind filestorage.Kind) string {
	switch kind {
	case filestorage.KindImage:
		return "an image"
	case filestorage.KindPDF:
		return "a PDF document"
	default:
		return "a supported file"
	}
}

// removeFile deletes a replaced upload; failures only leave an orphan behind.
func removeFile(store filestorage.Storage, ref *string, logger zerolog.Logger) {
	if ref == nil || *ref == "" {
		return
	}
	if err := store.Delete(*ref); err != nil {
		logger.Warn().Err(err).Str("file", *ref).Msg("Failed to remove stored file")
	}
}
