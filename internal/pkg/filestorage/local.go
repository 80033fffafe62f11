package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/selvaalegre/portal/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory on disk
	baseURL  string // public prefix the root is served under, e.g. /uploads
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Store sniffs the upload, checks it against kind and writes it under subdir
// with a generated name. A nil header stores nothing and returns "".
func (ls *LocalStorage) Store(fileHeader *multipart.FileHeader, subdir string, kind Kind) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	if !kindAccepts(kind, mtype) {
		logger.Warn().Str("filename", fileHeader.Filename).Str("mime", mtype.String()).Str("kind", kind.String()).Msg("Rejected upload")
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	subdir = strings.Trim(path.Clean("/"+filepath.ToSlash(subdir)), "/")
	dir := filepath.Join(ls.basePath, filepath.FromSlash(subdir))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(fileHeader.Filename))
	}
	name := uuid.New().String() + ext
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	ref := path.Join(subdir, name)
	logger.Debug().Str("filename", fileHeader.Filename).Str("ref", ref).Msg("File saved")
	return ref, nil
}

func kindAccepts(kind Kind, mtype *mimetype.MIME) bool {
	switch kind {
	case KindImage:
		return strings.HasPrefix(mtype.String(), "image/")
	case KindPDF:
		return mtype.Is("application/pdf")
	default:
		return true
	}
}

// URL returns the public URL of a stored reference.
func (ls *LocalStorage) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return ls.baseURL + "/" + strings.TrimLeft(ref, "/")
}

// Delete removes a stored file. Missing files are not an error.
func (ls *LocalStorage) Delete(ref string) error {
	if ref == "" {
		return nil
	}

	physicalPath, err := ls.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (ls *LocalStorage) resolve(ref string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(ref))
	if clean == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
