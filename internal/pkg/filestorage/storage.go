package filestorage

import (
	"errors"
	"mime/multipart"
)

// Kind restricts what content an upload may carry.
type Kind int

const (
	KindAny Kind = iota
	KindImage
	KindPDF
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	default:
		return "any"
	}
}

var (
	// ErrUnsupportedType is returned when sniffed content does not match the requested Kind.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrInvalidReference is returned for references escaping the storage root.
	ErrInvalidReference = errors.New("invalid file reference")
)

// Storage stores uploaded files and resolves references to public URLs.
// A reference is the path relative to the storage root, e.g. "pets/<uuid>.jpg".
type Storage interface {
	Store(fileHeader *multipart.FileHeader, subdir string, kind Kind) (string, error)
	URL(ref string) string
	Delete(ref string) error
}
