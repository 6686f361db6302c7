package document

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrClientRequired = errors.New("client is required")
	ErrEmptyContent   = errors.New("document is empty")
)

// Document is a raw NFSe XML file stored for a client, byte for byte as
// uploaded.
type Document struct {
	ID         uuid.UUID
	Client     string
	FileName   string
	Content    []byte
	UploadedAt time.Time
}
