package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/nfseaudit/internal/document"
)

type documentResponse struct {
	ID         uuid.UUID `json:"id"`
	Client     string    `json:"client"`
	FileName   string    `json:"file_name"`
	Size       int       `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toResponse(doc *document.Document) documentResponse {
	return documentResponse{
		ID:         doc.ID,
		Client:     doc.Client,
		FileName:   doc.FileName,
		Size:       len(doc.Content),
		UploadedAt: doc.UploadedAt,
	}
}

func toResponseList(docs []*document.Document) []documentResponse {
	resp := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}

	return resp
}
