package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=document
type Repository interface {
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, filter ListFilter) ([]*Document, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type SaveParams struct {
	Client   string
	FileName string
	Content  []byte
}

// ListFilter narrows a listing. Client matches exactly, ClientLike matches a
// case-insensitive fragment of the client name.
type ListFilter struct {
	Client     *string
	ClientLike *string
}

func (s *Service) Save(ctx context.Context, params SaveParams) (*Document, error) {
	client := strings.TrimSpace(params.Client)
	if client == "" {
		return nil, ErrClientRequired
	}

	if len(params.Content) == 0 {
		return nil, ErrEmptyContent
	}

	doc := &Document{
		ID:       uuid.New(),
		Client:   client,
		FileName: params.FileName,
		Content:  params.Content,
	}

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	return doc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.GetDocument(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Document, error) {
	return s.repo.ListDocuments(ctx, filter)
}

// ForClient returns every document stored for client.
func (s *Service) ForClient(ctx context.Context, client string) ([]*Document, error) {
	client = strings.TrimSpace(client)
	if client == "" {
		return nil, ErrClientRequired
	}

	return s.repo.ListDocuments(ctx, ListFilter{Client: &client})
}

// Search looks a query up as a document id first and falls back to a client
// name fragment.
func (s *Service) Search(ctx context.Context, query string) ([]*Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.ListDocuments(ctx, ListFilter{})
	}

	if id, err := uuid.Parse(query); err == nil {
		doc, err := s.repo.GetDocument(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return []*Document{}, nil
			}

			return nil, err
		}

		return []*Document{doc}, nil
	}

	return s.repo.ListDocuments(ctx, ListFilter{ClientLike: &query})
}
