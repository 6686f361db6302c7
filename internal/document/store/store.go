package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/nfseaudit/internal/document"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, client, file_name, content, uploaded_at
func scanDocument(s scanner) (*document.Document, error) {
	var doc document.Document

	if err := s.Scan(&doc.ID, &doc.Client, &doc.FileName, &doc.Content, &doc.UploadedAt); err != nil {
		return nil, err
	}

	return &doc, nil
}

const selectDocumentColumns = `id, client, file_name, content, uploaded_at`

func (s *Store) CreateDocument(ctx context.Context, doc *document.Document) error {
	query := `
		INSERT INTO documents (id, client, file_name, content, uploaded_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING uploaded_at
	`

	err := s.db.QueryRowContext(ctx, query,
		doc.ID,
		doc.Client,
		doc.FileName,
		doc.Content,
	).Scan(&doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}

	return nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, document.ErrNotFound
		}

		return nil, fmt.Errorf("getting document: %w", err)
	}

	return doc, nil
}

func (s *Store) ListDocuments(ctx context.Context, filter document.ListFilter) ([]*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM documents`

	var (
		conditions []string
		args       []any
	)

	argIdx := 1

	if filter.Client != nil {
		conditions = append(conditions, fmt.Sprintf("client = $%d", argIdx))
		args = append(args, *filter.Client)
		argIdx++
	}

	if filter.ClientLike != nil {
		conditions = append(conditions, fmt.Sprintf(`client ILIKE $%d ESCAPE '\'`, argIdx))
		args = append(args, ContainsPattern(*filter.ClientLike))
	}

	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	query += ` ORDER BY uploaded_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.Document

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern returns a LIKE pattern matching any value containing s
// literally. It pairs with ESCAPE '\'.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
