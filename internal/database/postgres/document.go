package postgres

import (
	"context"
	"time"

	"github.com/nurseryhub/nursery-api/internal/models"
)

// InsertDocument records a stored document and returns its id
func (c *Client) InsertDocument(ctx context.Context, doc *models.StoredDocument) (string, error) {
	start := time.Now()
	var id string
	err := c.pool.QueryRow(ctx, `
		INSERT INTO enrollment_documents (owner_id, document_type, file_name, content_type,
		                                  size_bytes, storage_key, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		doc.OwnerID,
		string(doc.DocumentType),
		doc.FileName,
		doc.ContentType,
		doc.SizeBytes,
		doc.StorageKey,
		doc.URL,
	).Scan(&id)

	if err := finish(ctx, "insertDocument", start, err, "document"); err != nil {
		return "", err
	}
	return id, nil
}

// ListDocuments returns the documents uploaded for a child
func (c *Client) ListDocuments(ctx context.Context, ownerID string) ([]*models.StoredDocument, error) {
	start := time.Now()

	rows, err := c.pool.Query(ctx, `
		SELECT id, owner_id, document_type, file_name, content_type, size_bytes,
		       storage_key, url, created_at
		FROM enrollment_documents
		WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, finish(ctx, "listDocuments", start, err, "documents")
	}

	docs, err := models.ScanStoredDocuments(rows)
	if err := finish(ctx, "listDocuments", start, err, "documents"); err != nil {
		return nil, err
	}
	return docs, nil
}
