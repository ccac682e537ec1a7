package repository

import (
	"context"

	"github.com/nurseryhub/nursery-api/internal/models"
)

// DocumentRepository handles stored document metadata
type DocumentRepository struct {
	dataSource EnrollmentDataSource
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(dataSource EnrollmentDataSource) *DocumentRepository {
	return &DocumentRepository{dataSource: dataSource}
}

// Create records a stored document and fills in its id
func (r *DocumentRepository) Create(ctx context.Context, doc *models.StoredDocument) error {
	id, err := r.dataSource.InsertDocument(ctx, doc)
	if err != nil {
		return err
	}
	doc.DocumentID = id
	return nil
}

// ListByOwner retrieves the documents uploaded for a child
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.StoredDocument, error) {
	return r.dataSource.ListDocuments(ctx, ownerID)
}
